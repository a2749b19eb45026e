package handlers

import (
	"errors"
	"net/http"

	"magazyn_backend/internal/database"
	"magazyn_backend/internal/models"
	"magazyn_backend/internal/repositories"
	"magazyn_backend/pkg/utils"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

// UserHandler serves the selling-point directory. Besides plain directory
// reads it covers registration and login for operators.
type UserHandler struct {
	userRepo repositories.UserRepository
}

// NewUserHandler creates a new instance of UserHandler.
func NewUserHandler(ur repositories.UserRepository) *UserHandler {
	return &UserHandler{userRepo: ur}
}

// GetUsers handles GET /api/user. The response wraps the list in a "users"
// field; consumers use it to map selling point names to symbols.
func (h *UserHandler) GetUsers(c *gin.Context) {
	users, err := h.userRepo.GetUsers()
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch users", err.Error()))
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

// CreateUser handles POST /api/user.
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req models.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to hash password", err.Error()))
		return
	}

	user := models.User{
		Username:     req.Username,
		PasswordHash: string(hash),
		SellingPoint: req.SellingPoint,
		Symbol:       req.Symbol,
		Role:         req.Role,
	}
	if _, err := h.userRepo.CreateUser(database.GetDB(), &user); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Username already exists", ""))
			return
		}
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to create user", err.Error()))
		return
	}
	c.JSON(http.StatusCreated, user)
}

// Login handles POST /api/user/login and issues a JWT on valid credentials.
func (h *UserHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	user, err := h.userRepo.GetUserByUsername(req.Username)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Invalid credentials", ""))
			return
		}
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to look up user", err.Error()))
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Invalid credentials", ""))
		return
	}

	token, err := utils.GenerateAccessToken(user.ID, user.Username, user.Role, user.SellingPoint)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to issue token", err.Error()))
		return
	}
	c.JSON(http.StatusOK, models.LoginResponse{Token: token, User: *user})
}
