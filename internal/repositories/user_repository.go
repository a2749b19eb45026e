package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"magazyn_backend/internal/models"
)

// UserRepository defines the selling-point directory database operations.
type UserRepository interface {
	CreateUser(executor SQLExecutor, user *models.User) (int64, error)
	GetUsers() ([]models.User, error)
	GetUserByUsername(username string) (*models.User, error)
}

type userRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) CreateUser(executor SQLExecutor, user *models.User) (int64, error) {
	query := `INSERT INTO users (username, password_hash, selling_point, symbol, role, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)
	          RETURNING id, created_at, updated_at`
	currentTime := time.Now()
	if user.Role == "" {
		user.Role = "user"
	}

	err := executor.QueryRow(query,
		user.Username, user.PasswordHash, user.SellingPoint, user.Symbol, user.Role,
		currentTime, currentTime,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if strings.Contains(err.Error(), "unique") {
			return 0, fmt.Errorf("%w: username %s", ErrDuplicateKey, user.Username)
		}
		return 0, fmt.Errorf("%w: creating user: %v", ErrDatabaseError, err)
	}
	return user.ID, nil
}

func (r *userRepository) GetUsers() ([]models.User, error) {
	rows, err := r.db.Query(
		`SELECT id, username, password_hash, selling_point, symbol, role, created_at, updated_at
		 FROM users ORDER BY selling_point, username`)
	if err != nil {
		return nil, fmt.Errorf("%w: getting users: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		var user models.User
		if err := rows.Scan(&user.ID, &user.Username, &user.PasswordHash, &user.SellingPoint,
			&user.Symbol, &user.Role, &user.CreatedAt, &user.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%w: scanning user: %v", ErrDatabaseError, err)
		}
		users = append(users, user)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating users: %v", ErrDatabaseError, err)
	}
	return users, nil
}

func (r *userRepository) GetUserByUsername(username string) (*models.User, error) {
	var user models.User
	err := r.db.QueryRow(
		`SELECT id, username, password_hash, selling_point, symbol, role, created_at, updated_at
		 FROM users WHERE username = $1`, username,
	).Scan(&user.ID, &user.Username, &user.PasswordHash, &user.SellingPoint,
		&user.Symbol, &user.Role, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting user by username: %v", ErrDatabaseError, err)
	}
	return &user, nil
}
