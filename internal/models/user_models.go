package models

import "time"

// User is one entry of the selling-point directory. Besides credentials it
// carries the human-readable selling point name and its short symbol code;
// the undo engine resolves restore symbols through this mapping.
type User struct {
	ID           int64     `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	PasswordHash string    `json:"-" db:"password_hash"`
	SellingPoint string    `json:"sellingPoint" db:"selling_point"`
	Symbol       string    `json:"symbol" db:"symbol"`
	Role         string    `json:"role" db:"role"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// CreateUserRequest is the payload for registering a directory entry.
type CreateUserRequest struct {
	Username     string `json:"username" binding:"required"`
	Password     string `json:"password" binding:"required,min=8"`
	SellingPoint string `json:"sellingPoint" binding:"required"`
	Symbol       string `json:"symbol" binding:"required"`
	Role         string `json:"role"`
}

// LoginRequest is the payload of POST /api/user/login.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse carries the issued access token.
type LoginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
