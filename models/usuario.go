package models

import "github.com/golang-jwt/jwt/v5"

// AuthUser is the identity shape returned by the auth endpoints.
type AuthUser struct {
	ID    string `json:"id"`
	Nome  string `json:"nome"`
	Email string `json:"email"`
}

// AuthClaims is the JWT claim set issued on sign-in and read back by the
// auth middleware.
type AuthClaims struct {
	UserID string `json:"user_id"`
	Nome   string `json:"nome"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// Auth request DTOs.

type SignUpRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=6"`
	DisplayName string `json:"display_name" validate:"required"`
}

type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type ResetPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}
