package model

import (
	"time"

	"github.com/google/uuid"
)

// User is a citizen account on the licence portal.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	FullName     string    `json:"full_name"`
	PasswordHash string    `json:"-"`
	Language     string    `json:"language"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// SignUpRequest is the payload for citizen registration.
type SignUpRequest struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	FullName string `json:"full_name" binding:"required,min=2,max=255"`
	Password string `json:"password" binding:"required,min=8,max=72"`
	Language string `json:"language" binding:"omitempty,oneof=en ne"`
}

// LoginRequest is the payload for citizen and admin sign-in.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// UpdateProfileRequest is the payload for editing the own profile.
type UpdateProfileRequest struct {
	FullName string `json:"full_name" binding:"omitempty,min=2,max=255"`
	Language string `json:"language" binding:"omitempty,oneof=en ne"`
}
