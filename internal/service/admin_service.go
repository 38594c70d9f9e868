package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/saralgov/licence-backend/internal/model"
	"github.com/saralgov/licence-backend/internal/repository"
)

// AdminService handles back-office account logic.
type AdminService struct {
	adminRepo *repository.AdminRepository
	auth      *AuthService
}

// NewAdminService creates a new AdminService.
func NewAdminService(adminRepo *repository.AdminRepository, auth *AuthService) *AdminService {
	return &AdminService{adminRepo: adminRepo, auth: auth}
}

// Authenticate verifies admin credentials and returns the admin on success.
func (s *AdminService) Authenticate(ctx context.Context, email, password string) (*model.Admin, error) {
	admin, err := s.adminRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := s.auth.CheckPassword(admin.PasswordHash, password); err != nil {
		return nil, err
	}
	return admin, nil
}

// Create registers a new admin account. Used by the bootstrap CLI.
func (s *AdminService) Create(ctx context.Context, email, name, password string, permissions []string) (*model.Admin, error) {
	hash, err := s.auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	admin := &model.Admin{
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		Permissions:  permissions,
	}
	if err := s.adminRepo.Create(ctx, admin); err != nil {
		return nil, err
	}
	return admin, nil
}
