package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/saralgov/licence-backend/internal/model"
	"github.com/saralgov/licence-backend/internal/repository"
)

// ErrEmailTaken is returned when a signup email is already registered.
var ErrEmailTaken = errors.New("email already registered")

// UserService handles citizen account business logic.
type UserService struct {
	userRepo *repository.UserRepository
	auth     *AuthService
}

// NewUserService creates a new UserService.
func NewUserService(userRepo *repository.UserRepository, auth *AuthService) *UserService {
	return &UserService{userRepo: userRepo, auth: auth}
}

// SignUp registers a new citizen account.
func (s *UserService) SignUp(ctx context.Context, req *model.SignUpRequest) (*model.User, error) {
	hash, err := s.auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	language := req.Language
	if language == "" {
		language = model.LanguageEnglish
	}

	user := &model.User{
		Email:        req.Email,
		FullName:     req.FullName,
		PasswordHash: hash,
		Language:     language,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	return user, nil
}

// Authenticate verifies credentials and returns the user on success.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := s.auth.CheckPassword(user.PasswordHash, password); err != nil {
		return nil, err
	}
	return user, nil
}

// GetProfile fetches a citizen's profile by ID.
func (s *UserService) GetProfile(ctx context.Context, userID uuid.UUID) (*model.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

// UpdateProfile applies a partial profile update and returns the fresh row.
func (s *UserService) UpdateProfile(ctx context.Context, userID uuid.UUID, req *model.UpdateProfileRequest) (*model.User, error) {
	if err := s.userRepo.UpdateProfile(ctx, userID, req.FullName, req.Language); err != nil {
		return nil, err
	}
	return s.userRepo.GetByID(ctx, userID)
}
