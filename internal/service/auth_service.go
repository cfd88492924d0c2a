package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/campus-ops/grievance-service/internal/auth"
	"github.com/campus-ops/grievance-service/internal/config"
	"github.com/campus-ops/grievance-service/internal/domain"
	"github.com/campus-ops/grievance-service/internal/repository"
	apperrors "github.com/campus-ops/grievance-service/pkg/util"
)

// AuthService coordinates registration and login flows. Students and staff
// share one credential directory; staff standing is checked against the staff
// directory at login, and the issued token carries no role claims.
type AuthService struct {
	users         repository.UserRepository
	staff         repository.StaffRepository
	resets        repository.PasswordResetRepository
	tokenMgr      *auth.TokenManager
	bcryptCost    int
	resetTTL      time.Duration
	masterAdminID string
}

// AuthDependencies encapsulates repo requirements for auth service.
type AuthDependencies struct {
	UserRepo          repository.UserRepository
	StaffRepo         repository.StaffRepository
	PasswordResetRepo repository.PasswordResetRepository
}

// RegisterInput carries the student registration form.
type RegisterInput struct {
	FullName   string
	Email      string
	Phone      string
	RegID      string
	Program    string
	Department string
	Password   string
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	return &AuthService{
		users:         deps.UserRepo,
		staff:         deps.StaffRepo,
		resets:        deps.PasswordResetRepo,
		tokenMgr:      auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
		bcryptCost:    cfg.Auth.BcryptCost,
		resetTTL:      time.Duration(cfg.Auth.PasswordResetTTLMinutes) * time.Minute,
		masterAdminID: cfg.Workflow.MasterAdminID,
	}
}

// RegisterUser creates a new account in the shared directory.
func (s *AuthService) RegisterUser(ctx context.Context, input RegisterInput) (*domain.User, string, time.Time, error) {
	email := strings.TrimSpace(strings.ToLower(input.Email))
	if email == "" || input.Password == "" || strings.TrimSpace(input.FullName) == "" {
		return nil, "", time.Time{}, apperrors.NewValidationError("name, email and password required", nil)
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, "", time.Time{}, apperrors.NewConflict("email already registered", map[string]any{"email": email})
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, "", time.Time{}, apperrors.MapError(err)
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, "", time.Time{}, apperrors.MapError(err)
	}

	user := &domain.User{
		FullName:     strings.TrimSpace(input.FullName),
		Email:        email,
		Phone:        strings.TrimSpace(input.Phone),
		RegID:        strings.TrimSpace(input.RegID),
		Program:      strings.TrimSpace(input.Program),
		Department:   strings.TrimSpace(input.Department),
		PasswordHash: hash,
		Status:       domain.UserStatusActive,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, "", time.Time{}, apperrors.MapError(err)
	}

	token, exp, err := s.tokenMgr.GenerateToken(user.ID, domain.SubjectTypeUser)
	if err != nil {
		return nil, "", time.Time{}, apperrors.MapError(err)
	}
	return user, token, exp, nil
}

// LoginUser authenticates a student.
func (s *AuthService) LoginUser(ctx context.Context, email, password string) (*domain.User, string, time.Time, error) {
	user, err := s.authenticate(ctx, email, password)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	token, exp, err := s.tokenMgr.GenerateToken(user.ID, domain.SubjectTypeUser)
	if err != nil {
		return nil, "", time.Time{}, apperrors.MapError(err)
	}
	return user, token, exp, nil
}

// LoginStaff authenticates against the shared directory and additionally
// requires staff standing: a staff directory record, or the reserved master
// admin identity.
func (s *AuthService) LoginStaff(ctx context.Context, email, password string) (*domain.User, string, time.Time, error) {
	user, err := s.authenticate(ctx, email, password)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	if user.ID != s.masterAdminID {
		if _, err := s.staff.GetByID(ctx, user.ID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, "", time.Time{}, apperrors.NewPermissionDenied("account has no staff standing")
			}
			return nil, "", time.Time{}, apperrors.MapError(err)
		}
	}

	token, exp, err := s.tokenMgr.GenerateToken(user.ID, domain.SubjectTypeStaff)
	if err != nil {
		return nil, "", time.Time{}, apperrors.MapError(err)
	}
	return user, token, exp, nil
}

func (s *AuthService) authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(strings.ToLower(email)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, apperrors.MapError(err)
	}
	if user.Status != domain.UserStatusActive {
		return nil, apperrors.NewUnauthorized("account suspended")
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}
	return user, nil
}

// Logout currently no-ops for stateless JWT approach.
func (s *AuthService) Logout(_ context.Context, _ string) error {
	return nil
}

// RequestPasswordReset persists a reset token for the account holding this
// email. The token is returned for delivery; lookups on unknown emails fail
// with NOT_FOUND.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) (*repository.PasswordResetToken, error) {
	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(strings.ToLower(email)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("account", map[string]any{"email": email})
		}
		return nil, apperrors.MapError(err)
	}

	token := &repository.PasswordResetToken{
		SubjectType: string(domain.SubjectTypeUser),
		SubjectID:   user.ID,
		Token:       uuid.NewString(),
		ExpiresAt:   time.Now().Add(s.resetTTL),
	}
	if err := s.resets.Create(ctx, token); err != nil {
		return nil, apperrors.MapError(err)
	}
	return token, nil
}

// ConfirmPasswordReset validates the reset token and updates the password.
func (s *AuthService) ConfirmPasswordReset(ctx context.Context, tokenStr, newPassword string) error {
	token, err := s.resets.GetByToken(ctx, tokenStr)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewUnauthorized("invalid reset token")
		}
		return apperrors.MapError(err)
	}
	if !token.Usable(time.Now()) {
		return apperrors.NewUnauthorized("reset token expired or used")
	}

	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return apperrors.MapError(err)
	}

	user, err := s.users.GetByID(ctx, token.SubjectID)
	if err != nil {
		return apperrors.MapError(err)
	}
	user.PasswordHash = hash
	if err := s.users.Update(ctx, user); err != nil {
		return apperrors.MapError(err)
	}
	return apperrors.MapError(s.resets.MarkUsed(ctx, token.ID))
}

// ChangePassword verifies the current password before storing the new hash.
func (s *AuthService) ChangePassword(ctx context.Context, subjectID, currentPassword, newPassword string) error {
	user, err := s.users.GetByID(ctx, subjectID)
	if err != nil {
		return apperrors.MapError(err)
	}
	if err := auth.ComparePassword(user.PasswordHash, currentPassword); err != nil {
		return apperrors.NewUnauthorized("invalid credentials")
	}

	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return apperrors.MapError(err)
	}
	user.PasswordHash = hash
	return apperrors.MapError(s.users.Update(ctx, user))
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}
