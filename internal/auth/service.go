package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/hugh/dealflow/internal/apperr"
	"github.com/hugh/dealflow/internal/database/models"
)

var (
	ErrUserNotFound       = apperr.NotFound("User not found")
	ErrUserExists         = apperr.Conflict("User already exists")
	ErrOrganizationExists = apperr.Conflict("Organization name already taken")
	ErrInvalidCredentials = apperr.Unauthenticated("Invalid credentials")
	ErrInactiveUser       = apperr.PermissionDenied("Account is inactive")
)

type Service struct {
	store  Store
	tx     Transactor
	jwt    TokenService
	logger *slog.Logger
}

func NewService(store Store, tx Transactor, jwt TokenService, logger *slog.Logger) *Service {
	return &Service{store: store, tx: tx, jwt: jwt, logger: logger}
}

type RegisterInput struct {
	Email    string
	Password string
	Name     string
	OrgName  string // Optional: defaults to "<name>'s Team"
}

type LoginInput struct {
	Email    string
	Password string
}

type AuthResponse struct {
	Token        string
	User         *models.User
	Organization *models.Organization
}

// Register creates a user, a new organization and the user's owner
// membership in one transaction.
func (s *Service) Register(ctx context.Context, input RegisterInput) (*AuthResponse, error) {
	email := normalizeEmail(input.Email)
	orgName := strings.TrimSpace(input.OrgName)
	if orgName == "" {
		orgName = strings.TrimSpace(input.Name) + "'s Team"
	}

	hash, err := HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:        email,
		PasswordHash: hash,
		Name:         strings.TrimSpace(input.Name),
		IsActive:     true,
	}
	org := &models.Organization{Name: orgName}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.store.FindUserByEmail(ctx, email); err == nil {
			return ErrUserExists
		} else if !errors.Is(err, ErrUserNotFound) {
			return err
		}

		existing, err := s.store.FindOrganizationByName(ctx, orgName)
		if err != nil {
			return err
		}
		if existing != nil {
			return ErrOrganizationExists
		}

		if err := s.store.CreateOrganization(ctx, org); err != nil {
			return err
		}
		if err := s.store.CreateUser(ctx, user); err != nil {
			return err
		}
		return s.store.CreateMembership(ctx, &models.Membership{
			OrganizationID: org.ID,
			UserID:         user.ID,
			Role:           models.RoleOwner,
		})
	})
	if err != nil {
		return nil, err
	}

	token, err := s.jwt.GenerateToken(user.ID, user.Email)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user registered", "user_id", user.ID, "org_id", org.ID)

	return &AuthResponse{
		Token:        token,
		User:         user,
		Organization: org,
	}, nil
}

func (s *Service) Login(ctx context.Context, input LoginInput) (*AuthResponse, error) {
	user, err := s.store.FindUserByEmail(ctx, normalizeEmail(input.Email))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !CheckPassword(input.Password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, ErrInactiveUser
	}

	token, err := s.jwt.GenerateToken(user.ID, user.Email)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{
		Token: token,
		User:  user,
	}, nil
}

func (s *Service) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.store.GetUser(ctx, id)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
