package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/openhaus/realtycrm/pkg/logger"
	"github.com/openhaus/realtycrm/pkg/models"
)

var (
	// ErrEmailTaken is returned when registering an existing email.
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidCredentials is returned on a failed login. The message is
	// identical for wrong email and wrong password.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrUserNotFound is returned when a user id does not exist.
	ErrUserNotFound = errors.New("user not found")
)

const userColumns = "id, email, password_hash, name, created_at, updated_at"

// Service handles account registration and login.
type Service struct {
	db              *sqlx.DB
	secret          string
	expirationHours int
	blacklist       *TokenBlacklist
	log             logger.Logger
}

// NewService creates an auth service.
func NewService(db *sqlx.DB, secret string, expirationHours int, blacklist *TokenBlacklist, log logger.Logger) *Service {
	return &Service{db: db, secret: secret, expirationHours: expirationHours, blacklist: blacklist, log: log}
}

// Register creates an account and issues its first token.
func (s *Service) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error) {
	hash, err := HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	var user models.User
	err = s.db.GetContext(ctx, &user, `
		INSERT INTO users (email, password_hash, name)
		VALUES ($1, $2, $3)
		RETURNING `+userColumns,
		strings.ToLower(strings.TrimSpace(req.Email)), hash, req.Name,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	token, err := GenerateJWT(user.ID, user.Email, s.secret, s.expirationHours)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	s.log.Info("user registered", "user_id", user.ID)
	return &models.AuthResponse{Token: token, User: user}, nil
}

// Login verifies credentials and issues a token.
func (s *Service) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	var user models.User
	err := s.db.GetContext(ctx, &user,
		"SELECT "+userColumns+" FROM users WHERE email = $1",
		strings.ToLower(strings.TrimSpace(req.Email)),
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if !CheckPassword(user.PasswordHash, req.Password) {
		return nil, ErrInvalidCredentials
	}

	token, err := GenerateJWT(user.ID, user.Email, s.secret, s.expirationHours)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}
	return &models.AuthResponse{Token: token, User: user}, nil
}

// Logout revokes the presented token for its remaining lifetime.
func (s *Service) Logout(ctx context.Context, token string) error {
	if s.blacklist == nil {
		return nil
	}
	claims, err := ValidateJWT(token, s.secret)
	if err != nil {
		// Invalid tokens cannot be used anyway.
		return nil
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	return s.blacklist.Blacklist(ctx, token, ttl)
}

// GetUser fetches an account by id.
func (s *Service) GetUser(ctx context.Context, id int) (*models.User, error) {
	var user models.User
	err := s.db.GetContext(ctx, &user, "SELECT "+userColumns+" FROM users WHERE id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return &user, nil
}
