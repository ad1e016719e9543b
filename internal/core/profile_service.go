package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned when an email/password pair does not
// match a stored account. It deliberately does not distinguish "no such
// user" from "wrong password".
var ErrInvalidCredentials = errors.New("invalid email or password")

// ProfileService manages accounts, sign-in, and role assignment.
type ProfileService interface {
	// CreateUser registers a new account. The companion profile is not
	// created here; it appears on the first successful sign-in.
	CreateUser(ctx context.Context, email, password string) (*User, error)

	// Authenticate verifies an email/password pair and returns the account.
	Authenticate(ctx context.Context, email, password string) (*User, error)

	// EnsureProfile returns the user's profile, creating it on first
	// sign-in with an empty role and a name derived from the email's
	// local part.
	EnsureProfile(ctx context.Context, user *User) (*Profile, error)

	GetProfile(ctx context.Context, userID int) (*Profile, error)
	ListProfiles(ctx context.Context) ([]Profile, error)

	// SetRole assigns a role to a profile. Only known roles and the empty
	// string (no privileges) are accepted.
	SetRole(ctx context.Context, userID int, role string) (*Profile, error)

	// DeleteUser removes the account and its profile.
	DeleteUser(ctx context.Context, userID int) error
}

type profileService struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewProfileService constructs a ProfileService backed by PostgreSQL.
func NewProfileService(pool *pgxpool.Pool, logger *zap.Logger) ProfileService {
	return &profileService{pool: pool, logger: logger}
}

func (s *profileService) CreateUser(ctx context.Context, email, password string) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, validationf("a valid email address is required")
	}
	if len(password) < 8 {
		return nil, validationf("password must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	var user User
	err = s.pool.QueryRow(ctx, `
		INSERT INTO users (email, password_hash)
		VALUES ($1, $2)
		ON CONFLICT (email) DO NOTHING
		RETURNING id, email, created_at
	`, email, string(hash)).Scan(&user.ID, &user.Email, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, validationf("an account with this email already exists")
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("user created", zap.Int("user_id", user.ID), zap.String("email", user.Email))
	}
	return &user, nil
}

func (s *profileService) Authenticate(ctx context.Context, email, password string) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var user User
	err := s.pool.QueryRow(ctx, `
		SELECT id, email, password_hash, created_at FROM users WHERE email = $1
	`, email).Scan(&user.ID, &user.Email, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}

func (s *profileService) EnsureProfile(ctx context.Context, user *User) (*Profile, error) {
	profile, err := s.GetProfile(ctx, user.ID)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	name := user.Email
	if at := strings.Index(name, "@"); at > 0 {
		name = name[:at]
	}

	var p Profile
	err = s.pool.QueryRow(ctx, `
		INSERT INTO profiles (user_id, email, name, role)
		VALUES ($1, $2, $3, '')
		ON CONFLICT (user_id) DO UPDATE SET updated_at = profiles.updated_at
		RETURNING user_id, email, name, role, created_at, updated_at
	`, user.ID, user.Email, name).Scan(&p.UserID, &p.Email, &p.Name, &p.Role, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("profile created on first sign-in",
			zap.Int("user_id", p.UserID), zap.String("name", p.Name))
	}
	return &p, nil
}

func (s *profileService) GetProfile(ctx context.Context, userID int) (*Profile, error) {
	var p Profile
	err := s.pool.QueryRow(ctx, `
		SELECT user_id, email, name, role, created_at, updated_at
		FROM profiles WHERE user_id = $1
	`, userID).Scan(&p.UserID, &p.Email, &p.Name, &p.Role, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("profile %d: %w", userID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch profile %d: %w", userID, err)
	}
	return &p, nil
}

func (s *profileService) ListProfiles(ctx context.Context) ([]Profile, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT user_id, email, name, role, created_at, updated_at
		FROM profiles ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query profiles: %w", err)
	}
	defer rows.Close()

	var profiles []Profile
	for rows.Next() {
		var p Profile
		if err := rows.Scan(&p.UserID, &p.Email, &p.Name, &p.Role, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan profile: %w", err)
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

func (s *profileService) SetRole(ctx context.Context, userID int, role string) (*Profile, error) {
	switch role {
	case RoleOwner, RoleStaff, "":
	default:
		return nil, validationf("unknown role %q", role)
	}

	tag, err := s.pool.Exec(ctx, `
		UPDATE profiles SET role = $1, updated_at = NOW() WHERE user_id = $2
	`, role, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to set role: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, fmt.Errorf("profile %d: %w", userID, ErrNotFound)
	}

	if s.logger != nil {
		s.logger.Info("role assigned", zap.Int("user_id", userID), zap.String("role", role))
	}
	return s.GetProfile(ctx, userID)
}

func (s *profileService) DeleteUser(ctx context.Context, userID int) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM users WHERE id = $1", userID)
	if err != nil {
		return fmt.Errorf("failed to delete user %d: %w", userID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user %d: %w", userID, ErrNotFound)
	}
	return nil
}
