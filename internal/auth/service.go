package auth

import (
	"context"
	"errors"
	"time"

	"voiceagent-platform/pkg/logger"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	ErrUserDisabled       = errors.New("auth: user disabled")
	ErrPasswordReused     = errors.New("auth: password was used recently")
)

// UserRepository is the persistence contract for auth flows.
//
// RecordLoginActivity maps to the log_login_activity stored procedure and is
// best-effort: callers must never fail a login because activity logging failed.
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (UserProfile, error)
	FindByID(ctx context.Context, id string) (UserProfile, error)
	UserExists(ctx context.Context, email string) (bool, error)
	RecordLoginActivity(ctx context.Context, a LoginActivity) error
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
	ListPasswordHashes(ctx context.Context, userID string, limit int) ([]string, error)
	AppendPasswordHistory(ctx context.Context, userID, passwordHash string, at time.Time) error
}

// UserProfile mirrors the user_profiles row consumed by auth.
type UserProfile struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	FullName     string    `json:"full_name,omitempty"`
	Role         string    `json:"role"`
	PasswordHash string    `json:"-"`
	Disabled     bool      `json:"disabled"`
	CreatedAt    time.Time `json:"created_at"`
}

// LoginActivity records one sign-in attempt.
type LoginActivity struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	IPAddress string    `json:"ip_address,omitempty"`
	UserAgent string    `json:"user_agent,omitempty"`
	Success   bool      `json:"success"`
	CreatedAt time.Time `json:"created_at"`
}

// passwordHistoryDepth is how many previous hashes a new password is checked
// against on change.
const passwordHistoryDepth = 5

// Service implements the credential side of auth: password verification,
// token issuance, refresh, and password rotation with reuse prevention.
type Service struct {
	repo    UserRepository
	tokens  *Manager
	clock   func() time.Time
	hashGen func(password string) (string, error)
}

func NewService(repo UserRepository, tokens *Manager) *Service {
	return &Service{
		repo:   repo,
		tokens: tokens,
		clock:  time.Now,
		hashGen: func(password string) (string, error) {
			b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
			return string(b), err
		},
	}
}

type LoginRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	IPAddress string `json:"-"`
	UserAgent string `json:"-"`
}

type LoginResult struct {
	User         UserProfile `json:"user"`
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
}

func (s *Service) Login(ctx context.Context, req LoginRequest) (LoginResult, error) {
	if req.Email == "" || req.Password == "" {
		return LoginResult{}, ErrInvalidCredentials
	}

	now := s.clock().UTC()
	user, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		s.logActivity(ctx, LoginActivity{Email: req.Email, IPAddress: req.IPAddress, UserAgent: req.UserAgent, CreatedAt: now})
		return LoginResult{}, ErrInvalidCredentials
	}
	if user.Disabled {
		return LoginResult{}, ErrUserDisabled
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.logActivity(ctx, LoginActivity{UserID: user.ID, Email: req.Email, IPAddress: req.IPAddress, UserAgent: req.UserAgent, CreatedAt: now})
		return LoginResult{}, ErrInvalidCredentials
	}

	pair, err := s.tokens.IssuePair(now, user.ID, user.Role)
	if err != nil {
		return LoginResult{}, err
	}

	s.logActivity(ctx, LoginActivity{UserID: user.ID, Email: req.Email, IPAddress: req.IPAddress, UserAgent: req.UserAgent, Success: true, CreatedAt: now})

	return LoginResult{User: user, AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken}, nil
}

// Refresh exchanges a refresh token for a new pair. Role is re-read from the
// profile, not trusted from the old token.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	now := s.clock().UTC()
	claims, err := s.tokens.Verify(refreshToken, TokenTypeRefresh, now)
	if err != nil {
		return TokenPair{}, ErrInvalidCredentials
	}

	user, err := s.repo.FindByID(ctx, claims.UserID)
	if err != nil {
		return TokenPair{}, ErrInvalidCredentials
	}
	if user.Disabled {
		return TokenPair{}, ErrUserDisabled
	}
	return s.tokens.IssuePair(now, user.ID, user.Role)
}

// CheckUserExists backs the pre-signup email check (check_user_exists).
func (s *Service) CheckUserExists(ctx context.Context, email string) (bool, error) {
	if email == "" {
		return false, errors.New("auth: email required")
	}
	return s.repo.UserExists(ctx, email)
}

// ChangePassword rotates a password, refusing any of the last
// passwordHistoryDepth hashes.
func (s *Service) ChangePassword(ctx context.Context, userID, current, next string) error {
	if userID == "" || current == "" || next == "" {
		return ErrInvalidCredentials
	}

	hashes, err := s.repo.ListPasswordHashes(ctx, userID, passwordHistoryDepth)
	if err != nil {
		return err
	}
	if len(hashes) == 0 {
		return ErrInvalidCredentials
	}
	// hashes[0] is the current password hash.
	if err := bcrypt.CompareHashAndPassword([]byte(hashes[0]), []byte(current)); err != nil {
		return ErrInvalidCredentials
	}
	for _, h := range hashes {
		if bcrypt.CompareHashAndPassword([]byte(h), []byte(next)) == nil {
			return ErrPasswordReused
		}
	}

	newHash, err := s.hashGen(next)
	if err != nil {
		return err
	}
	now := s.clock().UTC()
	if err := s.repo.UpdatePassword(ctx, userID, newHash); err != nil {
		return err
	}
	return s.repo.AppendPasswordHistory(ctx, userID, newHash, now)
}

func (s *Service) logActivity(ctx context.Context, a LoginActivity) {
	if err := s.repo.RecordLoginActivity(ctx, a); err != nil {
		logger.From(ctx).Warn("login activity log failed", "err", err)
	}
}
