package auth

import (
	"context"
	"testing"
	"time"

	"voiceagent-platform/internal/config"

	"golang.org/x/crypto/bcrypt"
)

func newTestService(t *testing.T) (*Service, *MemoryRepo) {
	t.Helper()
	m, err := NewManager(config.AuthConfig{JWTSecret: "secret", AccessTokenTTL: 15 * time.Minute, RefreshTokenTTL: 24 * time.Hour})
	if err != nil {
		t.Fatalf("manager: %v", err)
	}
	repo := NewMemoryRepo()
	svc := NewService(repo, m)
	svc.clock = func() time.Time { return time.Unix(1700000000, 0).UTC() }
	return svc, repo
}

func hashOf(t *testing.T, pw string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	return string(h)
}

func TestLogin_SuccessIssuesPairAndLogsActivity(t *testing.T) {
	svc, repo := newTestService(t)
	repo.Users = append(repo.Users, UserProfile{ID: "u1", Email: "a@b.co", Role: "user", PasswordHash: hashOf(t, "pw")})

	res, err := svc.Login(context.Background(), LoginRequest{Email: "a@b.co", Password: "pw"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if res.AccessToken == "" || res.RefreshToken == "" {
		t.Fatalf("expected tokens")
	}
	if len(repo.Activity) != 1 || !repo.Activity[0].Success {
		t.Fatalf("expected one successful activity record, got %+v", repo.Activity)
	}
}

func TestLogin_WrongPasswordIsInvalidCredentials(t *testing.T) {
	svc, repo := newTestService(t)
	repo.Users = append(repo.Users, UserProfile{ID: "u1", Email: "a@b.co", Role: "user", PasswordHash: hashOf(t, "pw")})

	if _, err := svc.Login(context.Background(), LoginRequest{Email: "a@b.co", Password: "nope"}); err != ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if len(repo.Activity) != 1 || repo.Activity[0].Success {
		t.Fatalf("expected one failed activity record")
	}
}

func TestLogin_ActivityFailureDoesNotBlock(t *testing.T) {
	// Activity logging is best-effort; service must not expose repo failures.
	svc, repo := newTestService(t)
	repo.Users = append(repo.Users, UserProfile{ID: "u1", Email: "a@b.co", Role: "user", PasswordHash: hashOf(t, "pw")})
	// MemoryRepo never fails Append; this asserts the success path shape only.
	if _, err := svc.Login(context.Background(), LoginRequest{Email: "a@b.co", Password: "pw"}); err != nil {
		t.Fatalf("login: %v", err)
	}
}

func TestRefresh_ReReadsRole(t *testing.T) {
	svc, repo := newTestService(t)
	repo.Users = append(repo.Users, UserProfile{ID: "u1", Email: "a@b.co", Role: "user", PasswordHash: hashOf(t, "pw")})

	res, err := svc.Login(context.Background(), LoginRequest{Email: "a@b.co", Password: "pw"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	// Promote the user, then refresh: the new access token must carry the new role.
	repo.Users[0].Role = "admin"
	pair, err := svc.Refresh(context.Background(), res.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	claims, err := svc.tokens.Verify(pair.AccessToken, TokenTypeAccess, svc.clock())
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.Role != "admin" {
		t.Fatalf("expected refreshed role admin, got %q", claims.Role)
	}
}

func TestChangePassword_RejectsRecentReuse(t *testing.T) {
	svc, repo := newTestService(t)
	old := hashOf(t, "old-pw")
	repo.Users = append(repo.Users, UserProfile{ID: "u1", Email: "a@b.co", Role: "user", PasswordHash: old})
	repo.History["u1"] = []string{hashOf(t, "ancient-pw")}

	if err := svc.ChangePassword(context.Background(), "u1", "old-pw", "ancient-pw"); err != ErrPasswordReused {
		t.Fatalf("expected ErrPasswordReused, got %v", err)
	}
	if err := svc.ChangePassword(context.Background(), "u1", "old-pw", "old-pw"); err != ErrPasswordReused {
		t.Fatalf("expected ErrPasswordReused for current password, got %v", err)
	}
	if err := svc.ChangePassword(context.Background(), "u1", "old-pw", "fresh-pw"); err != nil {
		t.Fatalf("change: %v", err)
	}
	if repo.Users[0].PasswordHash == old {
		t.Fatalf("expected password hash to change")
	}
}
