package middleware

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/valyala/fasthttp"

	"github.com/buyerdesk/backend/domain"
)

const testSecret = "test-secret"

type stubSessionChecker struct {
	sessions map[string]*domain.Session
	checked  []string
}

func (s *stubSessionChecker) ValidateSession(_ context.Context, sessionID string) (*domain.Session, error) {
	s.checked = append(s.checked, sessionID)
	session, ok := s.sessions[sessionID]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

func signedToken(t *testing.T, userID, sessionID string) string {
	t.Helper()
	claims := jwt.MapClaims{
		"user_id":    userID,
		"session_id": sessionID,
		"exp":        time.Now().Add(time.Hour).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func TestJWTAuthForwardsIdentity(t *testing.T) {
	checker := &stubSessionChecker{sessions: map[string]*domain.Session{
		"s-1": {ID: "s-1", UserID: "u-1", ExpiresAt: time.Now().Add(time.Hour)},
	}}

	var gotUser, gotSession string
	next := func(ctx *fasthttp.RequestCtx) {
		gotUser = string(ctx.Request.Header.Peek("X-User-ID"))
		gotSession = string(ctx.Request.Header.Peek("X-Session-ID"))
	}
	wrapped := JWTAuth(testSecret, checker, nil)(next)

	ctx := &fasthttp.RequestCtx{}
	ctx.Request.Header.Set("Authorization", "Bearer "+signedToken(t, "u-1", "s-1"))
	// Spoofed identity headers must be stripped, not trusted.
	ctx.Request.Header.Set("X-User-ID", "u-evil")

	wrapped(ctx)

	if gotUser != "u-1" || gotSession != "s-1" {
		t.Fatalf("identity not forwarded: user=%q session=%q", gotUser, gotSession)
	}
	if len(checker.checked) != 1 || checker.checked[0] != "s-1" {
		t.Fatalf("session not consulted: %v", checker.checked)
	}
}

func TestJWTAuthRejectsRevokedSession(t *testing.T) {
	// No sessions stored: the token is still cryptographically valid but its
	// session was deleted at logout.
	checker := &stubSessionChecker{sessions: map[string]*domain.Session{}}

	called := false
	wrapped := JWTAuth(testSecret, checker, nil)(func(*fasthttp.RequestCtx) { called = true })

	ctx := &fasthttp.RequestCtx{}
	ctx.Request.Header.Set("Authorization", "Bearer "+signedToken(t, "u-1", "s-gone"))

	wrapped(ctx)

	if called {
		t.Fatalf("revoked session must not reach the handler")
	}
	if ctx.Response.StatusCode() != fasthttp.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", ctx.Response.StatusCode())
	}
}

func TestJWTAuthRejectsMissingToken(t *testing.T) {
	called := false
	wrapped := JWTAuth(testSecret, nil, nil)(func(*fasthttp.RequestCtx) { called = true })

	ctx := &fasthttp.RequestCtx{}
	wrapped(ctx)

	if called || ctx.Response.StatusCode() != fasthttp.StatusUnauthorized {
		t.Fatalf("expected 401 without a token, got %d (called=%v)", ctx.Response.StatusCode(), called)
	}
}

func TestJWTAuthRejectsWrongSecret(t *testing.T) {
	called := false
	wrapped := JWTAuth("other-secret", nil, nil)(func(*fasthttp.RequestCtx) { called = true })

	ctx := &fasthttp.RequestCtx{}
	ctx.Request.Header.Set("Authorization", "Bearer "+signedToken(t, "u-1", "s-1"))
	wrapped(ctx)

	if called || ctx.Response.StatusCode() != fasthttp.StatusUnauthorized {
		t.Fatalf("expected 401 for a forged token, got %d (called=%v)", ctx.Response.StatusCode(), called)
	}
}
