package auth

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/buyerdesk/backend/domain"
	"github.com/buyerdesk/backend/repository"
)

// Demo identity defaults. The demo login is the only way in: anyone who
// hits it gets this user unless they ask for a different one.
const (
	DefaultUserID = "demo-user-1"
	DefaultName   = "Demo User"
	DefaultEmail  = "demo@example.com"
)

type UseCase struct {
	users      repository.UserRepository
	sessions   repository.SessionRepository
	jwtSecret  string
	jwtIssuer  string
	sessionTTL time.Duration
	logger     *zap.Logger
}

func New(users repository.UserRepository, sessions repository.SessionRepository, jwtSecret, jwtIssuer string, sessionTTL time.Duration, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	if sessionTTL <= 0 {
		sessionTTL = 24 * time.Hour
	}
	return &UseCase{
		users:      users,
		sessions:   sessions,
		jwtSecret:  jwtSecret,
		jwtIssuer:  jwtIssuer,
		sessionTTL: sessionTTL,
		logger:     logger,
	}
}

// LoginResult is what a successful demo login hands back: the signed bearer
// token plus the identity it encodes.
type LoginResult struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      *domain.User `json:"user"`
}

// DemoLogin upserts the requested identity, opens a session and signs a JWT
// for it. Empty fields fall back to the demo defaults so the endpoint works
// with an empty body.
func (uc *UseCase) DemoLogin(ctx context.Context, id, name, email string) (*LoginResult, error) {
	if id == "" {
		id = DefaultUserID
	}
	if name == "" {
		name = DefaultName
	}
	if email == "" {
		email = DefaultEmail
	}

	user := &domain.User{ID: id, Name: name, Email: email}
	if err := uc.users.Upsert(ctx, user); err != nil {
		return nil, err
	}

	now := time.Now()
	session := &domain.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(uc.sessionTTL),
	}
	if err := uc.sessions.Save(ctx, session); err != nil {
		return nil, err
	}

	token, err := uc.signToken(user.ID, session)
	if err != nil {
		return nil, err
	}

	uc.logger.Info("demo login", zap.String("user_id", user.ID), zap.String("session_id", session.ID))
	return &LoginResult{
		Token:     token,
		ExpiresAt: session.ExpiresAt,
		User:      user,
	}, nil
}

// CurrentUser resolves the authenticated caller's profile.
func (uc *UseCase) CurrentUser(ctx context.Context, userID string) (*domain.User, error) {
	if userID == "" {
		return nil, domain.ErrUnauthorized
	}
	return uc.users.GetByID(ctx, userID)
}

// Logout revokes the caller's session. A missing session is not an error.
func (uc *UseCase) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	return uc.sessions.Delete(ctx, sessionID)
}

// ValidateSession checks that the session referenced by a token is still
// live. Expired sessions are deleted eagerly.
func (uc *UseCase) ValidateSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	session, err := uc.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.IsExpired(time.Now()) {
		_ = uc.sessions.Delete(ctx, sessionID)
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

func (uc *UseCase) signToken(userID string, session *domain.Session) (string, error) {
	claims := jwt.MapClaims{
		"user_id":    userID,
		"session_id": session.ID,
		"iss":        uc.jwtIssuer,
		"iat":        session.CreatedAt.Unix(),
		"exp":        session.ExpiresAt.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(uc.jwtSecret))
	if err != nil {
		return "", domain.WrapError(domain.ErrCodeInternal, "failed to sign token", err)
	}
	return signed, nil
}
