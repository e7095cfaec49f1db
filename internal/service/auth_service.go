package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	goCache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/noah-isme/unitrack-api/internal/models"
	appErrors "github.com/noah-isme/unitrack-api/pkg/errors"
)

type identityProvider interface {
	SignUp(ctx context.Context, email, password string) (*models.UserInfo, error)
	SignIn(ctx context.Context, email, password string) (*models.Session, error)
	Refresh(ctx context.Context, accessToken, refreshToken string) (*models.Session, error)
	User(ctx context.Context, accessToken string) (*models.UserInfo, error)
	SignOut(ctx context.Context, accessToken string) error
}

// AuthConfig defines configuration for authentication flows.
type AuthConfig struct {
	// JWTSecret enables local HS256 verification of access tokens. When
	// empty every token is resolved through the identity backend.
	JWTSecret       string
	SessionCacheTTL time.Duration
}

// AuthService fronts the hosted identity backend.
type AuthService struct {
	identity  identityProvider
	sessions  *goCache.Cache
	validator *validator.Validate
	logger    *zap.Logger
	config    AuthConfig
}

// NewAuthService constructs an AuthService instance. sessions may be nil to
// disable caching of remotely verified tokens.
func NewAuthService(identity identityProvider, sessions *goCache.Cache, validate *validator.Validate, logger *zap.Logger, config AuthConfig) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if config.SessionCacheTTL <= 0 {
		config.SessionCacheTTL = 30 * time.Second
	}
	return &AuthService{identity: identity, sessions: sessions, validator: validate, logger: logger, config: config}
}

// SignUp registers a new account.
func (s *AuthService) SignUp(ctx context.Context, req models.SignUpRequest) (*models.UserInfo, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid sign-up payload")
	}
	user, err := s.identity.SignUp(ctx, req.Email, req.Password)
	if err != nil {
		return nil, appErrors.Backend(err)
	}
	s.logger.Info("account registered", zap.String("user_id", user.ID))
	return user, nil
}

// Login exchanges credentials for a backend session.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.Session, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid login payload")
	}
	session, err := s.identity.SignIn(ctx, req.Email, req.Password)
	if err != nil {
		backend := appErrors.Backend(err)
		return nil, appErrors.Wrap(err, appErrors.ErrInvalidCredentials.Code, appErrors.ErrInvalidCredentials.Status, backend.Message)
	}
	return session, nil
}

// Refresh issues a new session from a refresh token.
func (s *AuthService) Refresh(ctx context.Context, accessToken string, req models.RefreshTokenRequest) (*models.Session, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid refresh payload")
	}
	session, err := s.identity.Refresh(ctx, accessToken, req.RefreshToken)
	if err != nil {
		backend := appErrors.Backend(err)
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, backend.Message)
	}
	return session, nil
}

// Logout revokes the session and forgets any cached verification of it.
func (s *AuthService) Logout(ctx context.Context, accessToken string) error {
	if accessToken == "" {
		return appErrors.ErrUnauthorized
	}
	if s.sessions != nil {
		s.sessions.Delete(tokenKey(accessToken))
	}
	if err := s.identity.SignOut(ctx, accessToken); err != nil {
		return appErrors.Backend(err)
	}
	return nil
}

// Profile resolves the account behind an access token.
func (s *AuthService) Profile(ctx context.Context, accessToken string) (*models.UserInfo, error) {
	if accessToken == "" {
		return nil, appErrors.ErrUnauthorized
	}
	user, err := s.identity.User(ctx, accessToken)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid or expired session")
	}
	return user, nil
}

// ValidateToken verifies an access token and returns its claims.
func (s *AuthService) ValidateToken(ctx context.Context, tokenString string) (*models.JWTClaims, error) {
	if tokenString == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "missing token")
	}
	if s.config.JWTSecret != "" {
		return s.parseLocal(tokenString)
	}

	key := tokenKey(tokenString)
	if s.sessions != nil {
		if cached, ok := s.sessions.Get(key); ok {
			claims := cached.(models.JWTClaims)
			return &claims, nil
		}
	}
	user, err := s.identity.User(ctx, tokenString)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}
	if user.ID == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}
	claims := models.JWTClaims{
		UserID:           user.ID,
		Email:            user.Email,
		RegisteredClaims: jwt.RegisteredClaims{Subject: user.ID},
	}
	if s.sessions != nil {
		s.sessions.Set(key, claims, s.config.SessionCacheTTL)
	}
	return &claims, nil
}

func (s *AuthService) parseLocal(tokenString string) (*models.JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.JWTSecret), nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}

	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}
	claims.UserID = claims.Subject
	return claims, nil
}

func tokenKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
