package repository

import (
	"context"
	"time"

	supa "github.com/nedpals/supabase-go"

	"github.com/noah-isme/unitrack-api/internal/models"
)

// SupabaseAuthRepository adapts the backend identity API to domain types.
type SupabaseAuthRepository struct {
	client  *supa.Client
	anonKey string
	now     func() time.Time
}

// NewSupabaseAuthRepository constructs the identity adapter. anonKey is sent
// as the bearer on calls that have no user token yet.
func NewSupabaseAuthRepository(client *supa.Client, anonKey string) *SupabaseAuthRepository {
	return &SupabaseAuthRepository{client: client, anonKey: anonKey, now: time.Now}
}

// SignUp registers a new account.
func (r *SupabaseAuthRepository) SignUp(ctx context.Context, email, password string) (*models.UserInfo, error) {
	user, err := r.client.Auth.SignUp(ctx, supa.UserCredentials{Email: email, Password: password})
	if err != nil {
		return nil, err
	}
	info := toUserInfo(user)
	if info.Email == "" {
		info.Email = email
	}
	return &info, nil
}

// SignIn exchanges credentials for a session.
func (r *SupabaseAuthRepository) SignIn(ctx context.Context, email, password string) (*models.Session, error) {
	details, err := r.client.Auth.SignIn(ctx, supa.UserCredentials{Email: email, Password: password})
	if err != nil {
		return nil, err
	}
	return r.toSession(details), nil
}

// Refresh exchanges a refresh token for a new session.
func (r *SupabaseAuthRepository) Refresh(ctx context.Context, accessToken, refreshToken string) (*models.Session, error) {
	if accessToken == "" {
		accessToken = r.anonKey
	}
	details, err := r.client.Auth.RefreshUser(ctx, accessToken, refreshToken)
	if err != nil {
		return nil, err
	}
	return r.toSession(details), nil
}

// User resolves the account behind an access token.
func (r *SupabaseAuthRepository) User(ctx context.Context, accessToken string) (*models.UserInfo, error) {
	user, err := r.client.Auth.User(ctx, accessToken)
	if err != nil {
		return nil, err
	}
	info := toUserInfo(user)
	return &info, nil
}

// SignOut revokes the session behind an access token.
func (r *SupabaseAuthRepository) SignOut(ctx context.Context, accessToken string) error {
	return r.client.Auth.SignOut(ctx, accessToken)
}

func (r *SupabaseAuthRepository) toSession(details *supa.AuthenticatedDetails) *models.Session {
	return &models.Session{
		AccessToken:  details.AccessToken,
		RefreshToken: details.RefreshToken,
		TokenType:    details.TokenType,
		ExpiresIn:    details.ExpiresIn,
		User:         toUserInfo(&details.User),
		IssuedAt:     r.now().UTC(),
	}
}

func toUserInfo(user *supa.User) models.UserInfo {
	if user == nil {
		return models.UserInfo{}
	}
	info := models.UserInfo{ID: user.ID, Email: user.Email}
	if !user.CreatedAt.IsZero() {
		created := user.CreatedAt.UTC()
		info.CreatedAt = &created
	}
	return info
}
