package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"learnhub-quiz-service/internal/domain"
)

// DefaultAutoLoginDuration is how long a sign-in keeps auto-login valid.
const DefaultAutoLoginDuration = 24 * time.Hour

// IdentityProvider is the authentication backend.
// GetSession returns (nil, nil) when the token carries no live session.
type IdentityProvider interface {
	SignUp(ctx context.Context, email, password, fullName string) (domain.AuthSession, error)
	SignIn(ctx context.Context, email, password string) (domain.AuthSession, error)
	SignOut(ctx context.Context, accessToken string) error
	GetSession(ctx context.Context, accessToken string) (*domain.AuthSession, error)
	OnSessionChange(fn func(domain.SessionEvent, domain.AuthUser)) (unsubscribe func())
}

// AuthService wraps the identity provider and keeps the auto-login record.
type AuthService struct {
	provider    IdentityProvider
	store       KeyValueStore
	now         func() time.Time
	autoLogin   time.Duration
	unsubscribe func()
}

func NewAuthService(provider IdentityProvider, store KeyValueStore, autoLogin time.Duration) *AuthService {
	return NewAuthServiceWithClock(provider, store, autoLogin, time.Now)
}

// NewAuthServiceWithClock allows deterministic expiry checks in tests.
func NewAuthServiceWithClock(provider IdentityProvider, store KeyValueStore, autoLogin time.Duration, now func() time.Time) *AuthService {
	if autoLogin <= 0 {
		autoLogin = DefaultAutoLoginDuration
	}
	a := &AuthService{provider: provider, store: store, now: now, autoLogin: autoLogin}
	a.unsubscribe = provider.OnSessionChange(func(event domain.SessionEvent, user domain.AuthUser) {
		log.Info().Str("event", string(event)).Str("user_id", user.ID).Msg("auth state changed")
	})
	return a
}

// Close detaches from provider notifications.
func (a *AuthService) Close() {
	if a.unsubscribe != nil {
		a.unsubscribe()
	}
}

func (a *AuthService) SignUp(ctx context.Context, email, password, fullName string) (domain.AuthSession, error) {
	session, err := a.provider.SignUp(ctx, email, password, fullName)
	if err != nil {
		return domain.AuthSession{}, err
	}
	a.saveAutoLogin(ctx, session.User)
	return session, nil
}

func (a *AuthService) SignIn(ctx context.Context, email, password string) (domain.AuthSession, error) {
	session, err := a.provider.SignIn(ctx, email, password)
	if err != nil {
		return domain.AuthSession{}, err
	}
	a.saveAutoLogin(ctx, session.User)
	return session, nil
}

// SignOut revokes the token and forgets the auto-login record.
func (a *AuthService) SignOut(ctx context.Context, accessToken string) error {
	session, err := a.provider.GetSession(ctx, accessToken)
	if err != nil {
		return err
	}
	if session == nil {
		return domain.ErrUnauthenticated
	}
	if err := a.provider.SignOut(ctx, accessToken); err != nil {
		return err
	}
	a.clearAutoLogin(ctx, session.User.ID)
	return nil
}

// Authenticate resolves a bearer token to its user.
func (a *AuthService) Authenticate(ctx context.Context, accessToken string) (domain.AuthUser, error) {
	session, err := a.provider.GetSession(ctx, accessToken)
	if err != nil {
		return domain.AuthUser{}, err
	}
	if session == nil {
		return domain.AuthUser{}, domain.ErrUnauthenticated
	}
	return session.User, nil
}

// CheckAutoLogin reports whether the returning user may skip sign-in. Expired
// records and records of another user are cleared; provider errors and missing
// sessions keep the record since they may be transient.
func (a *AuthService) CheckAutoLogin(ctx context.Context, userID, accessToken string) (*domain.AuthSession, bool) {
	record, ok, err := a.AutoLoginRecord(ctx, userID)
	if err != nil {
		log.Warn().Err(err).Str("user_id", userID).Msg("auto-login check failed")
		return nil, false
	}
	if !ok {
		return nil, false
	}
	if !IsAutoLoginValid(record, a.autoLogin, a.now()) {
		log.Info().Str("user_id", userID).Time("expired_at", record.ExpiresAt).Msg("auto-login expired")
		a.clearAutoLogin(ctx, userID)
		return nil, false
	}

	session, err := a.provider.GetSession(ctx, accessToken)
	if err != nil {
		log.Warn().Err(err).Str("user_id", userID).Msg("auto-login session lookup failed")
		return nil, false
	}
	if session == nil {
		return nil, false
	}
	if session.User.ID != record.UserID {
		log.Warn().Str("expected", record.UserID).Str("actual", session.User.ID).Msg("auto-login user mismatch")
		a.clearAutoLogin(ctx, userID)
		return nil, false
	}
	return session, true
}

// AutoLoginRecord loads the stored record for the user.
func (a *AuthService) AutoLoginRecord(ctx context.Context, userID string) (domain.AutoLoginRecord, bool, error) {
	raw, err := a.store.Get(ctx, autoLoginKey(userID))
	if errors.Is(err, domain.ErrKeyNotFound) {
		return domain.AutoLoginRecord{}, false, nil
	}
	if err != nil {
		return domain.AutoLoginRecord{}, false, err
	}
	var record domain.AutoLoginRecord
	if err := json.Unmarshal(raw, &record); err != nil {
		return domain.AutoLoginRecord{}, false, fmt.Errorf("decode auto-login record: %w", err)
	}
	return record, true, nil
}

// IsAutoLoginValid requires the record to be younger than the window and not past its expiry.
func IsAutoLoginValid(record domain.AutoLoginRecord, window time.Duration, now time.Time) bool {
	withinWindow := now.Sub(record.Timestamp) < window
	notExpired := now.Before(record.ExpiresAt)
	return withinWindow && notExpired
}

func (a *AuthService) saveAutoLogin(ctx context.Context, user domain.AuthUser) {
	now := a.now()
	raw, err := json.Marshal(domain.AutoLoginRecord{
		UserID:    user.ID,
		Email:     user.Email,
		Timestamp: now,
		ExpiresAt: now.Add(a.autoLogin),
	})
	if err == nil {
		err = a.store.Set(ctx, autoLoginKey(user.ID), raw, 0)
	}
	if err != nil {
		log.Error().Err(err).Str("user_id", user.ID).Msg("failed to save auto-login data")
	}
}

func (a *AuthService) clearAutoLogin(ctx context.Context, userID string) {
	if err := a.store.Delete(ctx, autoLoginKey(userID)); err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("failed to clear auto-login data")
	}
}

func autoLoginKey(userID string) string {
	return "autologin:" + userID
}
