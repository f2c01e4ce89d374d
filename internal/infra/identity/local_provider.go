package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"learnhub-quiz-service/internal/domain"
)

const minPasswordLength = 6

// LocalProvider is a self-contained identity backend: bcrypt password hashes,
// HS256 access tokens and an in-process revocation list.
type LocalProvider struct {
	secret   []byte
	tokenTTL time.Duration
	now      func() time.Time

	mu        sync.RWMutex
	users     map[string]localUser // by normalized email
	revoked   map[string]time.Time // jti -> token expiry
	listeners map[int]func(domain.SessionEvent, domain.AuthUser)
	nextID    int
}

type localUser struct {
	user domain.AuthUser
	hash []byte
}

type accessClaims struct {
	Email    string `json:"email"`
	FullName string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

func NewLocalProvider(secret string, tokenTTL time.Duration) *LocalProvider {
	return NewLocalProviderWithClock(secret, tokenTTL, time.Now)
}

// NewLocalProviderWithClock is test-only for deterministic token expiry.
func NewLocalProviderWithClock(secret string, tokenTTL time.Duration, now func() time.Time) *LocalProvider {
	if tokenTTL <= 0 {
		tokenTTL = time.Hour
	}
	return &LocalProvider{
		secret:    []byte(secret),
		tokenTTL:  tokenTTL,
		now:       now,
		users:     make(map[string]localUser),
		revoked:   make(map[string]time.Time),
		listeners: make(map[int]func(domain.SessionEvent, domain.AuthUser)),
	}
}

func (p *LocalProvider) SignUp(_ context.Context, email, password, fullName string) (domain.AuthSession, error) {
	key := normalizeEmail(email)
	if key == "" || !strings.Contains(key, "@") {
		return domain.AuthSession{}, fmt.Errorf("%w: invalid email", domain.ErrInvalidCredentials)
	}
	if len(password) < minPasswordLength {
		return domain.AuthSession{}, fmt.Errorf("%w: password must be at least %d characters", domain.ErrInvalidCredentials, minPasswordLength)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return domain.AuthSession{}, fmt.Errorf("hash password: %w", err)
	}

	p.mu.Lock()
	if _, taken := p.users[key]; taken {
		p.mu.Unlock()
		return domain.AuthSession{}, domain.ErrEmailTaken
	}
	user := domain.AuthUser{ID: uuid.NewString(), Email: key, FullName: strings.TrimSpace(fullName)}
	p.users[key] = localUser{user: user, hash: hash}
	p.mu.Unlock()

	return p.issue(user)
}

func (p *LocalProvider) SignIn(_ context.Context, email, password string) (domain.AuthSession, error) {
	p.mu.RLock()
	account, ok := p.users[normalizeEmail(email)]
	p.mu.RUnlock()
	if !ok {
		return domain.AuthSession{}, domain.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(account.hash, []byte(password)); err != nil {
		return domain.AuthSession{}, domain.ErrInvalidCredentials
	}
	return p.issue(account.user)
}

// SignOut revokes the token until it would have expired anyway.
func (p *LocalProvider) SignOut(_ context.Context, accessToken string) error {
	claims, err := p.parse(accessToken)
	if err != nil {
		return domain.ErrUnauthenticated
	}
	p.mu.Lock()
	if _, done := p.revoked[claims.ID]; done {
		p.mu.Unlock()
		return domain.ErrUnauthenticated
	}
	p.revoked[claims.ID] = claims.ExpiresAt.Time
	p.pruneRevokedLocked()
	p.mu.Unlock()

	p.notify(domain.EventSignedOut, userFromClaims(claims))
	return nil
}

// GetSession returns nil without error for unknown, expired or revoked tokens.
func (p *LocalProvider) GetSession(_ context.Context, accessToken string) (*domain.AuthSession, error) {
	if strings.TrimSpace(accessToken) == "" {
		return nil, nil
	}
	claims, err := p.parse(accessToken)
	if err != nil {
		return nil, nil
	}
	p.mu.RLock()
	_, revoked := p.revoked[claims.ID]
	p.mu.RUnlock()
	if revoked {
		return nil, nil
	}
	return &domain.AuthSession{
		User:        userFromClaims(claims),
		AccessToken: accessToken,
		ExpiresAt:   claims.ExpiresAt.Time,
	}, nil
}

func (p *LocalProvider) OnSessionChange(fn func(domain.SessionEvent, domain.AuthUser)) func() {
	p.mu.Lock()
	id := p.nextID
	p.nextID++
	p.listeners[id] = fn
	p.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			p.mu.Lock()
			delete(p.listeners, id)
			p.mu.Unlock()
		})
	}
}

func (p *LocalProvider) issue(user domain.AuthUser) (domain.AuthSession, error) {
	now := p.now()
	expiresAt := now.Add(p.tokenTTL)
	claims := accessClaims{
		Email:    user.Email,
		FullName: user.FullName,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
	if err != nil {
		return domain.AuthSession{}, fmt.Errorf("sign token: %w", err)
	}
	p.notify(domain.EventSignedIn, user)
	return domain.AuthSession{User: user, AccessToken: token, ExpiresAt: expiresAt.Truncate(time.Second)}, nil
}

func (p *LocalProvider) parse(accessToken string) (*accessClaims, error) {
	claims := &accessClaims{}
	token, err := jwt.ParseWithClaims(accessToken, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return p.secret, nil
	}, jwt.WithTimeFunc(p.now), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.Subject == "" || claims.ID == "" {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}

func (p *LocalProvider) notify(event domain.SessionEvent, user domain.AuthUser) {
	p.mu.RLock()
	fns := make([]func(domain.SessionEvent, domain.AuthUser), 0, len(p.listeners))
	for _, fn := range p.listeners {
		fns = append(fns, fn)
	}
	p.mu.RUnlock()
	for _, fn := range fns {
		fn(event, user)
	}
}

func (p *LocalProvider) pruneRevokedLocked() {
	now := p.now()
	for jti, exp := range p.revoked {
		if !exp.After(now) {
			delete(p.revoked, jti)
		}
	}
}

func userFromClaims(c *accessClaims) domain.AuthUser {
	return domain.AuthUser{ID: c.Subject, Email: c.Email, FullName: c.FullName}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
