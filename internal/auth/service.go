package auth

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"cquiz-service/internal/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 6

// User is a locally registered account.
type User struct {
	UID          string
	Email        string
	DisplayName  string
	PasswordHash string
	CreatedAt    time.Time
}

// UserStore persists accounts.
type UserStore interface {
	CreateUser(ctx context.Context, user User) error
	GetUserByEmail(ctx context.Context, email string) (User, error)
}

// Service signs users up and in and issues the bearer tokens that carry
// their identity.
type Service struct {
	users    UserStore
	secret   []byte
	tokenTTL time.Duration
	hashCost int
	now      func() time.Time
}

type ServiceOption func(*Service)

// WithHashCost lowers the bcrypt cost, for tests.
func WithHashCost(cost int) ServiceOption {
	return func(s *Service) { s.hashCost = cost }
}

func WithNow(now func() time.Time) ServiceOption {
	return func(s *Service) { s.now = now }
}

func NewService(users UserStore, secret string, tokenTTL time.Duration, opts ...ServiceOption) *Service {
	s := &Service{
		users:    users,
		secret:   []byte(secret),
		tokenTTL: tokenTTL,
		hashCost: bcrypt.DefaultCost,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SignUp registers a new account.
func (s *Service) SignUp(ctx context.Context, email, password, displayName string) (domain.Identity, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return domain.Identity{}, err
	}
	if len(password) < minPasswordLength {
		return domain.Identity{}, newError(CodeWeakPassword)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return domain.Identity{}, err
	}

	user := User{
		UID:          uuid.NewString(),
		Email:        email,
		DisplayName:  strings.TrimSpace(displayName),
		PasswordHash: string(hash),
		CreatedAt:    s.now().UTC(),
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, ErrUserExists) {
			return domain.Identity{}, newError(CodeEmailInUse)
		}
		return domain.Identity{}, domain.NewStoreError("create user", err)
	}
	return identityOf(user), nil
}

// SignIn checks credentials.
func (s *Service) SignIn(ctx context.Context, email, password string) (domain.Identity, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return domain.Identity{}, err
	}
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return domain.Identity{}, newError(CodeUserNotFound)
		}
		return domain.Identity{}, domain.NewStoreError("load user", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return domain.Identity{}, newError(CodeWrongPassword)
	}
	return identityOf(user), nil
}

type claims struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// IssueToken signs an HS256 bearer token for who.
func (s *Service) IssueToken(who domain.Identity) (string, error) {
	now := s.now()
	c := &claims{
		Email: who.Email,
		Name:  who.DisplayName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   who.UID,
			Issuer:    "cquiz",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.secret)
}

// ParseToken validates a bearer token and returns the identity it carries.
func (s *Service) ParseToken(raw string) (domain.Identity, error) {
	c := &claims{}
	token, err := jwt.ParseWithClaims(raw, c, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil || !token.Valid || c.Subject == "" || c.Email == "" {
		return domain.Identity{}, newError(CodeInvalidToken)
	}
	return domain.Identity{UID: c.Subject, Email: c.Email, DisplayName: c.Name}, nil
}

func normalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", newError(CodeInvalidEmail)
	}
	return email, nil
}

func identityOf(u User) domain.Identity {
	return domain.Identity{UID: u.UID, Email: u.Email, DisplayName: u.DisplayName}
}
