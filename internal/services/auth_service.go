package services

import (
	"context"
	"strings"
	"time"

	"auctionhouse/config"
	"auctionhouse/internal/domain/user"
	"auctionhouse/internal/repository"
	auction_errors "auctionhouse/pkg/errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// AuthService issues and verifies the bearer tokens both the HTTP layer and
// the websocket handshake consume.
type AuthService struct {
	users     repository.UserRepository
	jwtSecret []byte
	accessTTL time.Duration
}

func NewAuthService(users repository.UserRepository, cfg *config.Config) *AuthService {
	return &AuthService{
		users:     users,
		jwtSecret: []byte(cfg.JWTSecret),
		accessTTL: time.Duration(cfg.JWTExpiryMin) * time.Minute,
	}
}

type RegisterInput struct {
	Email       string
	Username    string
	Password    string
	DisplayName string
}

type LoginInput struct {
	Identity string
	Password string
}

type AuthResponse struct {
	AccessToken string   `json:"access_token"`
	ExpiresIn   int64    `json:"expires_in"`
	User        UserInfo `json:"user"`
}

type UserInfo struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Username    string `json:"username,omitempty"`
	Email       string `json:"email,omitempty"`
}

type AccessClaims struct {
	UserID string `json:"sub"`
	Email  string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (AuthResponse, error) {
	if in.Email == "" || in.Username == "" || len(in.Password) < 8 || in.DisplayName == "" {
		return AuthResponse{}, auction_errors.ErrInvalidInput
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return AuthResponse{}, err
	}

	newUser := &user.User{
		ID:           uuid.New(),
		Email:        strings.ToLower(in.Email),
		Username:     in.Username,
		PasswordHash: string(hash),
		DisplayName:  in.DisplayName,
		CreatedAt:    time.Now(),
	}
	if err := s.users.Create(ctx, newUser); err != nil {
		return AuthResponse{}, err
	}
	return s.respond(*newUser)
}

func (s *AuthService) Login(ctx context.Context, in LoginInput) (AuthResponse, error) {
	var u user.User
	var err error
	if strings.Contains(in.Identity, "@") {
		u, err = s.users.GetByEmail(ctx, strings.ToLower(in.Identity))
	} else {
		u, err = s.users.GetByUsername(ctx, in.Identity)
	}
	if err != nil {
		return AuthResponse{}, auction_errors.ErrUnauthorized
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(in.Password)) != nil {
		return AuthResponse{}, auction_errors.ErrUnauthorized
	}
	return s.respond(u)
}

func (s *AuthService) respond(u user.User) (AuthResponse, error) {
	token, err := s.GenerateAccessToken(u)
	if err != nil {
		return AuthResponse{}, err
	}
	return AuthResponse{
		AccessToken: token,
		ExpiresIn:   int64(s.accessTTL.Seconds()),
		User: UserInfo{
			ID:          u.ID.String(),
			DisplayName: u.DisplayName,
			Username:    u.Username,
			Email:       u.Email,
		},
	}, nil
}

func (s *AuthService) GenerateAccessToken(u user.User) (string, error) {
	now := time.Now()
	claims := AccessClaims{
		UserID: u.ID.String(),
		Email:  u.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
}

// ParseAccessToken verifies a bearer token and returns its claims.
func (s *AuthService) ParseAccessToken(tokenString string) (*AccessClaims, error) {
	if tokenString == "" {
		return nil, auction_errors.ErrUnauthorized
	}
	token, err := jwt.ParseWithClaims(tokenString, &AccessClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, auction_errors.ErrUnauthorized
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return nil, auction_errors.ErrUnauthorized
	}
	claims, ok := token.Claims.(*AccessClaims)
	if !ok {
		return nil, auction_errors.ErrUnauthorized
	}
	return claims, nil
}

type userCtxKey struct{}

// WithUserContext stores the authenticated user id on the request context.
func WithUserContext(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, userCtxKey{}, userID)
}

// UserIDFromContext retrieves the authenticated user id, if any.
func UserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(userCtxKey{}).(uuid.UUID)
	return id, ok
}
