package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/proxima/backend/internal/infrastructure/config"
)

// Common errors
var (
	ErrInvalidToken       = errors.New("invalid token")
	ErrExpiredToken       = errors.New("token has expired")
	ErrInvalidClaims      = errors.New("invalid token claims")
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// Claims represents the JWT claims for the operator session
type Claims struct {
	jwt.RegisteredClaims
	Username string `json:"username"`
}

// Token represents an issued session token
type Token struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
	TokenType   string    `json:"token_type"` // Bearer
}

// JWTService handles JWT token operations.
// The application serves a single shop with one operator account, so tokens
// carry only the operator's username.
type JWTService struct {
	secret       []byte
	expiration   time.Duration
	issuer       string
	username     string
	passwordHash string
}

// NewJWTService creates a new JWT service
func NewJWTService(jwtCfg config.JWTConfig, authCfg config.AuthConfig) *JWTService {
	return &JWTService{
		secret:       []byte(jwtCfg.Secret),
		expiration:   jwtCfg.TokenExpiration,
		issuer:       jwtCfg.Issuer,
		username:     authCfg.Username,
		passwordHash: authCfg.PasswordHash,
	}
}

// Authenticate verifies the operator credentials and issues a token
func (s *JWTService) Authenticate(username, password string) (*Token, error) {
	if username != s.username {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.passwordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return s.GenerateToken(username)
}

// GenerateToken issues a signed token for the given username
func (s *JWTService) GenerateToken(username string) (*Token, error) {
	now := time.Now()
	expiresAt := now.Add(s.expiration)

	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Issuer:    s.issuer,
			Subject:   username,
			Audience:  jwt.ClaimStrings{s.issuer},
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		Username: username,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return nil, err
	}

	return &Token{
		AccessToken: signed,
		ExpiresAt:   expiresAt,
		TokenType:   "Bearer",
	}, nil
}

// ValidateToken validates a token and returns its claims
func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidClaims
	}

	if claims.Username == "" {
		return nil, ErrInvalidClaims
	}

	return claims, nil
}

// TokenExpiration returns the configured token lifetime
func (s *JWTService) TokenExpiration() time.Duration {
	return s.expiration
}

// HashPassword returns the bcrypt hash of a password.
// Used by the setup tooling to produce auth.password_hash values.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
