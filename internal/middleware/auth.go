package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"

	"events-api/internal/models"
	"events-api/pkg/lambda"
)

// ErrMissingToken is returned when a request carries no usable bearer token
var ErrMissingToken = errors.New("missing bearer token")

// Identity is the authenticated caller
type Identity struct {
	Subject string `json:"sub"`
	Email   string `json:"email"`
}

// IdentityVerifier turns a bearer token into an identity
type IdentityVerifier interface {
	Verify(ctx context.Context, token string) (*Identity, error)
}

// Claims represents JWT claims
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// AuthConfig holds authentication configuration
type AuthConfig struct {
	JWTSecret     string
	TokenDuration time.Duration
	Issuer        string
}

// JWTVerifier verifies and issues HS256 tokens
type JWTVerifier struct {
	config *AuthConfig
}

// NewJWTVerifier creates a new JWT verifier
func NewJWTVerifier(config *AuthConfig) *JWTVerifier {
	if config.TokenDuration == 0 {
		config.TokenDuration = 24 * time.Hour // Default to 24 hours
	}
	if config.Issuer == "" {
		config.Issuer = "events-api"
	}
	return &JWTVerifier{config: config}
}

// GenerateToken generates a JWT token for a user
func (v *JWTVerifier) GenerateToken(subject, email string) (string, error) {
	now := time.Now()
	claims := &Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(v.config.TokenDuration)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    v.config.Issuer,
			Subject:   subject,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(v.config.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// Verify validates a JWT token and returns the identity it carries
func (v *JWTVerifier) Verify(ctx context.Context, tokenString string) (*Identity, error) {
	if tokenString == "" {
		return nil, ErrMissingToken
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(v.config.JWTSecret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(v.config.Issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	return &Identity{Subject: claims.Subject, Email: claims.Email}, nil
}

// BearerToken extracts the token from a "Bearer <token>" header value
func BearerToken(header string) (string, bool) {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}

type identityKey struct{}

// WithIdentity stores identity on ctx
func WithIdentity(ctx context.Context, identity *Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, identity)
}

// IdentityFromContext returns the identity stored by RequireIdentity
func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	identity, ok := ctx.Value(identityKey{}).(*Identity)
	return identity, ok && identity != nil
}

// RequireIdentity rejects requests without a valid bearer token before they
// reach next. OPTIONS requests pass through unauthenticated.
func RequireIdentity(verifier IdentityVerifier, logger *logrus.Logger, next lambda.Handler) lambda.Handler {
	headers := CredentialedCORSHeaders()

	return func(ctx context.Context, req *lambda.Request) *lambda.Response {
		if req.Method == http.MethodOptions {
			return next(ctx, req)
		}

		token, ok := BearerToken(req.Header("Authorization"))
		if !ok {
			return lambda.JSON(http.StatusUnauthorized, models.ErrorResponse{Message: "Unauthorized"}, headers)
		}

		identity, err := verifier.Verify(ctx, token)
		if err != nil {
			logger.WithFields(logrus.Fields{
				"request_id": req.RequestID,
				"path":       req.Path,
				"error":      err.Error(),
			}).Warn("Token validation failed")

			return lambda.JSON(http.StatusUnauthorized, models.ErrorResponse{
				Message: "Unauthorized",
				Error:   "invalid or expired token",
			}, headers)
		}

		logger.WithFields(logrus.Fields{
			"request_id": req.RequestID,
			"subject":    identity.Subject,
			"path":       req.Path,
		}).Debug("User authenticated successfully")

		return next(WithIdentity(ctx, identity), req)
	}
}
