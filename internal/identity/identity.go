// Package identity resolves the principal that backend requests are made on
// behalf of.
package identity

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token has expired")
)

// Principal is the authenticated user plus the bearer token, if any, that
// proves it to the backend.
type Principal struct {
	UserID int64
	Token  string
}

// Provider yields the current principal. Implementations must be safe for
// concurrent use.
type Provider interface {
	Principal(ctx context.Context) (Principal, error)
}

// Static is a fixed identity without credentials.
type Static struct {
	UserID int64
}

func (s Static) Principal(context.Context) (Principal, error) {
	return Principal{UserID: s.UserID}, nil
}

// Signer issues short-lived HS256 tokens for a single user and reuses a token
// until it is close to expiry.
type Signer struct {
	secret []byte
	userID int64
	ttl    time.Duration
	now    func() time.Time

	mu      sync.Mutex
	token   string
	expires time.Time
}

func NewSigner(secret string, userID int64, ttl time.Duration) *Signer {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &Signer{
		secret: []byte(secret),
		userID: userID,
		ttl:    ttl,
		now:    time.Now,
	}
}

func (s *Signer) Principal(context.Context) (Principal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if s.token == "" || now.Add(s.ttl/5).After(s.expires) {
		expires := now.Add(s.ttl)
		token, err := GenerateAccessToken(s.secret, s.userID, now, expires)
		if err != nil {
			return Principal{}, err
		}
		s.token = token
		s.expires = expires
	}

	return Principal{UserID: s.userID, Token: s.token}, nil
}

// GenerateAccessToken creates a JWT carrying user_id.
func GenerateAccessToken(secret []byte, userID int64, issuedAt, expiresAt time.Time) (string, error) {
	claims := jwt.MapClaims{
		"user_id": strconv.FormatInt(userID, 10),
		"exp":     expiresAt.Unix(),
		"iat":     issuedAt.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}
	return signed, nil
}

// Bearer wraps a token issued elsewhere. The client cannot verify the
// signature, so it only reads user_id and exp from the claims.
type Bearer struct {
	token  string
	userID int64
	expiry time.Time
	now    func() time.Time
}

func NewBearer(token string) (*Bearer, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	userID, err := userIDFromClaims(claims)
	if err != nil {
		return nil, err
	}

	b := &Bearer{token: token, userID: userID, now: time.Now}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		b.expiry = exp.Time
	}
	return b, nil
}

func (b *Bearer) Principal(context.Context) (Principal, error) {
	if !b.expiry.IsZero() && b.now().After(b.expiry) {
		return Principal{}, ErrTokenExpired
	}
	return Principal{UserID: b.userID, Token: b.token}, nil
}

// Verify checks an HS256 token against secret and returns its user.
func Verify(secret []byte, tokenStr string) (int64, error) {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, ErrTokenExpired
		}
		return 0, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return 0, ErrInvalidToken
	}
	return userIDFromClaims(claims)
}

func userIDFromClaims(claims jwt.MapClaims) (int64, error) {
	switch v := claims["user_id"].(type) {
	case string:
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: user_id %q", ErrInvalidToken, v)
		}
		return id, nil
	case float64:
		return int64(v), nil
	}
	return 0, fmt.Errorf("%w: missing user_id", ErrInvalidToken)
}
