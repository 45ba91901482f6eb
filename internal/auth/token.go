package auth

import (
	"fmt"
	"strconv"
	"time"

	"storefront-service/internal/domain"

	"github.com/golang-jwt/jwt/v5"
)

type Claims struct {
	UserID  uint64 `json:"user_id"`
	IsStaff bool   `json:"is_staff"`
	jwt.RegisteredClaims
}

type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue signs an HS256 access token for u.
func (m *TokenManager) Issue(u *domain.User) (string, time.Time, error) {
	issuedAt := m.now()
	expires := issuedAt.Add(m.ttl)
	claims := Claims{
		UserID:  u.ID,
		IsStaff: u.IsStaff,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(u.ID, 10),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expires, nil
}

// Parse verifies the signature and expiry and returns the actor the token names.
func (m *TokenManager) Parse(raw string) (domain.Actor, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return domain.Actor{}, fmt.Errorf("%w: token is invalid or expired", domain.ErrUnauthenticated)
	}
	if claims.UserID == 0 {
		return domain.Actor{}, fmt.Errorf("%w: token carries no user", domain.ErrUnauthenticated)
	}
	return domain.Actor{UserID: claims.UserID, IsStaff: claims.IsStaff}, nil
}
