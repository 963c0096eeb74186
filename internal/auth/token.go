package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Ilan9903/Juris-IA/internal"
)

type JWTTokenGenerator struct {
	Secret []byte
	TTL    time.Duration
	now    func() time.Time
}

func NewJWTTokenGenerator(secret string, ttl time.Duration) *JWTTokenGenerator {
	if ttl <= 0 {
		ttl = internal.DefaultTokenDuration
	}
	return &JWTTokenGenerator{
		Secret: []byte(secret),
		TTL:    ttl,
		now:    time.Now,
	}
}

// Generate signs an HS256 token bound to the user's id, email, role and name.
func (j *JWTTokenGenerator) Generate(u *User) (string, error) {
	issuedAt := j.clock()

	claims := &Claims{
		ID:    u.ID,
		Email: u.Email,
		Role:  string(u.Role),
		Name:  u.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(u.ID, 10),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(j.TTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(j.Secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (j *JWTTokenGenerator) Validate(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return j.Secret, nil
	}, jwt.WithTimeFunc(j.clock))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, internal.ErrTokenExpired.WithCause(err)
		}
		return nil, internal.ErrInvalidToken.WithCause(err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.ID <= 0 {
		return nil, internal.ErrInvalidToken
	}
	return claims, nil
}

func (j *JWTTokenGenerator) clock() time.Time {
	if j.now == nil {
		return time.Now()
	}
	return j.now()
}
