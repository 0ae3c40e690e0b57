package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs-labo46/inventory-tracker/internal/domain/model"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// セッションJWTのclaims
type sessionClaims struct {
	Email   string `json:"email,omitempty"`
	Name    string `json:"name,omitempty"`
	Picture string `json:"picture,omitempty"`
	jwt.RegisteredClaims
}

// HS256でセッショントークンを発行・検証する
type JWTSessionIssuer struct {
	secret []byte
	ttl    time.Duration
}

func NewJWTSessionIssuer(secret []byte, ttl time.Duration) *JWTSessionIssuer {
	return &JWTSessionIssuer{secret: secret, ttl: ttl}
}

func (i *JWTSessionIssuer) Issue(user model.UserIdentity, now time.Time) (string, time.Time, error) {
	expiresAt := now.Add(i.ttl)

	claims := sessionClaims{
		Email:   user.Email,
		Name:    user.Name,
		Picture: user.Picture,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.Subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

func (i *JWTSessionIssuer) Parse(raw string, now time.Time) (model.Session, error) {
	var claims sessionClaims
	tok, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(func() time.Time { return now }),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return model.Session{}, fmt.Errorf("parse session token: %w", err)
	}
	if !tok.Valid || claims.Subject == "" {
		return model.Session{}, errors.New("invalid session token")
	}

	return model.Session{
		User: &model.UserIdentity{
			Subject: claims.Subject,
			Email:   claims.Email,
			Name:    claims.Name,
			Picture: claims.Picture,
		},
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
