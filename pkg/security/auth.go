package security

import (
	"context"
	"fmt"
	"time"

	"procurement/pkg/models"

	"github.com/golang-jwt/jwt/v5"
)

// Authenticator checks credentials against the upstream service.
type Authenticator interface {
	Login(ctx context.Context, usuario, contrasenna string) (*models.LoginResult, error)
}

type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), ttl: ttl}
}

func (t *TokenIssuer) GenerateJWT(session *Session) (string, error) {
	claims := jwt.MapClaims{
		"sessionID": session.ID,
		"userID":    session.UserID,
		"username":  session.Username,
		"exp":       time.Now().Add(t.ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

func (t *TokenIssuer) Parse(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return t.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("unexpected claims type")
	}
	return claims, nil
}
