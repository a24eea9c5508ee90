package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	market "github.com/Energinet-DataHub/opengeh-edi-sub010/internal/market/domain"
)

// Claims represents JWT claims used by this service. Every market actor
// authenticates with its identification number and market role.
type Claims struct {
	ActorNumber string `json:"actor_number"`
	MarketRole  string `json:"market_role"`
	jwt.RegisteredClaims
}

// ParseJWT validates a JWT and returns claims.
func ParseJWT(tokenString string, secret []byte) (*Claims, error) {
	if tokenString == "" {
		return nil, errors.New("auth: empty token")
	}
	if len(secret) == 0 {
		return nil, errors.New("auth: empty secret")
	}

	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	claims := &Claims{}
	token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("auth: invalid signing method")
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("auth: invalid token")
	}
	if _, err := market.NewActorNumber(claims.ActorNumber); err != nil {
		return nil, errors.New("auth: invalid actor_number")
	}
	if _, err := market.ParseActorRole(claims.MarketRole); err != nil {
		return nil, errors.New("auth: invalid market_role")
	}
	if claims.ExpiresAt != nil && time.Now().After(claims.ExpiresAt.Time) {
		return nil, errors.New("auth: token expired")
	}
	return claims, nil
}
