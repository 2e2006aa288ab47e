package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"smartstore-backend/internal/history"
)

// IdentityClaims carries the viewer's claimed identity (CurrentUser). The
// signature only stops tampering; the identity itself is not verified.
type IdentityClaims struct {
	BranchName string `json:"branch_name"`
	Name       string `json:"name"`
	Phone      string `json:"phone"`
	jwt.RegisteredClaims
}

func GenerateToken(secret string, id history.Identity, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &IdentityClaims{
		BranchName: id.BranchName,
		Name:       id.Name,
		Phone:      id.Phone,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func ParseToken(secret, tokenStr string) (history.Identity, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &IdentityClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("잘못된 서명 방식: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return history.Identity{}, err
	}
	if !token.Valid {
		return history.Identity{}, errors.New("유효하지 않은 토큰")
	}

	claims, ok := token.Claims.(*IdentityClaims)
	if !ok {
		return history.Identity{}, errors.New("토큰 해석 실패")
	}
	return history.Identity{
		BranchName: claims.BranchName,
		Name:       claims.Name,
		Phone:      claims.Phone,
	}, nil
}
