package services

import (
	"fmt"

	apperrors "bookinghub/errors"

	"github.com/dgrijalva/jwt-go"
)

// TokenParser xác thực bearer token HMAC và lấy userID, role trong claim userinfo
type TokenParser struct {
	secret []byte
}

func NewTokenParser(secret string) *TokenParser {
	return &TokenParser{secret: []byte(secret)}
}

// GetUserIDFromToken lấy userID và role từ token
func (p *TokenParser) GetUserIDFromToken(tokenString string) (uint, int, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return p.secret, nil
	})
	if err != nil || !token.Valid {
		return 0, 0, apperrors.Unauthorized(apperrors.ErrCodeInvalidToken, "Token không hợp lệ", err)
	}

	claimsMap, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, 0, apperrors.Unauthorized(apperrors.ErrCodeInvalidToken, "Không thể parse token", nil)
	}

	userInfo, ok := claimsMap["userinfo"].(map[string]interface{})
	if !ok {
		return 0, 0, apperrors.Unauthorized(apperrors.ErrCodeInvalidToken, "Không tìm thấy thông tin user trong token", nil)
	}

	userID, okID := userInfo["userid"].(float64)
	if !okID {
		return 0, 0, apperrors.Unauthorized(apperrors.ErrCodeInvalidToken, "Không tìm thấy ID user trong token", nil)
	}

	role, okRole := userInfo["role"].(float64)
	if !okRole {
		return 0, 0, apperrors.Unauthorized(apperrors.ErrCodeInvalidToken, "Không tìm thấy role trong token", nil)
	}

	return uint(userID), int(role), nil
}
