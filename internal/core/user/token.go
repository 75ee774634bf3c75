package user

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Claims JWT 內容
type Claims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

// TokenManager 簽發與驗證 HS256 token
type TokenManager struct {
	secret    []byte
	expiresIn time.Duration
}

// NewTokenManager 創建 token 管理器，expiresIn 為 0 時使用 7 天
func NewTokenManager(secret string, expiresIn time.Duration) *TokenManager {
	if expiresIn <= 0 {
		expiresIn = 7 * 24 * time.Hour
	}
	return &TokenManager{secret: []byte(secret), expiresIn: expiresIn}
}

// GenerateToken 簽發 token
func (m *TokenManager) GenerateToken(userID primitive.ObjectID) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID.Hex(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(m.expiresIn)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// ValidateToken 驗證 token 並回傳使用者 ID
func (m *TokenManager) ValidateToken(tokenString string) (primitive.ObjectID, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return primitive.NilObjectID, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return primitive.NilObjectID, fmt.Errorf("invalid token")
	}
	return primitive.ObjectIDFromHex(claims.UserID)
}
