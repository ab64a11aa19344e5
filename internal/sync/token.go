package sync

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenCodec выпускает и разбирает sync-токены.
// Токен — непрозрачная для клиентов строка (подписанный HS256 JWT),
// внутри которой зашит момент выпуска с наносекундной точностью.
// Клиенты обязаны только сохранять и возвращать токен как есть.
type TokenCodec struct {
	secret []byte
}

// NewTokenCodec создает codec с заданным секретом подписи.
// Секрет должен быть криптографически случайной строкой.
func NewTokenCodec(secret string) *TokenCodec {
	return &TokenCodec{secret: []byte(secret)}
}

// tokenClaims полезная нагрузка sync-токена.
// IssuedNanos хранится отдельным полем, потому что стандартный iat
// усекается до секунд, а границе pull нужна наносекундная точность.
type tokenClaims struct {
	IssuedNanos int64 `json:"iat_ns"`
	jwt.RegisteredClaims
}

// Mint выпускает новый токен, представляющий момент at.
func (c *TokenCodec) Mint(at time.Time) (string, error) {
	claims := tokenClaims{
		IssuedNanos: at.UnixNano(),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:   "crmsync",
			IssuedAt: jwt.NewNumericDate(at),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign sync token: %w", err)
	}

	return signed, nil
}

// Decode проверяет подпись токена и возвращает зашитый в него момент выпуска.
// Возвращает ErrInvalidSyncToken для токенов с неверной подписью или форматом.
func (c *TokenCodec) Decode(token string) (time.Time, error) {
	var claims tokenClaims

	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return c.secret, nil
	})
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrInvalidSyncToken, err)
	}

	if !parsed.Valid {
		return time.Time{}, ErrInvalidSyncToken
	}

	return time.Unix(0, claims.IssuedNanos), nil
}
