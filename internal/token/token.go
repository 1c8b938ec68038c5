package token

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/MostTP/EduWave-Backend/internal/model"
)

const opaqueTokenBytes = 32

const (
	DefaultAccessTTL  = 15 * time.Minute
	DefaultRefreshTTL = 7 * 24 * time.Hour
)

var (
	ErrMalformed  = errors.New("token is malformed or has an invalid signature")
	ErrMissingSub = errors.New("token has no usable subject claim")
)

// NewOpaqueToken returns a random token to hand to the user out-of-band and
// the hash of it to persist. Only the hash ever touches the database;
// verification re-hashes the presented value and compares.
func NewOpaqueToken() (plaintext string, hash string, err error) {
	buf := make([]byte, opaqueTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", "", err
	}
	plaintext = hex.EncodeToString(buf)
	return plaintext, Hash(plaintext), nil
}

// Hash derives the stored form of an opaque token.
func Hash(plaintext string) string {
	sum := sha256.Sum256([]byte(plaintext))
	return hex.EncodeToString(sum[:])
}

// Claims is the verified payload of an access token.
type Claims struct {
	UserID uuid.UUID
	Email  string
	Role   model.Role
}

// Manager signs and verifies the JWT pair. Access and refresh tokens use
// distinct secrets so a leaked refresh token cannot be replayed as an access
// token (or vice versa).
type Manager struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewManager(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *Manager {
	if accessTTL == 0 {
		accessTTL = DefaultAccessTTL
	}
	if refreshTTL == 0 {
		refreshTTL = DefaultRefreshTTL
	}
	return &Manager{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

// NewPair issues an access/refresh token pair bound to the user.
func (m *Manager) NewPair(user *model.User) (accessToken string, refreshToken string, err error) {
	now := time.Now()

	// Each issuance carries a unique jti. Claims are otherwise at second
	// granularity, so without it two tokens minted in the same second would
	// be byte-identical and rotation could hand back the token it was meant
	// to replace.
	accessClaims := jwt.MapClaims{
		"sub":   user.ID.String(),
		"email": user.Email,
		"role":  string(user.Role),
		"jti":   uuid.NewString(),
		"iat":   now.Unix(),
		"exp":   now.Add(m.accessTTL).Unix(),
	}
	accessToken, err = jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims).SignedString(m.accessSecret)
	if err != nil {
		return "", "", err
	}

	refreshClaims := jwt.MapClaims{
		"sub": user.ID.String(),
		"jti": uuid.NewString(),
		"iat": now.Unix(),
		"exp": now.Add(m.refreshTTL).Unix(),
	}
	refreshToken, err = jwt.NewWithClaims(jwt.SigningMethodHS256, refreshClaims).SignedString(m.refreshSecret)
	if err != nil {
		return "", "", err
	}

	return accessToken, refreshToken, nil
}

// ParseAccess verifies an access token and returns its claims. Expiry is
// reported as jwt.ErrTokenExpired so callers can tell it apart from a bad
// signature.
func (m *Manager) ParseAccess(tokenString string) (*Claims, error) {
	raw, err := m.parse(tokenString, m.accessSecret)
	if err != nil {
		return nil, err
	}

	userID, err := subjectID(raw)
	if err != nil {
		return nil, err
	}

	claims := &Claims{UserID: userID}
	if email, ok := raw["email"].(string); ok {
		claims.Email = email
	}
	if role, ok := raw["role"].(string); ok {
		claims.Role = model.Role(role)
	}
	return claims, nil
}

// ParseRefresh verifies a refresh token and returns the user it is bound to.
func (m *Manager) ParseRefresh(tokenString string) (uuid.UUID, error) {
	raw, err := m.parse(tokenString, m.refreshSecret)
	if err != nil {
		return uuid.Nil, err
	}
	return subjectID(raw)
}

func (m *Manager) parse(tokenString string, secret []byte) (jwt.MapClaims, error) {
	parsed, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, jwt.ErrTokenExpired
		}
		return nil, ErrMalformed
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || !parsed.Valid {
		return nil, ErrMalformed
	}
	return claims, nil
}

func subjectID(claims jwt.MapClaims) (uuid.UUID, error) {
	sub, ok := claims["sub"].(string)
	if !ok {
		return uuid.Nil, ErrMissingSub
	}
	id, err := uuid.Parse(sub)
	if err != nil {
		return uuid.Nil, ErrMissingSub
	}
	return id, nil
}
