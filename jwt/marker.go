package jwt

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrMarkerInvalid is returned for tokens that fail signature or claim checks.
var ErrMarkerInvalid = errors.New("invalid session marker")

const minKeyLength = 32

// Config controls marker issuance.
type Config struct {
	SigningKey []byte
	TTL        time.Duration
	Issuer     string
	Leeway     time.Duration
}

// MarkerClaims identify one signed-in client session.
type MarkerClaims struct {
	UID string `json:"uid"`
	CID string `json:"cid"`
	SID string `json:"sid"`
	jwt.RegisteredClaims
}

// Manager signs and parses HS256 markers.
type Manager struct {
	config Config
	now    func() time.Time
}

// NewManager validates cfg and returns a manager.
func NewManager(cfg Config) (*Manager, error) {
	if len(cfg.SigningKey) < minKeyLength {
		return nil, fmt.Errorf("marker signing key must be at least %d bytes", minKeyLength)
	}
	if cfg.TTL <= 0 {
		return nil, errors.New("invalid marker TTL")
	}
	if cfg.Leeway < 0 || cfg.Leeway > 2*time.Minute {
		return nil, errors.New("invalid leeway configuration")
	}
	cfg.Issuer = strings.TrimSpace(cfg.Issuer)
	key := make([]byte, len(cfg.SigningKey))
	copy(key, cfg.SigningKey)
	cfg.SigningKey = key
	return &Manager{config: cfg, now: time.Now}, nil
}

// Issue signs a marker for userID on clientID with a fresh session ID.
func (m *Manager) Issue(userID, clientID string) (string, *MarkerClaims, error) {
	now := m.now()
	claims := &MarkerClaims{
		UID: userID,
		CID: clientID,
		SID: uuid.NewString(),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.config.TTL)),
			Issuer:    m.config.Issuer,
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.config.SigningKey)
	if err != nil {
		return "", nil, err
	}
	return token, claims, nil
}

// Parse verifies signature, expiry and issuer. When clientID is non-empty the
// marker must also belong to that client.
func (m *Manager) Parse(tokenStr, clientID string) (*MarkerClaims, error) {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	}
	if m.config.Leeway > 0 {
		options = append(options, jwt.WithLeeway(m.config.Leeway))
	}
	if m.config.Issuer != "" {
		options = append(options, jwt.WithIssuer(m.config.Issuer))
	}

	token, err := jwt.NewParser(options...).ParseWithClaims(tokenStr, &MarkerClaims{}, func(t *jwt.Token) (interface{}, error) {
		return m.config.SigningKey, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMarkerInvalid, err)
	}
	claims, ok := token.Claims.(*MarkerClaims)
	if !ok || !token.Valid {
		return nil, ErrMarkerInvalid
	}
	if clientID != "" && claims.CID != clientID {
		return nil, fmt.Errorf("%w: client mismatch", ErrMarkerInvalid)
	}
	return claims, nil
}
