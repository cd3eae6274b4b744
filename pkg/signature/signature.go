package signature

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"health-records-platform/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims carried inside a credential signature token. The digest binds the
// signature to one exact payload rendering.
type Claims struct {
	UserID        uuid.UUID `json:"user_id"`
	PayloadDigest string    `json:"payload_digest"`
	jwt.RegisteredClaims
}

// Service mints the signature field embedded in emergency credential payloads.
// The signature is NOT verified at decode time; scanners treat it as opaque
// metadata. This preserves the platform's weak-trust model for QR credentials.
type Service struct {
	config config.CredentialConfig
}

func NewService(cfg config.CredentialConfig) *Service {
	return &Service{config: cfg}
}

// Sign produces an HS256 token over the payload digest.
func (s *Service) Sign(userID uuid.UUID, payload []byte) (string, error) {
	digest := sha256.Sum256(payload)
	claims := Claims{
		UserID:        userID,
		PayloadDigest: hex.EncodeToString(digest[:]),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.SigningSecret))
}
