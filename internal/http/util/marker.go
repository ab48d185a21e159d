package util

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrInvalidMarker = errors.New("invalid or expired seen marker")
	ErrMissingSecret = errors.New("tracking cookie secret is not configured")
)

// MarkerSigner issues and validates the HMAC-signed "seen" marker carried in
// the per-(publisher, offer) cookie, so a forged cookie cannot suppress the
// uniqueness check.
type MarkerSigner struct {
	secret []byte
	ttl    time.Duration
}

// NewMarkerSigner returns a signer that issues compact HMAC markers.
func NewMarkerSigner(secret []byte, ttl time.Duration) *MarkerSigner {
	return &MarkerSigner{
		secret: secret,
		ttl:    ttl,
	}
}

// CookieName derives the cookie name for a (publisher, offer) pair. The
// publisher part is hashed so the name stays short and character-safe.
func CookieName(publisherID string, offerID int64) string {
	sum := sha256.Sum256([]byte(publisherID))
	return fmt.Sprintf("lm_seen_%d_%s", offerID, hex.EncodeToString(sum[:4]))
}

// Issue mints a marker scoped to the (publisher, offer) pair.
func (s *MarkerSigner) Issue(publisherID string, offerID int64) (string, error) {
	if len(s.secret) == 0 {
		return "", ErrMissingSecret
	}

	payload := make([]byte, 12) // 4 bytes expiry + 8 random bytes
	expires := uint32(time.Now().Add(s.ttl).Unix())
	binary.BigEndian.PutUint32(payload[:4], expires)
	if _, err := rand.Read(payload[4:]); err != nil {
		return "", err
	}

	payloadEnc := base64.RawURLEncoding.EncodeToString(payload)
	signature := s.sign(publisherID, offerID, payload)
	sigEnc := base64.RawURLEncoding.EncodeToString(signature[:16])
	return fmt.Sprintf("%s.%s", payloadEnc, sigEnc), nil
}

// Validate checks signature integrity and TTL of the marker for the pair.
func (s *MarkerSigner) Validate(publisherID string, offerID int64, marker string) error {
	if len(s.secret) == 0 {
		return ErrMissingSecret
	}

	parts := strings.SplitN(marker, ".", 2)
	if len(parts) != 2 {
		return ErrInvalidMarker
	}

	payload, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return ErrInvalidMarker
	}

	sigProvided, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return ErrInvalidMarker
	}
	if len(sigProvided) != 16 {
		return ErrInvalidMarker
	}

	expected := s.sign(publisherID, offerID, payload)
	if !hmac.Equal(sigProvided, expected[:16]) {
		return ErrInvalidMarker
	}

	if len(payload) < 4 {
		return ErrInvalidMarker
	}
	expires := binary.BigEndian.Uint32(payload[:4])
	if time.Now().Unix() > int64(expires) {
		return ErrInvalidMarker
	}

	return nil
}

func (s *MarkerSigner) sign(publisherID string, offerID int64, payload []byte) []byte {
	mac := hmac.New(sha256.New, s.secret)
	fmt.Fprintf(mac, "%s|%d|", publisherID, offerID)
	mac.Write(payload)
	return mac.Sum(nil)
}
