package scanner

import (
	"fmt"

	"github.com/google/uuid"
	qrcode "github.com/skip2/go-qrcode"
)

// PairingSession correlates a desktop capture page with one mobile device.
// The token is a routing key, not a credential; a fresh one is generated
// every time the pairing dialog opens and nothing is persisted.
type PairingSession struct {
	Token  string
	scheme string
	host   string
}

// NewPairingSession creates a session for the given reachable scheme and
// host ("http", "192.168.1.20:8000").
func NewPairingSession(scheme, host string) *PairingSession {
	return &PairingSession{
		Token:  uuid.New().String(),
		scheme: scheme,
		host:   host,
	}
}

// SetHost overrides the host baked into the pairing URL. The desktop is not
// always reachable at its own idea of localhost from a phone, so the user
// can substitute a LAN address.
func (s *PairingSession) SetHost(host string) {
	if host != "" {
		s.host = host
	}
}

// URL is the address the mobile browser loads after scanning the QR code.
func (s *PairingSession) URL() string {
	return PairingURL(s.scheme, s.host, s.Token)
}

// QRPNG renders the pairing URL as a PNG QR code of the given pixel size.
func (s *PairingSession) QRPNG(size int) ([]byte, error) {
	return EncodePairingQR(s.scheme, s.host, s.Token, size)
}

// PairingURL builds the capture-page URL for an existing token.
func PairingURL(scheme, host, token string) string {
	return fmt.Sprintf("%s://%s/scanner/%s", scheme, host, token)
}

// EncodePairingQR renders the pairing URL for an existing token as a PNG.
func EncodePairingQR(scheme, host, token string, size int) ([]byte, error) {
	return qrcode.Encode(PairingURL(scheme, host, token), qrcode.Low, size)
}
