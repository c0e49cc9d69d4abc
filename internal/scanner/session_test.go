package scanner

import (
	"bytes"
	"strings"
	"testing"
)

func TestSessionTokenUniqueness(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		s := NewPairingSession("http", "localhost:8000")
		if s.Token == "" {
			t.Fatal("empty token")
		}
		if seen[s.Token] {
			t.Fatalf("duplicate token after %d sessions", i)
		}
		seen[s.Token] = true
	}
}

func TestSessionURL(t *testing.T) {
	s := NewPairingSession("http", "localhost:8000")

	want := "http://localhost:8000/scanner/" + s.Token
	if got := s.URL(); got != want {
		t.Errorf("URL = %q, want %q", got, want)
	}

	s.SetHost("192.168.1.20:8000")
	if !strings.HasPrefix(s.URL(), "http://192.168.1.20:8000/scanner/") {
		t.Errorf("URL after SetHost = %q", s.URL())
	}

	s.SetHost("")
	if !strings.Contains(s.URL(), "192.168.1.20") {
		t.Error("blank SetHost should keep the previous host")
	}
}

func TestSessionQRPNG(t *testing.T) {
	s := NewPairingSession("https", "app.example.com")

	png, err := s.QRPNG(256)
	if err != nil {
		t.Fatalf("QRPNG: %v", err)
	}
	if !bytes.HasPrefix(png, []byte("\x89PNG")) {
		t.Error("QRPNG should produce a PNG image")
	}
}
