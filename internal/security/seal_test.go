package security

import (
	"bytes"
	"errors"
	"testing"
)

func TestNewSealerRequiresMinimumLength(t *testing.T) {
	if _, err := NewSealer("short"); err == nil {
		t.Fatalf("expected error for short secret")
	}
}

func TestSealAndOpen(t *testing.T) {
	sealer, err := NewSealer("this-is-a-long-secret")
	if err != nil {
		t.Fatalf("new sealer: %v", err)
	}
	plain := []byte(`{"credential":{"access_token":"tok"}}`)
	sealed, err := sealer.Seal(plain)
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	if bytes.Contains(sealed, []byte("tok")) {
		t.Fatalf("expected sealed output to hide the plaintext")
	}
	opened, err := sealer.Open(sealed)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if !bytes.Equal(opened, plain) {
		t.Fatalf("opened = %q, want %q", opened, plain)
	}
}

func TestOpenRejectsOtherSecretAndTampering(t *testing.T) {
	a, _ := NewSealer("first-long-secret")
	b, _ := NewSealer("second-long-secret")
	sealed, err := a.Seal([]byte("payload"))
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	if _, err := b.Open(sealed); !errors.Is(err, ErrSealedDataInvalid) {
		t.Fatalf("expected ErrSealedDataInvalid for wrong secret, got %v", err)
	}
	sealed[len(sealed)-1] ^= 0xff
	if _, err := a.Open(sealed); !errors.Is(err, ErrSealedDataInvalid) {
		t.Fatalf("expected ErrSealedDataInvalid for tampered data, got %v", err)
	}
	if _, err := a.Open([]byte{1, 2}); !errors.Is(err, ErrSealedDataInvalid) {
		t.Fatalf("expected ErrSealedDataInvalid for short data, got %v", err)
	}
}
