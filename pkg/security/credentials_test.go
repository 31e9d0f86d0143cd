package security

import (
	"bytes"
	"encoding/base64"
	"testing"
)

func testKey() string {
	return base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{7}, 32))
}

func TestCredentialSealer_RoundTrip(t *testing.T) {
	sealer, err := NewCredentialSealer(testKey())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sealed, err := sealer.Seal("hunter2")
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	if len(sealed) == 0 {
		t.Fatal("expected ciphertext")
	}
	opened, err := sealer.Open(sealed)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if opened != "hunter2" {
		t.Fatalf("opened %q, want hunter2", opened)
	}
}

func TestCredentialSealer_EmptyPlaintext(t *testing.T) {
	sealer, _ := NewCredentialSealer(testKey())
	sealed, err := sealer.Seal("")
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	if sealed != nil {
		t.Fatal("empty plaintext must seal to nil")
	}
	opened, err := sealer.Open(nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if opened != "" {
		t.Fatalf("opened %q, want empty", opened)
	}
}

func TestCredentialSealer_TamperedCiphertext(t *testing.T) {
	sealer, _ := NewCredentialSealer(testKey())
	sealed, _ := sealer.Seal("secret")
	sealed[len(sealed)-1] ^= 0xff
	if _, err := sealer.Open(sealed); err == nil {
		t.Fatal("expected error for tampered ciphertext")
	}
}

func TestNewCredentialSealer_RejectsBadKey(t *testing.T) {
	if _, err := NewCredentialSealer(""); err == nil {
		t.Fatal("expected error for empty key")
	}
	if _, err := NewCredentialSealer("not-base64!!"); err == nil {
		t.Fatal("expected error for invalid base64")
	}
	short := base64.StdEncoding.EncodeToString([]byte("short"))
	if _, err := NewCredentialSealer(short); err == nil {
		t.Fatal("expected error for short key")
	}
}
