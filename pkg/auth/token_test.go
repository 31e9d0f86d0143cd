package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/dmarquezdev/subvault-backend/pkg/config"
	"github.com/dmarquezdev/subvault-backend/pkg/enums"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "test-secret",
		Issuer:            "subvault-test",
		ExpirationMinutes: 60,
	}
}

func TestMintAndParseCustomerToken(t *testing.T) {
	cfg := testJWTConfig()
	authCodeID := uuid.New()
	now := time.Now()

	signed, err := MintAccessToken(cfg, now, AccessTokenPayload{
		AuthCodeID: &authCodeID,
		Role:       enums.ActorRoleCustomer,
	})
	if err != nil {
		t.Fatalf("MintAccessToken: %v", err)
	}

	claims, err := ParseAccessToken(cfg, signed)
	if err != nil {
		t.Fatalf("ParseAccessToken: %v", err)
	}
	if claims.AuthCodeID == nil || *claims.AuthCodeID != authCodeID {
		t.Fatalf("auth code id = %v, want %s", claims.AuthCodeID, authCodeID)
	}
	if claims.Role != enums.ActorRoleCustomer {
		t.Fatalf("role = %s, want customer", claims.Role)
	}
	if claims.ID == "" {
		t.Fatal("expected a generated jti")
	}
}

func TestMintAdminTokenWithoutAuthCode(t *testing.T) {
	signed, err := MintAccessToken(testJWTConfig(), time.Now(), AccessTokenPayload{
		Role: enums.ActorRoleAdmin,
	})
	if err != nil {
		t.Fatalf("MintAccessToken: %v", err)
	}
	claims, err := ParseAccessToken(testJWTConfig(), signed)
	if err != nil {
		t.Fatalf("ParseAccessToken: %v", err)
	}
	if claims.AuthCodeID != nil {
		t.Fatal("admin token must not carry an auth code id")
	}
}

func TestMintCustomerTokenRequiresAuthCode(t *testing.T) {
	if _, err := MintAccessToken(testJWTConfig(), time.Now(), AccessTokenPayload{
		Role: enums.ActorRoleCustomer,
	}); err == nil {
		t.Fatal("expected error for customer token without auth code id")
	}
}

func TestParseRejectsWrongIssuer(t *testing.T) {
	cfg := testJWTConfig()
	signed, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{Role: enums.ActorRoleAdmin})
	if err != nil {
		t.Fatalf("MintAccessToken: %v", err)
	}

	other := cfg
	other.Issuer = "someone-else"
	if _, err := ParseAccessToken(other, signed); err == nil {
		t.Fatal("expected issuer mismatch error")
	}
}

func TestParseRejectsExpiredToken(t *testing.T) {
	cfg := testJWTConfig()
	signed, err := MintAccessToken(cfg, time.Now().Add(-2*time.Hour), AccessTokenPayload{Role: enums.ActorRoleAdmin})
	if err != nil {
		t.Fatalf("MintAccessToken: %v", err)
	}
	if _, err := ParseAccessToken(cfg, signed); err == nil || !strings.Contains(err.Error(), "expired") {
		t.Fatalf("expected expiry error, got %v", err)
	}
}

func TestParseRejectsTamperedToken(t *testing.T) {
	cfg := testJWTConfig()
	signed, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{Role: enums.ActorRoleAdmin})
	if err != nil {
		t.Fatalf("MintAccessToken: %v", err)
	}
	tampered := signed[:len(signed)-2] + "xx"
	if _, err := ParseAccessToken(cfg, tampered); err == nil {
		t.Fatal("expected signature error")
	}
}
