package auth

import "testing"

func TestTokenRoundTrip(t *testing.T) {
	secret := []byte("test-secret")

	token, exp, err := IssueToken(secret, "user-alice", "alice")
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	if exp == 0 {
		t.Error("expiry is zero")
	}

	claims, err := ParseToken(secret, token)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if claims.Address != "user-alice" || claims.Username != "alice" {
		t.Errorf("claims = %+v", claims)
	}
}

func TestParseTokenWrongSecret(t *testing.T) {
	token, _, err := IssueToken([]byte("secret-a"), "user-alice", "alice")
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	if _, err := ParseToken([]byte("secret-b"), token); err == nil {
		t.Fatal("token verified with wrong secret")
	}
}

func TestParseTokenGarbage(t *testing.T) {
	if _, err := ParseToken([]byte("secret"), "not-a-token"); err == nil {
		t.Fatal("garbage token verified")
	}
}
