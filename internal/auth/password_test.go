package auth

import (
	"strings"
	"testing"
)

func TestHashPasswordFormat(t *testing.T) {
	hashed, err := HashPassword("secret123")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}

	salt, digest, ok := strings.Cut(hashed, "$")
	if !ok {
		t.Fatalf("hash %q missing salt separator", hashed)
	}
	if len(salt) != 32 {
		t.Fatalf("salt length = %d, want 32 hex chars", len(salt))
	}
	if len(digest) != 64 {
		t.Fatalf("digest length = %d, want 64 hex chars", len(digest))
	}
}

func TestVerifyPassword(t *testing.T) {
	hashed, err := HashPassword("secret123")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}

	if !VerifyPassword(hashed, "secret123") {
		t.Fatal("correct password rejected")
	}
	if VerifyPassword(hashed, "secret124") {
		t.Fatal("wrong password accepted")
	}
}

func TestVerifyPasswordMalformed(t *testing.T) {
	tests := []struct {
		name   string
		stored string
	}{
		{"empty", ""},
		{"no separator", "abcdef0123456789"},
		{"empty salt", "$deadbeef"},
		{"empty digest", "deadbeef$"},
		{"non hex digest", "deadbeef$nothex!!"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if VerifyPassword(tt.stored, "anything") {
				t.Fatalf("malformed hash %q verified", tt.stored)
			}
		})
	}
}

func TestHashPasswordSaltsDiffer(t *testing.T) {
	first, err := HashPassword("same")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	second, err := HashPassword("same")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if first == second {
		t.Fatal("two hashes of the same password should differ")
	}
}

func TestGenerateTempPassword(t *testing.T) {
	pw, err := GenerateTempPassword()
	if err != nil {
		t.Fatalf("GenerateTempPassword: %v", err)
	}
	if len(pw) != 11 {
		t.Fatalf("temp password length = %d, want 11", len(pw))
	}
	if strings.ContainsAny(pw, "+/=") {
		t.Fatalf("temp password %q not URL safe", pw)
	}
}
