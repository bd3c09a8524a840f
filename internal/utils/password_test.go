package utils

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"testing"

	"golang.org/x/crypto/argon2"
)

func TestHashPassword_ProducesPHCRecord(t *testing.T) {
	encoded, err := HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}

	if !strings.HasPrefix(encoded, "$argon2id$v=19$m=65536,t=1,p=4$") {
		t.Fatalf("unexpected hash prefix: %s", encoded)
	}

	if parts := strings.Split(encoded, "$"); len(parts) != 6 {
		t.Fatalf("expected 6 PHC segments, got %d: %s", len(parts), encoded)
	}
}

func TestHashPassword_SaltIsRandom(t *testing.T) {
	first, err := HashPassword("same password")
	if err != nil {
		t.Fatalf("first hash failed: %v", err)
	}

	second, err := HashPassword("same password")
	if err != nil {
		t.Fatalf("second hash failed: %v", err)
	}

	if first == second {
		t.Fatal("two hashes of the same password must differ because of the random salt")
	}
}

func TestVerifyPassword_RoundTrip(t *testing.T) {
	encoded, err := HashPassword("s3cr3t-budget")
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}

	ok, err := VerifyPassword("s3cr3t-budget", encoded)
	if err != nil {
		t.Fatalf("VerifyPassword returned error: %v", err)
	}
	if !ok {
		t.Fatal("correct password must verify against its own hash")
	}

	ok, err = VerifyPassword("wrong-password", encoded)
	if err != nil {
		t.Fatalf("VerifyPassword returned error: %v", err)
	}
	if ok {
		t.Fatal("wrong password must not verify")
	}
}

func TestVerifyPassword_MalformedHash(t *testing.T) {
	cases := []struct {
		name    string
		encoded string
	}{
		{name: "empty", encoded: ""},
		{name: "not a PHC record", encoded: "plain-sha256-digest"},
		{name: "wrong algorithm", encoded: "$bcrypt$v=19$m=65536,t=1,p=4$c2FsdA$aGFzaA"},
		{name: "missing segments", encoded: "$argon2id$v=19$m=65536,t=1,p=4$c2FsdA"},
		{name: "bad version", encoded: "$argon2id$v=banana$m=65536,t=1,p=4$c2FsdA$aGFzaA"},
		{name: "bad params", encoded: "$argon2id$v=19$m=lots,t=1,p=4$c2FsdA$aGFzaA"},
		{name: "bad salt encoding", encoded: "$argon2id$v=19$m=65536,t=1,p=4$!!!$aGFzaA"},
		{name: "bad digest encoding", encoded: "$argon2id$v=19$m=65536,t=1,p=4$c2FsdA$!!!"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ok, err := VerifyPassword("anything", tc.encoded)
			if ok {
				t.Fatal("malformed hash must never verify")
			}
			if !errors.Is(err, ErrMalformedPasswordHash) {
				t.Fatalf("expected ErrMalformedPasswordHash, got %v", err)
			}
		})
	}
}

func TestVerifyPassword_ParametersComeFromRecord(t *testing.T) {
	// A record hashed under lighter parameters must still verify: the
	// stored string carries its own cost settings, so tuning the
	// defaults later does not invalidate existing hashes.
	salt := []byte("0123456789abcdef")
	key := argon2.IDKey([]byte("legacy password"), salt, 2, 32*1024, 2, 32)

	legacy := fmt.Sprintf(
		"$argon2id$v=%d$m=32768,t=2,p=2$%s$%s",
		argon2.Version,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	)

	ok, err := VerifyPassword("legacy password", legacy)
	if err != nil {
		t.Fatalf("VerifyPassword returned error: %v", err)
	}
	if !ok {
		t.Fatal("record with its own parameters must verify")
	}
}
