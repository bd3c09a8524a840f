package utils

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Argon2id parameters following the OWASP recommendation:
// 1 iteration over 64 MiB with 4 lanes, producing a 32-byte key.
const (
	argonTime    uint32 = 1
	argonMemory  uint32 = 64 * 1024
	argonThreads uint8  = 4
	argonKeyLen  uint32 = 32
	argonSaltLen        = 16
)

// ErrMalformedPasswordHash is returned by VerifyPassword when the stored
// hash string cannot be decoded as a PHC-formatted argon2id record.
var ErrMalformedPasswordHash = errors.New("malformed password hash")

// HashPassword derives an argon2id digest of the password under a fresh
// random salt and returns it encoded in PHC string format:
//
//	$argon2id$v=19$m=65536,t=1,p=4$<salt>$<digest>
//
// The encoded string carries its own parameters, so they can be tuned
// later without invalidating previously stored hashes.
//
// Parameters:
//
//	password - plaintext password to hash
//
// Returns:
//
//	string - PHC-encoded argon2id hash ready for storage
//	error  - non-nil only if the random salt cannot be generated
//
// Example usage:
//
//	hash, err := utils.HashPassword("correct horse battery staple")
func HashPassword(password string) (string, error) {
	salt := make([]byte, argonSaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate password salt: %w", err)
	}

	key := argon2.IDKey([]byte(password), salt, argonTime, argonMemory, argonThreads, argonKeyLen)

	encoded := fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		argonMemory, argonTime, argonThreads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	)

	return encoded, nil
}

// VerifyPassword reports whether password matches the PHC-encoded argon2id
// hash produced by HashPassword. The digest comparison is constant-time.
//
// Parameters:
//
//	password - plaintext password to check
//	encoded  - stored PHC-encoded argon2id hash
//
// Returns:
//
//	bool  - true if the password matches
//	error - ErrMalformedPasswordHash if the stored hash cannot be parsed
//
// Example usage:
//
//	ok, err := utils.VerifyPassword(req.Password, user.PasswordHash)
func VerifyPassword(password, encoded string) (bool, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return false, ErrMalformedPasswordHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return false, ErrMalformedPasswordHash
	}
	if version != argon2.Version {
		return false, fmt.Errorf("%w: unsupported argon2 version %d", ErrMalformedPasswordHash, version)
	}

	var memory, timeCost uint32
	var threads uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &timeCost, &threads); err != nil {
		return false, ErrMalformedPasswordHash
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false, ErrMalformedPasswordHash
	}

	want, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return false, ErrMalformedPasswordHash
	}

	got := argon2.IDKey([]byte(password), salt, timeCost, memory, threads, uint32(len(want)))

	return subtle.ConstantTimeCompare(got, want) == 1, nil
}
