// Package security hashes and verifies the 4 digit PIN credential with
// argon2id. Parameters are read from configuration with safe fallbacks so
// the package works before any config file is loaded.
package security

import (
	cryptorand "crypto/rand"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/viper"
	"golang.org/x/crypto/argon2"
)

const (
	defaultSaltLength = 16
	defaultTime       = 1
	defaultMemory     = 64 * 1024
	defaultThreads    = 4
	defaultKeyLength  = 32
)

func setting(key string, def int) int {
	if v := viper.GetInt(key); v > 0 {
		return v
	}
	return def
}

// HashPIN derives a salted argon2id digest of the PIN, encoded as
// base64(salt)$base64(hash).
func HashPIN(pin int) (string, error) {
	salt := make([]byte, setting("argon2.salt_length", defaultSaltLength))
	if _, err := cryptorand.Read(salt); err != nil {
		return "", err
	}

	hash := argon2.IDKey([]byte(strconv.Itoa(pin)), salt,
		uint32(setting("argon2.time", defaultTime)),
		uint32(setting("argon2.memory", defaultMemory)),
		uint8(setting("argon2.threads", defaultThreads)),
		uint32(setting("argon2.key_length", defaultKeyLength)))
	return fmt.Sprintf("%s$%s", base64.StdEncoding.EncodeToString(salt), base64.StdEncoding.EncodeToString(hash)), nil
}

// VerifyPIN recomputes the digest with the stored salt and compares.
func VerifyPIN(pin int, hashedPIN string) bool {
	parts := strings.Split(hashedPIN, "$")
	if len(parts) != 2 {
		return false
	}

	salt, err := base64.StdEncoding.DecodeString(parts[0])
	if err != nil {
		return false
	}

	hash, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		return false
	}

	computed := argon2.IDKey([]byte(strconv.Itoa(pin)), salt,
		uint32(setting("argon2.time", defaultTime)),
		uint32(setting("argon2.memory", defaultMemory)),
		uint8(setting("argon2.threads", defaultThreads)),
		uint32(setting("argon2.key_length", defaultKeyLength)))
	return string(hash) == string(computed)
}
