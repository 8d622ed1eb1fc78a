package crypto

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strings"
)

// LoadOrCreateKeyFile reads a hex-encoded K-256 private key from the given
// file path. If the file does not exist, a fresh key is generated and
// written out with restrictive permissions, then loaded back.
func LoadOrCreateKeyFile(kfile string) (*PrivateKeyK256, error) {
	_, err := os.Stat(kfile)
	if errors.Is(err, os.ErrNotExist) {
		// file doesn't exist; create a new key and write it out, then we will re-read it
		if err := CreateKeyFile(kfile); err != nil {
			return nil, err
		}
	}

	kb, err := os.ReadFile(kfile)
	if err != nil {
		return nil, err
	}

	raw, err := hex.DecodeString(strings.TrimSpace(string(kb)))
	if err != nil {
		return nil, fmt.Errorf("parsing hex key file %s: %w", kfile, err)
	}

	return ParsePrivateBytesK256(raw)
}

// CreateKeyFile generates a new K-256 private key and writes it to the
// given path as hex.
func CreateKeyFile(kfile string) error {
	key, err := GeneratePrivateKeyK256()
	if err != nil {
		return err
	}

	enc := hex.EncodeToString(key.Bytes())
	if err := os.WriteFile(kfile, []byte(enc), 0600); err != nil {
		return fmt.Errorf("writing key file %s: %w", kfile, err)
	}
	return nil
}
