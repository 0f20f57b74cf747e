package binary

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ProtonMail/go-crypto/openpgp" //nolint:staticcheck // Using ProtonMail's maintained fork
)

// hashChunkSize is the buffer size for streaming digest computation.
const hashChunkSize = 1 << 20

// SidecarPath returns the digest sidecar path for a binary path.
func SidecarPath(binaryPath string) string {
	return binaryPath + ".sha256"
}

// IsVerified reports whether a local binary is trusted: both the binary and
// its sidecar exist, and the binary's recomputed SHA256 digest matches the
// sidecar's stored digest. Any I/O error counts as untrusted; this check
// never fails the caller.
func IsVerified(binaryPath string) bool {
	expected, err := readSidecar(SidecarPath(binaryPath))
	if err != nil || expected == "" {
		return false
	}

	actual, err := fileSHA256(binaryPath)
	if err != nil {
		return false
	}

	return strings.EqualFold(actual, expected)
}

// fileSHA256 computes the streaming SHA256 digest of a file.
func fileSHA256(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	hasher := sha256.New()
	buf := make([]byte, hashChunkSize)
	if _, err := io.CopyBuffer(hasher, file, buf); err != nil {
		return "", err
	}

	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// readSidecar reads the stored digest from a sidecar file.
func readSidecar(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.ToLower(strings.TrimSpace(string(data))), nil
}

// writeSidecar records the verified digest next to the binary. Only the
// verified download path calls this, immediately after promoting a binary;
// a sidecar must never be written speculatively.
func writeSidecar(binaryPath, digest string) error {
	content := strings.ToLower(strings.TrimSpace(digest)) + "\n"
	if err := os.WriteFile(SidecarPath(binaryPath), []byte(content), 0o644); err != nil {
		return fmt.Errorf("write checksum sidecar: %w", err)
	}
	return nil
}

// verifyDetachedSignature checks a detached GPG signature over message
// bytes against the keyring at keyringPath. Armored forms are tried first
// for both the keyring and the signature, then binary forms.
func verifyDetachedSignature(keyringPath string, message, sig []byte) error {
	keyring, err := loadKeyring(keyringPath)
	if err != nil {
		return fmt.Errorf("load keyring: %w", err)
	}

	_, err = openpgp.CheckArmoredDetachedSignature(keyring, bytes.NewReader(message), bytes.NewReader(sig), nil)
	if err != nil {
		_, err = openpgp.CheckDetachedSignature(keyring, bytes.NewReader(message), bytes.NewReader(sig), nil)
	}
	if err != nil {
		return fmt.Errorf("verify signature: %w", err)
	}

	return nil
}

// loadKeyring reads a GPG keyring file, armored or binary.
func loadKeyring(path string) (openpgp.EntityList, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open keyring: %w", err)
	}
	defer file.Close()

	keyring, err := openpgp.ReadArmoredKeyRing(file)
	if err != nil {
		if _, serr := file.Seek(0, io.SeekStart); serr != nil {
			return nil, fmt.Errorf("rewind keyring: %w", serr)
		}
		keyring, err = openpgp.ReadKeyRing(file)
		if err != nil {
			return nil, fmt.Errorf("read keyring: %w", err)
		}
	}

	if len(keyring) == 0 {
		return nil, fmt.Errorf("keyring is empty")
	}

	return keyring, nil
}
