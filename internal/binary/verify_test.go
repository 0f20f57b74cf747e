package binary

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func sha256Hex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// writeArtifact lays down a binary and optional sidecar in dir and returns
// the binary path.
func writeArtifact(t *testing.T, dir, name string, content []byte, sidecar string) string {
	t.Helper()

	binaryPath := filepath.Join(dir, name)
	if err := os.WriteFile(binaryPath, content, 0o755); err != nil {
		t.Fatalf("failed to write binary: %v", err)
	}

	if sidecar != "" {
		if err := os.WriteFile(SidecarPath(binaryPath), []byte(sidecar), 0o644); err != nil {
			t.Fatalf("failed to write sidecar: %v", err)
		}
	}

	return binaryPath
}

func TestIsVerified(t *testing.T) {
	content := []byte("revyl binary payload")
	digest := sha256Hex(content)

	tests := []struct {
		name  string
		setup func(t *testing.T, dir string) string
		want  bool
	}{
		{
			name: "matching_sidecar",
			setup: func(t *testing.T, dir string) string {
				return writeArtifact(t, dir, "revyl", content, digest+"\n")
			},
			want: true,
		},
		{
			name: "uppercase_sidecar_digest",
			setup: func(t *testing.T, dir string) string {
				return writeArtifact(t, dir, "revyl", content, strings.ToUpper(digest)+"\n")
			},
			want: true,
		},
		{
			name: "sidecar_without_newline",
			setup: func(t *testing.T, dir string) string {
				return writeArtifact(t, dir, "revyl", content, digest)
			},
			want: true,
		},
		{
			name: "mismatched_sidecar",
			setup: func(t *testing.T, dir string) string {
				return writeArtifact(t, dir, "revyl", content, sha256Hex([]byte("other"))+"\n")
			},
			want: false,
		},
		{
			name: "missing_sidecar",
			setup: func(t *testing.T, dir string) string {
				return writeArtifact(t, dir, "revyl", content, "")
			},
			want: false,
		},
		{
			name: "empty_sidecar",
			setup: func(t *testing.T, dir string) string {
				return writeArtifact(t, dir, "revyl", content, "\n")
			},
			want: false,
		},
		{
			name: "missing_binary",
			setup: func(t *testing.T, dir string) string {
				binaryPath := filepath.Join(dir, "revyl")
				if err := os.WriteFile(SidecarPath(binaryPath), []byte(digest+"\n"), 0o644); err != nil {
					t.Fatalf("failed to write sidecar: %v", err)
				}
				return binaryPath
			},
			want: false,
		},
		{
			name: "missing_both",
			setup: func(t *testing.T, dir string) string {
				return filepath.Join(dir, "revyl")
			},
			want: false,
		},
		{
			name: "tampered_binary",
			setup: func(t *testing.T, dir string) string {
				binaryPath := writeArtifact(t, dir, "revyl", content, digest+"\n")
				if err := os.WriteFile(binaryPath, []byte("tampered"), 0o755); err != nil {
					t.Fatalf("failed to tamper binary: %v", err)
				}
				return binaryPath
			},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			binaryPath := tt.setup(t, t.TempDir())
			if got := IsVerified(binaryPath); got != tt.want {
				t.Errorf("IsVerified = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFileSHA256(t *testing.T) {
	dir := t.TempDir()
	content := []byte("some bytes to hash")
	path := filepath.Join(dir, "file")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	got, err := fileSHA256(path)
	if err != nil {
		t.Fatalf("fileSHA256 failed: %v", err)
	}

	if want := sha256Hex(content); got != want {
		t.Errorf("digest = %s, want %s", got, want)
	}
}

func TestFileSHA256MissingFile(t *testing.T) {
	if _, err := fileSHA256(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestSidecarRoundTrip(t *testing.T) {
	dir := t.TempDir()
	binaryPath := filepath.Join(dir, "revyl")

	if err := writeSidecar(binaryPath, "ABCDEF0123"); err != nil {
		t.Fatalf("writeSidecar failed: %v", err)
	}

	raw, err := os.ReadFile(SidecarPath(binaryPath))
	if err != nil {
		t.Fatalf("failed to read sidecar: %v", err)
	}
	if string(raw) != "abcdef0123\n" {
		t.Errorf("sidecar content = %q, want lowercase digest with trailing newline", raw)
	}

	stored, err := readSidecar(SidecarPath(binaryPath))
	if err != nil {
		t.Fatalf("readSidecar failed: %v", err)
	}
	if stored != "abcdef0123" {
		t.Errorf("readSidecar = %q, want %q", stored, "abcdef0123")
	}
}

func TestSidecarPath(t *testing.T) {
	if got := SidecarPath("/home/u/.revyl/bin/revyl-linux-amd64"); got != "/home/u/.revyl/bin/revyl-linux-amd64.sha256" {
		t.Errorf("SidecarPath = %q", got)
	}
}
