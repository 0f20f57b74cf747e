package binary

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/RevylAI/revyl-cli/internal/platform"
)

// hostAsset resolves the asset name for the machine running the tests.
func hostAsset(t *testing.T) string {
	t.Helper()

	info, err := platform.Resolve(context.Background())
	if err != nil {
		t.Skipf("test host platform unsupported: %v", err)
	}
	return info.AssetName()
}

// releaseServer serves a checksums.txt and one asset, mimicking the GitHub
// release download layout. It records every requested path.
type releaseServer struct {
	*httptest.Server
	requested []string
}

func newReleaseServer(t *testing.T, manifest string, assets map[string][]byte) *releaseServer {
	t.Helper()

	rs := &releaseServer{}
	rs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rs.requested = append(rs.requested, r.URL.Path)

		name := filepath.Base(r.URL.Path)
		if name == manifestName {
			if _, err := w.Write([]byte(manifest)); err != nil {
				t.Errorf("failed to write manifest: %v", err)
			}
			return
		}
		if body, ok := assets[name]; ok {
			if _, err := w.Write(body); err != nil {
				t.Errorf("failed to write asset: %v", err)
			}
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(rs.Close)
	return rs
}

// tempLeftovers returns any orphaned download temp files in dir.
func tempLeftovers(t *testing.T, dir string) []string {
	t.Helper()

	matches, err := filepath.Glob(filepath.Join(dir, ".revyl-*"))
	if err != nil {
		t.Fatalf("glob failed: %v", err)
	}
	return matches
}

func TestDownloadVerifiedSuccess(t *testing.T) {
	asset := hostAsset(t)
	content := []byte("revyl binary v1")
	digest := sha256Hex(content)

	server := newReleaseServer(t,
		fmt.Sprintf("%s  %s\n", digest, asset),
		map[string][]byte{asset: content},
	)

	dir := t.TempDir()
	prov := newTestProvisioner(t, Config{Dir: dir, BaseURL: server.URL})

	binaryPath, err := prov.Download(context.Background())
	if err != nil {
		t.Fatalf("Download failed: %v", err)
	}

	got, err := os.ReadFile(binaryPath)
	if err != nil {
		t.Fatalf("failed to read installed binary: %v", err)
	}
	if string(got) != string(content) {
		t.Errorf("binary content mismatch: %q", got)
	}

	if runtime.GOOS != "windows" {
		info, err := os.Stat(binaryPath)
		if err != nil {
			t.Fatalf("stat failed: %v", err)
		}
		if info.Mode().Perm()&0o111 == 0 {
			t.Errorf("binary not executable: mode %v", info.Mode())
		}
	}

	sidecar, err := os.ReadFile(SidecarPath(binaryPath))
	if err != nil {
		t.Fatalf("failed to read sidecar: %v", err)
	}
	if string(sidecar) != digest+"\n" {
		t.Errorf("sidecar = %q, want %q", sidecar, digest+"\n")
	}

	if !IsVerified(binaryPath) {
		t.Error("freshly downloaded binary should be verified")
	}

	if leftovers := tempLeftovers(t, filepath.Dir(binaryPath)); len(leftovers) > 0 {
		t.Errorf("temp files left behind: %v", leftovers)
	}
}

func TestDownloadChecksumMismatch(t *testing.T) {
	asset := hostAsset(t)
	content := []byte("revyl binary v1")
	wrongDigest := sha256Hex([]byte("completely different bytes"))

	server := newReleaseServer(t,
		fmt.Sprintf("%s  %s\n", wrongDigest, asset),
		map[string][]byte{asset: content},
	)

	dir := t.TempDir()
	prov := newTestProvisioner(t, Config{Dir: dir, BaseURL: server.URL})

	_, err := prov.Download(context.Background())
	if !errors.Is(err, ErrChecksumMismatch) {
		t.Fatalf("error = %v, want ErrChecksumMismatch", err)
	}

	binDir := filepath.Join(dir, "bin")
	if _, err := os.Stat(filepath.Join(binDir, asset)); !os.IsNotExist(err) {
		t.Errorf("final artifact should not exist after mismatch, stat err = %v", err)
	}
	if leftovers := tempLeftovers(t, binDir); len(leftovers) > 0 {
		t.Errorf("temp files left behind: %v", leftovers)
	}
}

func TestDownloadChecksumMismatchKeepsExisting(t *testing.T) {
	asset := hostAsset(t)
	existing := []byte("previously installed binary")
	wrongDigest := sha256Hex([]byte("unrelated"))

	server := newReleaseServer(t,
		fmt.Sprintf("%s  %s\n", wrongDigest, asset),
		map[string][]byte{asset: []byte("new bytes that will fail verification")},
	)

	dir := t.TempDir()
	binDir := filepath.Join(dir, "bin")
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		t.Fatalf("failed to create bin dir: %v", err)
	}
	existingPath := writeArtifact(t, binDir, asset, existing, sha256Hex(existing)+"\n")

	prov := newTestProvisioner(t, Config{Dir: dir, BaseURL: server.URL})

	if _, err := prov.Download(context.Background()); !errors.Is(err, ErrChecksumMismatch) {
		t.Fatalf("error = %v, want ErrChecksumMismatch", err)
	}

	got, err := os.ReadFile(existingPath)
	if err != nil {
		t.Fatalf("failed to read existing binary: %v", err)
	}
	if string(got) != string(existing) {
		t.Error("pre-existing binary was modified by a failed download")
	}
}

func TestDownloadChecksumNotFound(t *testing.T) {
	asset := hostAsset(t)

	server := newReleaseServer(t,
		"deadbeef  revyl-other-binary\n",
		map[string][]byte{asset: []byte("should never be fetched")},
	)

	dir := t.TempDir()
	prov := newTestProvisioner(t, Config{Dir: dir, BaseURL: server.URL})

	_, err := prov.Download(context.Background())
	if !errors.Is(err, ErrChecksumNotFound) {
		t.Fatalf("error = %v, want ErrChecksumNotFound", err)
	}

	// The asset itself must not have been requested.
	for _, path := range server.requested {
		if strings.HasSuffix(path, asset) {
			t.Errorf("asset was fetched despite missing checksum: %s", path)
		}
	}
}

func TestDownloadManifestUnavailableAborts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	prov := newTestProvisioner(t, Config{BaseURL: server.URL})

	_, err := prov.Download(context.Background())
	if !errors.Is(err, ErrManifestUnavailable) {
		t.Errorf("error = %v, want ErrManifestUnavailable", err)
	}
}

func TestDownloadTransportFailureCleansUp(t *testing.T) {
	asset := hostAsset(t)
	content := []byte("revyl binary v1")
	digest := sha256Hex(content)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if filepath.Base(r.URL.Path) == manifestName {
			fmt.Fprintf(w, "%s  %s\n", digest, asset)
			return
		}
		// Advertise more bytes than are sent so the client sees a
		// truncated body mid-stream.
		w.Header().Set("Content-Length", "1048576")
		if _, err := w.Write(content[:4]); err != nil {
			return
		}
	}))
	defer server.Close()

	dir := t.TempDir()
	prov := newTestProvisioner(t, Config{Dir: dir, BaseURL: server.URL})

	_, err := prov.Download(context.Background())
	if !errors.Is(err, ErrDownloadFailed) {
		t.Fatalf("error = %v, want ErrDownloadFailed", err)
	}

	binDir := filepath.Join(dir, "bin")
	if _, err := os.Stat(filepath.Join(binDir, asset)); !os.IsNotExist(err) {
		t.Errorf("final artifact should not exist after transport failure, stat err = %v", err)
	}
	if leftovers := tempLeftovers(t, binDir); len(leftovers) > 0 {
		t.Errorf("temp files left behind: %v", leftovers)
	}
}
