package binary

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/schollz/progressbar/v3"

	"github.com/RevylAI/revyl-cli/internal/platform"
)

// download performs the verified download pipeline for a resolved platform:
// manifest lookup, streamed download to a temp file, digest comparison, and
// atomic promotion plus sidecar write. On every failure path the temp file
// is removed and the final artifact path is left untouched.
func (p *Provisioner) download(ctx context.Context, info *platform.Info) (string, error) {
	asset := info.AssetName()

	manifest, err := p.FetchManifest(ctx)
	if err != nil {
		return "", err
	}

	expected, ok := manifest.DigestFor(asset)
	if !ok {
		// No asset fetch happens without a digest to hold it against.
		return "", fmt.Errorf("%w: no entry for %q in %s", ErrChecksumNotFound, asset, manifestName)
	}

	binaryPath, err := p.artifactPath(info)
	if err != nil {
		return "", err
	}

	assetURL := p.assetURL(asset)
	p.log.Info("downloading binary", "url", assetURL)

	tmpPath, actual, err := p.downloadToTemp(ctx, assetURL, filepath.Dir(binaryPath), asset)
	if err != nil {
		return "", fmt.Errorf("download %s: %w: %w", asset, ErrDownloadFailed, err)
	}

	if !strings.EqualFold(actual, expected) {
		p.removeTemp(tmpPath)
		return "", fmt.Errorf("%w for %s: expected %s, got %s", ErrChecksumMismatch, asset, expected, actual)
	}

	// Executable bit before promotion; meaningless on Windows.
	if !info.IsWindows() {
		if err := os.Chmod(tmpPath, 0o755); err != nil {
			p.removeTemp(tmpPath)
			return "", fmt.Errorf("set executable: %w: %w", ErrDownloadFailed, err)
		}
	}

	// Single atomic operation that replaces any prior binary.
	if err := os.Rename(tmpPath, binaryPath); err != nil {
		p.removeTemp(tmpPath)
		return "", fmt.Errorf("promote binary: %w: %w", ErrDownloadFailed, err)
	}

	if err := writeSidecar(binaryPath, expected); err != nil {
		// The binary is in place but without a sidecar it stays untrusted,
		// so the next Ensure re-downloads rather than running it silently.
		return "", fmt.Errorf("%w: %w", ErrDownloadFailed, err)
	}

	p.log.Info("binary verified and installed", "path", binaryPath, "sha256", expected)
	return binaryPath, nil
}

// downloadToTemp streams a URL into a fresh temp file inside dir, hashing
// the bytes as they arrive, and returns the temp path and hex digest. The
// temp file lives in the destination directory so the later rename stays on
// one filesystem. On error the temp file has already been cleaned up.
func (p *Provisioner) downloadToTemp(ctx context.Context, url, dir, asset string) (string, string, error) {
	resp, err := p.fetch(ctx, url)
	if err != nil {
		return "", "", err
	}
	defer resp.Body.Close()

	tmpFile, err := os.CreateTemp(dir, ".revyl-*")
	if err != nil {
		return "", "", fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	cleanupNeeded := true
	defer func() {
		tmpFile.Close()
		if cleanupNeeded {
			p.removeTemp(tmpPath)
		}
	}()

	hasher := sha256.New()
	var dst io.Writer = io.MultiWriter(tmpFile, hasher)

	if p.progress {
		bar := progressbar.DefaultBytes(resp.ContentLength, "downloading "+asset)
		dst = io.MultiWriter(dst, bar)
	}

	buf := make([]byte, hashChunkSize)
	if _, err := io.CopyBuffer(dst, resp.Body, buf); err != nil {
		return "", "", fmt.Errorf("copy response body: %w", err)
	}

	if err := tmpFile.Close(); err != nil {
		return "", "", fmt.Errorf("close temp file: %w", err)
	}

	cleanupNeeded = false
	return tmpPath, hex.EncodeToString(hasher.Sum(nil)), nil
}

// removeTemp deletes a temp file best-effort. Cleanup failure is not
// surfaced over the primary error; it only leaves an orphaned temp file.
func (p *Provisioner) removeTemp(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		p.log.Debug("temp file cleanup failed", "path", path, "error", err)
	}
}
