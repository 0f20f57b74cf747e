package binary

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// manifestName is the fixed release asset holding trusted digests.
const manifestName = "checksums.txt"

// manifestLineLimit bounds a single manifest line; anything longer is not a
// checksum entry.
const manifestLineLimit = 1 << 20

// Manifest maps release asset filenames to lowercase hex SHA256 digests.
type Manifest map[string]string

// DigestFor returns the trusted digest for an asset name.
func (m Manifest) DigestFor(asset string) (string, bool) {
	digest, ok := m[asset]
	return digest, ok
}

// ParseManifest parses the checksums.txt line format:
//
//	<hex-digest><whitespace>[*]<filename>
//
// Blank lines and lines starting with # are ignored. Lines that do not
// split into exactly two fields are skipped, not fatal. A leading * on the
// filename (binary-mode marker from sha256sum) is stripped, digests are
// lowercased, and a repeated filename keeps the last digest seen.
//
// A scan failure (a line past manifestLineLimit) is an error: it would
// silently drop every entry after it, so no partial result is returned.
func ParseManifest(data []byte) (Manifest, error) {
	manifest := make(Manifest)

	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, bufio.MaxScanTokenSize), manifestLineLimit)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) != 2 {
			continue
		}

		digest := strings.ToLower(fields[0])
		filename := strings.TrimSpace(strings.TrimPrefix(fields[1], "*"))
		if digest == "" || filename == "" {
			continue
		}

		manifest[filename] = digest
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan manifest: %w", err)
	}

	return manifest, nil
}

// FetchManifest downloads and parses the checksum manifest for the
// configured release. When a keyring is configured, the manifest's detached
// signature (checksums.txt.asc, falling back to .sig) must verify against
// it before any entry is trusted.
//
// Transport failures surface as ErrManifestUnavailable and are not retried.
func (p *Provisioner) FetchManifest(ctx context.Context) (Manifest, error) {
	manifestURL := p.assetURL(manifestName)

	raw, err := p.fetchBytes(ctx, manifestURL)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w: %w", manifestName, ErrManifestUnavailable, err)
	}

	if p.keyringPath != "" {
		sig, err := p.fetchBytes(ctx, manifestURL+".asc")
		if err != nil {
			sig, err = p.fetchBytes(ctx, manifestURL+".sig")
		}
		if err != nil {
			return nil, fmt.Errorf("fetch manifest signature: %w: %w", ErrManifestSignature, err)
		}

		if err := verifyDetachedSignature(p.keyringPath, raw, sig); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrManifestSignature, err)
		}
		p.log.Debug("manifest signature verified", "keyring", p.keyringPath)
	}

	manifest, err := ParseManifest(raw)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w: %w", manifestName, ErrManifestUnavailable, err)
	}
	return manifest, nil
}

// fetch performs a single GET and returns the open response body on a 200.
// The caller owns the body. There is no retry: one failed attempt is one
// reported failure.
func (p *Provisioner) fetch(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", DefaultUserAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	return resp, nil
}

// fetchBytes performs a single GET and reads the whole body.
func (p *Provisioner) fetchBytes(ctx context.Context, url string) ([]byte, error) {
	resp, err := p.fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	return data, nil
}
