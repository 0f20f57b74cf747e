package binary

import "errors"

// Provisioning errors form a closed set so callers can tell transport
// failures (a retry might help) from conditions that need a new release.
// All are surfaced through errors.Is on the error chain.
var (
	// ErrManifestUnavailable indicates the checksums.txt manifest could not
	// be fetched: network failure, non-200 status, or an unreadable body.
	ErrManifestUnavailable = errors.New("checksum manifest unavailable")

	// ErrManifestSignature indicates a keyring is configured but the
	// manifest's detached signature is missing or does not verify.
	ErrManifestSignature = errors.New("checksum manifest signature invalid")

	// ErrChecksumNotFound indicates the manifest has no entry for the
	// platform's asset. No download is attempted in this case.
	ErrChecksumNotFound = errors.New("checksum not found for asset")

	// ErrChecksumMismatch indicates the downloaded bytes hash to a digest
	// other than the manifest entry. The download is discarded.
	ErrChecksumMismatch = errors.New("checksum mismatch")

	// ErrDownloadFailed wraps network or I/O failures while streaming the
	// asset. The final artifact path is untouched when this is returned.
	ErrDownloadFailed = errors.New("download failed")
)
