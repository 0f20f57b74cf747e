// Package binary provisions the Revyl CLI binary that this wrapper invokes.
//
// # Security Model
//
// The binary is downloaded only from the official GitHub releases of the
// configured repository and is never installed without verification:
//   - Every release publishes a checksums.txt manifest; the downloaded
//     asset's SHA256 digest must match the manifest entry.
//   - When a GPG keyring is configured, the manifest itself must carry a
//     valid detached signature before any digest from it is trusted.
//
// A verified install is a pair of files: the binary and a .sha256 sidecar
// holding its trusted digest. The sidecar is written only immediately after
// a verified download; a binary without a matching sidecar is untrusted and
// triggers a fresh download.
//
// # Atomicity
//
// Downloads stream into a temporary file in the destination directory and
// are promoted with a single rename, so the final path is never observed
// partially written. Every failure path removes the temporary file and
// leaves any previously installed binary untouched.
//
// # Usage
//
//	prov, err := binary.NewProvisioner(binary.Config{})
//	if err != nil {
//	    return err
//	}
//	path, err := prov.Ensure(ctx) // fast local check, download on miss
package binary
