package binary

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/RevylAI/revyl-cli/internal/platform"
)

const (
	// DefaultRepo is the GitHub repository the binary is released from.
	DefaultRepo = "RevylAI/revyl-cli"
	// DefaultBaseURL is the host that serves release downloads.
	DefaultBaseURL = "https://github.com"
	// VersionLatest selects the most recent published release.
	VersionLatest = "latest"
	// DefaultUserAgent is the User-Agent header sent with requests.
	DefaultUserAgent = "revyl-wrapper/1.0"
)

// Config holds configuration for a Provisioner. The zero value of every
// field selects a sensible default.
type Config struct {
	// Dir is the wrapper's state directory (default: ~/.revyl).
	// The binary lives under Dir/bin.
	Dir string
	// Repo is the GitHub "owner/name" releases are fetched from.
	Repo string
	// Version pins a release tag; default is the latest release.
	Version string
	// BaseURL overrides the release host (tests).
	BaseURL string
	// KeyringPath points at a GPG keyring used to verify the checksum
	// manifest's detached signature. Empty disables signature checks.
	KeyringPath string
	// Client is the HTTP client used for all fetches.
	Client *http.Client
	// Logger receives provisioning diagnostics; default is a no-op.
	Logger Logger
	// Progress enables a download progress bar on stderr.
	Progress bool
}

// Provisioner resolves, downloads, verifies, and invokes the Revyl binary.
// It assumes at most one provisioning operation in flight per artifact path
// within a process; cross-process races are covered only by the atomic
// rename that publishes a verified binary.
type Provisioner struct {
	binDir      string
	repo        string
	version     string
	baseURL     string
	keyringPath string
	client      *http.Client
	log         Logger
	progress    bool
}

// NewProvisioner creates a Provisioner, applying defaults for unset fields.
func NewProvisioner(cfg Config) (*Provisioner, error) {
	dir := cfg.Dir
	if dir == "" {
		var err error
		dir, err = DefaultDir()
		if err != nil {
			return nil, err
		}
	}

	repo := cfg.Repo
	if repo == "" {
		repo = DefaultRepo
	}

	version := cfg.Version
	if version == "" {
		version = VersionLatest
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	client := cfg.Client
	if client == nil {
		// No overall timeout: binary downloads may legitimately take long
		// and cancellation is handled through the context.
		client = &http.Client{
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return fmt.Errorf("too many redirects")
				}
				return nil
			},
		}
	}

	log := cfg.Logger
	if log == nil {
		log = &noopLogger{}
	}

	return &Provisioner{
		binDir:      filepath.Join(dir, "bin"),
		repo:        repo,
		version:     version,
		baseURL:     baseURL,
		keyringPath: cfg.KeyringPath,
		client:      client,
		log:         log,
		progress:    cfg.Progress,
	}, nil
}

// Ensure returns the path of a verified binary, downloading one only when
// the local artifact is missing or fails the integrity check. When the
// existing binary is trusted, no network access happens at all.
func (p *Provisioner) Ensure(ctx context.Context) (string, error) {
	info, err := platform.Resolve(ctx)
	if err != nil {
		return "", err
	}

	binaryPath, err := p.artifactPath(info)
	if err != nil {
		return "", err
	}

	if IsVerified(binaryPath) {
		p.log.Debug("using verified binary", "path", binaryPath)
		return binaryPath, nil
	}

	p.log.Debug("local binary missing or unverified, downloading",
		"path", binaryPath, "version", p.version)
	return p.download(ctx, info)
}

// Download fetches and verifies the configured release for the current
// platform, replacing any prior install. Most callers want Ensure instead.
func (p *Provisioner) Download(ctx context.Context) (string, error) {
	info, err := platform.Resolve(ctx)
	if err != nil {
		return "", err
	}
	return p.download(ctx, info)
}

// BinaryPath returns the deterministic install path for the current
// platform, creating the containing directory as needed. It does not check
// whether a binary is actually present or trusted.
func (p *Provisioner) BinaryPath(ctx context.Context) (string, error) {
	info, err := platform.Resolve(ctx)
	if err != nil {
		return "", err
	}
	return p.artifactPath(info)
}

// ReleasesPageURL returns the human-browsable releases page, used in error
// messages as a manual-recovery pointer.
func (p *Provisioner) ReleasesPageURL() string {
	return fmt.Sprintf("%s/%s/releases", p.baseURL, p.repo)
}

// DefaultDir returns the wrapper's per-user state directory, ~/.revyl.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".revyl"), nil
}

// artifactPath computes the install path for a resolved platform and
// ensures the bin directory exists.
func (p *Provisioner) artifactPath(info *platform.Info) (string, error) {
	if err := os.MkdirAll(p.binDir, 0o755); err != nil {
		return "", fmt.Errorf("create bin dir: %w", err)
	}
	return filepath.Join(p.binDir, info.AssetName()), nil
}

// assetURL constructs the release download URL for an asset. The latest
// release and pinned versions use different URL shapes.
func (p *Provisioner) assetURL(asset string) string {
	if p.version == VersionLatest {
		return fmt.Sprintf("%s/%s/releases/latest/download/%s", p.baseURL, p.repo, asset)
	}
	return fmt.Sprintf("%s/%s/releases/download/%s/%s", p.baseURL, p.repo, p.version, asset)
}
