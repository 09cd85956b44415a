package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/Sathishruw/mcp-filesystem-client/internal/errors"
)

const (
	// ServerBinary is the name of the bundled file server executable.
	ServerBinary = "mcp-fileserver"

	// VersionCheckTimeout bounds the version probe so a wedged binary
	// cannot stall startup.
	VersionCheckTimeout = 2 * time.Second
)

// Config holds configuration for server binary discovery.
type Config struct {
	// BinaryPath is an explicit server path that skips all searching.
	BinaryPath string

	// WantVersion is the version the client library ships with. When the
	// discovered binary reports an older version a warning is emitted.
	// Empty disables the probe.
	WantVersion string

	// SkipVersionCheck skips the version probe during discovery.
	// Can also be controlled via the MCPFS_SKIP_VERSION_CHECK env var.
	SkipVersionCheck bool

	// Logger is an optional logger for discovery operations.
	// If nil, a default no-op logger is used.
	Logger *slog.Logger
}

// Discoverer locates the bundled mcp-fileserver binary.
type Discoverer interface {
	// Discover returns the path of the server binary, or an error naming
	// every location that was searched.
	Discover(ctx context.Context) (string, error)
}

type discoverer struct {
	cfg *Config
	log *slog.Logger
}

// Compile-time verification that discoverer implements Discoverer.
var _ Discoverer = (*discoverer)(nil)

// NewDiscoverer creates a new server binary discoverer.
func NewDiscoverer(cfg *Config) Discoverer {
	if cfg == nil {
		cfg = &Config{}
	}

	log := cfg.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError + 1}))
	}

	return &discoverer{
		cfg: cfg,
		log: log,
	}
}

// Discover locates the server binary and probes its version.
func (d *discoverer) Discover(ctx context.Context) (string, error) {
	d.log.Debug("Discovering file server binary")

	path, err := d.findBinary()
	if err != nil {
		d.log.Error("Failed to find file server binary", "error", err)

		return "", err
	}

	d.log.Debug("Found file server binary", "path", path)

	d.checkVersion(ctx, path)

	return path, nil
}

// findBinary looks for the server binary next to the running executable,
// then on PATH, then in common install locations. The two binaries install
// together, so the sibling check comes first.
func (d *discoverer) findBinary() (string, error) {
	// If explicit path provided, use it and only it
	if d.cfg.BinaryPath != "" {
		d.log.Debug("Using explicit server path", "path", d.cfg.BinaryPath)

		if _, err := os.Stat(d.cfg.BinaryPath); err == nil {
			return d.cfg.BinaryPath, nil
		}

		return "", notFound([]string{d.cfg.BinaryPath})
	}

	searched := make([]string, 0, 5)

	if self, err := os.Executable(); err == nil {
		sibling := filepath.Join(filepath.Dir(self), ServerBinary)
		searched = append(searched, sibling)
		d.log.Debug("Checking next to the current executable", "path", sibling)

		if _, err := os.Stat(sibling); err == nil {
			return sibling, nil
		}
	}

	d.log.Debug("Searching PATH", "binary", ServerBinary)

	if path, err := exec.LookPath(ServerBinary); err == nil {
		d.log.Debug("Found on PATH", "path", path)

		return path, nil
	}

	searched = append(searched, "$PATH")

	commonPaths := []string{
		"/usr/local/bin/" + ServerBinary,
		"/usr/bin/" + ServerBinary,
	}

	if homeDir, err := os.UserHomeDir(); err == nil {
		commonPaths = append(commonPaths, filepath.Join(homeDir, ".local/bin", ServerBinary))
	}

	for _, path := range commonPaths {
		searched = append(searched, path)
		d.log.Debug("Checking common path", "path", path)

		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	d.log.Warn("File server binary not found", "searched_paths", searched)

	return "", notFound(searched)
}

func notFound(searched []string) error {
	return &errors.LaunchError{
		Command: ServerBinary,
		Err:     fmt.Errorf("not found; searched %s", strings.Join(searched, ", ")),
	}
}

// checkVersion probes the binary's version and warns when it lags behind the
// client library. Probe failures are silently ignored; an old server still
// speaks the protocol, it just may miss newer tools.
func (d *discoverer) checkVersion(ctx context.Context, path string) {
	if d.cfg.SkipVersionCheck || d.cfg.WantVersion == "" {
		d.log.Debug("Skipping server version check (configured)")

		return
	}

	if os.Getenv("MCPFS_SKIP_VERSION_CHECK") != "" {
		d.log.Debug("Skipping server version check (MCPFS_SKIP_VERSION_CHECK set)")

		return
	}

	ctx, cancel := context.WithTimeout(ctx, VersionCheckTimeout)
	defer cancel()

	output, err := exec.CommandContext(ctx, path, "--version").Output()
	if err != nil {
		d.log.Debug("Server version check failed", "error", err)

		return
	}

	// Cobra prints "mcp-fileserver version X.Y.Z"; pull out the X.Y.Z.
	versionStr := strings.TrimSpace(string(output))
	re := regexp.MustCompile(`([0-9]+\.[0-9]+\.[0-9]+)`)

	match := re.FindStringSubmatch(versionStr)
	if match == nil {
		d.log.Debug("Could not parse server version", "output", versionStr)

		return
	}

	version := match[1]
	if compareVersions(version, d.cfg.WantVersion) < 0 {
		d.log.Warn("File server binary is older than the client library",
			"version", version,
			"client_version", d.cfg.WantVersion,
		)

		fmt.Fprintf(os.Stderr,
			"Warning: %s version %s is older than the client library (%s). "+
				"Reinstall the server so both stay in step.\n",
			ServerBinary, version, d.cfg.WantVersion,
		)
	} else {
		d.log.Debug("Server version check passed", "version", version, "client_version", d.cfg.WantVersion)
	}
}

// compareVersions compares two semantic versions.
// Returns -1 if a < b, 0 if a == b, 1 if a > b.
func compareVersions(a, b string) int {
	aParts := strings.Split(a, ".")
	bParts := strings.Split(b, ".")

	for i := range 3 {
		aNum := 0
		bNum := 0

		if i < len(aParts) {
			aNum, _ = strconv.Atoi(aParts[i])
		}

		if i < len(bParts) {
			bNum, _ = strconv.Atoi(bParts[i])
		}

		if aNum < bNum {
			return -1
		}

		if aNum > bNum {
			return 1
		}
	}

	return 0
}
