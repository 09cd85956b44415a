// Package cli locates the bundled mcp-fileserver binary for commands that
// fall back to it when no server is configured.
//
// # Discovery
//
// The Discoverer interface finds the server binary:
//
//	discoverer := cli.NewDiscoverer(&cli.Config{
//	    WantVersion: mcpclient.Version,
//	    Logger:      slog.Default(),
//	})
//	path, err := discoverer.Discover(ctx)
//
// Discovery searches in the following order:
//  1. Explicit path in Config.BinaryPath (if provided)
//  2. Next to the current executable (the binaries install together)
//  3. System PATH
//  4. Common installation directories (/usr/local/bin, /usr/bin, ~/.local/bin)
//
// # Version Probe
//
// After discovery the binary's --version output is compared against
// Config.WantVersion and a warning is emitted when the server lags behind
// the client library. The probe can be skipped via Config.SkipVersionCheck
// or the MCPFS_SKIP_VERSION_CHECK environment variable.
package cli
