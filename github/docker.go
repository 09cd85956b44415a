package github

import (
	"context"
	"errors"
	"os/exec"
	"time"

	mcpclient "github.com/Sathishruw/mcp-filesystem-client"
)

// dockerCheckTimeout bounds the daemon probe so a wedged Docker socket cannot
// stall Start indefinitely.
const dockerCheckTimeout = 5 * time.Second

var (
	errDockerNotFound   = errors.New("docker CLI not found in PATH")
	errDockerNotRunning = errors.New("docker daemon not responding")
)

// dockerCLIInstalled reports whether the docker CLI is on the PATH.
func dockerCLIInstalled() bool {
	_, err := exec.LookPath("docker")
	return err == nil
}

// dockerDaemonRunning reports whether the Docker daemon answers `docker info`.
func dockerDaemonRunning(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, dockerCheckTimeout)
	defer cancel()

	return exec.CommandContext(ctx, "docker", "info").Run() == nil
}

// checkDocker verifies Docker is usable before any container is spawned.
// A missing runtime surfaces as a LaunchError.
func checkDocker(ctx context.Context) error {
	if !dockerCLIInstalled() {
		return &mcpclient.LaunchError{Command: "docker", Err: errDockerNotFound}
	}
	if !dockerDaemonRunning(ctx) {
		return &mcpclient.LaunchError{Command: "docker", Err: errDockerNotRunning}
	}

	return nil
}
