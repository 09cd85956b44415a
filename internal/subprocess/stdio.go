// Package subprocess implements the stdio transport: it spawns an MCP server
// as a child process and frames newline-delimited JSON over its stdin/stdout.
package subprocess

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/Sathishruw/mcp-filesystem-client/internal/config"
	"github.com/Sathishruw/mcp-filesystem-client/internal/errors"
	"github.com/Sathishruw/mcp-filesystem-client/internal/rpc"
)

const (
	// maxScanTokenSize is the maximum buffer size for reading server output lines.
	maxScanTokenSize = 1024 * 1024 // 1MB
	// maxStderrBufferSize is the maximum size for the stderr buffer.
	// Stderr reading continues indefinitely (callback receives all lines),
	// but the buffer stops growing after this limit to prevent unbounded memory usage.
	maxStderrBufferSize = 10 * 1024 * 1024 // 10MB
)

// State is the lifecycle state of a transport session.
type State int32

// Session states. A session never moves backwards: once Closed it cannot be
// restarted; construct a new transport instead.
const (
	StateNotStarted State = iota
	StateRunning
	StateClosing
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "not_started"
	case StateRunning:
		return "running"
	case StateClosing:
		return "closing"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// StdioTransport implements Transport by spawning an MCP server subprocess.
//
// stdin and stdout are claimed entirely for protocol framing. stderr is
// diagnostic text: it is buffered (capped) for error reporting and optionally
// streamed to a callback, never parsed.
type StdioTransport struct {
	log            *slog.Logger
	options        *config.Options
	path           string
	cmd            *exec.Cmd
	stdin          io.WriteCloser
	stdout         io.ReadCloser
	stderr         io.ReadCloser
	stderrCallback func(string)
	closeGrace     time.Duration

	mu          sync.Mutex // protects stdin writes and state below
	state       State
	readStarted bool
	closing     bool // whether Close() has been called (intentional shutdown)
	stdinClosed bool // whether stdin was closed (EndInput, Close, or cancelled write)

	// closeCh is closed when Close begins so blocked channel sends in the
	// read goroutine abandon their work instead of stalling shutdown.
	closeCh chan struct{}

	// procExited is closed once the subprocess has been reaped; waitErr holds
	// the cmd.Wait result. waitOnce guarantees a single reaper.
	waitOnce   sync.Once
	waitErr    error
	procExited chan struct{}
}

// Compile-time verification that StdioTransport implements the Transport interface.
var _ config.Transport = (*StdioTransport)(nil)

// NewStdioTransport creates a transport for the command configured in options.
//
// The logger is used for operation tracking and debugging. Command resolution
// is deferred to Start(): an explicit path is used as-is, a bare name is
// looked up in PATH. Start() returns LaunchError if the executable cannot be
// located or spawned.
func NewStdioTransport(log *slog.Logger, options *config.Options) *StdioTransport {
	grace := options.CloseGrace
	if grace <= 0 {
		grace = config.DefaultCloseGrace
	}

	return &StdioTransport{
		log:            log.With("component", "stdio_transport"),
		options:        options,
		stderrCallback: options.Stderr,
		closeGrace:     grace,
		closeCh:        make(chan struct{}),
		procExited:     make(chan struct{}),
	}
}

// Start launches the server subprocess.
//
// It resolves the configured command, spawns the process with the configured
// environment and working directory, and wires up stdin, stdout, and stderr
// pipes. The context bounds startup only; the running session is terminated
// by Close, not by ctx.
func (t *StdioTransport) Start(ctx context.Context) error {
	t.mu.Lock()
	if t.closing {
		t.mu.Unlock()

		return errors.ErrSessionClosed
	}

	if t.state != StateNotStarted {
		t.mu.Unlock()

		return errors.ErrAlreadyConnected
	}
	t.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	if t.options.Command == "" {
		return errors.ErrNoCommand
	}

	path, err := exec.LookPath(t.options.Command)
	if err != nil {
		t.log.Error("Server executable not found", "command", t.options.Command, "error", err)

		return &errors.LaunchError{Command: t.options.Command, Err: err}
	}

	t.path = path
	t.log.Info("Starting MCP server subprocess", "path", path, "args", t.options.Args)

	//nolint:gosec // G204: launching a caller-configured server command is the point
	cmd := exec.Command(path, t.options.Args...)
	cmd.Env = buildEnvironment(t.options.Env)

	if t.options.Cwd != "" {
		cmd.Dir = t.options.Cwd
	}

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return &errors.LaunchError{Command: path, Err: fmt.Errorf("stdin pipe: %w", err)}
	}

	t.stdin = stdin

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return &errors.LaunchError{Command: path, Err: fmt.Errorf("stdout pipe: %w", err)}
	}

	t.stdout = stdout

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return &errors.LaunchError{Command: path, Err: fmt.Errorf("stderr pipe: %w", err)}
	}

	t.stderr = stderr

	if err := cmd.Start(); err != nil {
		t.log.Error("Failed to start server process", "error", err)

		return &errors.LaunchError{Command: path, Err: fmt.Errorf("start process: %w", err)}
	}

	t.cmd = cmd

	t.mu.Lock()
	t.state = StateRunning
	t.mu.Unlock()

	t.log.Info("MCP server subprocess started", "pid", cmd.Process.Pid)

	return nil
}

// reapProcess waits for the subprocess exactly once and records the result.
func (t *StdioTransport) reapProcess() {
	t.waitOnce.Do(func() {
		t.waitErr = t.cmd.Wait()
		close(t.procExited)
	})
}

// ReadMessages reads JSON-RPC messages from the server's stdout.
//
// This method starts a goroutine that reads line-delimited JSON from the
// subprocess stdout. Each line is parsed and sent to the messages channel.
// There must be at most one reader per session.
//
// Malformed lines are reported on the error channel as ParseError and do not
// stop message processing. When the stream ends (subprocess exit or Close),
// the process is reaped; an unexpected exit is reported as ProcessError with
// the captured stderr. Both channels are closed when the goroutine exits.
func (t *StdioTransport) ReadMessages(
	ctx context.Context,
) (<-chan *rpc.Message, <-chan error) {
	messages := make(chan *rpc.Message)
	errs := make(chan error, 1)

	t.mu.Lock()
	t.readStarted = true
	t.mu.Unlock()

	// Always buffer stderr for error reporting (must complete reads before Wait()).
	// See: https://pkg.go.dev/os/exec#Cmd.StderrPipe
	var stderrWg sync.WaitGroup

	var stderrBuffer strings.Builder

	var stderrMu sync.Mutex

	stderrWg.Go(func() {
		// Relies on process exit to close the pipe and unblock Scan.
		scanner := bufio.NewScanner(t.stderr)
		for scanner.Scan() {
			line := scanner.Text()

			stderrMu.Lock()

			if stderrBuffer.Len() < maxStderrBufferSize {
				if stderrBuffer.Len() > 0 {
					stderrBuffer.WriteString("\n")
				}

				stderrBuffer.WriteString(line)
			}

			stderrMu.Unlock()

			if t.stderrCallback != nil {
				t.stderrCallback(line)
			}
		}

		if err := scanner.Err(); err != nil {
			t.log.Debug("Stderr scanner error", "error", err)
		}
	})

	go func() {
		// Reap the process even on early exits so Close never waits forever.
		defer t.reapProcess()
		defer t.log.Debug("ReadMessages goroutine stopped")
		defer close(errs)
		defer close(messages)

		// Every send competes with shutdown: once Close begins or the context
		// is cancelled, nobody is consuming these channels anymore.
		sendErr := func(err error) {
			select {
			case errs <- err:
			case <-t.closeCh:
			case <-ctx.Done():
			}
		}

		scanner := bufio.NewScanner(t.stdout)

		bufSize := maxScanTokenSize
		if t.options.MaxBufferSize != nil && *t.options.MaxBufferSize > 0 {
			bufSize = *t.options.MaxBufferSize
		}

		buf := make([]byte, 0, 64*1024)
		scanner.Buffer(buf, bufSize)

		messageCount := 0

		for scanner.Scan() {
			select {
			case <-ctx.Done():
				t.log.Debug("Context cancelled during scan", "error", ctx.Err())

				sendErr(ctx.Err())

				return
			case <-t.closeCh:
				t.log.Debug("Close requested, abandoning scan")

				return
			default:
			}

			line := scanner.Bytes()
			if len(bytes.TrimSpace(line)) == 0 {
				continue
			}

			var msg rpc.Message

			if err := json.Unmarshal(line, &msg); err != nil {
				t.log.Debug("Failed to unmarshal JSON line", "error", err, "line", string(line))

				sendErr(&errors.ParseError{
					RawData: string(line),
					Err:     err,
				})

				continue
			}

			messageCount++
			t.log.Debug("Received message from server", "message_count", messageCount)

			select {
			case messages <- &msg:
			case <-t.closeCh:
				t.log.Debug("Close requested during message send")

				return
			case <-ctx.Done():
				t.log.Debug("Context cancelled during message send", "error", ctx.Err())

				sendErr(ctx.Err())

				return
			}
		}

		if err := scanner.Err(); err != nil {
			t.log.Error("Scanner error while reading server output", "error", err)

			sendErr(fmt.Errorf("scanner error: %w", err))
		}

		// Wait for stderr goroutine before reaping the process.
		stderrWg.Wait()

		t.log.Debug("Waiting for server process to exit")
		t.reapProcess()

		t.mu.Lock()
		isClosing := t.closing
		if t.state != StateClosed {
			t.state = StateClosing
		}
		t.mu.Unlock()

		if t.waitErr != nil {
			if isClosing {
				t.log.Debug("Server process terminated during shutdown")

				return
			}

			stderrMu.Lock()

			stderrOutput := stderrBuffer.String()

			stderrMu.Unlock()

			exitCode := 0

			if exitErr, ok := stderrors.AsType[*exec.ExitError](t.waitErr); ok {
				exitCode = exitErr.ExitCode()
			}

			t.log.Error("Server process exited unexpectedly", "exit_code", exitCode, "stderr", stderrOutput)

			sendErr(&errors.ProcessError{
				ExitCode: exitCode,
				Stderr:   stderrOutput,
				Err:      t.waitErr,
			})
		} else {
			t.log.Info("Server process exited cleanly")
		}
	}()

	return messages, errs
}

// SendMessage writes one JSON-RPC message to the server's stdin.
//
// The data should be a complete JSON object; a trailing newline is appended
// if missing. The write happens under a mutex and as a single Write call, so
// concurrent senders interleave at message granularity only and issuance
// order matches wire order.
//
// If the context is cancelled during a blocked write, stdin is closed to
// unblock the writer; subsequent calls return ErrStdinClosed.
func (t *StdioTransport) SendMessage(ctx context.Context, data []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.stdin == nil {
		return errors.ErrTransportNotConnected
	}

	if t.stdinClosed || t.closing {
		return errors.ErrStdinClosed
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	t.log.Debug("Sending message to server", "data_len", len(data))

	// Ensure data ends with newline.
	// Use explicit copy to avoid mutating the caller's backing array.
	if len(data) == 0 || data[len(data)-1] != '\n' {
		newData := make([]byte, len(data)+1)
		copy(newData, data)
		newData[len(data)] = '\n'
		data = newData
	}

	// Write in a goroutine to respect context cancellation.
	done := make(chan error, 1)

	stdin := t.stdin

	go func() {
		_, err := stdin.Write(data)
		done <- err
	}()

	select {
	case err := <-done:
		if err != nil {
			t.log.Error("Failed to write message to server", "error", err)

			return &errors.WriteError{Err: fmt.Errorf("write to stdin: %w", err)}
		}

		return nil

	case <-ctx.Done():
		t.log.Debug("Context cancelled during write, closing stdin")

		_ = t.stdin.Close()
		t.stdinClosed = true

		select {
		case <-done:
		case <-time.After(1 * time.Second):
			t.log.Warn("Write goroutine did not exit after stdin close, potential leak")
		}

		return ctx.Err()
	}
}

// State returns the current lifecycle state.
func (t *StdioTransport) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.state
}

// IsReady reports whether the transport can send messages.
func (t *StdioTransport) IsReady() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.state == StateRunning && t.stdin != nil && !t.stdinClosed
}

// EndInput closes stdin to signal end of input.
//
// A well-behaved server finishes processing pending input and exits on EOF.
// The read loop keeps draining stdout until then.
func (t *StdioTransport) EndInput() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.closeStdinLocked()
}

func (t *StdioTransport) closeStdinLocked() error {
	if t.stdin != nil && !t.stdinClosed {
		t.log.Debug("Closing stdin pipe")

		err := t.stdin.Close()
		t.stdinClosed = true

		return err
	}

	return nil
}

// Close terminates the server subprocess.
//
// Shutdown is graceful: stdin is closed, the process receives a termination
// signal, and only after the grace period elapses is it force-killed. Close
// waits until the process has been reaped. Safe to call multiple times; the
// second call returns nil immediately.
func (t *StdioTransport) Close() error {
	t.mu.Lock()

	if t.closing {
		t.mu.Unlock()

		return nil
	}

	t.closing = true
	t.state = StateClosing
	close(t.closeCh)
	_ = t.closeStdinLocked()

	cmd := t.cmd
	readStarted := t.readStarted
	t.mu.Unlock()

	if cmd == nil || cmd.Process == nil {
		t.setClosed()

		return nil
	}

	t.log.Debug("Stopping server process", "pid", cmd.Process.Pid, "grace", t.closeGrace)

	if err := cmd.Process.Signal(syscall.SIGTERM); err != nil {
		// Signal delivery can fail if the process is already gone or the
		// platform does not support it; fall through to the grace logic.
		t.log.Debug("Termination signal failed", "error", err)
	}

	// When no read loop is running, nobody else will reap the process.
	if !readStarted {
		go t.reapProcess()
	}

	select {
	case <-t.procExited:
	case <-time.After(t.closeGrace):
		t.log.Warn("Server did not exit within grace period, killing", "pid", cmd.Process.Pid)

		if err := cmd.Process.Kill(); err != nil {
			t.log.Debug("Kill failed", "error", err)
		}

		<-t.procExited
	}

	t.setClosed()
	t.log.Debug("Server process stopped")

	return nil
}

func (t *StdioTransport) setClosed() {
	t.mu.Lock()
	t.state = StateClosed
	t.mu.Unlock()
}

// buildEnvironment merges extra variables over the parent environment.
func buildEnvironment(extra map[string]string) []string {
	env := os.Environ()
	for k, v := range extra {
		env = append(env, k+"="+v)
	}

	return env
}
