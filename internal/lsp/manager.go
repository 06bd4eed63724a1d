package lsp

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/x/powernap/pkg/lsp/protocol"
	"github.com/charmbracelet/x/powernap/pkg/transport"
	"github.com/rs/zerolog/log"
	"mvdan.cc/sh/v3/shell"

	"github.com/xonecas/jpx/internal/workspace"
)

// ErrServerNotFound is returned when the launch command cannot be resolved.
var ErrServerNotFound = errors.New("lsp: server binary not found")

// LaunchModeLightweight is the syntax-only server mode.
const LaunchModeLightweight = "LightWeight"

// Options describes how to launch the language server.
type Options struct {
	// Command is a shell-style command line, e.g. `jdtls -data "$HOME/.cache/jpx"`.
	Command string
	// Bundles are extension jars passed as initializationOptions.bundles.
	Bundles []string
	// DataDir is the server's workspace data directory, passed as -data.
	DataDir string
	// LaunchMode is Standard, LightWeight or Hybrid.
	LaunchMode string
	// Settings answer workspace/configuration requests, keyed by section.
	Settings map[string]any
	// ReadyTimeout bounds how long Start waits for the first status.
	ReadyTimeout time.Duration
	Folders      []workspace.Folder
}

// Start spawns and initializes the language server for the given folders.
func Start(ctx context.Context, opts Options) (*Client, error) {
	// Silence powernap's slog output; it writes to stderr which the TUI owns.
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))

	argv, err := commandLine(opts.Command)
	if err != nil {
		return nil, err
	}
	if opts.DataDir != "" {
		argv = append(argv, "-data", opts.DataDir)
	}
	cmdPath := lookPath(argv[0])
	if cmdPath == "" {
		return nil, fmt.Errorf("%w: %s", ErrServerNotFound, argv[0])
	}
	if len(opts.Folders) == 0 {
		return nil, errors.New("lsp: no workspace folders")
	}

	stream, err := startProcess(cmdPath, argv[1:])
	if err != nil {
		return nil, err
	}
	c, err := newClient("jdtls", stream, opts.LaunchMode == LaunchModeLightweight, opts.Settings)
	if err != nil {
		stream.Close()
		return nil, err
	}

	initCtx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	if err := c.initialize(initCtx, initializeParams(opts)); err != nil {
		_ = c.Close(ctx)
		return nil, err
	}

	// Servers that never report language/status would otherwise block every
	// tree request forever.
	timeout := opts.ReadyTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	go func() {
		t := time.NewTimer(timeout)
		defer t.Stop()
		select {
		case <-c.ready:
		case <-t.C:
			log.Warn().Dur("timeout", timeout).Msg("lsp: no ready status, continuing")
			c.markReady()
		}
	}()

	log.Info().Str("root", opts.Folders[0].URI).Str("cmd", cmdPath).Int("bundles", len(opts.Bundles)).Msg("lsp: server started")
	return c, nil
}

// initializeParams builds the initialize request for jdtls: the first
// folder is the root, bundles and settings travel as initializationOptions.
func initializeParams(opts Options) map[string]any {
	rootURI := opts.Folders[0].URI
	folders := make([]protocol.WorkspaceFolder, 0, len(opts.Folders))
	for _, f := range opts.Folders {
		folders = append(folders, protocol.WorkspaceFolder{URI: f.URI, Name: f.Name})
	}
	bundles := opts.Bundles
	if bundles == nil {
		bundles = []string{}
	}
	return map[string]any{
		"processId":        os.Getpid(),
		"clientInfo":       map[string]any{"name": "jpx"},
		"rootPath":         workspace.URIToPath(rootURI),
		"rootUri":          rootURI,
		"workspaceFolders": folders,
		"capabilities": map[string]any{
			"workspace": map[string]any{
				"configuration":    true,
				"workspaceFolders": true,
				"executeCommand":   map[string]any{"dynamicRegistration": false},
			},
			"textDocument": map[string]any{
				"documentSymbol": map[string]any{"hierarchicalDocumentSymbolSupport": true},
			},
			"window": map[string]any{"workDoneProgress": true},
		},
		"initializationOptions": map[string]any{
			"bundles":          bundles,
			"workspaceFolders": folderURIs(opts.Folders),
			"extendedClientCapabilities": map[string]any{
				"classFileContentsSupport": true,
			},
			"settings": opts.Settings,
		},
		"trace": "off",
	}
}

// startProcess spawns the server with piped stdio. Its stderr goes to the
// debug log. Closing the returned stream stops the process.
func startProcess(path string, args []string) (io.ReadWriteCloser, error) {
	cmd := exec.Command(path, args...) //nolint:gosec
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("lsp: stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("lsp: stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("lsp: stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("lsp: start %s: %w", path, err)
	}

	go func() {
		sc := bufio.NewScanner(stderr)
		for sc.Scan() {
			log.Debug().Str("line", sc.Text()).Msg("lsp: server stderr")
		}
	}()

	p := &process{cmd: cmd, stdin: stdin, waited: make(chan error, 1)}
	go func() { p.waited <- cmd.Wait() }()
	return transport.NewStreamTransport(stdout, stdin, p), nil
}

// process stops a spawned server: stdin is closed first, and the process is
// killed when it has not exited within the grace period.
type process struct {
	cmd    *exec.Cmd
	stdin  io.Closer
	waited chan error

	once sync.Once
	err  error
}

const exitGrace = 5 * time.Second

func (p *process) Close() error {
	p.once.Do(func() {
		p.stdin.Close()
		select {
		case err := <-p.waited:
			p.err = err
		case <-time.After(exitGrace):
			log.Warn().Int("pid", p.cmd.Process.Pid).Msg("lsp: server did not exit, killing")
			p.err = p.cmd.Process.Kill()
			<-p.waited
		}
	})
	return p.err
}

// commandLine splits a shell-style command string, expanding environment
// variables the way a shell would.
func commandLine(command string) ([]string, error) {
	if strings.TrimSpace(command) == "" {
		return nil, fmt.Errorf("%w: empty command", ErrServerNotFound)
	}
	argv, err := shell.Fields(command, os.Getenv)
	if err != nil {
		return nil, fmt.Errorf("lsp: parse command %q: %w", command, err)
	}
	if len(argv) == 0 {
		return nil, fmt.Errorf("%w: empty command", ErrServerNotFound)
	}
	return argv, nil
}

func folderURIs(folders []workspace.Folder) []string {
	out := make([]string, 0, len(folders))
	for _, f := range folders {
		out = append(out, f.URI)
	}
	return out
}

// lookPath finds a command binary, checking PATH first, then the directories
// where jdtls distributions are commonly unpacked.
func lookPath(command string) string {
	if filepath.IsAbs(command) {
		if fi, err := os.Stat(command); err == nil && !fi.IsDir() {
			return command
		}
		return ""
	}
	if p, err := exec.LookPath(command); err == nil {
		return p
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	extras := []string{
		filepath.Join(home, ".local", "bin"),
		filepath.Join(home, ".local", "share", "jdtls", "bin"),
		filepath.Join(home, ".local", "share", "nvim", "mason", "bin"),
	}
	if jdtlsHome := os.Getenv("JDTLS_HOME"); jdtlsHome != "" {
		extras = append([]string{filepath.Join(jdtlsHome, "bin")}, extras...)
	}

	for _, dir := range extras {
		p := filepath.Join(dir, command)
		if fi, err := os.Stat(p); err == nil && !fi.IsDir() {
			return p
		}
	}
	return ""
}
