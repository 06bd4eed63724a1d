// Package lsp talks to the Java language server over powernap's JSON-RPC
// transport: workspace commands, plain requests and server status tracking.
package lsp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	powernap "github.com/charmbracelet/x/powernap/pkg/lsp"
	"github.com/charmbracelet/x/powernap/pkg/lsp/protocol"
	"github.com/charmbracelet/x/powernap/pkg/transport"
	"github.com/rs/zerolog/log"
)

// ErrNotStarted is returned when a call is made on a closed client.
var ErrNotStarted = errors.New("lsp: server not started")

// Status values reported by the server through language/status.
const (
	StatusStarting     = "Starting"
	StatusStarted      = "Started"
	StatusServiceReady = "ServiceReady"
	StatusError        = "Error"
)

// Bridge executes language server workspace commands.
type Bridge interface {
	Execute(ctx context.Context, command string, args ...any) (json.RawMessage, error)
}

// Requester sends plain LSP requests.
type Requester interface {
	Request(ctx context.Context, method string, params, result any) error
}

type executeCommandParams struct {
	Command   string `json:"command"`
	Arguments []any  `json:"arguments"`
}

type statusParams struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// Client is a JSON-RPC connection to jdtls built on powernap's transport.
type Client struct {
	conn     *transport.Connection
	serverID string

	lightweight bool

	mu        sync.Mutex
	closed    bool
	status    string
	versions  map[string]int // uri -> document version
	ready     chan struct{}
	readyOnce sync.Once
	settings  map[string]any
}

// newClient connects to a language server over stream and registers the
// handlers for server-initiated messages. stream is closed with the client.
func newClient(serverID string, stream io.ReadWriteCloser, lightweight bool, settings map[string]any) (*Client, error) {
	conn, err := transport.NewConnection(context.Background(), stream, slog.Default())
	if err != nil {
		return nil, fmt.Errorf("lsp: connect %s: %w", serverID, err)
	}

	c := &Client{
		conn:        conn,
		serverID:    serverID,
		lightweight: lightweight,
		versions:    make(map[string]int),
		ready:       make(chan struct{}),
		settings:    settings,
	}

	conn.RegisterNotificationHandler("language/status",
		func(_ context.Context, _ string, params json.RawMessage) {
			var p statusParams
			if err := json.Unmarshal(params, &p); err != nil {
				log.Error().Err(err).Msg("lsp: unmarshal status")
				return
			}
			c.setStatus(p.Type, p.Message)
		},
	)

	// Stub handlers so the server doesn't error on common requests.
	conn.RegisterHandler("window/workDoneProgress/create",
		func(_ context.Context, _ string, _ json.RawMessage) (any, error) {
			return nil, nil
		},
	)
	conn.RegisterHandler("client/registerCapability",
		func(_ context.Context, _ string, _ json.RawMessage) (any, error) {
			return nil, nil
		},
	)
	conn.RegisterHandler(powernap.MethodWorkspaceConfiguration,
		func(_ context.Context, _ string, params json.RawMessage) (any, error) {
			return c.configurationItems(params), nil
		},
	)
	conn.RegisterNotificationHandler("$/progress",
		func(_ context.Context, _ string, _ json.RawMessage) {},
	)
	conn.RegisterNotificationHandler("window/logMessage",
		func(_ context.Context, _ string, params json.RawMessage) {
			log.Debug().RawJSON("params", params).Str("server", serverID).Msg("lsp: server log")
		},
	)

	return c, nil
}

// initialize sends initialize with params, then the initialized
// notification.
func (c *Client) initialize(ctx context.Context, params map[string]any) error {
	var result struct {
		ServerInfo *struct {
			Name    string `json:"name"`
			Version string `json:"version"`
		} `json:"serverInfo"`
	}
	if err := c.conn.Call(ctx, powernap.MethodInitialize, params, &result); err != nil {
		return fmt.Errorf("lsp: initialize %s: %w", c.serverID, err)
	}
	if result.ServerInfo != nil {
		log.Debug().Str("name", result.ServerInfo.Name).Str("version", result.ServerInfo.Version).Msg("lsp: server info")
	}
	if err := c.conn.Notify(ctx, powernap.MethodInitialized, map[string]any{}); err != nil {
		return fmt.Errorf("lsp: initialized %s: %w", c.serverID, err)
	}
	return nil
}

// Execute runs a workspace command through workspace/executeCommand. A null
// result comes back as a nil RawMessage.
func (c *Client) Execute(ctx context.Context, command string, args ...any) (json.RawMessage, error) {
	if args == nil {
		args = []any{}
	}
	var result json.RawMessage
	params := executeCommandParams{Command: command, Arguments: args}
	if err := c.Request(ctx, "workspace/executeCommand", params, &result); err != nil {
		return nil, fmt.Errorf("lsp: execute %s: %w", command, err)
	}
	if len(result) == 0 || string(result) == "null" {
		return nil, nil
	}
	log.Debug().Str("command", command).Int("bytes", len(result)).Msg("lsp: command done")
	return result, nil
}

// Request sends a plain LSP request and decodes the result into result.
func (c *Client) Request(ctx context.Context, method string, params, result any) error {
	if c.isClosed() {
		return ErrNotStarted
	}
	return c.conn.Call(ctx, method, params, result)
}

func (c *Client) notify(ctx context.Context, method string, params any) error {
	if c.isClosed() {
		return ErrNotStarted
	}
	return c.conn.Notify(ctx, method, params)
}

func (c *Client) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// OpenFile reads a Java file from disk and sends textDocument/didOpen, or
// didChange when it is already open.
func (c *Client) OpenFile(ctx context.Context, absPath string) error {
	uri := string(protocol.URIFromPath(absPath))

	data, err := os.ReadFile(absPath)
	if err != nil {
		return fmt.Errorf("lsp: read %s: %w", absPath, err)
	}

	c.mu.Lock()
	v, alreadyOpen := c.versions[uri]
	if alreadyOpen {
		v++
	}
	c.versions[uri] = v
	c.mu.Unlock()

	if !alreadyOpen {
		return c.notify(ctx, powernap.MethodTextDocumentDidOpen, protocol.DidOpenTextDocumentParams{
			TextDocument: protocol.TextDocumentItem{
				URI:        protocol.DocumentURI(uri),
				LanguageID: "java",
				Text:       string(data),
			},
		})
	}
	return c.notify(ctx, powernap.MethodTextDocumentDidChange, protocol.DidChangeTextDocumentParams{
		TextDocument: protocol.VersionedTextDocumentIdentifier{
			Version:                int32(v), //nolint:gosec
			TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: protocol.DocumentURI(uri)},
		},
		ContentChanges: []protocol.TextDocumentContentChangeEvent{{
			Value: protocol.TextDocumentContentChangeWholeDocument{Text: string(data)},
		}},
	})
}

// IsLightweight reports whether the server runs in syntax-only mode, where
// no project model is available.
func (c *Client) IsLightweight() bool {
	return c.lightweight
}

// Status returns the last status reported by the server.
func (c *Client) Status() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// AwaitReady blocks until the server reported it is ready or ctx is done.
func (c *Client) AwaitReady(ctx context.Context) error {
	select {
	case <-c.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Client) setStatus(typ, msg string) {
	c.mu.Lock()
	c.status = typ
	c.mu.Unlock()

	log.Debug().Str("status", typ).Str("message", msg).Msg("lsp: server status")
	if typ == StatusStarted || typ == StatusServiceReady {
		c.markReady()
	}
}

func (c *Client) markReady() {
	c.readyOnce.Do(func() { close(c.ready) })
}

// configurationItems answers workspace/configuration with the configured
// settings for every requested section.
func (c *Client) configurationItems(params json.RawMessage) []any {
	var p struct {
		Items []struct {
			Section string `json:"section"`
		} `json:"items"`
	}
	if err := json.Unmarshal(params, &p); err != nil {
		return nil
	}
	out := make([]any, len(p.Items))
	for i, it := range p.Items {
		if v, ok := c.settings[it.Section]; ok {
			out[i] = v
		}
	}
	return out
}

// Close sends shutdown and exit, then closes the connection, which stops
// the server process. A server that does not answer shutdown is killed.
func (c *Client) Close(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	err := c.conn.Call(ctx, powernap.MethodShutdown, nil, nil)
	if err == nil {
		err = c.conn.Notify(ctx, powernap.MethodExit, nil)
	}
	if cerr := c.conn.Close(); cerr != nil && err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("lsp: shutdown %s: %w", c.serverID, err)
	}
	return nil
}
