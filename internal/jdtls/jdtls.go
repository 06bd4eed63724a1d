// Package jdtls provides typed wrappers over the Java language server's
// workspace commands. List-returning calls never return nil slices for a
// null server answer.
package jdtls

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xonecas/jpx/internal/lsp"
	"github.com/xonecas/jpx/internal/workspace"
)

// Classpath scopes.
const (
	ScopeRuntime = "runtime"
	ScopeTest    = "test"
)

// PackageQuery selects which children java.getPackageData returns.
type PackageQuery struct {
	Kind               NodeKind `json:"kind"`
	ProjectURI         string   `json:"projectUri,omitempty"`
	Path               string   `json:"path,omitempty"`
	RootPath           string   `json:"rootPath,omitempty"`
	HandlerIdentifier  string   `json:"handlerIdentifier,omitempty"`
	IsHierarchicalView bool     `json:"isHierarchicalView"`
}

// fileOpener is implemented by clients that must see a didOpen before
// answering document requests.
type fileOpener interface {
	OpenFile(ctx context.Context, absPath string) error
}

// Client calls jdtls workspace commands through a bridge.
type Client struct {
	bridge lsp.Bridge
	req    lsp.Requester
}

// New returns a Client. req may be nil when only workspace commands are used.
func New(bridge lsp.Bridge, req lsp.Requester) *Client {
	return &Client{bridge: bridge, req: req}
}

// GetProjects lists the projects contained in a workspace folder.
func (c *Client) GetProjects(ctx context.Context, folderURI string) ([]NodeData, error) {
	return c.nodeList(ctx, CmdProjectList, folderURI)
}

// GetPackageData lists the children selected by q.
func (c *Client) GetPackageData(ctx context.Context, q PackageQuery) ([]NodeData, error) {
	return c.nodeList(ctx, CmdGetPackageData, q)
}

// ResolvePath returns the node chain from the project down to uri.
func (c *Client) ResolvePath(ctx context.Context, uri string) ([]NodeData, error) {
	return c.nodeList(ctx, CmdResolvePath, uri)
}

// GetMainClasses lists classes with a main method. An empty projectURI asks
// for every project in the workspace.
func (c *Client) GetMainClasses(ctx context.Context, projectURI string) ([]MainClass, error) {
	var args []any
	if projectURI != "" {
		args = append(args, projectURI)
	}
	var out []MainClass
	if err := c.call(ctx, CmdGetMainClasses, &out, args...); err != nil {
		return nil, err
	}
	if out == nil {
		out = []MainClass{}
	}
	return out, nil
}

// GetClasspaths resolves the classpath of a project for scope.
func (c *Client) GetClasspaths(ctx context.Context, projectURI, scope string) (ClasspathResult, error) {
	opts, err := json.Marshal(map[string]string{"scope": scope})
	if err != nil {
		return ClasspathResult{}, err
	}
	var out ClasspathResult
	if err := c.call(ctx, CmdGetClasspaths, &out, projectURI, string(opts)); err != nil {
		return ClasspathResult{}, err
	}
	return out, nil
}

// ExportJar asks the server to write a jar with the given main class and
// classpath entries to destination.
func (c *Client) ExportJar(ctx context.Context, mainClass string, classpaths []string, destination string) (ExportResult, error) {
	if classpaths == nil {
		classpaths = []string{}
	}
	raw, err := c.bridge.Execute(ctx, CmdGenerateJar, mainClass, classpaths, destination)
	if err != nil {
		return ExportResult{}, err
	}
	return decodeExportResult(raw)
}

// RefreshLibraries re-reads the referenced libraries of a project.
func (c *Client) RefreshLibraries(ctx context.Context, projectURI string) (bool, error) {
	var ok bool
	if err := c.call(ctx, CmdRefreshLibraries, &ok, projectURI); err != nil {
		return false, err
	}
	return ok, nil
}

// ResolveBuildFiles lists the build files (pom.xml, *.gradle) the server
// knows about.
func (c *Client) ResolveBuildFiles(ctx context.Context) ([]string, error) {
	var out []string
	if err := c.call(ctx, CmdResolveBuildFiles, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []string{}
	}
	return out, nil
}

// UpdateProjectConfiguration reloads the project described by a build file.
func (c *Client) UpdateProjectConfiguration(ctx context.Context, buildFileURI string) error {
	_, err := c.bridge.Execute(ctx, CmdConfigurationUpdate, buildFileURI)
	return err
}

// BuildWorkspace compiles the workspace. full forces a clean rebuild.
func (c *Client) BuildWorkspace(ctx context.Context, full bool) (CompileStatus, error) {
	if c.req == nil {
		return CompileFailed, fmt.Errorf("jdtls: %s: %w", MethodBuildWorkspace, lsp.ErrNotStarted)
	}
	var status CompileStatus
	if err := c.req.Request(ctx, MethodBuildWorkspace, full, &status); err != nil {
		return CompileFailed, fmt.Errorf("jdtls: build workspace: %w", err)
	}
	return status, nil
}

// DocumentSymbols returns the symbols of the document at uri.
func (c *Client) DocumentSymbols(ctx context.Context, uri string) ([]Symbol, error) {
	if c.req == nil {
		return nil, fmt.Errorf("jdtls: %s: %w", MethodDocumentSymbol, lsp.ErrNotStarted)
	}
	if o, ok := c.req.(fileOpener); ok && strings.HasPrefix(uri, "file:") {
		if err := o.OpenFile(ctx, workspace.URIToPath(uri)); err != nil {
			return nil, err
		}
	}
	params := map[string]any{"textDocument": map[string]string{"uri": uri}}
	var out []Symbol
	if err := c.req.Request(ctx, MethodDocumentSymbol, params, &out); err != nil {
		return nil, fmt.Errorf("jdtls: document symbols %s: %w", uri, err)
	}
	if out == nil {
		out = []Symbol{}
	}
	return out, nil
}

// ClassFileContents returns the decompiled or attached source of a class
// file URI (jdt://...).
func (c *Client) ClassFileContents(ctx context.Context, uri string) (string, error) {
	if c.req == nil {
		return "", fmt.Errorf("jdtls: %s: %w", MethodClassFileContents, lsp.ErrNotStarted)
	}
	var out string
	params := map[string]string{"uri": uri}
	if err := c.req.Request(ctx, MethodClassFileContents, params, &out); err != nil {
		return "", fmt.Errorf("jdtls: class file contents: %w", err)
	}
	return out, nil
}

func (c *Client) nodeList(ctx context.Context, command string, arg any) ([]NodeData, error) {
	var out []NodeData
	if err := c.call(ctx, command, &out, arg); err != nil {
		return nil, err
	}
	if out == nil {
		out = []NodeData{}
	}
	return out, nil
}

// call executes command and decodes a non-null result into out.
func (c *Client) call(ctx context.Context, command string, out any, args ...any) error {
	raw, err := c.bridge.Execute(ctx, command, args...)
	if err != nil {
		return err
	}
	if isNull(raw) {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("jdtls: decode %s: %w", command, err)
	}
	return nil
}

func decodeExportResult(raw json.RawMessage) (ExportResult, error) {
	if isNull(raw) {
		return ExportResult{}, nil
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return ExportResult{Result: b}, nil
	}
	var r ExportResult
	if err := json.Unmarshal(raw, &r); err != nil {
		return ExportResult{}, fmt.Errorf("jdtls: decode %s: %w", CmdGenerateJar, err)
	}
	return r, nil
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}
