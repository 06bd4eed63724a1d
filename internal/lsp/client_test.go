package lsp

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/sourcegraph/jsonrpc2"
)

// fakeServer answers client requests over an in-memory pipe.
type fakeServer struct {
	conn *jsonrpc2.Conn

	mu    sync.Mutex
	calls map[string][]json.RawMessage
}

func (s *fakeServer) handle(_ context.Context, _ *jsonrpc2.Conn, req *jsonrpc2.Request) (any, error) {
	var params json.RawMessage
	if req.Params != nil {
		params = append(params, *req.Params...)
	}
	s.mu.Lock()
	s.calls[req.Method] = append(s.calls[req.Method], params)
	s.mu.Unlock()

	switch req.Method {
	case "workspace/executeCommand":
		var p executeCommandParams
		if err := json.Unmarshal(params, &p); err != nil {
			return nil, err
		}
		if p.Command == "java.project.getAll" {
			return []string{"file:///work/app"}, nil
		}
		return nil, nil
	case "shutdown", "exit":
		return nil, nil
	}
	return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeMethodNotFound, Message: req.Method}
}

func (s *fakeServer) received(method string) []json.RawMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[method]
}

func newPipeClient(t *testing.T, settings map[string]any) (*Client, *fakeServer) {
	t.Helper()
	clientSide, serverSide := net.Pipe()

	srv := &fakeServer{calls: make(map[string][]json.RawMessage)}
	srv.conn = jsonrpc2.NewConn(context.Background(),
		jsonrpc2.NewBufferedStream(serverSide, jsonrpc2.VSCodeObjectCodec{}),
		jsonrpc2.HandlerWithError(srv.handle))
	t.Cleanup(func() { srv.conn.Close() })

	c, err := newClient("jdtls", clientSide, false, settings)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { c.conn.Close() })
	return c, srv
}

func TestExecuteSendsCommand(t *testing.T) {
	c, srv := newPipeClient(t, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	res, err := c.Execute(ctx, "java.project.getAll")
	if err != nil {
		t.Fatal(err)
	}
	var uris []string
	if err := json.Unmarshal(res, &uris); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(uris, []string{"file:///work/app"}) {
		t.Errorf("result = %v", uris)
	}

	if _, err := c.Execute(ctx, "java.project.list", "file:///work/app", map[string]any{"kind": 2}); err != nil {
		t.Fatal(err)
	}

	sent := srv.received("workspace/executeCommand")
	if len(sent) != 2 {
		t.Fatalf("server got %d executeCommand requests", len(sent))
	}
	var first map[string]any
	if err := json.Unmarshal(sent[0], &first); err != nil {
		t.Fatal(err)
	}
	want := map[string]any{"command": "java.project.getAll", "arguments": []any{}}
	if !reflect.DeepEqual(first, want) {
		t.Errorf("params = %v, want %v", first, want)
	}
	var second executeCommandParams
	if err := json.Unmarshal(sent[1], &second); err != nil {
		t.Fatal(err)
	}
	if second.Command != "java.project.list" || len(second.Arguments) != 2 || second.Arguments[0] != "file:///work/app" {
		t.Errorf("params = %+v", second)
	}
}

func TestExecuteNullResult(t *testing.T) {
	c, _ := newPipeClient(t, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	res, err := c.Execute(ctx, "java.project.refreshDiagnostics")
	if err != nil {
		t.Fatal(err)
	}
	if res != nil {
		t.Errorf("result = %s, want nil", res)
	}
}

func TestServerStatusAndConfiguration(t *testing.T) {
	settings := map[string]any{"java": map[string]any{"home": "/opt/jdk"}}
	c, srv := newPipeClient(t, settings)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.conn.Notify(ctx, "language/status", statusParams{Type: StatusServiceReady}); err != nil {
		t.Fatal(err)
	}
	if err := c.AwaitReady(ctx); err != nil {
		t.Fatalf("AwaitReady: %v", err)
	}
	if c.Status() != StatusServiceReady {
		t.Errorf("status = %q", c.Status())
	}

	var items []map[string]any
	params := map[string]any{"items": []map[string]string{{"section": "java"}}}
	if err := srv.conn.Call(ctx, "workspace/configuration", params, &items, jsonrpc2.PickID(jsonrpc2.ID{Num: 1})); err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 || items[0]["home"] != "/opt/jdk" {
		t.Errorf("configuration = %v", items)
	}
}

func TestCloseShutsDown(t *testing.T) {
	c, srv := newPipeClient(t, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := c.Close(ctx); err != nil {
		t.Fatal(err)
	}
	if len(srv.received("shutdown")) != 1 {
		t.Error("server did not get shutdown")
	}
	if err := c.Close(ctx); err != nil {
		t.Errorf("second Close: %v", err)
	}
	if _, err := c.Execute(ctx, "java.project.getAll"); !errors.Is(err, ErrNotStarted) {
		t.Errorf("Execute after Close err = %v, want ErrNotStarted", err)
	}
}
