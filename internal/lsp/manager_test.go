package lsp

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestCommandLine(t *testing.T) {
	t.Setenv("JPX_TEST_DATA", "/tmp/jpx data")

	tests := []struct {
		in   string
		want []string
	}{
		{"jdtls", []string{"jdtls"}},
		{`jdtls -data "$JPX_TEST_DATA"`, []string{"jdtls", "-data", "/tmp/jpx data"}},
		{"java -jar launcher.jar  --add-modules=ALL-SYSTEM", []string{"java", "-jar", "launcher.jar", "--add-modules=ALL-SYSTEM"}},
	}
	for _, tt := range tests {
		got, err := commandLine(tt.in)
		if err != nil {
			t.Fatalf("commandLine(%q): %v", tt.in, err)
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("commandLine(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCommandLineEmpty(t *testing.T) {
	for _, in := range []string{"", "   "} {
		if _, err := commandLine(in); !errors.Is(err, ErrServerNotFound) {
			t.Errorf("commandLine(%q) err = %v, want ErrServerNotFound", in, err)
		}
	}
}

func TestLookPathAbsolute(t *testing.T) {
	dir := t.TempDir()
	bin := filepath.Join(dir, "jdtls")
	if err := os.WriteFile(bin, []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	if got := lookPath(bin); got != bin {
		t.Errorf("lookPath = %q, want %q", got, bin)
	}
	if got := lookPath(filepath.Join(dir, "missing")); got != "" {
		t.Errorf("lookPath(missing) = %q", got)
	}
	if got := lookPath(dir); got != "" {
		t.Errorf("lookPath(dir) = %q", got)
	}
}

func TestConfigurationItems(t *testing.T) {
	c := &Client{settings: map[string]any{"java": map[string]any{"home": "/opt/jdk"}}}
	got := c.configurationItems([]byte(`{"items":[{"section":"java"},{"section":"other"}]}`))
	if len(got) != 2 {
		t.Fatalf("got %d items", len(got))
	}
	if got[1] != nil {
		t.Errorf("unknown section = %v, want nil", got[1])
	}
	m, ok := got[0].(map[string]any)
	if !ok || m["home"] != "/opt/jdk" {
		t.Errorf("java section = %v", got[0])
	}
}

func TestReadyStatus(t *testing.T) {
	c := &Client{ready: make(chan struct{})}
	c.setStatus(StatusStarting, "")
	select {
	case <-c.ready:
		t.Fatal("ready after Starting")
	default:
	}
	c.setStatus(StatusServiceReady, "")
	c.setStatus(StatusStarted, "") // second close must not panic
	select {
	case <-c.ready:
	default:
		t.Fatal("not ready after ServiceReady")
	}
	if c.Status() != StatusStarted {
		t.Errorf("status = %q", c.Status())
	}
}
