package filewatcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

type fakeLoader struct {
	loaded chan string
}

func (f *fakeLoader) Load(src, filename string) error {
	f.loaded <- src
	return nil
}

func TestFileWatcher_ReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "policy.rk")
	if err := os.WriteFile(path, []byte("f(1);"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	loader := &fakeLoader{loaded: make(chan string, 4)}
	reloaded := make(chan error, 4)
	w := New(path, loader, func(ctx context.Context, p string, elapsed time.Duration, err error) {
		reloaded <- err
	}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}

	if err := os.WriteFile(path, []byte("f(1); f(2);"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	select {
	case src := <-loader.loaded:
		if src != "f(1); f(2);" {
			t.Errorf("loaded %q, want \"f(1); f(2);\"", src)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for reload")
	}

	select {
	case err := <-reloaded:
		if err != nil {
			t.Errorf("onReload err = %v, want nil", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for onReload callback")
	}
}
