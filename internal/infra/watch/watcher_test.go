package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func TestWatcherFiresOnChange(t *testing.T) {
	dir := t.TempDir()

	var (
		mu      sync.Mutex
		changed []string
	)
	fired := make(chan struct{}, 1)

	w, err := New(Config{
		Dir:      dir,
		Debounce: 50 * time.Millisecond,
		OnChange: func(ctx context.Context, paths []string) error {
			mu.Lock()
			changed = append(changed, paths...)
			mu.Unlock()
			select {
			case fired <- struct{}{}:
			default:
			}
			return nil
		},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// Let the event loop start before touching the tree.
	time.Sleep(100 * time.Millisecond)

	if err := os.WriteFile(filepath.Join(dir, "main.py"), []byte("print('hi')\n"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	select {
	case <-fired:
	case <-time.After(3 * time.Second):
		t.Fatal("callback did not fire after file change")
	}

	mu.Lock()
	got := append([]string(nil), changed...)
	mu.Unlock()
	found := false
	for _, p := range got {
		if p == "main.py" {
			found = true
		}
	}
	if !found {
		t.Errorf("changed paths %v missing main.py", got)
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("Run returned error: %v", err)
	}
}

func TestWatcherIgnoresGlobs(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "__pycache__"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	fired := make(chan []string, 4)

	w, err := New(Config{
		Dir:      dir,
		Ignore:   []string{"**/__pycache__/**", "**/*.pyc"},
		Debounce: 50 * time.Millisecond,
		OnChange: func(ctx context.Context, paths []string) error {
			fired <- paths
			return nil
		},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)
	time.Sleep(100 * time.Millisecond)

	if err := os.WriteFile(filepath.Join(dir, "__pycache__", "mod.cpython-311.pyc"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "app.pyc"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	select {
	case paths := <-fired:
		t.Errorf("callback fired for ignored paths: %v", paths)
	case <-time.After(500 * time.Millisecond):
	}
}

func TestWatcherDebounceCoalesces(t *testing.T) {
	dir := t.TempDir()

	var calls int
	var mu sync.Mutex
	fired := make(chan struct{}, 8)

	w, err := New(Config{
		Dir:      dir,
		Debounce: 200 * time.Millisecond,
		OnChange: func(ctx context.Context, paths []string) error {
			mu.Lock()
			calls++
			mu.Unlock()
			fired <- struct{}{}
			return nil
		},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)
	time.Sleep(100 * time.Millisecond)

	for i := 0; i < 5; i++ {
		name := filepath.Join(dir, "file.txt")
		if err := os.WriteFile(name, []byte{byte(i)}, 0o644); err != nil {
			t.Fatalf("write file: %v", err)
		}
		time.Sleep(20 * time.Millisecond)
	}

	select {
	case <-fired:
	case <-time.After(3 * time.Second):
		t.Fatal("callback did not fire")
	}

	// No second burst should arrive for the coalesced writes.
	select {
	case <-fired:
		t.Error("debounce did not coalesce rapid writes into one callback")
	case <-time.After(500 * time.Millisecond):
	}
}

func TestWatcherCoversNewDirectories(t *testing.T) {
	dir := t.TempDir()

	fired := make(chan []string, 4)

	w, err := New(Config{
		Dir:      dir,
		Debounce: 50 * time.Millisecond,
		OnChange: func(ctx context.Context, paths []string) error {
			fired <- paths
			return nil
		},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)
	time.Sleep(100 * time.Millisecond)

	sub := filepath.Join(dir, "app")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	// Drain the event for the directory creation itself.
	select {
	case <-fired:
	case <-time.After(2 * time.Second):
	}

	if err := os.WriteFile(filepath.Join(sub, "routes.py"), []byte("pass\n"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	deadline := time.After(3 * time.Second)
	for {
		select {
		case paths := <-fired:
			for _, p := range paths {
				if filepath.ToSlash(p) == "app/routes.py" {
					return
				}
			}
		case <-deadline:
			t.Fatal("no callback for file in newly created directory")
		}
	}
}
