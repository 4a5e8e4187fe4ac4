package state

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/halcyonchain/nodectl/pkg/consts"
)

func newStore(t *testing.T) *FileStore {
	t.Helper()
	dir := t.TempDir()
	return NewFileStore(filepath.Join(dir, "node.pid"), filepath.Join(dir, "node.mode"))
}

func TestFileStore_EmptyState(t *testing.T) {
	fs := newStore(t)

	snap, err := fs.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if snap.HavePID {
		t.Error("No pid file was written, HavePID must be false")
	}
	if snap.Mode != consts.ModeUnknown {
		t.Errorf("Expected unknown mode, got %s", snap.Mode)
	}
}

func TestFileStore_Roundtrip(t *testing.T) {
	fs := newStore(t)

	if err := fs.SavePID(4242); err != nil {
		t.Fatalf("SavePID failed: %v", err)
	}
	if err := fs.SaveMode(consts.ModeFull); err != nil {
		t.Fatalf("SaveMode failed: %v", err)
	}

	snap, err := fs.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !snap.HavePID || snap.PID != 4242 {
		t.Errorf("Expected pid 4242, got %+v", snap)
	}
	if snap.Mode != consts.ModeFull {
		t.Errorf("Expected mode full, got %s", snap.Mode)
	}
}

func TestFileStore_CorruptPID(t *testing.T) {
	fs := newStore(t)
	if err := os.WriteFile(fs.pidPath, []byte("not-a-pid\n"), 0644); err != nil {
		t.Fatal(err)
	}

	snap, err := fs.Load()
	if err == nil {
		t.Fatal("Expected error for corrupt pid file")
	}
	if !snap.HavePID {
		t.Error("Corrupt pid file still exists, HavePID must be true")
	}
}

func TestFileStore_UnrecognizedMode(t *testing.T) {
	fs := newStore(t)
	if err := os.WriteFile(fs.modePath, []byte("turbo\n"), 0644); err != nil {
		t.Fatal(err)
	}

	snap, err := fs.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if snap.Mode != consts.ModeUnknown {
		t.Errorf("Unrecognized token must read as unknown, got %s", snap.Mode)
	}
}

func TestFileStore_ClearIdempotent(t *testing.T) {
	fs := newStore(t)

	if err := fs.ClearPID(); err != nil {
		t.Errorf("ClearPID on absent file must succeed: %v", err)
	}
	if err := fs.ClearMode(); err != nil {
		t.Errorf("ClearMode on absent file must succeed: %v", err)
	}

	fs.SavePID(1)
	fs.SaveMode(consts.ModeLite)
	if err := fs.ClearPID(); err != nil {
		t.Fatalf("ClearPID failed: %v", err)
	}
	if err := fs.ClearMode(); err != nil {
		t.Fatalf("ClearMode failed: %v", err)
	}

	snap, _ := fs.Load()
	if snap.HavePID || snap.Mode != consts.ModeUnknown {
		t.Errorf("Expected empty state after clear, got %+v", snap)
	}
}
