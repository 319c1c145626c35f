package fs_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/keshon/avc/internal/fs"
)

func TestOSFSRoundTrip(t *testing.T) {
	dir := t.TempDir()
	osfs := fs.NewOSFS()

	path := filepath.Join(dir, "sub", "f.txt")
	if err := osfs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := osfs.WriteFile(path, []byte("content"), 0o644); err != nil {
		t.Fatal(err)
	}

	data, err := osfs.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "content" {
		t.Fatalf("got %q", data)
	}

	if !osfs.Exists(path) {
		t.Fatal("Exists false for existing file")
	}
	if !osfs.IsDir(dir) {
		t.Fatal("IsDir false for dir")
	}
	if osfs.IsDir(path) {
		t.Fatal("IsDir true for file")
	}

	_, err = osfs.ReadFile(filepath.Join(dir, "nope"))
	if !osfs.IsNotExist(err) {
		t.Fatalf("expected not-exist, got %v", err)
	}
}

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	osfs := fs.NewOSFS()
	path := filepath.Join(dir, "target")

	if err := fs.WriteFileAtomic(osfs, path, []byte("v1"), 0o644); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "v1" {
		t.Fatalf("got %q", data)
	}

	// overwrite keeps atomicity
	if err := fs.WriteFileAtomic(osfs, path, []byte("v2 longer"), 0o644); err != nil {
		t.Fatal(err)
	}
	data, _ = os.ReadFile(path)
	if string(data) != "v2 longer" {
		t.Fatalf("got %q", data)
	}

	// no stray temp files left behind
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("leftover files: %v", entries)
	}
}

func TestWriteFileAtomicRenameFailure(t *testing.T) {
	orig := fs.GetRename()
	defer fs.SetRename(orig)
	fs.SetRename(func(oldp, newp string) error { return errors.New("rename-fail") })

	dir := t.TempDir()
	osfs := fs.NewOSFS()
	path := filepath.Join(dir, "target")

	if err := fs.WriteFileAtomic(osfs, path, []byte("x"), 0o644); err == nil {
		t.Fatal("expected failure")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatal("target must not exist after failed rename")
	}
}

func TestCompressedFSRoundTrip(t *testing.T) {
	dir := t.TempDir()
	cfs := fs.NewCompressedFS(fs.NewOSFS())
	path := filepath.Join(dir, "obj")

	payload := []byte("compress me compress me compress me")
	if err := cfs.WriteFile(path, payload, 0o644); err != nil {
		t.Fatal(err)
	}

	// raw bytes on disk differ from the payload
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(raw) == string(payload) {
		t.Fatal("payload stored uncompressed")
	}

	got, err := cfs.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != string(payload) {
		t.Fatalf("round trip mismatch: %q", got)
	}
}
