package storage

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSanitizeKey(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		want    string
		wantErr bool
	}{
		{name: "plain", key: "abc.mp4", want: "abc.mp4"},
		{name: "leading slash", key: "/abc.mp4", want: "abc.mp4"},
		{name: "dot prefix", key: "./nested/abc.mp4", want: "nested/abc.mp4"},
		{name: "backslashes", key: `nested\abc.mp4`, want: "nested/abc.mp4"},
		{name: "traversal", key: "../etc/passwd", wantErr: true},
		{name: "inner traversal", key: "a/../../b", wantErr: true},
		{name: "empty", key: "  ", wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := sanitizeKey(tc.key)
			if (err != nil) != tc.wantErr {
				t.Fatalf("sanitizeKey(%q) error = %v, wantErr %v", tc.key, err, tc.wantErr)
			}
			if !tc.wantErr && got != tc.want {
				t.Fatalf("sanitizeKey(%q) = %q, want %q", tc.key, got, tc.want)
			}
		})
	}
}

func TestFileStoreWriteJSONAndRead(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	key, err := store.WriteJSON(context.Background(), "abc-info.json", map[string]any{"id": "abc"})
	if err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	if key != "abc-info.json" {
		t.Fatalf("key = %q", key)
	}
	data, err := store.Read(key)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if !strings.Contains(string(data), "\n  \"id\"") {
		t.Fatalf("expected indented json, got %s", data)
	}
	var decoded map[string]string
	if err := json.Unmarshal(data, &decoded); err != nil || decoded["id"] != "abc" {
		t.Fatalf("decoded = %#v, err = %v", decoded, err)
	}
}

func TestFileStoreCreateAndSize(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	f, err := store.Create(context.Background(), "video.mp4")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := io.WriteString(f, "0123456789"); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	size, err := store.Size("video.mp4")
	if err != nil {
		t.Fatalf("Size: %v", err)
	}
	if size != 10 {
		t.Fatalf("Size = %d, want 10", size)
	}
	if _, err := store.Create(context.Background(), "video.mp4"); err == nil {
		t.Fatal("expected Create to refuse overwriting an existing file")
	}
}

func TestFileStoreMissingObject(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	if _, err := store.Size("nope.mp4"); !errors.Is(err, ErrNotExist) {
		t.Fatalf("Size error = %v, want ErrNotExist", err)
	}
	if _, err := store.Read("nope.json"); !errors.Is(err, ErrNotExist) {
		t.Fatalf("Read error = %v, want ErrNotExist", err)
	}
	if _, err := store.Open("nope.mp4"); !errors.Is(err, ErrNotExist) {
		t.Fatalf("Open error = %v, want ErrNotExist", err)
	}
	if err := store.Remove("nope.mp4"); err != nil {
		t.Fatalf("Remove missing file: %v", err)
	}
}

func TestFileStoreWriteHonorsCancelledContext(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := store.Write(ctx, "x.json", []byte("{}")); !errors.Is(err, context.Canceled) {
		t.Fatalf("Write error = %v, want context.Canceled", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "x.json")); !os.IsNotExist(err) {
		t.Fatalf("file should not exist, stat err = %v", err)
	}
}
