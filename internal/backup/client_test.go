package backup

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestCompressRoundTrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	srcPath := filepath.Join(dir, "source.db")
	compressedPath := filepath.Join(dir, "source.db.zst")
	restoredPath := filepath.Join(dir, "restored.db")

	original := bytes.Repeat([]byte("SQLite format 3\x00 question data "), 1000)
	if err := os.WriteFile(srcPath, original, 0o644); err != nil {
		t.Fatal(err)
	}

	if err := CompressFile(srcPath, compressedPath); err != nil {
		t.Fatalf("CompressFile: %v", err)
	}

	compressed, err := os.ReadFile(compressedPath)
	if err != nil {
		t.Fatal(err)
	}
	if len(compressed) >= len(original) {
		t.Errorf("compressed %d bytes >= original %d bytes", len(compressed), len(original))
	}

	if err := DecompressStream(bytes.NewReader(compressed), restoredPath); err != nil {
		t.Fatalf("DecompressStream: %v", err)
	}

	restored, err := os.ReadFile(restoredPath)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(restored, original) {
		t.Error("restored content differs from original")
	}
}

func TestCompressFileMissingSource(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	err := CompressFile(filepath.Join(dir, "missing.db"), filepath.Join(dir, "out.zst"))
	if err == nil {
		t.Error("expected error for missing source file")
	}
}

func TestDecompressStreamGarbage(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	err := DecompressStream(bytes.NewReader([]byte("not a zstd stream")), filepath.Join(dir, "out.db"))
	if err == nil {
		t.Error("expected error for invalid stream")
	}
}

func TestNewClientRequiresConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cfg  ClientConfig
	}{
		{"empty", ClientConfig{}},
		{"missing bucket", ClientConfig{Endpoint: "https://s3.example.com", AccessKeyID: "id", SecretKey: "secret"}},
		{"missing credentials", ClientConfig{Endpoint: "https://s3.example.com", Bucket: "backups"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewClient(context.Background(), tt.cfg); err == nil {
				t.Error("expected config validation error")
			}
		})
	}
}
