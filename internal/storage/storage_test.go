package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"videothumbs/internal/thumbnail"
)

func TestThumbnailKey(t *testing.T) {
	tests := []struct {
		video string
		size  thumbnail.Size
		want  string
	}{
		{"videos/2024/clip.mp4", thumbnail.Size{Width: 100, Height: 100}, "videos/2024/thumbnail/clip.100x100.jpeg"},
		{"clip.mov", thumbnail.Size{Width: 160, Height: 90}, "thumbnail/clip.160x90.jpeg"},
		{"/abs/path/holiday.final.mkv", thumbnail.Size{Width: 64, Height: 48}, "abs/path/thumbnail/holiday.final.64x48.jpeg"},
		{"../../etc/x.mp4", thumbnail.Size{Width: 1, Height: 1}, "etc/thumbnail/x.1x1.jpeg"},
		{"dir\\win.avi", thumbnail.Size{Width: 2, Height: 2}, "dir/thumbnail/win.2x2.jpeg"},
	}

	for _, tt := range tests {
		t.Run(tt.video, func(t *testing.T) {
			if got := ThumbnailKey(tt.video, tt.size); got != tt.want {
				t.Errorf("ThumbnailKey(%q, %s) = %q, want %q", tt.video, tt.size, got, tt.want)
			}
		})
	}
}

func TestFileStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	s, err := NewFileStore(root)
	if err != nil {
		t.Fatalf("NewFileStore() error: %v", err)
	}

	key := "videos/thumbnail/clip.100x100.jpeg"
	if ok, _ := s.Exists(ctx, key); ok {
		t.Fatal("key exists before Save")
	}

	if err := s.Save(ctx, key, []byte("jpeg-bytes")); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(root, "videos", "thumbnail", "clip.100x100.jpeg"))
	if err != nil || string(data) != "jpeg-bytes" {
		t.Fatalf("stored data = %q, %v", data, err)
	}

	// overwrite
	if err := s.Save(ctx, key, []byte("v2")); err != nil {
		t.Fatalf("second Save() error: %v", err)
	}
	data, _ = os.ReadFile(filepath.Join(root, "videos", "thumbnail", "clip.100x100.jpeg"))
	if string(data) != "v2" {
		t.Errorf("overwritten data = %q", data)
	}

	leftovers, _ := filepath.Glob(filepath.Join(root, "videos", "thumbnail", ".tmp-*"))
	if len(leftovers) != 0 {
		t.Errorf("temp files left: %v", leftovers)
	}

	if ok, err := s.Exists(ctx, key); err != nil || !ok {
		t.Errorf("Exists() = %v, %v", ok, err)
	}

	if err := s.Delete(ctx, key); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if err := s.Delete(ctx, key); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete() error = %v, want ErrNotFound", err)
	}
}

func TestFileStoreRejectsEscapingKeys(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore() error: %v", err)
	}
	if err := s.Save(context.Background(), "../outside.jpeg", []byte("x")); err == nil {
		t.Error("Save() accepted a key outside the root")
	}
}

func TestNewMinIOStoreDoesNotDial(t *testing.T) {
	s, err := NewMinIOStore(MinIOConfig{
		Endpoint:  "localhost:9",
		AccessKey: "key",
		SecretKey: "secret",
		Bucket:    "thumbs",
		Prefix:    "media",
	})
	if err != nil {
		t.Fatalf("NewMinIOStore() error: %v", err)
	}
	if s.Name() != "minio" {
		t.Errorf("Name() = %q", s.Name())
	}
	if got := s.object("a/thumbnail/b.1x1.jpeg"); got != "media/a/thumbnail/b.1x1.jpeg" {
		t.Errorf("object() = %q", got)
	}
}
