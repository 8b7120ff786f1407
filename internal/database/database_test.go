package database

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func setupTestDB(t testing.TB) *Database {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := New(context.Background(), dbPath)
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestNewDatabase(t *testing.T) {
	db := setupTestDB(t)

	if _, err := os.Stat(db.Path()); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}
	if err := db.Ping(context.Background()); err != nil {
		t.Errorf("Ping failed: %v", err)
	}
}

func TestNewDatabaseMissingDirectory(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "missing", "sub", "test.db")
	if _, err := New(context.Background(), dbPath); err == nil {
		t.Error("New() expected error for missing directory")
	}
}

func TestInitializeIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	if err := db.initialize(context.Background()); err != nil {
		t.Errorf("second initialize failed: %v", err)
	}
}

func sampleRun(path string, sizes ...[2]int) Run {
	run := Run{
		Video: Video{
			Path:         path,
			ModTime:      time.Unix(1700000000, 0),
			Status:       StatusDone,
			FrameIndex:   3,
			FramesScored: 5,
			Orientation:  "rotate90",
			RunID:        "run-1",
		},
	}
	for _, s := range sizes {
		run.Thumbnails = append(run.Thumbnails, Thumbnail{
			Width:      s[0],
			Height:     s[1],
			StorageKey: filepath.ToSlash(filepath.Join(filepath.Dir(path), "thumbnail", "x.jpeg")),
			Bytes:      1024,
		})
	}
	return run
}

func TestRecordRunAndGetVideo(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	if err := db.RecordRun(ctx, sampleRun("movies/a.mp4", [2]int{100, 100}, [2]int{160, 90})); err != nil {
		t.Fatalf("RecordRun failed: %v", err)
	}

	v, err := db.GetVideo(ctx, "movies/a.mp4")
	if err != nil {
		t.Fatalf("GetVideo failed: %v", err)
	}
	if v == nil {
		t.Fatal("GetVideo returned nil for recorded video")
	}
	if v.Status != StatusDone || v.FrameIndex != 3 || v.FramesScored != 5 {
		t.Errorf("unexpected video record: %+v", v)
	}
	if v.Orientation != "rotate90" || v.RunID != "run-1" || v.Error != "" {
		t.Errorf("unexpected video record: %+v", v)
	}
	if !v.ModTime.Equal(time.Unix(1700000000, 0)) {
		t.Errorf("ModTime = %v", v.ModTime)
	}
}

func TestGetVideoUnknown(t *testing.T) {
	db := setupTestDB(t)

	v, err := db.GetVideo(context.Background(), "nope.mp4")
	if err != nil {
		t.Fatalf("GetVideo failed: %v", err)
	}
	if v != nil {
		t.Errorf("expected nil, got %+v", v)
	}
}

func TestRecordRunReplacesThumbnails(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	if err := db.RecordRun(ctx, sampleRun("a.mp4", [2]int{100, 100}, [2]int{160, 90})); err != nil {
		t.Fatalf("RecordRun failed: %v", err)
	}

	second := sampleRun("a.mp4", [2]int{320, 180})
	second.Video.Status = StatusNoThumbnail
	second.Video.Error = "decoder unavailable"
	if err := db.RecordRun(ctx, second); err != nil {
		t.Fatalf("RecordRun failed: %v", err)
	}

	thumbs, err := db.ListThumbnails(ctx, "a.mp4")
	if err != nil {
		t.Fatalf("ListThumbnails failed: %v", err)
	}
	if len(thumbs) != 1 || thumbs[0].Width != 320 || thumbs[0].Height != 180 {
		t.Errorf("thumbnails = %+v, want single 320x180", thumbs)
	}

	v, _ := db.GetVideo(ctx, "a.mp4")
	if v.Status != StatusNoThumbnail || v.Error != "decoder unavailable" {
		t.Errorf("video not updated: %+v", v)
	}
}

func TestListThumbnailsOrdering(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	for _, run := range []Run{
		sampleRun("b.mp4", [2]int{160, 90}, [2]int{100, 100}),
		sampleRun("a.mp4", [2]int{100, 100}),
	} {
		if err := db.RecordRun(ctx, run); err != nil {
			t.Fatalf("RecordRun failed: %v", err)
		}
	}

	all, err := db.ListThumbnails(ctx, "")
	if err != nil {
		t.Fatalf("ListThumbnails failed: %v", err)
	}

	want := []struct {
		path string
		w    int
	}{
		{"a.mp4", 100},
		{"b.mp4", 100},
		{"b.mp4", 160},
	}
	if len(all) != len(want) {
		t.Fatalf("got %d thumbnails, want %d", len(all), len(want))
	}
	for i, w := range want {
		if all[i].VideoPath != w.path || all[i].Width != w.w {
			t.Errorf("thumbnail %d = %s %d, want %s %d", i, all[i].VideoPath, all[i].Width, w.path, w.w)
		}
	}
}

func TestDeleteVideo(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	if err := db.RecordRun(ctx, sampleRun("dir/a.mp4", [2]int{100, 100}, [2]int{160, 90})); err != nil {
		t.Fatalf("RecordRun failed: %v", err)
	}

	keys, err := db.DeleteVideo(ctx, "dir/a.mp4")
	if err != nil {
		t.Fatalf("DeleteVideo failed: %v", err)
	}
	if len(keys) != 2 {
		t.Errorf("got %d keys, want 2", len(keys))
	}

	if v, _ := db.GetVideo(ctx, "dir/a.mp4"); v != nil {
		t.Error("video still present after delete")
	}
	thumbs, _ := db.ListThumbnails(ctx, "dir/a.mp4")
	if len(thumbs) != 0 {
		t.Errorf("thumbnails not cascaded: %+v", thumbs)
	}

	keys, err = db.DeleteVideo(ctx, "dir/a.mp4")
	if err != nil || len(keys) != 0 {
		t.Errorf("second delete = %v, %v", keys, err)
	}
}
