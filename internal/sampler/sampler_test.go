package sampler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"videothumbs/internal/orientation"
)

func writeFrame(t *testing.T, path string, w, h int, c color.Color) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create frame: %v", err)
	}
	defer f.Close()
	if err := jpeg.Encode(f, img, nil); err != nil {
		t.Fatalf("encode frame: %v", err)
	}
}

func TestFrameSetGaps(t *testing.T) {
	dir := t.TempDir()
	fs := NewFrameSet(dir, "abc", "jpg", 5)

	for _, i := range []int{1, 2, 4} {
		writeFrame(t, filepath.Join(dir, fmt.Sprintf("abc.%d.jpg", i)), 8, 6, color.White)
	}

	got := fs.Available()
	want := []int{1, 2, 4}
	if len(got) != len(want) {
		t.Fatalf("Available() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Available() = %v, want %v", got, want)
		}
	}

	if _, ok := fs.Path(3); ok {
		t.Error("Path(3) reported a missing frame as present")
	}
	if _, ok := fs.Path(0); ok {
		t.Error("Path(0) should be out of range")
	}
	if _, ok := fs.Path(6); ok {
		t.Error("Path(6) should be out of range")
	}

	img, err := fs.Load(4)
	if err != nil {
		t.Fatalf("Load(4) error: %v", err)
	}
	if img.Bounds().Dx() != 8 || img.Bounds().Dy() != 6 {
		t.Errorf("Load(4) size = %v", img.Bounds())
	}

	if _, err := fs.Load(3); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Load(3) error = %v, want ErrNotExist", err)
	}
}

func TestFrameSetLoadAppliesCorrection(t *testing.T) {
	dir := t.TempDir()
	fs := NewFrameSet(dir, "rot", "jpg", 1)
	fs.correction = orientation.Rotate90
	fs.applyOnLoad = true
	writeFrame(t, filepath.Join(dir, "rot.1.jpg"), 16, 8, color.White)

	img, err := fs.Load(1)
	if err != nil {
		t.Fatalf("Load(1) error: %v", err)
	}
	if img.Bounds().Dx() != 8 || img.Bounds().Dy() != 16 {
		t.Errorf("rotated size = %dx%d, want 8x16", img.Bounds().Dx(), img.Bounds().Dy())
	}
}

func TestFrameSetClose(t *testing.T) {
	dir := t.TempDir()
	fs := NewFrameSet(dir, "job1", "jpg", 2)
	other := filepath.Join(dir, "job2.1.jpg")

	for _, name := range []string{"job1.1.jpg", "job1.2.jpg", "job1.3.jpg"} {
		writeFrame(t, filepath.Join(dir, name), 4, 4, color.Black)
	}
	writeFrame(t, other, 4, 4, color.Black)

	if err := fs.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	leftovers, _ := filepath.Glob(filepath.Join(dir, "job1.*"))
	if len(leftovers) != 0 {
		t.Errorf("artifacts left after Close: %v", leftovers)
	}
	if _, err := os.Stat(other); err != nil {
		t.Errorf("Close removed another invocation's frame: %v", err)
	}

	if err := fs.Close(); err != nil {
		t.Errorf("second Close() error: %v", err)
	}
}

func TestFrameSetCloseUnusualDirNames(t *testing.T) {
	for _, name := range []string{"frames[1]", "tmp*", "what?", "a b"} {
		t.Run(name, func(t *testing.T) {
			dir := filepath.Join(t.TempDir(), name)
			if err := os.MkdirAll(dir, 0755); err != nil {
				t.Fatalf("mkdir: %v", err)
			}
			fs := NewFrameSet(dir, "job", "jpg", 2)
			writeFrame(t, filepath.Join(dir, "job.1.jpg"), 4, 4, color.Black)
			writeFrame(t, filepath.Join(dir, "job.2.jpg"), 4, 4, color.Black)
			writeFrame(t, filepath.Join(dir, "jobless.1.jpg"), 4, 4, color.Black)

			if err := fs.Close(); err != nil {
				t.Fatalf("Close() error: %v", err)
			}

			entries, err := os.ReadDir(dir)
			if err != nil {
				t.Fatalf("read dir: %v", err)
			}
			if len(entries) != 1 || entries[0].Name() != "jobless.1.jpg" {
				names := make([]string, 0, len(entries))
				for _, e := range entries {
					names = append(names, e.Name())
				}
				t.Errorf("after Close dir holds %v, want [jobless.1.jpg]", names)
			}
		})
	}
}

func TestFrameSetCloseMissingDir(t *testing.T) {
	fs := NewFrameSet(filepath.Join(t.TempDir(), "gone"), "job", "jpg", 1)
	if err := fs.Close(); err != nil {
		t.Errorf("Close() on missing dir error: %v", err)
	}
}

func TestFramePrefixUnique(t *testing.T) {
	now := time.Now()
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		p := framePrefix("/videos/clip.mp4", now)
		if len(p) != 32 {
			t.Fatalf("prefix %q is not an md5 hex digest", p)
		}
		if seen[p] {
			t.Fatalf("duplicate prefix %q", p)
		}
		seen[p] = true
	}
}

func TestFFmpegArgs(t *testing.T) {
	tests := []struct {
		name       string
		correction orientation.Correction
		inProcess  bool
		contains   []string
		excludes   []string
	}{
		{
			name:       "no correction",
			correction: orientation.None,
			contains:   []string{"-noautorotate", "-vframes 100", "-y"},
			excludes:   []string{"transpose", "flip"},
		},
		{
			name:       "rotate90",
			correction: orientation.Rotate90,
			contains:   []string{"transpose=1"},
		},
		{
			name:       "rotate180",
			correction: orientation.Rotate180,
			contains:   []string{"vflip", "hflip"},
			excludes:   []string{"transpose"},
		},
		{
			name:       "rotate270",
			correction: orientation.Rotate270,
			contains:   []string{"transpose=2"},
		},
		{
			name:       "in-process correction skips filters",
			correction: orientation.Rotate90,
			inProcess:  true,
			excludes:   []string{"transpose"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &FFmpegSampler{CorrectInProcess: tt.inProcess}
			joined := strings.Join(s.args("in.mp4", "/tmp/x.%d.jpg", 100, tt.correction), " ")

			if !strings.Contains(joined, "-i in.mp4") {
				t.Errorf("args missing input: %s", joined)
			}
			if !strings.Contains(joined, "/tmp/x.%d.jpg") {
				t.Errorf("args missing output pattern: %s", joined)
			}
			for _, c := range tt.contains {
				if !strings.Contains(joined, c) {
					t.Errorf("args %q missing %q", joined, c)
				}
			}
			for _, e := range tt.excludes {
				if strings.Contains(joined, e) {
					t.Errorf("args %q unexpectedly contain %q", joined, e)
				}
			}
		})
	}
}

func TestFFmpegArgsWritesNoStdlibLog(t *testing.T) {
	var buf bytes.Buffer
	prev := log.Writer()
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(prev) })

	s := &FFmpegSampler{}
	args := s.args("/videos/clip.mp4", "/tmp/x.%d.jpg", 10, orientation.Rotate90)
	if len(args) == 0 {
		t.Fatal("args() returned nothing")
	}
	if buf.Len() != 0 {
		t.Errorf("standard log received %q", buf.String())
	}
}

func TestFFmpegSamplerMissingBinary(t *testing.T) {
	dir := t.TempDir()
	s := &FFmpegSampler{Binary: filepath.Join(dir, "no-such-ffmpeg"), TempDir: dir}

	_, err := s.Sample(context.Background(), "clip.mp4", 10, orientation.None)
	if !IsDecoderUnavailable(err) {
		t.Fatalf("Sample() error = %v, want ErrDecoderUnavailable", err)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("temp dir not empty after failure: %d entries", len(entries))
	}
}

func TestFFmpegSamplerRejectsZeroFrames(t *testing.T) {
	s := &FFmpegSampler{TempDir: t.TempDir()}
	if _, err := s.Sample(context.Background(), "clip.mp4", 0, orientation.None); err == nil {
		t.Error("expected an error for n=0")
	}
}

func makeTestVideo(t *testing.T, dir string) string {
	t.Helper()
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		t.Skip("ffmpeg not available")
	}
	out := filepath.Join(dir, "clip.mp4")
	cmd := exec.Command("ffmpeg", "-y", "-f", "lavfi", "-i", "testsrc=size=64x48:rate=10",
		"-t", "1", "-pix_fmt", "yuv420p", out)
	if output, err := cmd.CombinedOutput(); err != nil {
		t.Skipf("could not create test video: %v: %s", err, output)
	}
	return out
}

func TestFFmpegSamplerIntegration(t *testing.T) {
	dir := t.TempDir()
	video := makeTestVideo(t, dir)
	frameDir := filepath.Join(dir, "frames")

	s := &FFmpegSampler{TempDir: frameDir, Timeout: time.Minute}
	frames, err := s.Sample(context.Background(), video, 5, orientation.Rotate90)
	if err != nil {
		t.Fatalf("Sample() error: %v", err)
	}

	if got := len(frames.Available()); got != 5 {
		t.Errorf("available frames = %d, want 5", got)
	}

	img, err := frames.Load(1)
	if err != nil {
		t.Fatalf("Load(1) error: %v", err)
	}
	if img.Bounds().Dx() != 48 || img.Bounds().Dy() != 64 {
		t.Errorf("rotated frame = %v, want 48x64", img.Bounds().Size())
	}

	if err := frames.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}
	entries, _ := os.ReadDir(frameDir)
	if len(entries) != 0 {
		t.Errorf("frames left after Close: %d", len(entries))
	}
}

func TestFrameSetMaterialize(t *testing.T) {
	dir := t.TempDir()
	fs := NewFrameSet(dir, "mat", "jpg", 2)
	writeFrame(t, filepath.Join(dir, "mat.1.jpg"), 16, 8, color.White)

	p, err := fs.Materialize(1)
	if err != nil {
		t.Fatalf("Materialize(1) error: %v", err)
	}
	if p != filepath.Join(dir, "mat.1.jpg") {
		t.Errorf("uncorrected set should return the frame itself, got %s", p)
	}

	fs.correction = orientation.Rotate270
	fs.applyOnLoad = true
	p, err = fs.Materialize(1)
	if err != nil {
		t.Fatalf("Materialize(1) corrected error: %v", err)
	}
	if !strings.HasPrefix(filepath.Base(p), "mat.") {
		t.Errorf("corrected frame %s is outside the set prefix", p)
	}

	if _, err := fs.Materialize(2); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Materialize(2) error = %v, want ErrNotExist", err)
	}

	if err := fs.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}
	if _, err := os.Stat(p); !os.IsNotExist(err) {
		t.Errorf("corrected frame survived Close: %v", err)
	}
}
