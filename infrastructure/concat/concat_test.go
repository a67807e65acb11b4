package concat

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestBackendNames(t *testing.T) {
	if got := NewStreamCopyConcat("").Name(); got != "stream_copy" {
		t.Errorf("stream copy Name() = %q", got)
	}
	if got := NewReencodeConcat("").Name(); got != "reencode" {
		t.Errorf("reencode Name() = %q", got)
	}
}

func TestWriteConcatListOrderAndEscaping(t *testing.T) {
	dir := t.TempDir()
	inputs := []string{
		filepath.Join(dir, "segment_1.mp4"),
		filepath.Join(dir, "it's segment_2.mp4"),
		filepath.Join(dir, "segment_3.mp4"),
	}
	output := filepath.Join(dir, "final.mp4")

	listPath, err := writeConcatList(inputs, output)
	if err != nil {
		t.Fatalf("writeConcatList() error = %v", err)
	}
	data, err := os.ReadFile(listPath)
	if err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Fatalf("lines = %d, want 3", len(lines))
	}
	if !strings.Contains(lines[0], "segment_1.mp4") || !strings.Contains(lines[2], "segment_3.mp4") {
		t.Errorf("file list order must match input order, got %v", lines)
	}
	if !strings.Contains(lines[1], `'\''`) {
		t.Errorf("single quotes must be escaped for the demuxer, got %q", lines[1])
	}
	if filepath.Dir(listPath) != dir {
		t.Errorf("list must live next to the output, got %s", listPath)
	}
}

func TestConcatRejectsEmptyInput(t *testing.T) {
	if err := NewStreamCopyConcat("").Concat(context.Background(), nil, "out.mp4"); err == nil {
		t.Error("stream copy must reject empty input")
	}
	if err := NewReencodeConcat("").Concat(context.Background(), nil, "out.mp4"); err == nil {
		t.Error("reencode must reject empty input")
	}
}

func TestTailTruncatesLongStderr(t *testing.T) {
	long := strings.Repeat("x", 1000) + "actual error"
	got := tail(long)
	if len(got) > 420 {
		t.Errorf("tail length = %d, want bounded", len(got))
	}
	if !strings.HasSuffix(got, "actual error") {
		t.Error("tail must keep the end of stderr")
	}
}
