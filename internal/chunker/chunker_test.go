package chunker

import (
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	t.Run("default values", func(t *testing.T) {
		s := New()
		if s.chunkSize != DefaultChunkSize {
			t.Errorf("expected chunkSize %d, got %d", DefaultChunkSize, s.chunkSize)
		}
		if s.overlap != DefaultChunkOverlap {
			t.Errorf("expected overlap %d, got %d", DefaultChunkOverlap, s.overlap)
		}
		if s.maxChunks != DefaultMaxChunks {
			t.Errorf("expected maxChunks %d, got %d", DefaultMaxChunks, s.maxChunks)
		}
	})

	t.Run("custom options", func(t *testing.T) {
		s := New(WithChunkSize(500), WithOverlap(100), WithMaxChunks(8))
		if s.chunkSize != 500 || s.overlap != 100 || s.maxChunks != 8 {
			t.Errorf("options not applied: %+v", s)
		}
	})

	t.Run("overlap exceeds chunk size", func(t *testing.T) {
		s := New(WithChunkSize(100), WithOverlap(150))
		if s.overlap >= s.chunkSize {
			t.Error("overlap should be reduced when it exceeds chunk size")
		}
	})

	t.Run("zero values ignored", func(t *testing.T) {
		s := New(WithChunkSize(0), WithOverlap(-1), WithMaxChunks(0))
		if s.chunkSize != DefaultChunkSize {
			t.Errorf("expected default chunkSize, got %d", s.chunkSize)
		}
		if s.overlap != DefaultChunkOverlap {
			t.Errorf("expected default overlap, got %d", s.overlap)
		}
		if s.maxChunks != DefaultMaxChunks {
			t.Errorf("expected default maxChunks, got %d", s.maxChunks)
		}
	})
}

func TestSplit_Empty(t *testing.T) {
	s := New()
	if got := s.Split(""); got != nil {
		t.Errorf("expected nil for empty input, got %d segments", len(got))
	}
}

func TestSplit_ShortInput(t *testing.T) {
	s := New(WithChunkSize(100), WithOverlap(20))
	segments := s.Split("hello world")
	if len(segments) != 1 {
		t.Fatalf("expected 1 segment, got %d", len(segments))
	}
	if segments[0] != "hello world" {
		t.Errorf("unexpected segment content: %q", segments[0])
	}
}

func TestSplit_Overlap(t *testing.T) {
	s := New(WithChunkSize(100), WithOverlap(20))
	text := strings.Repeat("a", 250) // no separators: hard cuts

	segments := s.Split(text)
	if len(segments) < 2 {
		t.Fatalf("expected multiple segments, got %d", len(segments))
	}
	for i := 1; i < len(segments); i++ {
		prev := segments[i-1]
		tail := prev[len(prev)-20:]
		if !strings.HasPrefix(segments[i], tail) {
			t.Errorf("segment %d does not start with previous tail", i)
		}
	}
}

func TestSplit_Reconstruction(t *testing.T) {
	// Concatenating the unique (non-overlapping) spans must rebuild
	// the input exactly.
	s := New(WithChunkSize(120), WithOverlap(30), WithMaxChunks(1000))
	var b strings.Builder
	for i := 0; i < 60; i++ {
		b.WriteString("The quick brown fox jumps over the lazy dog. ")
		if i%7 == 0 {
			b.WriteString("\n\n")
		}
	}
	text := b.String()

	segments := s.Split(text)
	if len(segments) < 3 {
		t.Fatalf("expected several segments, got %d", len(segments))
	}

	rebuilt := segments[0]
	for _, seg := range segments[1:] {
		rebuilt += seg[30:]
	}
	if rebuilt != text {
		t.Errorf("reconstruction mismatch: got %d chars, want %d", len(rebuilt), len(text))
	}
}

func TestSplit_PrefersSeparators(t *testing.T) {
	s := New(WithChunkSize(50), WithOverlap(10))
	text := "First paragraph here.\n\nSecond paragraph is a bit longer than the first one."

	segments := s.Split(text)
	if len(segments) < 2 {
		t.Fatalf("expected at least 2 segments, got %d", len(segments))
	}
	if !strings.HasSuffix(segments[0], "\n\n") {
		t.Errorf("expected first segment to end at the paragraph break, got %q", segments[0])
	}
}

func TestSplit_MaxChunks(t *testing.T) {
	s := New(WithChunkSize(100), WithOverlap(20), WithMaxChunks(3))
	text := strings.Repeat("b", 2000)

	segments := s.Split(text)
	if len(segments) != 3 {
		t.Errorf("expected 3 segments, got %d", len(segments))
	}
}

func TestSplit_ExpectedCount(t *testing.T) {
	// 50 sentences with size 1000/overlap 200 should produce roughly
	// ceil((len-200)/800) chunks with contiguous coverage.
	var b strings.Builder
	for i := 0; i < 50; i++ {
		b.WriteString("This plain language sentence describes the project files in a perfectly ordinary way. ")
	}
	text := b.String()

	s := New() // 1000/200
	segments := s.Split(text)

	want := (len(text) - 200 + 799) / 800
	if len(segments) < want-1 || len(segments) > want+1 {
		t.Errorf("expected about %d segments, got %d (len %d)", want, len(segments), len(text))
	}
	for i, seg := range segments {
		if seg == "" {
			t.Errorf("segment %d is empty", i)
		}
	}
}

func TestChunks(t *testing.T) {
	s := New(WithChunkSize(100), WithOverlap(20))
	chunks := s.Chunks("doc-1", strings.Repeat("c", 300))

	if len(chunks) == 0 {
		t.Fatal("expected chunks")
	}
	for i, c := range chunks {
		if c.Index != i {
			t.Errorf("chunk %d has index %d", i, c.Index)
		}
		if c.DocumentID != "doc-1" {
			t.Errorf("chunk %d has document %q", i, c.DocumentID)
		}
		if c.ID == "" {
			t.Errorf("chunk %d has empty ID", i)
		}
	}
}

func TestChunks_Empty(t *testing.T) {
	s := New()
	if got := s.Chunks("doc-1", ""); got != nil {
		t.Errorf("expected nil chunks for empty text, got %d", len(got))
	}
}
