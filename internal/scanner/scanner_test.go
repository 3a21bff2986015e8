package scanner

import (
	"strings"
	"testing"
)

func strScanner(s string) *Scanner { return New(strings.NewReader(s)) }

func assertByte(t *testing.T, b, x byte, ok, xok bool, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok != xok {
		t.Fatalf("expected ok = %v, got %v", xok, ok)
	}
	if ok && b != x {
		t.Fatalf("expected byte %q, got %q", x, b)
	}
}

func TestPeekDoesNotConsume(t *testing.T) {
	s := strScanner("ab")
	b, ok, err := s.Peek()
	assertByte(t, b, 'a', ok, true, err)
	b, ok, err = s.Peek()
	assertByte(t, b, 'a', ok, true, err)
	b, ok, err = s.ReadByte()
	assertByte(t, b, 'a', ok, true, err)
	b, ok, err = s.ReadByte()
	assertByte(t, b, 'b', ok, true, err)
	_, ok, err = s.ReadByte()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatalf("expected end of input")
	}
}

func TestLineColTracking(t *testing.T) {
	s := strScanner("ab\ncd")
	for _, want := range []byte("ab\ncd") {
		b, ok, err := s.ReadByte()
		assertByte(t, b, want, ok, true, err)
	}
	line, col := s.Pos()
	if line != 1 || col != 2 {
		t.Fatalf("expected pos (1, 2), got (%d, %d)", line, col)
	}
	if s.Offset() != 5 {
		t.Fatalf("expected offset 5, got %d", s.Offset())
	}
}

func TestFillCountAdvancesOnlyOnPhysicalRead(t *testing.T) {
	s := NewSize(strings.NewReader(strings.Repeat("x", 40)), 16)
	start := s.FillCount()
	for i := 0; i < 16; i++ {
		if _, _, err := s.ReadByte(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if s.FillCount() != start+1 {
		t.Fatalf("expected exactly one fill for the first 16 bytes, got %d", s.FillCount()-start)
	}
	if _, _, err := s.ReadByte(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.FillCount() != start+2 {
		t.Fatalf("expected a second fill once the 16-byte buffer is exhausted, got %d", s.FillCount()-start)
	}
}

func TestLargeInputAcrossRefills(t *testing.T) {
	const line = "A very long string.\n"
	s := NewSize(strings.NewReader(strings.Repeat(line, 100)), 16)
	var acc []byte
	for i := 0; i < len(line)*10; i++ {
		b, ok, err := s.ReadByte()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !ok {
			t.Fatalf("unexpected end of input")
		}
		acc = append(acc, b)
	}
	if string(acc) != strings.Repeat(line, 10) {
		t.Fatalf("incorrect bytes read across buffer refills")
	}
}
