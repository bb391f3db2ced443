package util

import (
	"testing"
	"time"
)

func TestParseDatePlain(t *testing.T) {
	got, ok := ParseDate("2024-10-10")
	if !ok {
		t.Fatalf("expected ok")
	}
	want := time.Date(2024, 10, 10, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("unexpected time %v", got)
	}
}

func TestParseDateRFC3339(t *testing.T) {
	s := "2024-10-10T10:10:10Z"
	got, ok := ParseDate(s)
	if !ok {
		t.Fatalf("expected ok")
	}
	if got.UTC().Format(time.RFC3339) != s {
		t.Fatalf("unexpected time %v", got)
	}
}

func TestParseDateInvalid(t *testing.T) {
	if _, ok := ParseDate("not-a-date"); ok {
		t.Fatalf("expected failure")
	}
	if _, ok := ParseDate(""); ok {
		t.Fatalf("expected failure on empty")
	}
}

func TestParseDateDefault(t *testing.T) {
	def := time.Date(2024, 10, 10, 0, 0, 0, 0, time.UTC)
	got := ParseDateDefault("", def)
	if !got.Equal(def) {
		t.Fatalf("expected default")
	}
}
