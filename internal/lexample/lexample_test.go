package lexample

import (
	"testing"

	"github.com/arfaoui/lalrgen/token"
)

func TestFixedPeekDoesNotAdvance(t *testing.T) {
	f := NewFixed(token.Token{Kind: "a"}, token.Token{Kind: "b"})
	first, ok := f.Peek()
	if !ok || first.Kind != "a" {
		t.Fatalf("Peek() = %v, %v, want a, true", first, ok)
	}
	second, ok := f.Peek()
	if !ok || second.Kind != "a" {
		t.Fatalf("a second Peek() without Take should still return a, got %v, %v", second, ok)
	}
}

func TestFixedTakeAdvances(t *testing.T) {
	f := NewFixed(token.Token{Kind: "a"}, token.Token{Kind: "b"})
	if got := f.Take(); got.Kind != "a" {
		t.Fatalf("first Take() = %v, want a", got)
	}
	if got := f.Take(); got.Kind != "b" {
		t.Fatalf("second Take() = %v, want b", got)
	}
	if !f.TakeEOF() {
		t.Fatalf("expected TakeEOF() to be true after consuming both tokens")
	}
}

func TestFixedPeekAtEndReportsFalse(t *testing.T) {
	f := NewFixed()
	if _, ok := f.Peek(); ok {
		t.Fatalf("Peek() on an empty Fixed source should report false")
	}
	if !f.TakeEOF() {
		t.Fatalf("an empty Fixed source should immediately report TakeEOF")
	}
}

func TestFixedImplementsSource(t *testing.T) {
	var _ token.Source = NewFixed()
}
