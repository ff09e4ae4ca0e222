package lru

import (
	"strings"
	"testing"
)

func TestStrategy_EvictsByCount(t *testing.T) {
	s, err := New(2)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	s.Add("a", []byte("1"))
	s.Add("b", []byte("2"))
	s.Get("a")
	if !s.Add("c", []byte("3")) {
		t.Error("Add() over capacity reported no eviction")
	}

	if _, ok := s.Get("b"); ok {
		t.Error("least recently used object was kept")
	}
	if _, ok := s.Get("a"); !ok {
		t.Error("recently used object was evicted")
	}
	if s.Len() != 2 || s.Bytes() != 2 {
		t.Errorf("Len() = %d, Bytes() = %d; want 2, 2", s.Len(), s.Bytes())
	}
}

func TestStrategy_EvictsByBytes(t *testing.T) {
	s, err := NewWithMaxBytes(10, 10)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	s.Add("a", []byte(strings.Repeat("a", 4)))
	s.Add("b", []byte(strings.Repeat("b", 4)))
	s.Add("c", []byte(strings.Repeat("c", 4)))

	if _, ok := s.Get("a"); ok {
		t.Error("oldest object kept over byte budget")
	}
	if s.Bytes() != 8 {
		t.Errorf("Bytes() = %d, want 8", s.Bytes())
	}

	s.Add("huge", []byte(strings.Repeat("x", 11)))
	if _, ok := s.Get("huge"); ok {
		t.Error("object larger than the budget was cached")
	}
}

func TestStrategy_ReplaceAndRemove(t *testing.T) {
	s, err := NewWithMaxBytes(4, 100)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	s.Add("a", []byte("12345"))
	s.Add("a", []byte("12"))
	if s.Bytes() != 2 {
		t.Errorf("Bytes() after replace = %d, want 2", s.Bytes())
	}

	if !s.Remove("a") {
		t.Error("Remove() = false for cached object")
	}
	if s.Bytes() != 0 || s.Len() != 0 {
		t.Errorf("Len() = %d, Bytes() = %d after Remove; want 0, 0", s.Len(), s.Bytes())
	}
}

func TestNew_InvalidCapacity(t *testing.T) {
	if _, err := New(0); err == nil {
		t.Error("New(0) error = nil")
	}
}
