package session

import "testing"

func TestCreateGetDelete(t *testing.T) {
	s := NewMemoryStore()

	token := s.Create("Ada")
	if token == "" {
		t.Fatal("empty token")
	}

	name, ok := s.Get(token)
	if !ok || name != "Ada" {
		t.Fatalf("Get = %q, %v", name, ok)
	}

	s.Delete(token)
	if _, ok := s.Get(token); ok {
		t.Error("session survived Delete")
	}
}

func TestTokensAreUnique(t *testing.T) {
	s := NewMemoryStore()
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		token := s.Create("x")
		if seen[token] {
			t.Fatalf("duplicate token %q", token)
		}
		seen[token] = true
	}
	if s.Len() != 100 {
		t.Errorf("Len = %d", s.Len())
	}
}

func TestDeleteUnknownTokenIsNoop(t *testing.T) {
	s := NewMemoryStore()
	s.Delete("no-such-token")
	if _, ok := s.Get("no-such-token"); ok {
		t.Error("unexpected session")
	}
}
