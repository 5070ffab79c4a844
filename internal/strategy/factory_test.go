package strategy

import (
	"errors"
	"testing"
)

func TestDefault_Order(t *testing.T) {
	strategies := Default(params())
	names := Names()

	if len(strategies) != 7 {
		t.Fatalf("expected 7 strategies, got %d", len(strategies))
	}
	for i, s := range strategies {
		if s.Name() != names[i] {
			t.Errorf("position %d: expected %s, got %s", i, names[i], s.Name())
		}
	}
}

func TestFromName_Unknown(t *testing.T) {
	_, err := FromName("nope", params())
	if !errors.Is(err, ErrUnknownStrategy) {
		t.Errorf("expected ErrUnknownStrategy, got %v", err)
	}

	if _, err := FromNames([]string{NameTokenToToken, "nope"}, params()); !errors.Is(err, ErrUnknownStrategy) {
		t.Errorf("expected ErrUnknownStrategy, got %v", err)
	}
}

func TestIsFallback(t *testing.T) {
	for _, s := range Default(params()) {
		want := s.Name() == NameAuthorityOnly
		if IsFallback(s) != want {
			t.Errorf("%s: expected fallback=%v", s.Name(), want)
		}
	}
}
