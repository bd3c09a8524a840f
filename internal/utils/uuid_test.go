package utils

import (
	"testing"

	"github.com/google/uuid"
)

func TestRecordIDGenerator_Generate(t *testing.T) {
	g := NewRecordIDGenerator()

	id := g.Generate()
	if id == "" {
		t.Fatal("expected non-empty id")
	}
	if _, err := uuid.Parse(id); err != nil {
		t.Errorf("generated id %q is not a valid UUID: %v", id, err)
	}
}

func TestRecordIDGenerator_Unique(t *testing.T) {
	g := NewRecordIDGenerator()

	seen := make(map[string]struct{})
	for i := 0; i < 1000; i++ {
		id := g.Generate()
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate id generated: %s", id)
		}
		seen[id] = struct{}{}
	}
}
