package utils

import (
	"testing"

	"github.com/google/uuid"
)

func TestGenerateRequestIDUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := GenerateRequestID()
		if id == "" {
			t.Fatal("expected non-empty request ID")
		}
		if seen[id] {
			t.Fatalf("duplicate request ID: %s", id)
		}
		seen[id] = true
	}
}

func TestGenerateRequestIDFormat(t *testing.T) {
	id := GenerateRequestID()
	if _, err := uuid.Parse(id); err != nil {
		t.Errorf("expected UUID-formatted request ID, got %q: %v", id, err)
	}
}
