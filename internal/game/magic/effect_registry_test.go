package magic

import (
	"testing"

	"github.com/udisondev/magic2d/internal/data"
)

func TestSimpleKinds_ShareOneInstance(t *testing.T) {
	first, ok := GetBehavior(data.MoveSingle)
	if !ok {
		t.Fatal("single move must have a behavior")
	}
	for _, kind := range simpleDamageKinds {
		b, ok := GetBehavior(kind)
		if !ok {
			t.Fatalf("%s: no behavior registered", kind)
		}
		if b != first {
			t.Errorf("%s: got %p, want shared instance %p", kind, b, first)
		}
	}
}

func TestGetBehavior_MissIsAbsence(t *testing.T) {
	for _, kind := range []data.MoveKind{data.MoveNone, data.MoveKind(12), data.MoveKind(99)} {
		b, ok := GetBehavior(kind)
		if ok || b != nil {
			t.Errorf("%s: expected absence, got %v", kind, b)
		}
	}
}

func TestRegisterBehavior_RoundTrip(t *testing.T) {
	kind := data.MoveKind(12)
	b := &recordingBehavior{}
	registerTestBehavior(t, kind, b)

	got, ok := GetBehavior(kind)
	if !ok {
		t.Fatal("registered behavior not found")
	}
	if got != b {
		t.Fatalf("got %p, want %p", got, b)
	}
}

func TestRegistry_CategoryBehaviors(t *testing.T) {
	tests := []struct {
		kind data.MoveKind
		name string
	}{
		{data.MoveFollowCharacter, "FollowCharacter"},
		{data.MoveSuperMode, "SuperMode"},
		{data.MoveTrailing, "Trailing"},
		{data.MoveTransport, "Transport"},
		{data.MovePlayerControl, "PlayerControl"},
		{data.MoveSummon, "Summon"},
		{data.MoveThrow, "SimpleDamage"},
		{data.MoveRegionBased, "SimpleDamage"},
	}
	for _, tt := range tests {
		b, ok := GetBehavior(tt.kind)
		if !ok {
			t.Errorf("%s: missing", tt.kind)
			continue
		}
		if b.Name() != tt.name {
			t.Errorf("%s: Name() = %q, want %q", tt.kind, b.Name(), tt.name)
		}
	}
}
