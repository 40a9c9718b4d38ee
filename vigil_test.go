package vigil_test

import (
	"errors"
	"testing"

	"github.com/aretw0/vigil"
)

type account struct {
	Owner   string
	Balance int
}

func TestFacade_WatchCollectLoop(t *testing.T) {
	engine := vigil.New()

	acct := &account{Owner: "alice", Balance: 10}
	if _, err := engine.Watch(acct, vigil.Field("Balance"), "balance"); err != nil {
		t.Fatalf("Watch failed: %v", err)
	}
	if got := engine.Size(); got != 1 {
		t.Fatalf("Size() = %d, want 1", got)
	}

	acct.Balance = 25
	changes, err := engine.CollectChanges(nil)
	if err != nil {
		t.Fatalf("CollectChanges failed: %v", err)
	}
	if changes == nil || changes.Next != nil {
		t.Fatalf("expected exactly one change, got %d", changes.Count())
	}
	if changes.CurrentValue != 25 || changes.PreviousValue != 10 {
		t.Errorf("change = %v -> %v, want 10 -> 25", changes.PreviousValue, changes.CurrentValue)
	}

	// Acknowledged: the next pass is silent.
	changes, err = engine.CollectChanges(nil)
	if err != nil {
		t.Fatalf("CollectChanges failed: %v", err)
	}
	if changes != nil {
		t.Errorf("expected silent pass, got %d changes", changes.Count())
	}
}

func TestFacade_SentinelErrors(t *testing.T) {
	engine := vigil.New()

	if _, err := engine.Watch(42, vigil.Items(), nil); !errors.Is(err, vigil.ErrInvalidSelector) {
		t.Errorf("Watch on scalar = %v, want ErrInvalidSelector", err)
	}
	if err := engine.Root().Remove(); !errors.Is(err, vigil.ErrRootGroup) {
		t.Errorf("Root().Remove() = %v, want ErrRootGroup", err)
	}
}

func TestFacade_HooksOption(t *testing.T) {
	var passes int
	engine := vigil.New(vigil.WithLifecycleHooks(vigil.LifecycleHooks{
		OnDigestEnd: func(e *vigil.DigestEvent) { passes++ },
	}))

	if _, err := engine.CollectChanges(nil); err != nil {
		t.Fatalf("CollectChanges failed: %v", err)
	}
	if passes != 1 {
		t.Errorf("OnDigestEnd fired %d times, want 1", passes)
	}
}

func TestFacade_VersionEmbedded(t *testing.T) {
	if vigil.Version == "" {
		t.Error("Version must be embedded and non-empty")
	}
}
