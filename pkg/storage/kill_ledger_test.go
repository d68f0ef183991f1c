package storage

import (
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/decker502/shooter/pkg/ecs"
)

func TestKillLedger_RecordAndCount(t *testing.T) {
	ledger, err := OpenKillLedger(filepath.Join(t.TempDir(), "kills.db"), "session-a", zerolog.Nop())
	if err != nil {
		t.Fatalf("OpenKillLedger failed: %v", err)
	}
	defer ledger.Close()

	ledger.SetKindResolver(func(id ecs.EntityID) string {
		if id == 1 {
			return "player"
		}
		return "enemy"
	})

	ledger.PawnKilled(5, 1)
	ledger.PawnKilled(6, 1)
	ledger.PawnKilled(1, 5)

	total, err := ledger.Count("")
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if total != 3 {
		t.Errorf("expected 3 kills, got %d", total)
	}

	enemies, err := ledger.Count("enemy")
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if enemies != 2 {
		t.Errorf("expected 2 enemy kills, got %d", enemies)
	}

	recent, err := ledger.Recent(1)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(recent) != 1 || recent[0].Victim != 1 || recent[0].VictimKind != "player" {
		t.Errorf("unexpected most recent record %+v", recent)
	}
}

func TestKillLedger_SessionsAreIsolated(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kills.db")

	first, err := OpenKillLedger(path, "first", zerolog.Nop())
	if err != nil {
		t.Fatalf("OpenKillLedger failed: %v", err)
	}
	first.PawnKilled(2, 1)
	first.Close()

	second, err := OpenKillLedger(path, "second", zerolog.Nop())
	if err != nil {
		t.Fatalf("OpenKillLedger failed: %v", err)
	}
	defer second.Close()

	n, err := second.Count("")
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if n != 0 {
		t.Errorf("new session should start empty, got %d", n)
	}
}
