package tray

import (
	"path/filepath"
	"testing"

	"github.com/agroflow/logicapture/internal/services/sap"
)

func TestTrayPersistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bandeja.json")

	s, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}

	if err := s.Upsert(Item{RecordID: 1, Row: sap.Row{Booking: "BK-1"}}); err != nil {
		t.Fatal(err)
	}
	if err := s.Upsert(Item{RecordID: 2, Row: sap.Row{Booking: "BK-2"}}); err != nil {
		t.Fatal(err)
	}

	// Reopen from disk.
	s2, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	items := s2.Items()
	if len(items) != 2 || items[0].Row.Booking != "BK-1" {
		t.Fatalf("reloaded items = %+v", items)
	}
}

func TestTrayUpsertReplaces(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "bandeja.json"))
	if err != nil {
		t.Fatal(err)
	}

	s.Upsert(Item{RecordID: 1, Row: sap.Row{Booking: "OLD"}})
	s.Upsert(Item{RecordID: 1, Row: sap.Row{Booking: "NEW"}})

	items := s.Items()
	if len(items) != 1 {
		t.Fatalf("upsert should replace, got %d items", len(items))
	}
	if items[0].Row.Booking != "NEW" {
		t.Errorf("Booking = %q, want NEW", items[0].Row.Booking)
	}
	if items[0].AddedAt.IsZero() {
		t.Error("AddedAt should be preserved")
	}
}

func TestTrayRemoveAndClear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bandeja.json")
	s, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}

	s.Upsert(Item{RecordID: 1})
	s.Upsert(Item{RecordID: 2})

	if err := s.Remove(1); err != nil {
		t.Fatal(err)
	}
	if items := s.Items(); len(items) != 1 || items[0].RecordID != 2 {
		t.Fatalf("after Remove: %+v", items)
	}

	if err := s.Remove(99); err != nil {
		t.Errorf("removing an absent record should be a no-op, got %v", err)
	}

	if err := s.Clear(); err != nil {
		t.Fatal(err)
	}
	s2, _ := Open(path)
	if len(s2.Items()) != 0 {
		t.Error("Clear should persist an empty tray")
	}
}
