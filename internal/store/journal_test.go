package store

import (
	"context"
	"path/filepath"
	"testing"

	"sahamwatch/internal/models"
)

func TestJournalRecordAndHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	journal, err := OpenJournal(path)
	if err != nil {
		t.Fatalf("OpenJournal failed: %v", err)
	}
	defer journal.Close()

	ctx := context.Background()
	alert := models.Alert{Symbol: "BBCA", Direction: models.DirectionAbove, TargetPrice: 9500}

	if err := journal.Record(ctx, "1001", alert, 9600); err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if err := journal.Record(ctx, "2002", models.Alert{Symbol: "TLKM", Direction: models.DirectionBelow, TargetPrice: 3000}, 2950); err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	all, err := journal.History(ctx, "", 10)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 journal rows, got %d", len(all))
	}

	mine, err := journal.History(ctx, "1001", 10)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(mine) != 1 {
		t.Fatalf("expected 1 row for user 1001, got %d", len(mine))
	}
	got := mine[0]
	if got.Symbol != "BBCA" || got.Direction != models.DirectionAbove || got.TargetPrice != 9500 || got.LastPrice != 9600 {
		t.Errorf("unexpected journal row: %+v", got)
	}
	if got.ID == "" {
		t.Error("journal row has no ID")
	}
}
