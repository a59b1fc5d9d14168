package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func readMigration(t *testing.T, pattern string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join("migrations", pattern))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no migration matching %q found", pattern)
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	return string(data)
}

func TestCatalogMigrationContainsSchemas(t *testing.T) {
	content := readMigration(t, "*_create_catalog.sql")

	checks := []string{
		"CREATE TABLE auctions",
		"CREATE TABLE items",
		"CREATE TABLE bidders",
		"CREATE TABLE auction_items",
		"PRIMARY KEY (auction_id, item_id)",
		"CHECK (quantity >= 0)",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestWinningBidsMigrationEnforcesBidShape(t *testing.T) {
	content := readMigration(t, "*_create_winning_bids.sql")

	checks := []string{
		"CREATE TABLE winning_bids",
		"CREATE INDEX ix_winning_bids_auction_item",
		"CREATE UNIQUE INDEX ux_winning_bids_auction_item_bidder",
		"COALESCE(bidder_id, 0)",
		"WHERE deleted_at IS NULL",
		"ck_winning_bids_no_bid_shape",
		"CHECK (NOT no_bid OR (bidder_id IS NULL AND price = 0 AND quantity_won = 0))",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}
