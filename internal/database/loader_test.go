// SAR - Item-Similarity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sar

package database

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/sar/internal/recommend"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(context.Background(), "", zerolog.Nop())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func mustExec(t *testing.T, db *DB, stmts ...string) {
	t.Helper()
	for _, s := range stmts {
		if _, err := db.Conn().ExecContext(context.Background(), s); err != nil {
			t.Fatalf("exec %q: %v", s, err)
		}
	}
}

func TestParseSource(t *testing.T) {
	tests := []struct {
		in       string
		wantKind SourceKind
		wantRel  string
	}{
		{"ratings", SourceTable, `"ratings"`},
		{"main.ratings", SourceTable, `"main"."ratings"`},
		{"data/ratings.csv", SourceCSV, `read_csv_auto('data/ratings.csv')`},
		{"data/RATINGS.CSV.gz", SourceCSV, `read_csv_auto('data/RATINGS.CSV.gz')`},
		{"it's.parquet", SourceParquet, `read_parquet('it''s.parquet')`},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			src := ParseSource(tt.in)
			if src.Kind != tt.wantKind {
				t.Errorf("Kind = %v, want %v", src.Kind, tt.wantKind)
			}
			if got := src.relation(); got != tt.wantRel {
				t.Errorf("relation() = %s, want %s", got, tt.wantRel)
			}
		})
	}
}

func TestLoadInteractions_Table(t *testing.T) {
	db := setupTestDB(t)
	mustExec(t, db,
		`CREATE TABLE ratings (userID VARCHAR, itemID INTEGER, rating DOUBLE, ts TIMESTAMP)`,
		`INSERT INTO ratings VALUES
			('A', 1, 5.0, TIMESTAMP '2024-01-01 00:00:00'),
			('A', 2, 3.0, TIMESTAMP '2024-01-02 00:00:00'),
			('B', 1, 4.0, NULL),
			(NULL, 3, 1.0, NULL)`,
	)

	got, err := db.LoadInteractions(context.Background(), ParseSource("ratings"),
		Columns{User: "userID", Item: "itemID", Rating: "rating", Timestamp: "ts"})
	if err != nil {
		t.Fatalf("LoadInteractions() error = %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d rows, want 3 (NULL user skipped)", len(got))
	}

	byKey := make(map[string]recommend.Interaction, len(got))
	for _, in := range got {
		byKey[in.UserID+"/"+in.ItemID] = in
	}
	a1, ok := byKey["A/1"]
	if !ok || a1.Rating != 5 {
		t.Fatalf("A/1 = %+v", a1)
	}
	if want := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC); !a1.Timestamp.Equal(want) {
		t.Errorf("A/1 timestamp = %v, want %v", a1.Timestamp, want)
	}
	if b1 := byKey["B/1"]; b1.HasTimestamp() {
		t.Errorf("B/1 should have no timestamp, got %v", b1.Timestamp)
	}
}

func TestLoadInteractions_CSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ratings.csv")
	data := "userID,itemID,rating,timestamp\nA,x,5,1700000000\nB,y,2.5,1700000100\n"
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	db := setupTestDB(t)
	got, err := db.LoadInteractions(context.Background(), ParseSource(path),
		Columns{User: "userID", Item: "itemID", Rating: "rating", Timestamp: "timestamp"})
	if err != nil {
		t.Fatalf("LoadInteractions() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d rows, want 2", len(got))
	}
	for _, in := range got {
		if !in.HasTimestamp() || in.Timestamp.Unix() < 1700000000 {
			t.Errorf("%s/%s timestamp = %v, want epoch seconds decoded", in.UserID, in.ItemID, in.Timestamp)
		}
	}
}

func TestLoadInteractions_NoRatingColumn(t *testing.T) {
	db := setupTestDB(t)
	mustExec(t, db,
		`CREATE TABLE clicks (u VARCHAR, i VARCHAR)`,
		`INSERT INTO clicks VALUES ('A', 'x'), ('A', 'y')`,
	)

	got, err := db.LoadInteractions(context.Background(), ParseSource("clicks"), Columns{User: "u", Item: "i"})
	if err != nil {
		t.Fatalf("LoadInteractions() error = %v", err)
	}
	for _, in := range got {
		if in.Rating != 1 || in.HasTimestamp() {
			t.Errorf("row %+v, want rating 1 and no timestamp", in)
		}
	}
}

func TestLoadInteractions_InvalidInput(t *testing.T) {
	db := setupTestDB(t)
	mustExec(t, db,
		`CREATE TABLE bad (u VARCHAR, i VARCHAR, r VARCHAR, t BOOLEAN)`,
		`INSERT INTO bad VALUES ('A', 'x', 'five', true)`,
		`CREATE TABLE nulls (u VARCHAR, i VARCHAR, r DOUBLE)`,
		`INSERT INTO nulls VALUES ('A', 'x', NULL)`,
	)

	tests := []struct {
		name  string
		table string
		cols  Columns
	}{
		{name: "string rating", table: "bad", cols: Columns{User: "u", Item: "i", Rating: "r"}},
		{name: "missing column", table: "bad", cols: Columns{User: "u", Item: "item"}},
		{name: "boolean timestamp", table: "bad", cols: Columns{User: "u", Item: "i", Timestamp: "t"}},
		{name: "null rating", table: "nulls", cols: Columns{User: "u", Item: "i", Rating: "r"}},
		{name: "no user column", table: "bad", cols: Columns{Item: "i"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := db.LoadInteractions(context.Background(), ParseSource(tt.table), tt.cols)
			if !errors.Is(err, recommend.ErrInvalidInput) {
				t.Errorf("LoadInteractions() error = %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestLoadFeatures(t *testing.T) {
	db := setupTestDB(t)
	mustExec(t, db,
		`CREATE TABLE items (itemID VARCHAR, genres VARCHAR[], year INTEGER, studio VARCHAR)`,
		`INSERT INTO items VALUES
			('x', ['drama', 'crime'], 1994, 'A'),
			('y', ['drama'], NULL, 'B')`,
	)

	got, err := db.LoadFeatures(context.Background(), ParseSource("items"), "itemID", []string{"genres", "year"})
	if err != nil {
		t.Fatalf("LoadFeatures() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d rows, want 2", len(got))
	}

	rows := make(map[string]recommend.FeatureRow)
	for _, r := range got {
		rows[r.ItemID] = r
	}
	if genres, ok := rows["x"].Values["genres"].([]any); !ok || len(genres) != 2 {
		t.Errorf("x genres = %#v, want a two-element list", rows["x"].Values["genres"])
	}
	if _, ok := rows["x"].Values["studio"]; ok {
		t.Error("unrequested column studio was loaded")
	}
	if _, ok := rows["y"].Values["year"]; ok {
		t.Error("NULL year should be a missing value")
	}

	if _, err := db.LoadFeatures(context.Background(), ParseSource("items"), "itemID", []string{"rating"}); !errors.Is(err, recommend.ErrInvalidInput) {
		t.Errorf("LoadFeatures(missing column) error = %v, want ErrInvalidInput", err)
	}
}
