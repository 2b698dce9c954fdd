// SAR - Item-Similarity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sar

package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/tomtom215/sar/internal/metrics"
	"github.com/tomtom215/sar/internal/recommend"
)

// Columns names the interaction columns. Rating and Timestamp may be empty:
// without a rating column every rating is 1, without a timestamp column no
// row has a timestamp.
type Columns struct {
	User      string
	Item      string
	Rating    string
	Timestamp string
}

// describe returns the DuckDB type of every column of src, keyed by name.
func (db *DB) describe(ctx context.Context, src TableSource) (map[string]string, error) {
	rows, err := db.conn.QueryContext(ctx, "DESCRIBE SELECT * FROM "+src.relation())
	if err != nil {
		return nil, fmt.Errorf("describe %s: %w", src, err)
	}
	defer closeQuietly(rows)

	types := make(map[string]string)
	for rows.Next() {
		var (
			name, typ             string
			null, key, def, extra sql.NullString
		)
		if err := rows.Scan(&name, &typ, &null, &key, &def, &extra); err != nil {
			return nil, fmt.Errorf("scan column description: %w", err)
		}
		types[name] = strings.ToUpper(typ)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate column descriptions: %w", err)
	}
	return types, nil
}

func requireColumns(src TableSource, types map[string]string, names ...string) error {
	for _, name := range names {
		if _, ok := types[name]; !ok {
			return fmt.Errorf("%w: %s has no column %q", recommend.ErrInvalidInput, src, name)
		}
	}
	return nil
}

func isNumeric(typ string) bool {
	switch typ {
	case "TINYINT", "SMALLINT", "INTEGER", "BIGINT", "HUGEINT",
		"UTINYINT", "USMALLINT", "UINTEGER", "UBIGINT", "UHUGEINT",
		"FLOAT", "REAL", "DOUBLE":
		return true
	}
	return strings.HasPrefix(typ, "DECIMAL")
}

func isTemporal(typ string) bool {
	return typ == "DATE" || strings.HasPrefix(typ, "TIMESTAMP")
}

// LoadInteractions reads (user, item, rating, timestamp) rows from src.
// Rows with a NULL user or item are skipped; a NULL rating is rejected.
func (db *DB) LoadInteractions(ctx context.Context, src TableSource, cols Columns) ([]recommend.Interaction, error) {
	start := time.Now()

	if cols.User == "" || cols.Item == "" {
		return nil, fmt.Errorf("%w: user and item column names are required", recommend.ErrInvalidInput)
	}
	types, err := db.describe(ctx, src)
	if err != nil {
		return nil, err
	}
	if err := requireColumns(src, types, cols.User, cols.Item); err != nil {
		return nil, err
	}

	ratingExpr := "1.0"
	if cols.Rating != "" {
		if err := requireColumns(src, types, cols.Rating); err != nil {
			return nil, err
		}
		if typ := types[cols.Rating]; !isNumeric(typ) {
			return nil, fmt.Errorf("%w: rating column %q has non-numeric type %s",
				recommend.ErrInvalidInput, cols.Rating, typ)
		}
		ratingExpr = "CAST(" + quoteIdent(cols.Rating) + " AS DOUBLE)"
	}

	tsExpr := "NULL::TIMESTAMP"
	if cols.Timestamp != "" {
		if err := requireColumns(src, types, cols.Timestamp); err != nil {
			return nil, err
		}
		ts := quoteIdent(cols.Timestamp)
		switch typ := types[cols.Timestamp]; {
		case isTemporal(typ):
			tsExpr = ts
		case isNumeric(typ):
			tsExpr = "to_timestamp(CAST(" + ts + " AS DOUBLE))"
		default:
			return nil, fmt.Errorf("%w: timestamp column %q has unsupported type %s",
				recommend.ErrInvalidInput, cols.Timestamp, typ)
		}
	}

	user, item := quoteIdent(cols.User), quoteIdent(cols.Item)
	query := fmt.Sprintf(`
		SELECT
			CAST(%s AS VARCHAR),
			CAST(%s AS VARCHAR),
			%s,
			%s
		FROM %s
		WHERE %s IS NOT NULL AND %s IS NOT NULL`,
		user, item, ratingExpr, tsExpr, src.relation(), user, item)

	rows, err := db.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query interactions: %w", err)
	}
	defer closeQuietly(rows)

	var out []recommend.Interaction
	for rows.Next() {
		var (
			userID, itemID string
			rating         sql.NullFloat64
			ts             sql.NullTime
		)
		if err := rows.Scan(&userID, &itemID, &rating, &ts); err != nil {
			return nil, fmt.Errorf("scan interaction: %w", err)
		}
		if !rating.Valid {
			return nil, fmt.Errorf("%w: NULL rating for user %q item %q", recommend.ErrInvalidInput, userID, itemID)
		}
		in := recommend.Interaction{UserID: userID, ItemID: itemID, Rating: rating.Float64}
		if ts.Valid {
			in.Timestamp = ts.Time.UTC()
		}
		out = append(out, in)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate interactions: %w", err)
	}

	metrics.RecordLoad("interactions", time.Since(start), len(out))
	db.logger.Info().
		Str("source", src.String()).
		Int("rows", len(out)).
		Dur("duration", time.Since(start)).
		Msg("Loaded interactions")
	return out, nil
}

// LoadFeatures reads the item id and the given feature columns from src.
func (db *DB) LoadFeatures(ctx context.Context, src TableSource, itemColumn string, columns []string) ([]recommend.FeatureRow, error) {
	start := time.Now()

	if itemColumn == "" {
		return nil, fmt.Errorf("%w: feature item column name is required", recommend.ErrInvalidInput)
	}
	types, err := db.describe(ctx, src)
	if err != nil {
		return nil, err
	}
	if err := requireColumns(src, types, append([]string{itemColumn}, columns...)...); err != nil {
		return nil, err
	}

	item := quoteIdent(itemColumn)
	selects := make([]string, 0, len(columns)+1)
	selects = append(selects, "CAST("+item+" AS VARCHAR)")
	for _, c := range columns {
		selects = append(selects, quoteIdent(c))
	}
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s IS NOT NULL",
		strings.Join(selects, ", "), src.relation(), item)

	rows, err := db.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query features: %w", err)
	}
	defer closeQuietly(rows)

	var out []recommend.FeatureRow
	for rows.Next() {
		var itemID string
		values := make([]any, len(columns))
		dest := make([]any, 0, len(columns)+1)
		dest = append(dest, &itemID)
		for i := range values {
			dest = append(dest, &values[i])
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan feature row: %w", err)
		}

		row := recommend.FeatureRow{ItemID: itemID, Values: make(map[string]any, len(columns))}
		for i, c := range columns {
			if values[i] != nil {
				row.Values[c] = values[i]
			}
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate feature rows: %w", err)
	}

	metrics.RecordLoad("features", time.Since(start), len(out))
	db.logger.Info().
		Str("source", src.String()).
		Int("rows", len(out)).
		Strs("columns", columns).
		Msg("Loaded item features")
	return out, nil
}
