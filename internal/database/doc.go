// SAR - Item-Similarity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sar

/*
Package database reads SAR training data through DuckDB.

Interactions and item features can live in a DuckDB table or in a CSV or
Parquet file that DuckDB reads directly:

	db, err := database.Open(ctx, "", logger) // in-memory
	src := database.ParseSource("ratings.parquet")
	rows, err := db.LoadInteractions(ctx, src, database.Columns{
	    User: "userID", Item: "itemID", Rating: "rating", Timestamp: "timestamp",
	})

# Column Checks

Before reading, the relation is described and the configured columns are
checked. A missing column or a rating column that is not numeric is
reported as recommend.ErrInvalidInput. Timestamps may be TIMESTAMP, DATE,
or numeric epoch seconds; an empty Timestamp column name reads none.

# Feature Values

LoadFeatures returns the raw DuckDB values of each feature column, so a
VARCHAR column yields strings, a LIST column yields []any and numeric
columns yield Go numbers. NULL becomes a missing value.
*/
package database
