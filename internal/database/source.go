// SAR - Item-Similarity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sar

package database

import (
	"path/filepath"
	"strings"
)

// SourceKind says how a TableSource is read.
type SourceKind int

const (
	// SourceTable is a table or view in the database.
	SourceTable SourceKind = iota

	// SourceCSV is a CSV file read with read_csv_auto.
	SourceCSV

	// SourceParquet is a Parquet file read with read_parquet.
	SourceParquet
)

// TableSource names a relation to read rows from.
type TableSource struct {
	Kind SourceKind

	// Name is a table name or a file path.
	Name string
}

// ParseSource classifies s by extension: .csv and .tsv (optionally
// gzipped) are CSV, .parquet is Parquet, and anything else is a table name.
func ParseSource(s string) TableSource {
	s = strings.TrimSpace(s)
	ext := strings.ToLower(filepath.Ext(strings.TrimSuffix(strings.ToLower(s), ".gz")))
	switch ext {
	case ".csv", ".tsv":
		return TableSource{Kind: SourceCSV, Name: s}
	case ".parquet":
		return TableSource{Kind: SourceParquet, Name: s}
	default:
		return TableSource{Kind: SourceTable, Name: s}
	}
}

// String returns the source name.
func (s TableSource) String() string {
	return s.Name
}

// relation returns the SQL relation expression for s.
func (s TableSource) relation() string {
	switch s.Kind {
	case SourceCSV:
		return "read_csv_auto(" + quoteLiteral(s.Name) + ")"
	case SourceParquet:
		return "read_parquet(" + quoteLiteral(s.Name) + ")"
	default:
		parts := strings.Split(s.Name, ".")
		for i, p := range parts {
			parts[i] = quoteIdent(p)
		}
		return strings.Join(parts, ".")
	}
}

func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
