// SAR - Item-Similarity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sar

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-json"

	"github.com/tomtom215/sar/internal/recommend/sar"
)

func runRecommend(ctx context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("recommend", flag.ContinueOnError)
	users := fs.String("users", "", "comma-separated user ids")
	k := fs.Int("k", 10, "items per user")
	sorted := fs.Bool("sort", true, "order each user's items by descending score")
	removeSeen := fs.Bool("remove-seen", false, "exclude items the user interacted with")
	normalize := fs.Bool("normalize", false, "rescale scores to the rating range")
	if err := fs.Parse(args); err != nil {
		return err
	}

	userIDs := splitList(*users)
	if len(userIDs) == 0 {
		return errors.New("recommend: -users is required")
	}

	_, t, cleanup, err := setup(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	model, err := t.Train(ctx)
	if err != nil {
		return err
	}

	recs, err := model.RecommendKItems(ctx, userIDs, sar.RecommendOptions{
		TopK:       *k,
		Sort:       *sorted,
		RemoveSeen: *removeSeen,
		Normalize:  *normalize,
	})
	if err != nil {
		return err
	}

	enc := json.NewEncoder(stdout)
	for _, r := range recs {
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("write recommendation: %w", err)
		}
	}
	return nil
}

// splitList splits a comma-separated list, dropping empty entries.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
