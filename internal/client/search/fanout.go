package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrijs2005/dmara/internal/client/models"
	"github.com/dmitrijs2005/dmara/internal/logging"
)

// Fetcher issues one backend search. date is only sent for match searches.
type Fetcher interface {
	Search(ctx context.Context, code models.Code, query, date string) ([]json.RawMessage, error)
}

type FetcherFunc func(ctx context.Context, code models.Code, query, date string) ([]json.RawMessage, error)

func (f FetcherFunc) Search(ctx context.Context, code models.Code, query, date string) ([]json.RawMessage, error) {
	return f(ctx, code, query, date)
}

var ErrUnknownCategory = errors.New("category has no search backend")

// fanOut searches every subtype of category concurrently and concatenates
// the results in subtype order. It fails only when every subtype failed;
// partial reports the failures of the rest.
func fanOut(ctx context.Context, f Fetcher, subs []models.Subtype, category models.Category,
	query, date string, limit int, logger logging.Logger) (res []Result, partial error, err error) {
	if len(subs) == 0 {
		return nil, nil, fmt.Errorf("%w: %s", ErrUnknownCategory, category)
	}
	if limit <= 0 {
		limit = len(subs)
	}

	per := make([][]Result, len(subs))
	errs := make([]error, len(subs))

	var g errgroup.Group
	g.SetLimit(limit)
	for i, sub := range subs {
		g.Go(func() error {
			d := ""
			if sub.Code == models.CodeMatch {
				d = date
			}
			raws, err := f.Search(ctx, sub.Code, query, d)
			if err != nil {
				errs[i] = fmt.Errorf("%s: %w", sub.Label, err)
				return nil
			}
			for _, raw := range raws {
				hit, err := Decode(sub.Code, raw)
				if err != nil {
					logger.Debug(ctx, "skipping undecodable hit", "code", sub.Code, "error", err)
					continue
				}
				per[i] = append(per[i], Normalize(hit, category, sub, date))
			}
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, e := range errs {
		if e != nil {
			failed++
		}
	}
	if failed == len(subs) {
		return nil, nil, errors.Join(errs...)
	}
	for _, rs := range per {
		res = append(res, rs...)
	}
	if failed > 0 {
		partial = errors.Join(errs...)
	}
	return res, partial, nil
}

// dedupe drops repeated results and those skip reports as already owned.
func dedupe(rs []Result, skip func(Result) bool) []Result {
	out := make([]Result, 0, len(rs))
	seen := make(map[string]bool, len(rs))
	for _, r := range rs {
		key := string(r.Code) + "|" + r.SourceID
		if r.SourceID == "" {
			key = string(r.Code) + "|" + foldTitle(r.Title)
		}
		if seen[key] || (skip != nil && skip(r)) {
			continue
		}
		seen[key] = true
		out = append(out, r)
	}
	return out
}
