package inventory

import (
	"context"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"yardwatch/internal/model"
)

// DefaultPoolSize bounds how many yards are queried at once. Kept small so
// a sweep over many saved searches stays gentle on the upstream sites.
const DefaultPoolSize = 2

var ErrEmptyMake = errors.New("make must not be empty")

// Aggregator fans a query out to every configured yard through a bounded
// worker pool. A yard that fails contributes zero rows; aggregation never
// fails because of a single upstream.
type Aggregator struct {
	Sources  []Source
	PoolSize int
	Logger   logger
}

type logger interface {
	Debugf(format string, v ...any)
	Errorf(format string, v ...any)
}

func (a Aggregator) poolSize() int {
	if a.PoolSize > 0 {
		return a.PoolSize
	}
	return DefaultPoolSize
}

// Search queries all yards for make (and optional model) and returns the
// flattened results sorted by yard name ascending, year descending within
// a yard. A vehicle listed at two yards legitimately appears twice.
func (a Aggregator) Search(ctx context.Context, makeName string, modelName string) ([]model.InventoryRow, error) {
	makeName = strings.TrimSpace(makeName)
	if makeName == "" {
		return nil, ErrEmptyMake
	}
	modelName = strings.TrimSpace(modelName)

	perYard := make([][]model.InventoryRow, len(a.Sources))
	tasks := make([]func(), 0, len(a.Sources))
	for idx, src := range a.Sources {
		idx, src := idx, src
		tasks = append(tasks, func() {
			rows, err := src.Inventory(ctx, makeName, modelName)
			if err != nil {
				a.Logger.Errorf("Search: Error fetching inventory from yard %s (%s), err: %v", src.ID(), src.Name(), err)
				return
			}
			for i := range rows {
				rows[i].YardID = src.ID()
				rows[i].YardName = src.Name()
			}
			perYard[idx] = rows
		})
	}
	runPool(a.poolSize(), tasks)

	var all []model.InventoryRow
	for _, rows := range perYard {
		all = append(all, rows...)
	}
	sort.SliceStable(all, func(i, j int) bool {
		if all[i].YardName != all[j].YardName {
			return all[i].YardName < all[j].YardName
		}
		return all[i].Year > all[j].Year
	})
	return all, nil
}

// Makes merges the make lists of every yard into a deduplicated,
// lexicographically sorted list.
func (a Aggregator) Makes(ctx context.Context) ([]string, error) {
	return a.collect(ctx, func(ctx context.Context, src Source) ([]string, error) {
		return src.Makes(ctx)
	})
}

// Models merges the model lists of every yard for the given make.
func (a Aggregator) Models(ctx context.Context, makeName string) ([]string, error) {
	makeName = strings.TrimSpace(makeName)
	if makeName == "" {
		return nil, ErrEmptyMake
	}
	return a.collect(ctx, func(ctx context.Context, src Source) ([]string, error) {
		return src.Models(ctx, makeName)
	})
}

func (a Aggregator) collect(ctx context.Context, fetch func(context.Context, Source) ([]string, error)) ([]string, error) {
	perYard := make([][]string, len(a.Sources))
	tasks := make([]func(), 0, len(a.Sources))
	for idx, src := range a.Sources {
		idx, src := idx, src
		tasks = append(tasks, func() {
			vals, err := fetch(ctx, src)
			if err != nil {
				a.Logger.Errorf("collect: Error fetching from yard %s (%s), err: %v", src.ID(), src.Name(), err)
				return
			}
			perYard[idx] = vals
		})
	}
	runPool(a.poolSize(), tasks)

	seen := map[string]bool{}
	merged := []string{}
	for _, vals := range perYard {
		for _, v := range vals {
			if v != "" && !seen[v] {
				seen[v] = true
				merged = append(merged, v)
			}
		}
	}
	sort.Strings(merged)
	return merged, nil
}

// YardNames lists the configured yard names in configuration order.
func (a Aggregator) YardNames() []string {
	names := make([]string, 0, len(a.Sources))
	for _, src := range a.Sources {
		names = append(names, src.Name())
	}
	return names
}
