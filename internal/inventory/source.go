package inventory

import (
	"context"

	"github.com/pkg/errors"
	"yardwatch/internal/configuration"
	"yardwatch/internal/model"
)

// Source is one upstream yard. Implementations fetch and parse the yard's
// site; rows come back without yard identity, the aggregator stamps it.
type Source interface {
	ID() string
	Name() string
	Inventory(ctx context.Context, makeName string, modelName string) ([]model.InventoryRow, error)
	Makes(ctx context.Context) ([]string, error)
	Models(ctx context.Context, makeName string) ([]string, error)
}

type yardClient interface {
	JSONYardInventory(ctx context.Context, baseURL string, makeName string, modelName string) ([]model.InventoryRow, error)
	JSONYardMakes(ctx context.Context, baseURL string) ([]string, error)
	JSONYardModels(ctx context.Context, baseURL string, makeName string) ([]string, error)
	HTMLYardInventory(ctx context.Context, baseURL string, makeName string, modelName string) ([]model.InventoryRow, error)
	HTMLYardMakes(ctx context.Context, baseURL string) ([]string, error)
	HTMLYardModels(ctx context.Context, baseURL string, makeName string) ([]string, error)
}

type clientSource struct {
	yard   configuration.Yard
	client yardClient
}

func (cs clientSource) ID() string   { return cs.yard.ID }
func (cs clientSource) Name() string { return cs.yard.Name }

func (cs clientSource) Inventory(ctx context.Context, makeName string, modelName string) ([]model.InventoryRow, error) {
	switch cs.yard.Kind {
	case configuration.YardKindJSON:
		return cs.client.JSONYardInventory(ctx, cs.yard.BaseURL, makeName, modelName)
	case configuration.YardKindHTML:
		return cs.client.HTMLYardInventory(ctx, cs.yard.BaseURL, makeName, modelName)
	}
	return nil, errors.Errorf("yard %s has unknown kind: %s", cs.yard.ID, cs.yard.Kind)
}

func (cs clientSource) Makes(ctx context.Context) ([]string, error) {
	switch cs.yard.Kind {
	case configuration.YardKindJSON:
		return cs.client.JSONYardMakes(ctx, cs.yard.BaseURL)
	case configuration.YardKindHTML:
		return cs.client.HTMLYardMakes(ctx, cs.yard.BaseURL)
	}
	return nil, errors.Errorf("yard %s has unknown kind: %s", cs.yard.ID, cs.yard.Kind)
}

func (cs clientSource) Models(ctx context.Context, makeName string) ([]string, error) {
	switch cs.yard.Kind {
	case configuration.YardKindJSON:
		return cs.client.JSONYardModels(ctx, cs.yard.BaseURL, makeName)
	case configuration.YardKindHTML:
		return cs.client.HTMLYardModels(ctx, cs.yard.BaseURL, makeName)
	}
	return nil, errors.Errorf("yard %s has unknown kind: %s", cs.yard.ID, cs.yard.Kind)
}

// Sources builds one Source per configured yard backed by the given client.
func Sources(yards []configuration.Yard, c yardClient) []Source {
	ss := make([]Source, 0, len(yards))
	for _, y := range yards {
		ss = append(ss, clientSource{yard: y, client: c})
	}
	return ss
}
