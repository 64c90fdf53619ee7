package catalog

import (
	"context"
	"log/slog"

	"github.com/mesh-intelligence/orchard/pkg/types"
)

// defaultFields is the ordered seed set written to an empty store.
var defaultFields = []types.Fields{
	{
		Name:           "Apple",
		Color:          "Red",
		Taste:          "Sweet-Tart",
		Season:         types.SeasonFall,
		Description:    "Crisp and refreshing fruit perfect for snacking",
		NutritionFacts: "High in fiber, vitamin C, and antioxidants",
		Emoji:          "🍎",
	},
	{
		Name:           "Banana",
		Color:          "Yellow",
		Taste:          "Sweet",
		Season:         types.SeasonYearRound,
		Description:    "Soft, sweet tropical fruit rich in potassium",
		NutritionFacts: "Excellent source of potassium, vitamin B6, and fiber",
		Emoji:          "🍌",
	},
	{
		Name:           "Orange",
		Color:          "Orange",
		Taste:          "Sweet-Citrus",
		Season:         types.SeasonWinter,
		Description:    "Juicy citrus fruit bursting with vitamin C",
		NutritionFacts: "High in vitamin C, folate, and antioxidants",
		Emoji:          "🍊",
	},
	{
		Name:           "Strawberry",
		Color:          "Red",
		Taste:          "Sweet",
		Season:         types.SeasonSummer,
		Description:    "Small, sweet berry perfect for desserts",
		NutritionFacts: "Rich in vitamin C, manganese, and antioxidants",
		Emoji:          "🍓",
	},
}

// DefaultFields returns a copy of the seed set in seeding order.
func DefaultFields() []types.Fields {
	out := make([]types.Fields, len(defaultFields))
	copy(out, defaultFields)
	return out
}

// DefaultItems returns the seed set as unpersisted items. The controller
// holds these in memory when the store cannot be read even after seeding.
func DefaultItems() []types.Item {
	out := make([]types.Item, len(defaultFields))
	for i, f := range defaultFields {
		out[i] = f.Item()
	}
	return out
}

// SeedReport counts the outcome of a Seed call.
type SeedReport struct {
	Created int
	Failed  int
}

// Seed creates each of defaults through store, in order. Seeding is best
// effort: a failed create is logged and the remaining defaults are still
// attempted.
func Seed(ctx context.Context, store types.Store, defaults []types.Fields, logger *slog.Logger) SeedReport {
	if logger == nil {
		logger = slog.Default()
	}
	var report SeedReport
	for _, f := range defaults {
		if _, err := store.Create(ctx, f); err != nil {
			report.Failed++
			logger.Warn("seeding default item failed", "name", f.Name, "error", err)
			continue
		}
		report.Created++
	}
	logger.Info("seeded default items", "created", report.Created, "failed", report.Failed)
	return report
}
