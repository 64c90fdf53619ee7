package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/mesh-intelligence/orchard/internal/catalog"
	"github.com/mesh-intelligence/orchard/pkg/types"
)

func printJSON(w io.Writer, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return sysError("marshal JSON: %w", err)
	}
	fmt.Fprintln(w, string(out))
	return nil
}

func favoriteMark(it types.Item) string {
	if it.IsFavorite {
		return "★"
	}
	return ""
}

// printItems writes items as an aligned table.
func printItems(w io.Writer, items []types.Item) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "\tNAME\tCOLOR\tTASTE\tSEASON\tFAV\tID")
	for _, it := range items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			it.DisplayEmoji(), it.Name, it.Color, it.Taste, it.Season, favoriteMark(it), it.ID)
	}
	tw.Flush()
}

// printDetail writes the detail panel for one item.
func printDetail(w io.Writer, it types.Item) {
	fmt.Fprintf(w, "%s %s\n\n", it.DisplayEmoji(), it.Name)
	fmt.Fprintf(w, "Color:     %s\n", it.Color)
	fmt.Fprintf(w, "Taste:     %s\n", it.Taste)
	if it.Season != "" {
		fmt.Fprintf(w, "Season:    %s\n", it.Season)
	}
	fmt.Fprintf(w, "Favorite:  %t\n", it.IsFavorite)
	if it.ID != "" {
		fmt.Fprintf(w, "ID:        %s\n", it.ID)
	}
	if it.Description != "" {
		fmt.Fprintf(w, "\nDescription:\n  %s\n", it.Description)
	}
	if it.NutritionFacts != "" {
		fmt.Fprintf(w, "\nNutrition Facts:\n  %s\n", it.NutritionFacts)
	}
}

// notificationResult prints n and converts a failure into an exit error:
// rejected submissions are user errors, failed writes are system errors.
func notificationResult(w io.Writer, jsonMode bool, n catalog.Notification) error {
	if jsonMode {
		if err := printJSON(w, n); err != nil {
			return err
		}
	} else if n.OK() {
		fmt.Fprintln(w, n.Message)
	}
	if n.OK() {
		return nil
	}
	if catalog.IsWriteFailure(n) {
		return sysError("%s: %w", n.Message, n.Err)
	}
	return userError("%s: %w", n.Message, n.Err)
}
