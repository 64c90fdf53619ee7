package types

import (
	"fmt"
	"strings"
	"time"
)

// Season is the best-eating season of an item.
type Season string

// Seasons an item may belong to. SeasonAll is the filter sentinel that
// matches every season; it is never stored on an item.
const (
	SeasonSpring    Season = "Spring"
	SeasonSummer    Season = "Summer"
	SeasonFall      Season = "Fall"
	SeasonWinter    Season = "Winter"
	SeasonYearRound Season = "Year-round"

	SeasonAll Season = "all"
)

// Seasons lists the storable seasons in display order.
var Seasons = []Season{SeasonSpring, SeasonSummer, SeasonFall, SeasonWinter, SeasonYearRound}

// SuggestedTastes is the taste vocabulary offered to users. Taste is an open
// set; values outside this list are accepted.
var SuggestedTastes = []string{"Sweet", "Sour", "Tart", "Sweet-Tart", "Sweet-Citrus", "Bitter"}

// FallbackEmoji is shown for items without an emoji of their own.
const FallbackEmoji = "🍎"

// Valid reports whether s is one of the storable seasons.
func (s Season) Valid() bool {
	for _, v := range Seasons {
		if s == v {
			return true
		}
	}
	return false
}

// ParseSeasonFilter converts user input into a season filter. Empty input and
// "all" (any case) yield SeasonAll.
func ParseSeasonFilter(s string) (Season, error) {
	if s == "" || strings.EqualFold(s, string(SeasonAll)) {
		return SeasonAll, nil
	}
	for _, v := range Seasons {
		if strings.EqualFold(s, string(v)) {
			return v, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidSeason, s)
}

// Item is a catalog record.
type Item struct {
	ID             string    `json:"_id,omitempty"`
	Name           string    `json:"name"`
	Color          string    `json:"color"`
	Taste          string    `json:"taste"`
	Season         Season    `json:"season,omitempty"`
	Description    string    `json:"description,omitempty"`
	NutritionFacts string    `json:"nutritionFacts,omitempty"`
	IsFavorite     bool      `json:"isFavorite"`
	Emoji          string    `json:"emoji,omitempty"`
	CreatedAt      time.Time `json:"createdAt,omitzero"`
	UpdatedAt      time.Time `json:"updatedAt,omitzero"`
}

// DisplayEmoji returns the item's emoji or FallbackEmoji when it has none.
func (i Item) DisplayEmoji() string {
	if i.Emoji == "" {
		return FallbackEmoji
	}
	return i.Emoji
}

// Fields returns the user-editable part of the item.
func (i Item) Fields() Fields {
	return Fields{
		Name:           i.Name,
		Color:          i.Color,
		Taste:          i.Taste,
		Season:         i.Season,
		Description:    i.Description,
		NutritionFacts: i.NutritionFacts,
		IsFavorite:     i.IsFavorite,
		Emoji:          i.Emoji,
	}
}

// Validate checks the required fields of a persisted item.
func (i Item) Validate() error {
	return i.Fields().Validate()
}

// Fields is a partial item as submitted for creation. It carries no ID.
type Fields struct {
	Name           string `json:"name"`
	Color          string `json:"color"`
	Taste          string `json:"taste"`
	Season         Season `json:"season,omitempty"`
	Description    string `json:"description,omitempty"`
	NutritionFacts string `json:"nutritionFacts,omitempty"`
	IsFavorite     bool   `json:"isFavorite"`
	Emoji          string `json:"emoji,omitempty"`
}

// Validate reports the first missing required field. Season is optional but,
// when present, must be one of Seasons.
func (f Fields) Validate() error {
	if strings.TrimSpace(f.Name) == "" {
		return ErrInvalidName
	}
	if strings.TrimSpace(f.Color) == "" {
		return ErrInvalidColor
	}
	if strings.TrimSpace(f.Taste) == "" {
		return ErrInvalidTaste
	}
	if f.Season != "" && !f.Season.Valid() {
		return ErrInvalidSeason
	}
	return nil
}

// Item builds an unpersisted item from the fields.
func (f Fields) Item() Item {
	return Item{
		Name:           f.Name,
		Color:          f.Color,
		Taste:          f.Taste,
		Season:         f.Season,
		Description:    f.Description,
		NutritionFacts: f.NutritionFacts,
		IsFavorite:     f.IsFavorite,
		Emoji:          f.Emoji,
	}
}
