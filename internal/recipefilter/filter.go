// Package recipefilter narrows a recipe set by browse criteria.
package recipefilter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pageza/cibaria/backend/internal/apperr"
	"github.com/pageza/cibaria/backend/internal/models"
)

// Criteria holds the optional browse filters. Zero values mean "not set".
type Criteria struct {
	Categories  []string
	Difficulty  *int
	Servings    string // "from-to"
	PrepareTime string // "from-to"
	Language    string
	Ingredients []string
}

// Range is an inclusive integer interval.
type Range struct {
	From int
	To   int
}

func (r Range) Contains(v int) bool {
	return v >= r.From && v <= r.To
}

// ParseRange parses "from-to", e.g. "2-4".
func ParseRange(s string) (Range, error) {
	from, to, ok := strings.Cut(strings.TrimSpace(s), "-")
	if !ok {
		return Range{}, fmt.Errorf("%q: %w", s, apperr.ErrInvalidRange)
	}
	f, err := strconv.Atoi(strings.TrimSpace(from))
	if err != nil {
		return Range{}, fmt.Errorf("%q: %w", s, apperr.ErrInvalidRange)
	}
	t, err := strconv.Atoi(strings.TrimSpace(to))
	if err != nil {
		return Range{}, fmt.Errorf("%q: %w", s, apperr.ErrInvalidRange)
	}
	return Range{From: f, To: t}, nil
}

// Validate reports malformed ranges before any filtering happens.
func (c Criteria) Validate() error {
	if c.Servings != "" {
		if _, err := ParseRange(c.Servings); err != nil {
			return fmt.Errorf("servings: %w", err)
		}
	}
	if c.PrepareTime != "" {
		if _, err := ParseRange(c.PrepareTime); err != nil {
			return fmt.Errorf("prepare time: %w", err)
		}
	}
	return nil
}

type predicate func(models.Recipe) bool

// predicates returns the active criteria in their fixed order.
func (c Criteria) predicates() ([]predicate, error) {
	var preds []predicate

	if len(c.Categories) > 0 {
		set := make(map[string]struct{}, len(c.Categories))
		for _, cat := range c.Categories {
			set[cat] = struct{}{}
		}
		preds = append(preds, func(r models.Recipe) bool {
			_, ok := set[r.Category]
			return ok
		})
	}

	if c.Difficulty != nil {
		want := *c.Difficulty
		preds = append(preds, func(r models.Recipe) bool { return r.Difficulty == want })
	}

	if c.Servings != "" {
		rng, err := ParseRange(c.Servings)
		if err != nil {
			return nil, fmt.Errorf("servings: %w", err)
		}
		preds = append(preds, func(r models.Recipe) bool { return rng.Contains(r.Servings) })
	}

	if c.PrepareTime != "" {
		rng, err := ParseRange(c.PrepareTime)
		if err != nil {
			return nil, fmt.Errorf("prepare time: %w", err)
		}
		preds = append(preds, func(r models.Recipe) bool { return rng.Contains(r.PrepareTime) })
	}

	if c.Language != "" {
		lang := c.Language
		preds = append(preds, func(r models.Recipe) bool { return strings.EqualFold(r.Language, lang) })
	}

	if len(c.Ingredients) > 0 {
		wanted := c.Ingredients
		preds = append(preds, func(r models.Recipe) bool {
			have := make(map[string]struct{}, len(r.Ingredients))
			for _, ing := range r.Ingredients {
				have[strings.ToLower(ing.Name)] = struct{}{}
			}
			for _, w := range wanted {
				if _, ok := have[strings.ToLower(w)]; !ok {
					return false
				}
			}
			return true
		})
	}

	return preds, nil
}

// Apply returns the recipes matching every criterion. The input slice and
// its recipes are not modified.
//
// When a language is requested, each surviving recipe's ingredient list is
// narrowed to ingredients in that language. The rewrite never changes which
// recipes survive.
func Apply(c Criteria, recipes []models.Recipe) ([]models.Recipe, error) {
	preds, err := c.predicates()
	if err != nil {
		return nil, err
	}

	out := make([]models.Recipe, 0, len(recipes))
next:
	for _, r := range recipes {
		for _, p := range preds {
			if !p(r) {
				continue next
			}
		}
		out = append(out, r)
	}

	if c.Language != "" {
		for i := range out {
			out[i].Ingredients = inLanguage(out[i].Ingredients, c.Language)
		}
	}
	return out, nil
}

func inLanguage(ings []models.Ingredient, lang string) []models.Ingredient {
	if ings == nil {
		return nil
	}
	kept := make([]models.Ingredient, 0, len(ings))
	for _, ing := range ings {
		if strings.EqualFold(ing.Language, lang) {
			kept = append(kept, ing)
		}
	}
	return kept
}
