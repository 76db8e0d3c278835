// Adaptrank - Adaptive Multi-Factor Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adaptrank

package scoring

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/tomtom215/adaptrank/internal/ranking"
)

// MaxFieldPoints bounds the sum of the per-field overlap weights.
const MaxFieldPoints = 60.0

// RelevanceWeights contains the point values of the relevance score.
type RelevanceWeights struct {
	// Name is awarded when a query token occurs in the item name.
	Name float64 `json:"name" koanf:"name"`

	// Category is awarded when a query token occurs in the item category.
	Category float64 `json:"category" koanf:"category"`

	// Description is awarded when a query token occurs in the description.
	Description float64 `json:"description" koanf:"description"`

	// RatingMax is the bonus for a 5.0 rating. Ratings between 4.0 and 5.0
	// earn a linear share of it; ratings below 4.0 earn nothing.
	RatingMax float64 `json:"rating_max" koanf:"rating_max"`

	// ExactName is awarded when the item name equals the query,
	// ignoring case and surrounding whitespace.
	ExactName float64 `json:"exact_name" koanf:"exact_name"`
}

// DefaultRelevanceWeights returns name 30, category 15, description 15,
// rating up to 25 and exact name 15.
func DefaultRelevanceWeights() RelevanceWeights {
	return RelevanceWeights{
		Name:        30,
		Category:    15,
		Description: 15,
		RatingMax:   25,
		ExactName:   15,
	}
}

// Validate checks that weights are non-negative and that the field
// weights sum to at most MaxFieldPoints.
func (w RelevanceWeights) Validate() error {
	for name, v := range map[string]float64{
		"name":        w.Name,
		"category":    w.Category,
		"description": w.Description,
		"rating_max":  w.RatingMax,
		"exact_name":  w.ExactName,
	} {
		if v < 0 {
			return fmt.Errorf("relevance.%s must be non-negative, got %f", name, v)
		}
	}
	if sum := w.Name + w.Category + w.Description; sum > MaxFieldPoints {
		return fmt.Errorf("relevance field weights must sum to at most %.0f, got %f", MaxFieldPoints, sum)
	}
	return nil
}

const (
	ratingBonusFloor = 4.0
	ratingCeiling    = 5.0
)

// Relevance scores the textual and rating relevance of an item to a query.
// It holds no mutable state and is safe for concurrent use.
//
//	score = Σ field weight (if any query token occurs in the field)
//	      + RatingMax * clamp(rating-4, 0, 1)
//	      + ExactName (if name equals query)
//
// capped at ranking.MaxScore.
type Relevance struct {
	weights RelevanceWeights
}

// NewRelevance creates a relevance scorer.
func NewRelevance(weights RelevanceWeights) (*Relevance, error) {
	if err := weights.Validate(); err != nil {
		return nil, err
	}
	return &Relevance{weights: weights}, nil
}

// Weights returns the configured weights.
func (r *Relevance) Weights() RelevanceWeights {
	return r.weights
}

// Score implements ranking.RelevanceScorer.
func (r *Relevance) Score(query string, item *ranking.Item) float64 {
	if item == nil {
		return ranking.DefaultRelevanceScore
	}

	score := 0.0
	if terms := tokenSet(query); len(terms) > 0 {
		if overlaps(terms, item.Name) {
			score += r.weights.Name
		}
		if overlaps(terms, item.Category) {
			score += r.weights.Category
		}
		if overlaps(terms, item.Description) {
			score += r.weights.Description
		}
	}

	score += r.ratingBonus(item.Rating)

	if q := strings.TrimSpace(query); q != "" && strings.EqualFold(strings.TrimSpace(item.Name), q) {
		score += r.weights.ExactName
	}

	return ranking.ClampScore(score)
}

func (r *Relevance) ratingBonus(rating float64) float64 {
	if !(rating > ratingBonusFloor) { // NaN earns nothing
		return 0
	}
	if rating > ratingCeiling {
		rating = ratingCeiling
	}
	return r.weights.RatingMax * (rating - ratingBonusFloor) / (ratingCeiling - ratingBonusFloor)
}

// tokenize lowercases s and splits it on anything that is not a letter
// or digit.
func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func tokenSet(s string) map[string]struct{} {
	tokens := tokenize(s)
	if len(tokens) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		set[t] = struct{}{}
	}
	return set
}

// overlaps reports whether any token of field is in terms.
func overlaps(terms map[string]struct{}, field string) bool {
	for _, t := range tokenize(field) {
		if _, ok := terms[t]; ok {
			return true
		}
	}
	return false
}
