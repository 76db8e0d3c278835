// Adaptrank - Adaptive Multi-Factor Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adaptrank

package feedback

import (
	"fmt"
	"strings"

	"github.com/tomtom215/adaptrank/internal/ranking"
)

// ActionKind is a canonical user action on a ranked item.
type ActionKind string

const (
	ActionView     ActionKind = "view"
	ActionClick    ActionKind = "click"
	ActionLike     ActionKind = "like"
	ActionPurchase ActionKind = "purchase"
	ActionDismiss  ActionKind = "dismiss"
)

// actionWeights is the reward table. Positive weights feed the success
// shape and negative weights the failure shape.
var actionWeights = map[ActionKind]float64{
	ActionPurchase: 1.0,
	ActionLike:     0.5,
	ActionClick:    0.2,
	ActionView:     0.0,
	ActionDismiss:  -0.3,
}

// actionAliases maps accepted synonyms to canonical kinds.
var actionAliases = map[string]ActionKind{
	"save":    ActionLike,
	"skip":    ActionDismiss,
	"dislike": ActionDismiss,
}

// ParseActionKind resolves s (case-insensitive, aliases allowed) to a
// canonical kind. Unknown actions wrap ranking.ErrInvalidActionKind.
func ParseActionKind(s string) (ActionKind, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	if _, ok := actionWeights[ActionKind(key)]; ok {
		return ActionKind(key), nil
	}
	if kind, ok := actionAliases[key]; ok {
		return kind, nil
	}
	return "", fmt.Errorf("%w: %q", ranking.ErrInvalidActionKind, s)
}

// Weight returns the bandit delta of the action. Unknown kinds weigh 0.
func (a ActionKind) Weight() float64 {
	return actionWeights[a]
}

// Positive reports whether the action signals interest. Positive actions
// are what the collaborative filter counts.
func (a ActionKind) Positive() bool {
	return a.Weight() > 0
}

// Kinds returns the canonical kinds in reward order.
func Kinds() []ActionKind {
	return []ActionKind{ActionPurchase, ActionLike, ActionClick, ActionView, ActionDismiss}
}
