// Adaptrank - Adaptive Multi-Factor Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adaptrank

package reranking

import (
	"math/rand/v2"
	"sort"

	"github.com/tomtom215/adaptrank/internal/metrics"
	"github.com/tomtom215/adaptrank/internal/ranking"
)

// exploreSlots is the number of positions before the novelty slot that
// receive score noise.
const exploreSlots = 2

// Diversity implements the exploitation/exploration/novelty window.
type Diversity struct {
	window int
	noise  float64
}

// NewDiversity creates a diversity reranker from cfg. Window sizes below 1
// are raised to 1 and the noise fraction is clamped to [0, 1].
func NewDiversity(cfg ranking.DiversityConfig) *Diversity {
	window := cfg.WindowSize
	if window < 1 {
		window = 1
	}
	noise := cfg.NoiseFraction
	if !(noise > 0) { // NaN disables noise too
		noise = 0
	}
	if noise > 1 {
		noise = 1
	}
	return &Diversity{window: window, noise: noise}
}

// Name returns the reranker identifier.
func (d *Diversity) Name() string {
	return "diversity"
}

// Window returns N.
func (d *Diversity) Window() int {
	return d.window
}

// Rerank reorders items, which must be sorted by Final descending. The
// returned slice is a new permutation of items; the input is not modified.
// Final scores are left untouched; noise only affects ordering.
func (d *Diversity) Rerank(items []ranking.ScoredItem, rng *rand.Rand) []ranking.ScoredItem {
	out := make([]ranking.ScoredItem, len(items))
	copy(out, items)
	if len(out) == 0 {
		return out
	}

	n := d.window
	w := min(n, len(out))

	d.explore(out, n, w, rng)

	if w == n && d.fillNovelty(out, n) {
		metrics.DiversitySubstitutions.Inc()
	}
	return out
}

// explore perturbs the scores of positions N-2..N-1 that exist and
// re-sorts them by perturbed score.
func (d *Diversity) explore(out []ranking.ScoredItem, n, w int, rng *rand.Rand) {
	// 0-based indices of positions N-2 and N-1, excluding the novelty slot.
	lo := max(0, n-1-exploreSlots)
	hi := min(n-1, w)
	if hi-lo < 2 || d.noise == 0 || rng == nil {
		return
	}

	zone := out[lo:hi]
	perturbed := make([]float64, len(zone))
	for i := range zone {
		u := 2*rng.Float64() - 1
		perturbed[i] = zone[i].Final * (1 + d.noise*u)
	}

	idx := make([]int, len(zone))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return perturbed[idx[a]] > perturbed[idx[b]]
	})

	reordered := make([]ranking.ScoredItem, len(zone))
	for i, j := range idx {
		reordered[i] = zone[j]
	}
	copy(zone, reordered)
}

// fillNovelty places at position N the best item from position N onward
// whose cluster is absent from positions 1..N-1. Items displaced from the
// window keep their relative order directly after it. It reports whether
// an item from outside the window was promoted.
func (d *Diversity) fillNovelty(out []ranking.ScoredItem, n int) bool {
	present := make(map[ranking.ClusterID]struct{}, n-1)
	for i := 0; i < n-1; i++ {
		present[out[i].Item.ClusterID] = struct{}{}
	}

	pick := -1
	for j := n - 1; j < len(out); j++ {
		if _, ok := present[out[j].Item.ClusterID]; !ok {
			pick = j
			break
		}
	}
	if pick <= n-1 {
		return false
	}

	chosen := out[pick]
	copy(out[n:pick+1], out[n-1:pick])
	out[n-1] = chosen
	return true
}
