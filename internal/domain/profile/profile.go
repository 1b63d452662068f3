// Package profile holds the user interest profile consumed by matching.
package profile

import (
	"math"

	"github.com/kailas-cloud/careerdex/internal/domain/catalog"
)

// Profile maps a tag id to an accumulated interest score.
// Interest <= 0 carries no signal.
type Profile map[string]float64

// Interest returns the usable interest for tagID, or 0 when there is no signal.
func (p Profile) Interest(tagID string) float64 {
	v := p[tagID]
	if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// IsEmpty reports whether no tag carries a positive interest.
func (p Profile) IsEmpty() bool {
	for id := range p {
		if p.Interest(id) > 0 {
			return false
		}
	}
	return true
}

// DefaultLikeBoost scales a liked entity's tag weights into interest points.
const DefaultLikeBoost = 5.0

// Builder accumulates interest from quiz results and liked entities.
type Builder struct {
	likeBoost float64
	scores    Profile
}

// NewBuilder creates a Builder. likeBoost <= 0 falls back to DefaultLikeBoost.
func NewBuilder(likeBoost float64) *Builder {
	if likeBoost <= 0 {
		likeBoost = DefaultLikeBoost
	}
	return &Builder{likeBoost: likeBoost, scores: make(Profile)}
}

// AddTagScores adds raw per-tag points (e.g. a finished quiz).
func (b *Builder) AddTagScores(scores map[string]float64) *Builder {
	for id, v := range scores {
		if id == "" || v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		b.scores[id] += v
	}
	return b
}

// AddAnswer adds the tag weights of a picked quiz answer, one point per 100%.
func (b *Builder) AddAnswer(a catalog.Answer) *Builder {
	for _, tw := range a.Tags {
		if !tw.Valid() {
			continue
		}
		b.scores[tw.TagID] += float64(tw.Weight) / 100
	}
	return b
}

// AddLiked adds a liked entity's weighted tag vector scaled by the like boost.
func (b *Builder) AddLiked(specs []catalog.TagWeight) *Builder {
	for _, tw := range specs {
		if !tw.Valid() {
			continue
		}
		b.scores[tw.TagID] += float64(tw.Weight) / 100 * b.likeBoost
	}
	return b
}

// Build returns a copy of the accumulated profile.
func (b *Builder) Build() Profile {
	out := make(Profile, len(b.scores))
	for id, v := range b.scores {
		out[id] = v
	}
	return out
}
