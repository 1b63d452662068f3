// Package matching scores catalog entities against an interest profile.
//
// Colleges and specialties use two deliberately separate strategies:
// EntityLevelMatch scores one weighted tag vector, AggregateBreadthMatch
// averages the entity-level scores of a college's specialties and rewards
// breadth. They are not unified.
package matching

import (
	"cmp"
	"math"
	"slices"

	"github.com/kailas-cloud/careerdex/internal/domain/catalog"
	"github.com/kailas-cloud/careerdex/internal/domain/match"
	"github.com/kailas-cloud/careerdex/internal/domain/profile"
)

const (
	// DefaultDomainMultiplier scales contributions of domain-category tags.
	DefaultDomainMultiplier = 1.5
	// DefaultBreadthBonus is added per qualifying specialty in AggregateBreadthMatch.
	DefaultBreadthBonus = 0.5
)

// CategoryLookup resolves a tag id to its category.
type CategoryLookup interface {
	Category(tagID string) (catalog.TagCategory, bool)
}

// EntityLevelMatch scores a single weighted tag vector.
type EntityLevelMatch struct {
	domainMultiplier float64
}

// NewEntityLevelMatch creates the strategy. A non-positive or non-finite
// multiplier falls back to DefaultDomainMultiplier.
func NewEntityLevelMatch(domainMultiplier float64) EntityLevelMatch {
	if domainMultiplier <= 0 || math.IsNaN(domainMultiplier) || math.IsInf(domainMultiplier, 0) {
		domainMultiplier = DefaultDomainMultiplier
	}
	return EntityLevelMatch{domainMultiplier: domainMultiplier}
}

// Score sums weight/100 * interest * multiplier over every tag with positive
// interest. The reason is the domain tag with the largest contribution; the
// first one in specs order wins a tie. Malformed entries contribute nothing.
func (m EntityLevelMatch) Score(specs []catalog.TagWeight, p profile.Profile, lookup CategoryLookup) match.Result {
	if len(specs) == 0 || p.IsEmpty() {
		return match.Zero
	}
	mult := m.domainMultiplier
	if mult == 0 {
		mult = DefaultDomainMultiplier
	}

	var (
		total      float64
		reason     string
		reasonBest float64
	)
	for _, tw := range specs {
		if !tw.Valid() {
			continue
		}
		interest := p.Interest(tw.TagID)
		if interest == 0 {
			continue
		}

		isDomain := false
		if lookup != nil {
			cat, ok := lookup.Category(tw.TagID)
			isDomain = ok && cat == catalog.CategoryDomain
		}

		c := float64(tw.Weight) / 100 * interest
		if isDomain {
			c *= mult
		}
		if math.IsNaN(c) || math.IsInf(c, 0) {
			continue
		}
		total += c

		if isDomain && c > reasonBest {
			reasonBest = c
			reason = tw.TagID
		}
	}
	return match.Result{Score: total, Reason: reason}
}

// SpecialtyIndex resolves specialty ids for AggregateBreadthMatch.
type SpecialtyIndex map[string]catalog.Specialty

// NewSpecialtyIndex indexes specialties by id.
func NewSpecialtyIndex(specialties []catalog.Specialty) SpecialtyIndex {
	idx := make(SpecialtyIndex, len(specialties))
	for _, s := range specialties {
		idx[s.ID] = s
	}
	return idx
}

// AggregateBreadthMatch scores a college through the specialties it offers.
type AggregateBreadthMatch struct {
	entity       EntityLevelMatch
	breadthBonus float64
}

// NewAggregateBreadthMatch creates the strategy. A negative or non-finite
// bonus falls back to DefaultBreadthBonus.
func NewAggregateBreadthMatch(entity EntityLevelMatch, breadthBonus float64) AggregateBreadthMatch {
	if breadthBonus < 0 || math.IsNaN(breadthBonus) || math.IsInf(breadthBonus, 0) {
		breadthBonus = DefaultBreadthBonus
	}
	return AggregateBreadthMatch{entity: entity, breadthBonus: breadthBonus}
}

// Score averages the entity-level scores of every offered specialty that
// declares at least one tag and adds breadthBonus per such specialty.
// The reason is that of the best-scoring specialty.
func (m AggregateBreadthMatch) Score(
	college catalog.College,
	specialties SpecialtyIndex,
	p profile.Profile,
	lookup CategoryLookup,
) match.Result {
	if p.IsEmpty() {
		return match.Zero
	}

	var (
		sum     float64
		matched int
		best    = match.Result{Score: math.Inf(-1)}
	)
	seen := make(map[string]struct{}, len(college.SpecialtyIDs))
	for _, id := range college.SpecialtyIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		s, ok := specialties[id]
		if !ok || len(s.Specs) == 0 {
			continue
		}
		r := m.entity.Score(s.Specs, p, lookup)
		sum += r.Score
		matched++
		if r.Score > best.Score {
			best = r
		}
	}
	if matched == 0 {
		return match.Zero
	}

	return match.Result{
		Score:  sum/float64(matched) + m.breadthBonus*float64(matched),
		Reason: best.Reason,
	}
}

// Rank sorts items by descending score. Equal scores keep their order.
func Rank[T any](items []T, score func(T) float64) {
	slices.SortStableFunc(items, func(a, b T) int {
		return cmp.Compare(score(b), score(a))
	})
}
