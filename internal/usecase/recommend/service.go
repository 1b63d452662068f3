// Package recommend ranks and tiers catalog entries for a user profile.
package recommend

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/careerdex/internal/domain/catalog"
	"github.com/kailas-cloud/careerdex/internal/domain/match"
	"github.com/kailas-cloud/careerdex/internal/domain/profile"
	"github.com/kailas-cloud/careerdex/internal/usecase/matching"
)

// Recommendation is one scored catalog entry.
type Recommendation struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Score      float64    `json:"score"`
	Reason     string     `json:"reason,omitempty"`
	ReasonName string     `json:"reasonName,omitempty"`
	Tier       match.Tier `json:"tier"`
}

// Config tunes the scoring strategies.
type Config struct {
	DomainMultiplier float64
	BreadthBonus     float64
	LikeBoost        float64
	Tiers            match.TierTable
}

// Service scores cached catalog entries. It never writes.
type Service struct {
	catalog   CatalogReader
	users     UserReader
	entity    matching.EntityLevelMatch
	aggregate matching.AggregateBreadthMatch
	tiers     match.TierTable
	likeBoost float64
}

// New creates a recommendation service. users can be nil when ProfileFor is unused.
func New(cat CatalogReader, users UserReader, cfg Config) *Service {
	entity := matching.NewEntityLevelMatch(cfg.DomainMultiplier)
	tiers := cfg.Tiers
	if tiers == nil {
		tiers = match.DefaultTierTable()
	}
	return &Service{
		catalog:   cat,
		users:     users,
		entity:    entity,
		aggregate: matching.NewAggregateBreadthMatch(entity, cfg.BreadthBonus),
		tiers:     tiers,
		likeBoost: cfg.LikeBoost,
	}
}

// Recommend dispatches on kind.
func (s *Service) Recommend(ctx context.Context, kind match.Kind, p profile.Profile) ([]Recommendation, error) {
	switch kind {
	case match.KindCollege:
		return s.Colleges(ctx, p)
	case match.KindSpecialty:
		return s.Specialties(ctx, p)
	default:
		return nil, fmt.Errorf("unknown match kind %q", kind)
	}
}

// Colleges scores every college through its specialties. With an empty
// profile the catalog order is kept and every score is 0.
func (s *Service) Colleges(ctx context.Context, p profile.Profile) ([]Recommendation, error) {
	colleges, err := s.catalog.Colleges(ctx)
	if err != nil {
		return nil, fmt.Errorf("read colleges: %w", err)
	}
	specialties, err := s.catalog.Specialties(ctx)
	if err != nil {
		return nil, fmt.Errorf("read specialties: %w", err)
	}
	tags, err := s.tagIndex(ctx)
	if err != nil {
		return nil, err
	}

	idx := matching.NewSpecialtyIndex(specialties)
	out := make([]Recommendation, 0, len(colleges))
	for _, c := range colleges {
		r := s.aggregate.Score(c, idx, p, tags)
		out = append(out, s.recommendation(match.KindCollege, c.ID, c.Name, r, tags))
	}
	return s.rank(out, p), nil
}

// Specialties scores every specialty by its own tag vector.
func (s *Service) Specialties(ctx context.Context, p profile.Profile) ([]Recommendation, error) {
	specialties, err := s.catalog.Specialties(ctx)
	if err != nil {
		return nil, fmt.Errorf("read specialties: %w", err)
	}
	tags, err := s.tagIndex(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]Recommendation, 0, len(specialties))
	for _, sp := range specialties {
		r := s.entity.Score(sp.Specs, p, tags)
		out = append(out, s.recommendation(match.KindSpecialty, sp.ID, sp.Name, r, tags))
	}
	return s.rank(out, p), nil
}

// ProfileFor builds the interest profile of a stored user.
func (s *Service) ProfileFor(ctx context.Context, userID string) (profile.Profile, error) {
	if s.users == nil {
		return nil, fmt.Errorf("user store not configured")
	}
	u, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load user %s: %w", userID, err)
	}

	colleges, err := s.catalog.Colleges(ctx)
	if err != nil {
		return nil, fmt.Errorf("read colleges: %w", err)
	}
	specialties, err := s.catalog.Specialties(ctx)
	if err != nil {
		return nil, fmt.Errorf("read specialties: %w", err)
	}

	byCollege := make(map[string]catalog.College, len(colleges))
	for _, c := range colleges {
		byCollege[c.ID] = c
	}
	return profile.FromUserData(u, matching.NewSpecialtyIndex(specialties), byCollege, s.likeBoost), nil
}

func (s *Service) tagIndex(ctx context.Context) (catalog.TagIndex, error) {
	tags, err := s.catalog.Tags(ctx)
	if err != nil {
		return catalog.TagIndex{}, fmt.Errorf("read tags: %w", err)
	}
	return catalog.NewTagIndex(tags), nil
}

func (s *Service) recommendation(
	kind match.Kind, id, name string, r match.Result, tags catalog.TagIndex,
) Recommendation {
	rec := Recommendation{
		ID:     id,
		Name:   name,
		Score:  r.Score,
		Reason: r.Reason,
		Tier:   s.tiers.Classify(kind, r.Score),
	}
	if r.Reason != "" {
		rec.ReasonName = tags.Name(r.Reason)
	}
	return rec
}

func (s *Service) rank(recs []Recommendation, p profile.Profile) []Recommendation {
	if p.IsEmpty() {
		return recs
	}
	matching.Rank(recs, func(r Recommendation) float64 { return r.Score })
	return recs
}
