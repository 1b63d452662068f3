package careerdex

import (
	"github.com/kailas-cloud/careerdex/internal/domain/catalog"
	"github.com/kailas-cloud/careerdex/internal/domain/match"
	"github.com/kailas-cloud/careerdex/internal/domain/profile"
	domrefresh "github.com/kailas-cloud/careerdex/internal/domain/refresh"
	"github.com/kailas-cloud/careerdex/internal/usecase/recommend"
)

// Catalog records as served from the cache.
type (
	College    = catalog.College
	Specialty  = catalog.Specialty
	Tag        = catalog.Tag
	Profession = catalog.Profession
	Quiz       = catalog.Quiz
	News       = catalog.NewsItem
)

// Profile maps tag ids to interest weights.
type Profile = profile.Profile

// UserData is the user-scoped record: quiz results, likes, coins and game scores.
type UserData = profile.UserData

// Recommendation is one scored catalog entry.
type Recommendation = recommend.Recommendation

// Report aggregates the outcomes of one refresh call.
type Report = domrefresh.Report

// Status is a point-in-time view of connectivity and the last refresh.
type Status = domrefresh.SyncState

// Matching kinds and tier thresholds.
type (
	Kind       = match.Kind
	Tier       = match.Tier
	Thresholds = match.Thresholds
	TierTable  = match.TierTable
)

// Kinds accepted by WithTiers.
const (
	KindCollege   = match.KindCollege
	KindSpecialty = match.KindSpecialty
)

// Tiers, lowest first.
const (
	TierNone     = match.TierNone
	TierElevated = match.TierElevated
	TierGold     = match.TierGold
)
