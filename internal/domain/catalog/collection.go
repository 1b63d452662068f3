// Package catalog defines the denormalized catalog entities served to UI
// consumers and scored by the matching engine.
package catalog

import "fmt"

// CollectionName identifies a tracked collection.
type CollectionName string

const (
	// Colleges holds College records.
	Colleges CollectionName = "colleges"
	// Specialties holds Specialty records.
	Specialties CollectionName = "specialties"
	// Tags holds Tag reference data.
	Tags CollectionName = "tags"
	// Professions holds Profession records.
	Professions CollectionName = "professions"
	// Quizzes holds Quiz records.
	Quizzes CollectionName = "quizzes"
	// News holds News records.
	News CollectionName = "news"
)

// AllCollections returns every tracked collection in refresh order.
func AllCollections() []CollectionName {
	return []CollectionName{Colleges, Specialties, Tags, Professions, Quizzes, News}
}

// IsValid reports whether the name is a tracked collection.
func (n CollectionName) IsValid() bool {
	switch n {
	case Colleges, Specialties, Tags, Professions, Quizzes, News:
		return true
	}
	return false
}

// NeedsScores reports whether the collection carries aggregate passing scores.
func (n CollectionName) NeedsScores() bool {
	return n == Colleges || n == Specialties
}

// ParseCollectionName validates a raw collection name.
func ParseCollectionName(s string) (CollectionName, error) {
	n := CollectionName(s)
	if !n.IsValid() {
		return "", fmt.Errorf("unknown collection %q", s)
	}
	return n, nil
}

func (n CollectionName) String() string { return string(n) }
