package refresh

import (
	"math"

	"github.com/kailas-cloud/careerdex/internal/domain/catalog"
)

type mean struct {
	sum   float64
	count int
}

// scoreIndex holds the per-college and per-specialty averages of one score
// table fetch. Rows with a score <= 0 (or non-finite) are ignored.
type scoreIndex struct {
	byCollege   map[string]*mean
	bySpecialty map[string]*mean
}

func newScoreIndex(rows []catalog.ScoreRow) *scoreIndex {
	idx := &scoreIndex{
		byCollege:   make(map[string]*mean),
		bySpecialty: make(map[string]*mean),
	}
	for _, r := range rows {
		if r.AvgScore2025 <= 0 || math.IsNaN(r.AvgScore2025) || math.IsInf(r.AvgScore2025, 0) {
			continue
		}
		if r.CollegeID != "" {
			add(idx.byCollege, r.CollegeID, r.AvgScore2025)
		}
		if r.SpecialtyID != "" {
			add(idx.bySpecialty, r.SpecialtyID, r.AvgScore2025)
		}
	}
	return idx
}

func add(m map[string]*mean, id string, v float64) {
	acc, ok := m[id]
	if !ok {
		acc = &mean{}
		m[id] = acc
	}
	acc.sum += v
	acc.count++
}

// college returns the average score of collegeID, or base when it has no valid rows.
func (i *scoreIndex) college(collegeID string, base float64) float64 {
	return average(i.byCollege[collegeID], base)
}

// specialty returns the average score of specialtyID, or base when it has no valid rows.
func (i *scoreIndex) specialty(specialtyID string, base float64) float64 {
	return average(i.bySpecialty[specialtyID], base)
}

func average(acc *mean, base float64) float64 {
	if acc == nil || acc.count == 0 {
		return base
	}
	return acc.sum / float64(acc.count)
}
