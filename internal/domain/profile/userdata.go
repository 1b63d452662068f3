package profile

import "github.com/kailas-cloud/careerdex/internal/domain/catalog"

// QuizResult is a finished quiz attempt.
type QuizResult struct {
	QuizID      string             `json:"quizId"`
	CompletedAt string             `json:"completedAt"`
	AnswerIDs   []string           `json:"answerIds"`
	TagScores   map[string]float64 `json:"tagScores"`
}

// UserData is the user-scoped record kept under a single persistent key.
type UserData struct {
	UserID           string         `json:"userId"`
	QuizResults      []QuizResult   `json:"quizResults"`
	LikedColleges    []string       `json:"likedColleges"`
	LikedSpecialties []string       `json:"likedSpecialties"`
	Coins            int            `json:"coins"`
	GameScores       map[string]int `json:"gameScores"`
}

// Normalize replaces nil collections with empty ones.
func (u *UserData) Normalize() {
	if u.QuizResults == nil {
		u.QuizResults = []QuizResult{}
	}
	if u.LikedColleges == nil {
		u.LikedColleges = []string{}
	}
	if u.LikedSpecialties == nil {
		u.LikedSpecialties = []string{}
	}
	if u.GameScores == nil {
		u.GameScores = map[string]int{}
	}
}

// RecordGameScore keeps the best score per game.
func (u *UserData) RecordGameScore(game string, score int) {
	if u.GameScores == nil {
		u.GameScores = map[string]int{}
	}
	if prev, ok := u.GameScores[game]; !ok || score > prev {
		u.GameScores[game] = score
	}
}

// FromUserData builds a profile from quiz results and liked entities.
// Liked ids missing from the catalog are ignored.
func FromUserData(
	u UserData,
	specialties map[string]catalog.Specialty,
	colleges map[string]catalog.College,
	likeBoost float64,
) Profile {
	b := NewBuilder(likeBoost)
	for _, r := range u.QuizResults {
		b.AddTagScores(r.TagScores)
	}
	for _, id := range u.LikedSpecialties {
		if s, ok := specialties[id]; ok {
			b.AddLiked(s.Specs)
		}
	}
	for _, id := range u.LikedColleges {
		if c, ok := colleges[id]; ok {
			b.AddLiked(c.Specs)
		}
	}
	return b.Build()
}
