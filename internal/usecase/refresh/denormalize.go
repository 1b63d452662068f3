package refresh

import (
	"fmt"
	"sort"

	"github.com/goccy/go-json"

	"github.com/kailas-cloud/careerdex/internal/domain"
	"github.com/kailas-cloud/careerdex/internal/domain/catalog"
	"github.com/kailas-cloud/careerdex/internal/repository/snapshot"
)

// denormalize turns raw storage rows into the snapshot of name.
// scores must be non-nil for collections that carry aggregate scores.
func denormalize(name catalog.CollectionName, raw []json.RawMessage, scores *scoreIndex) ([]byte, int, error) {
	if name.NeedsScores() && scores == nil {
		return nil, 0, fmt.Errorf("%w: no score table for %s", domain.ErrAggregation, name)
	}

	switch name {
	case catalog.Colleges:
		return build(raw, func(r collegeRow) catalog.College { return toCollege(r, scores) })
	case catalog.Specialties:
		return build(raw, func(r specialtyRow) catalog.Specialty { return toSpecialty(r, scores) })
	case catalog.Tags:
		return build(raw, toTag)
	case catalog.Professions:
		return build(raw, toProfession)
	case catalog.Quizzes:
		return build(raw, toQuiz)
	case catalog.News:
		return build(raw, toNews)
	default:
		return nil, 0, fmt.Errorf("%w: %s", domain.ErrUnknownCollection, name)
	}
}

// build decodes every row and encodes the mapped records. One undecodable
// row fails the whole collection.
func build[R, T any](raw []json.RawMessage, mapRow func(R) T) ([]byte, int, error) {
	out := make([]T, 0, len(raw))
	for i, msg := range raw {
		var row R
		if err := json.Unmarshal(msg, &row); err != nil {
			return nil, 0, fmt.Errorf("decode row %d: %w", i, err)
		}
		out = append(out, mapRow(row))
	}
	data, err := snapshot.Encode(out)
	if err != nil {
		return nil, 0, err
	}
	return data, len(out), nil
}

func toCollege(r collegeRow, scores *scoreIndex) catalog.College {
	id := string(r.ID)
	base := float64(r.PassingScore)

	specialtyIDs := make([]string, 0, len(r.CollegeSpecialties))
	for _, cs := range r.CollegeSpecialties {
		if cs.SpecialtyID != "" {
			specialtyIDs = append(specialtyIDs, string(cs.SpecialtyID))
		}
	}

	return catalog.College{
		ID:           id,
		Name:         r.Title,
		Description:  r.ShortDescription,
		City:         r.City,
		ImageURL:     r.ImageURL,
		WebsiteURL:   r.WebsiteURL,
		IsState:      bool(r.IsState),
		HasDormitory: bool(r.HasDormitory),
		BaseScore:    base,
		PassingScore: scores.college(id, base),
		SpecialtyIDs: specialtyIDs,
		Specs:        toSpecs(r.CollegeTags),
	}
}

func toSpecialty(r specialtyRow, scores *scoreIndex) catalog.Specialty {
	id := string(r.ID)
	base := float64(r.PassingScore)

	collegeIDs := make([]string, 0, len(r.CollegeSpecialties))
	for _, cs := range r.CollegeSpecialties {
		if cs.CollegeID != "" {
			collegeIDs = append(collegeIDs, string(cs.CollegeID))
		}
	}
	professionIDs := make([]string, 0, len(r.ProfessionSpecialties))
	for _, ps := range r.ProfessionSpecialties {
		if ps.ProfessionID != "" {
			professionIDs = append(professionIDs, string(ps.ProfessionID))
		}
	}

	return catalog.Specialty{
		ID:            id,
		Code:          r.Code,
		Name:          r.Name,
		Description:   r.Description,
		DurationYears: float64(r.DurationYears),
		BaseScore:     base,
		PassingScore:  scores.specialty(id, base),
		CollegeIDs:    collegeIDs,
		ProfessionIDs: professionIDs,
		Specs:         toSpecs(r.SpecialtyTags),
	}
}

func toTag(r tagRow) catalog.Tag {
	return catalog.Tag{
		ID:       string(r.ID),
		Name:     r.Name,
		Category: catalog.TagCategory(r.Category),
	}
}

func toProfession(r professionRow) catalog.Profession {
	specialtyIDs := make([]string, 0, len(r.ProfessionSpecialties))
	for _, ps := range r.ProfessionSpecialties {
		if ps.SpecialtyID != "" {
			specialtyIDs = append(specialtyIDs, string(ps.SpecialtyID))
		}
	}
	return catalog.Profession{
		ID:           string(r.ID),
		Name:         r.Name,
		Description:  r.Description,
		SpecialtyIDs: specialtyIDs,
		Specs:        toSpecs(r.ProfessionTags),
	}
}

func toQuiz(r quizRow) catalog.Quiz {
	questions := append([]questionRow(nil), r.QuizQuestions...)
	sort.SliceStable(questions, func(i, j int) bool { return questions[i].Position < questions[j].Position })

	out := catalog.Quiz{
		ID:          string(r.ID),
		Title:       r.Title,
		Description: r.Description,
		IsPublished: bool(r.IsPublished),
		Questions:   make([]catalog.Question, 0, len(questions)),
	}
	for _, q := range questions {
		answers := append([]answerRow(nil), q.QuizAnswers...)
		sort.SliceStable(answers, func(i, j int) bool { return answers[i].Position < answers[j].Position })

		question := catalog.Question{
			ID:      string(q.ID),
			Text:    q.Text,
			Answers: make([]catalog.Answer, 0, len(answers)),
		}
		for _, a := range answers {
			question.Answers = append(question.Answers, catalog.Answer{
				ID:   string(a.ID),
				Text: a.Text,
				Tags: toSpecs(a.AnswerTags),
			})
		}
		out.Questions = append(out.Questions, question)
	}
	return out
}

func toNews(r newsRow) catalog.NewsItem {
	published := r.PublishedAt
	if published == "" {
		published = r.CreatedAt
	}
	return catalog.NewsItem{
		ID:          string(r.ID),
		Title:       r.Title,
		Body:        r.Content,
		ImageURL:    r.ImageURL,
		PublishedAt: published,
	}
}

// toSpecs keeps the stored tag order; the matching engine breaks reason ties on it.
func toSpecs(rows []tagWeightRow) []catalog.TagWeight {
	specs := make([]catalog.TagWeight, 0, len(rows))
	for _, r := range rows {
		specs = append(specs, catalog.TagWeight{TagID: string(r.TagID), Weight: percent(r.Weight)})
	}
	return specs
}
