package refresh

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// Storage rows as the remote provider returns them. Field names follow the
// backend schema; join tables arrive as nested arrays.

type collegeRow struct {
	ID                 flexString        `json:"id"`
	Title              string            `json:"title"`
	ShortDescription   string            `json:"short_description"`
	City               string            `json:"city"`
	ImageURL           string            `json:"image_url"`
	WebsiteURL         string            `json:"website_url"`
	IsState            flexBool          `json:"is_state"`
	HasDormitory       flexBool          `json:"has_dormitory"`
	PassingScore       flexFloat         `json:"passing_score"`
	CollegeSpecialties []specialtyRefRow `json:"college_specialties"`
	CollegeTags        []tagWeightRow    `json:"college_tags"`
}

type specialtyRow struct {
	ID                    flexString         `json:"id"`
	Code                  string             `json:"code"`
	Name                  string             `json:"name"`
	Description           string             `json:"description"`
	DurationYears         flexFloat          `json:"duration_years"`
	PassingScore          flexFloat          `json:"passing_score"`
	SpecialtyTags         []tagWeightRow     `json:"specialty_tags"`
	CollegeSpecialties    []collegeRefRow    `json:"college_specialties"`
	ProfessionSpecialties []professionRefRow `json:"profession_specialties"`
}

type tagRow struct {
	ID       flexString `json:"id"`
	Name     string     `json:"name"`
	Category string     `json:"category"`
}

type professionRow struct {
	ID                    flexString        `json:"id"`
	Name                  string            `json:"name"`
	Description           string            `json:"description"`
	ProfessionSpecialties []specialtyRefRow `json:"profession_specialties"`
	ProfessionTags        []tagWeightRow    `json:"profession_tags"`
}

type quizRow struct {
	ID            flexString    `json:"id"`
	Title         string        `json:"title"`
	Description   string        `json:"description"`
	IsPublished   flexBool      `json:"is_published"`
	QuizQuestions []questionRow `json:"quiz_questions"`
}

type questionRow struct {
	ID          flexString  `json:"id"`
	Text        string      `json:"text"`
	Position    flexFloat   `json:"position"`
	QuizAnswers []answerRow `json:"quiz_answers"`
}

type answerRow struct {
	ID         flexString     `json:"id"`
	Text       string         `json:"text"`
	Position   flexFloat      `json:"position"`
	AnswerTags []tagWeightRow `json:"answer_tags"`
}

type newsRow struct {
	ID          flexString `json:"id"`
	Title       string     `json:"title"`
	Content     string     `json:"content"`
	ImageURL    string     `json:"image_url"`
	PublishedAt string     `json:"published_at"`
	CreatedAt   string     `json:"created_at"`
}

type tagWeightRow struct {
	TagID  flexString `json:"tag_id"`
	Weight flexFloat  `json:"weight"`
}

type specialtyRefRow struct {
	SpecialtyID flexString `json:"specialty_id"`
}

type collegeRefRow struct {
	CollegeID flexString `json:"college_id"`
}

type professionRefRow struct {
	ProfessionID flexString `json:"profession_id"`
}

var jsonNull = []byte("null")

// flexBool decodes boolean-like values: true, "true", "t", 1, "1", "yes".
// Anything else, including null, is false.
type flexBool bool

func (b *flexBool) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, jsonNull) {
		*b = false
		return nil
	}

	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("decode bool: %w", err)
	}
	switch t := v.(type) {
	case bool:
		*b = flexBool(t)
	case float64:
		*b = t == 1
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "true", "t", "1", "yes":
			*b = true
		default:
			*b = false
		}
	default:
		*b = false
	}
	return nil
}

// flexFloat decodes a number that may arrive as a JSON string (numeric
// columns over PostgREST). Null and empty strings are 0.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, jsonNull) {
		*f = 0
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("decode number: %w", err)
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*f = 0
			return nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("decode number %q: %w", s, err)
		}
		*f = flexFloat(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("decode number: %w", err)
	}
	*f = flexFloat(v)
	return nil
}

// flexString decodes identifiers that may be numeric (serial keys) or text (uuid).
type flexString string

func (s *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, jsonNull) {
		*s = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return fmt.Errorf("decode id: %w", err)
		}
		*s = flexString(v)
		return nil
	}
	if _, err := strconv.ParseFloat(string(data), 64); err != nil {
		return fmt.Errorf("decode id %s: %w", data, err)
	}
	*s = flexString(data)
	return nil
}

// percent converts a stored weight into an integer percentage. Out-of-range
// values are kept as is; the matching engine ignores them.
func percent(f flexFloat) int {
	v := float64(f)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return -1
	}
	return int(math.Round(v))
}
