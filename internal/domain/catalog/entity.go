package catalog

// TagWeight is one entry of an entity's weighted tag vector.
// Weight is an integer percentage in [0,100].
type TagWeight struct {
	TagID  string `json:"tagId"`
	Weight int    `json:"weight"`
}

// Valid reports whether the entry can contribute to a match score.
func (w TagWeight) Valid() bool {
	return w.TagID != "" && w.Weight >= 0 && w.Weight <= 100
}

// College is a denormalized college record.
type College struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	Description  string      `json:"description"`
	City         string      `json:"city"`
	ImageURL     string      `json:"imageUrl"`
	WebsiteURL   string      `json:"websiteUrl"`
	IsState      bool        `json:"isState"`
	HasDormitory bool        `json:"hasDormitory"`
	BaseScore    float64     `json:"baseScore"`
	PassingScore float64     `json:"passingScore"`
	SpecialtyIDs []string    `json:"specialtyIds"`
	Specs        []TagWeight `json:"specs"`
}

// Specialty is a denormalized specialty record.
type Specialty struct {
	ID            string      `json:"id"`
	Code          string      `json:"code"`
	Name          string      `json:"name"`
	Description   string      `json:"description"`
	DurationYears float64     `json:"durationYears"`
	BaseScore     float64     `json:"baseScore"`
	PassingScore  float64     `json:"passingScore"`
	CollegeIDs    []string    `json:"collegeIds"`
	ProfessionIDs []string    `json:"professionIds"`
	Specs         []TagWeight `json:"specs"`
}

// Profession is a denormalized profession record.
type Profession struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	Description  string      `json:"description"`
	SpecialtyIDs []string    `json:"specialtyIds"`
	Specs        []TagWeight `json:"specs"`
}

// Quiz is a published or draft quiz.
type Quiz struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	IsPublished bool       `json:"isPublished"`
	Questions   []Question `json:"questions"`
}

// Question is a single quiz question.
type Question struct {
	ID      string   `json:"id"`
	Text    string   `json:"text"`
	Answers []Answer `json:"answers"`
}

// Answer is a selectable answer; picking it adds its tag weights to the profile.
type Answer struct {
	ID   string      `json:"id"`
	Text string      `json:"text"`
	Tags []TagWeight `json:"tags"`
}

// NewsItem is a news feed item.
type NewsItem struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Body        string `json:"body"`
	ImageURL    string `json:"imageUrl"`
	PublishedAt string `json:"publishedAt"`
}

// ScoreRow is one row of the shared score-aggregate table.
type ScoreRow struct {
	CollegeID    string  `json:"college_id"`
	SpecialtyID  string  `json:"specialty_id"`
	AvgScore2025 float64 `json:"avg_score_2025"`
}
