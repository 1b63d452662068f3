package catalog

// TagCategory selects the scoring multiplier of a tag.
type TagCategory string

const (
	// CategoryDomain is a broad field-of-study signal.
	CategoryDomain TagCategory = "domain"
	// CategorySkill is a skill signal.
	CategorySkill TagCategory = "skill"
	// CategoryInterest is an interest signal.
	CategoryInterest TagCategory = "interest"
	// CategoryEnvironment is a work environment signal.
	CategoryEnvironment TagCategory = "environment"
	// CategoryAttribute is a personal attribute signal.
	CategoryAttribute TagCategory = "attribute"
)

// Tag is categorized reference data.
type Tag struct {
	ID       string      `json:"id"`
	Name     string      `json:"name"`
	Category TagCategory `json:"category"`
}

// TagIndex resolves tag ids to tags. The zero value is an empty index.
type TagIndex struct {
	byID map[string]Tag
}

// NewTagIndex builds an index over tags. Later duplicates replace earlier ones.
func NewTagIndex(tags []Tag) TagIndex {
	byID := make(map[string]Tag, len(tags))
	for _, t := range tags {
		byID[t.ID] = t
	}
	return TagIndex{byID: byID}
}

// Category returns the category of tagID.
func (i TagIndex) Category(tagID string) (TagCategory, bool) {
	t, ok := i.byID[tagID]
	return t.Category, ok
}

// Name returns the display name of tagID, or the id itself when unknown.
func (i TagIndex) Name(tagID string) string {
	if t, ok := i.byID[tagID]; ok && t.Name != "" {
		return t.Name
	}
	return tagID
}

// Len returns the number of indexed tags.
func (i TagIndex) Len() int { return len(i.byID) }
