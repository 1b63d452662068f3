package recommend

import (
	"context"

	"github.com/kailas-cloud/careerdex/internal/domain/catalog"
	"github.com/kailas-cloud/careerdex/internal/domain/profile"
)

// --- mock CatalogReader ---

type mockCatalog struct {
	colleges    []catalog.College
	specialties []catalog.Specialty
	tags        []catalog.Tag
	err         error
}

func (m *mockCatalog) Colleges(_ context.Context) ([]catalog.College, error) {
	return m.colleges, m.err
}

func (m *mockCatalog) Specialties(_ context.Context) ([]catalog.Specialty, error) {
	return m.specialties, m.err
}

func (m *mockCatalog) Tags(_ context.Context) ([]catalog.Tag, error) {
	return m.tags, m.err
}

// --- mock UserReader ---

type mockUsers struct {
	getFn func(ctx context.Context, userID string) (profile.UserData, error)
}

func (m *mockUsers) Get(ctx context.Context, userID string) (profile.UserData, error) {
	if m.getFn != nil {
		return m.getFn(ctx, userID)
	}
	return profile.UserData{UserID: userID}, nil
}

func fixtureCatalog() *mockCatalog {
	return &mockCatalog{
		tags: []catalog.Tag{
			{ID: "t-it", Name: "Information technology", Category: catalog.CategoryDomain},
			{ID: "t-med", Name: "Medicine", Category: catalog.CategoryDomain},
			{ID: "t-logic", Name: "Logic", Category: catalog.CategorySkill},
		},
		specialties: []catalog.Specialty{
			{ID: "s-nurse", Name: "Nursing", Specs: []catalog.TagWeight{{TagID: "t-med", Weight: 100}}},
			{ID: "s-prog", Name: "Programming", Specs: []catalog.TagWeight{
				{TagID: "t-it", Weight: 80}, {TagID: "t-logic", Weight: 20},
			}},
			{ID: "s-net", Name: "Networks", Specs: []catalog.TagWeight{{TagID: "t-it", Weight: 60}}},
			{ID: "s-empty", Name: "Untagged"},
		},
		colleges: []catalog.College{
			{ID: "c-med", Name: "Medical college", SpecialtyIDs: []string{"s-nurse"}},
			{ID: "c-poly", Name: "Polytech", SpecialtyIDs: []string{"s-prog", "s-net", "s-empty"}},
		},
	}
}
