package cache

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/careerdex/internal/domain/catalog"
	"github.com/kailas-cloud/careerdex/internal/repository/snapshot"
)

// Collection returns the typed records of name and the tier that served them.
func Collection[T any](ctx context.Context, c *Cache, name catalog.CollectionName) ([]T, Tier, error) {
	var out []T
	read, err := c.resolve(ctx, name, func(data []byte) (int, error) {
		v, err := snapshot.Decode[T](data)
		if err != nil {
			return 0, err
		}
		out = v
		return len(v), nil
	})
	if err != nil {
		return nil, "", fmt.Errorf("read %s: %w", name, err)
	}
	return out, read.Tier, nil
}

// Colleges returns the college collection.
func (c *Cache) Colleges(ctx context.Context) ([]catalog.College, error) {
	v, _, err := Collection[catalog.College](ctx, c, catalog.Colleges)
	return v, err
}

// Specialties returns the specialty collection.
func (c *Cache) Specialties(ctx context.Context) ([]catalog.Specialty, error) {
	v, _, err := Collection[catalog.Specialty](ctx, c, catalog.Specialties)
	return v, err
}

// Tags returns the tag collection.
func (c *Cache) Tags(ctx context.Context) ([]catalog.Tag, error) {
	v, _, err := Collection[catalog.Tag](ctx, c, catalog.Tags)
	return v, err
}

// Professions returns the profession collection.
func (c *Cache) Professions(ctx context.Context) ([]catalog.Profession, error) {
	v, _, err := Collection[catalog.Profession](ctx, c, catalog.Professions)
	return v, err
}

// Quizzes returns the quiz collection.
func (c *Cache) Quizzes(ctx context.Context) ([]catalog.Quiz, error) {
	v, _, err := Collection[catalog.Quiz](ctx, c, catalog.Quizzes)
	return v, err
}

// News returns the news collection.
func (c *Cache) News(ctx context.Context) ([]catalog.NewsItem, error) {
	v, _, err := Collection[catalog.NewsItem](ctx, c, catalog.News)
	return v, err
}
