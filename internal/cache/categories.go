package cache

import (
	"context"

	"fintrack/internal/core"
	"fintrack/internal/ports"
)

const categoriesKey = "categories"

// Categories is a read-through cache in front of a category lister.
// The catalogue changes rarely and is shared by all users.
type Categories struct {
	source ports.CategoryLister
	cache  Cache[[]core.Category]
}

func NewCategories(source ports.CategoryLister, c Cache[[]core.Category]) *Categories {
	return &Categories{source: source, cache: c}
}

func (c *Categories) ListCategories(ctx context.Context) ([]core.Category, error) {
	if cached, ok := c.cache.Get(categoriesKey); ok {
		return cached, nil
	}
	cats, err := c.source.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	c.cache.Set(categoriesKey, cats)
	return cats, nil
}
