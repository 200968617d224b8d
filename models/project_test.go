package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextOrder(t *testing.T) {
	t.Run("empty list starts at one", func(t *testing.T) {
		assert.Equal(t, 1, NextOrder(nil))
	})

	t.Run("one past the maximum", func(t *testing.T) {
		projects := []Project{{Order: 2}, {Order: 5}, {Order: 3}}
		assert.Equal(t, 6, NextOrder(projects))
	})

	t.Run("gaps are not filled", func(t *testing.T) {
		projects := []Project{{Order: 1}, {Order: 7}}
		assert.Equal(t, 8, NextOrder(projects))
	})
}

func TestSortByOrder(t *testing.T) {
	projects := []Project{{Title: "c", Order: 9}, {Title: "a", Order: 1}, {Title: "b", Order: 4}}
	SortByOrder(projects)

	var titles []string
	for _, p := range projects {
		titles = append(titles, p.Title)
	}
	assert.Equal(t, []string{"a", "b", "c"}, titles)
}

func TestProjectFields(t *testing.T) {
	title := "Renamed"
	f := ProjectFields{Title: &title}

	require.False(t, f.IsEmpty())
	assert.Equal(t, map[string]any{"title": "Renamed"}, f.Columns())

	p := Project{Title: "Old", Thumbnail: "https://cdn.example.com/a.png"}
	f.Apply(&p)
	assert.Equal(t, "Renamed", p.Title)
	assert.Equal(t, "https://cdn.example.com/a.png", p.Thumbnail)

	assert.True(t, ProjectFields{}.IsEmpty())
	assert.Equal(t, map[string]any{"display_order": 3}, OrderOnly(3).Columns())
}

func TestMissingField(t *testing.T) {
	full := Project{Title: "t", Description: "d", DemoLink: "https://x", Thumbnail: "https://y"}
	assert.Equal(t, "", full.MissingField())

	noDemo := full
	noDemo.DemoLink = ""
	assert.Equal(t, "demoLink", noDemo.MissingField())

	noTitle := full
	noTitle.Title = ""
	assert.Equal(t, "title", noTitle.MissingField())
}

func TestBeforeCreateAssignsDefaults(t *testing.T) {
	p := Project{Title: "t"}
	require.NoError(t, p.BeforeCreate(nil))
	assert.NotEqual(t, uuid.Nil, p.ID)
	assert.Equal(t, DefaultViewText, p.ViewText)

	id := uuid.New()
	q := Project{ID: id, ViewText: "OPEN"}
	require.NoError(t, q.BeforeCreate(nil))
	assert.Equal(t, id, q.ID)
	assert.Equal(t, "OPEN", q.ViewText)
}
