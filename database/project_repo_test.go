package database

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/rpupo63/portfolio-site-backend/errs"
	"github.com/rpupo63/portfolio-site-backend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestRepo(t *testing.T) *ProjectRepo {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, models.Migrate(db))
	return New(db).ProjectRepo()
}

func sampleProject(title string, order int) models.Project {
	return models.Project{
		Title:       title,
		Description: title + " description",
		Thumbnail:   "https://cdn.example.com/" + title + ".png",
		DemoLink:    "https://example.com/" + title,
		Order:       order,
	}
}

func TestProjectRepoListOrdered(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	for _, p := range []models.Project{sampleProject("c", 30), sampleProject("a", 1), sampleProject("b", 7)} {
		_, err := repo.Create(ctx, p)
		require.NoError(t, err)
	}

	projects, err := repo.ListOrdered(ctx)
	require.NoError(t, err)
	require.Len(t, projects, 3)
	assert.Equal(t, "a", projects[0].Title)
	assert.Equal(t, "b", projects[1].Title)
	assert.Equal(t, "c", projects[2].Title)
	assert.Equal(t, models.DefaultViewText, projects[0].ViewText)
}

func TestProjectRepoCreate(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	supplied := uuid.New()
	p := sampleProject("x", 4)
	p.ID = supplied

	id, err := repo.Create(ctx, p)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, id)
	assert.NotEqual(t, supplied, id, "store assigns ids")

	got, err := repo.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 4, got.Order)
}

func TestProjectRepoUpdate(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	id, err := repo.Create(ctx, sampleProject("x", 1))
	require.NoError(t, err)

	title := "renamed"
	require.NoError(t, repo.Update(ctx, id, models.ProjectFields{Title: &title}))

	got, err := repo.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "renamed", got.Title)
	assert.Equal(t, "https://cdn.example.com/x.png", got.Thumbnail, "unset fields are left alone")

	t.Run("missing id", func(t *testing.T) {
		err := repo.Update(ctx, uuid.New(), models.OrderOnly(3))
		require.Error(t, err)
		assert.True(t, errs.IsNotFound(err))
	})

	t.Run("empty update on missing id", func(t *testing.T) {
		err := repo.Update(ctx, uuid.New(), models.ProjectFields{})
		assert.True(t, errs.IsNotFound(err))
	})
}

func TestProjectRepoDeleteIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	id, err := repo.Create(ctx, sampleProject("x", 1))
	require.NoError(t, err)
	keep, err := repo.Create(ctx, sampleProject("y", 2))
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, id))
	require.NoError(t, repo.Delete(ctx, id))

	projects, err := repo.ListOrdered(ctx)
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Equal(t, keep, projects[0].ID)
	assert.Equal(t, 2, projects[0].Order, "remaining orders are not renumbered")

	_, err = repo.FindByID(ctx, id)
	assert.True(t, errs.IsNotFound(err))
}

func TestUseReplicasRequiresReplica(t *testing.T) {
	repo := newTestRepo(t)
	err := UseReplicas(repo.GetDB())
	require.Error(t, err)

	require.NoError(t, UseReplicas(repo.GetDB(), sqlite.Open("file::memory:")))
}
