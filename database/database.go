package database

import (
	"fmt"

	"github.com/rpupo63/portfolio-site-backend/errs"
	"gorm.io/gorm"
	"gorm.io/plugin/dbresolver"
)

type Database struct {
	projectRepo *ProjectRepo
}

// New initializes a new Database struct with each repository using a shared GORM database instance
func New(db *gorm.DB) Database {
	return Database{
		projectRepo: NewProjectRepo(db),
	}
}

// Accessor methods for each repository

func (d Database) ProjectRepo() *ProjectRepo {
	return d.projectRepo
}

// UseReplicas routes reads to the given replica dialectors while writes stay
// on the primary connection.
func UseReplicas(db *gorm.DB, replicas ...gorm.Dialector) error {
	if len(replicas) == 0 {
		return errs.BadRequest("at least one replica is required")
	}
	err := db.Use(dbresolver.Register(dbresolver.Config{
		Replicas:          replicas,
		Policy:            dbresolver.RandomPolicy{},
		TraceResolverMode: true,
	}))
	if err != nil {
		return fmt.Errorf("register read replicas: %w", err)
	}
	return nil
}
