package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rpupo63/portfolio-site-backend/database"
	"github.com/rpupo63/portfolio-site-backend/errs"
	"github.com/rpupo63/portfolio-site-backend/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type projectHandler struct {
	responder   Responder
	logger      zerolog.Logger
	projectRepo *database.ProjectRepo
}

func newProjectHandler(projectRepo *database.ProjectRepo) projectHandler {
	logger := log.With().Str("handlerName", "projectHandler").Logger()

	return projectHandler{
		responder:   NewResponder(logger),
		logger:      logger,
		projectRepo: projectRepo,
	}
}

// getAllProjects lists every project ascending by display order
// @Summary Get all projects
// @Tags Projects
// @Produce json
// @Success 200 {array} models.Project
// @Failure 503 {object} ErrorResponse "Database unavailable"
// @Router /projects [get]
func (h projectHandler) getAllProjects() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projects, err := h.projectRepo.ListOrdered(r.Context())
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if projects == nil {
			projects = []models.Project{}
		}
		h.responder.WriteJSON(w, projects)
	}
}

// getProject retrieves a specific project by ID
// @Summary Get project
// @Tags Projects
// @Produce json
// @Param projectID path string true "Project ID" format(uuid)
// @Success 200 {object} models.Project
// @Failure 400 {object} ErrorResponse "Invalid projectID"
// @Failure 404 {object} ErrorResponse "Project not found"
// @Router /project/{projectID} [get]
func (h projectHandler) getProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, err := projectIDParam(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		project, err := h.projectRepo.FindByID(r.Context(), projectID)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, project)
	}
}

// createProject stores a new project. A missing or non-positive order is
// replaced with one past the current highest.
// @Summary Create project
// @Tags Projects
// @Accept json
// @Produce json
// @Param project body models.Project true "Project data"
// @Success 201 {object} CreateProjectResponse
// @Failure 400 {object} ErrorResponse "Invalid project data"
// @Failure 401 {object} ErrorResponse "Missing or invalid token"
// @Router /project [post]
func (h projectHandler) createProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var project models.Project
		if err := decodeJSON(w, r, "project", &project); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		trimProject(&project)

		if field := project.MissingField(); field != "" {
			h.responder.WriteError(w, errs.NewMissingRequiredFieldError(field))
			return
		}

		if project.Order <= 0 {
			existing, err := h.projectRepo.ListOrdered(r.Context())
			if err != nil {
				h.responder.WriteError(w, err)
				return
			}
			project.Order = models.NextOrder(existing)
		}

		id, err := h.projectRepo.Create(r.Context(), project)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		identity, _ := ctxGetIdentity(r.Context())
		h.logger.Info().
			Str("projectID", id.String()).
			Int("order", project.Order).
			Str("admin", identity.Email).
			Msg("Project created")

		h.responder.WriteJSONStatus(w, http.StatusCreated, CreateProjectResponse{ID: id})
	}
}

// updateProject merges the fields present in the body into a project
// @Summary Update project
// @Tags Projects
// @Accept json
// @Produce json
// @Param projectID path string true "Project ID" format(uuid)
// @Param fields body models.ProjectFields true "Fields to change"
// @Success 200 {object} models.Project
// @Failure 400 {object} ErrorResponse "Invalid project data"
// @Failure 404 {object} ErrorResponse "Project not found"
// @Router /project/{projectID} [put]
func (h projectHandler) updateProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, err := projectIDParam(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		var fields models.ProjectFields
		if err := decodeJSON(w, r, "project", &fields); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if err := validateFields(fields); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if err := h.projectRepo.Update(r.Context(), projectID, fields); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		updated, err := h.projectRepo.FindByID(r.Context(), projectID)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, updated)
	}
}

// deleteProject removes a project. Deleting a missing project succeeds.
// @Summary Delete project
// @Tags Projects
// @Produce json
// @Param projectID path string true "Project ID" format(uuid)
// @Success 200 {object} StatusResponse
// @Failure 400 {object} ErrorResponse "Invalid projectID"
// @Router /project/{projectID} [delete]
func (h projectHandler) deleteProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, err := projectIDParam(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if err := h.projectRepo.Delete(r.Context(), projectID); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, StatusResponse{
			Status:  "success",
			Message: "project deleted successfully",
		})
	}
}

func projectIDParam(r *http.Request) (uuid.UUID, error) {
	projectIDStr := chi.URLParam(r, "projectID")
	if projectIDStr == "" {
		return uuid.Nil, errs.NewBadRequestError("missing projectID")
	}
	projectID, err := uuid.Parse(projectIDStr)
	if err != nil {
		return uuid.Nil, errs.NewBadRequestError("invalid projectID")
	}
	return projectID, nil
}

func trimProject(p *models.Project) {
	p.Title = strings.TrimSpace(p.Title)
	p.Description = strings.TrimSpace(p.Description)
	p.Thumbnail = strings.TrimSpace(p.Thumbnail)
	p.DemoLink = strings.TrimSpace(p.DemoLink)
	p.ViewText = strings.TrimSpace(p.ViewText)
}

// validateFields rejects updates that would blank a required field. A blank
// view text falls back to the default label.
func validateFields(f models.ProjectFields) error {
	required := []struct {
		name  string
		value *string
	}{
		{"title", f.Title},
		{"description", f.Description},
		{"thumbnail", f.Thumbnail},
		{"demoLink", f.DemoLink},
	}
	for _, field := range required {
		if field.value != nil && strings.TrimSpace(*field.value) == "" {
			return errs.NewInvalidFieldError(field.name, "must not be empty")
		}
	}
	if f.ViewText != nil && strings.TrimSpace(*f.ViewText) == "" {
		*f.ViewText = models.DefaultViewText
	}
	return nil
}
