package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/devfolio-io/devfolio/internal/modules/model"
	"github.com/devfolio-io/devfolio/internal/modules/serializer"
	"github.com/devfolio-io/devfolio/internal/modules/service"
	"github.com/devfolio-io/devfolio/internal/pkg/validation"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ProjectHandler struct {
	svc service.ProjectService
}

func NewProjectHandler(s service.ProjectService) *ProjectHandler {
	return &ProjectHandler{svc: s}
}

// parseVisibilities accepts repeated and comma separated values.
func parseVisibilities(raw []string) ([]model.Visibility, error) {
	var out []model.Visibility
	for _, r := range raw {
		for _, part := range strings.Split(r, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			v, err := model.ParseVisibility(part)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
	}
	return out, nil
}

// ListProjects godoc
//
//	@Summary		List projects
//	@Description	List the projects shown on the dashboard. Without a visibility filter every project is returned, newest first.
//	@Tags			project
//	@Produce		json
//	@Param			visibility	query	[]string	false	"Visibility filter (PRIVATE, PUBLIC, UNLISTED); repeat or comma separate"	collectionFormat(multi)
//	@Success		200	{object}	serializer.Response{data=[]model.ProjectSummary}
//	@Failure		400	{object}	serializer.Response
//	@Failure		401	{object}	serializer.Response
//	@Router			/projects [get]
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	vis, err := parseVisibilities(c.QueryArray("visibility"))
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ValidationErr(map[string][]string{"visibility": {err.Error()}}))
		return
	}

	out, err := h.svc.List(c.Request.Context(), service.ListProjectsInput{Visibilities: vis})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.OK(out))
}

// GetProject godoc
//
//	@Summary		Get project
//	@Description	Get a project with its visibility and badges
//	@Tags			project
//	@Produce		json
//	@Param			id	path	string	true	"Project ID"	format(uuid)
//	@Success		200	{object}	serializer.Response{data=model.ProjectAggregate}
//	@Failure		404	{object}	serializer.Response
//	@Router			/projects/{id} [get]
func (h *ProjectHandler) GetProject(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", errors.New("invalid project id")))
		return
	}

	p, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	if p == nil {
		writeError(c, service.ErrProjectNotFound)
		return
	}
	c.JSON(http.StatusOK, serializer.OK(p))
}

// CreateProject godoc
//
//	@Summary		Create project
//	@Description	Create a project. The slug is derived from the title when omitted and visibility defaults to PRIVATE.
//	@Tags			project
//	@Accept			json
//	@Produce		json
//	@Param			payload	body	validation.ProjectInsertInput	true	"Project"
//	@Success		201	{object}	serializer.Response{data=service.CreateProjectOutput}
//	@Failure		400	{object}	serializer.Response
//	@Failure		409	{object}	serializer.Response
//	@Router			/projects [post]
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	req := validation.ProjectInsertInput{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	out, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, serializer.OK(out))
}

// UpdateProject godoc
//
//	@Summary		Update project
//	@Description	Partially update a project. Badges, when present, replace the whole list. Last write wins.
//	@Tags			project
//	@Accept			json
//	@Produce		json
//	@Param			id		path	string							true	"Project ID"	format(uuid)
//	@Param			payload	body	validation.ProjectUpdateInput	true	"Changed fields"
//	@Success		200	{object}	serializer.Response
//	@Failure		400	{object}	serializer.Response
//	@Failure		404	{object}	serializer.Response
//	@Failure		409	{object}	serializer.Response
//	@Router			/projects/{id} [patch]
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", errors.New("invalid project id")))
		return
	}

	req := validation.ProjectUpdateInput{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	if err := h.svc.Update(c.Request.Context(), id, req); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.OK(nil))
}

// DeleteProject godoc
//
//	@Summary		Delete project
//	@Description	Delete a project with its visibility and badges. Deleting a missing project succeeds.
//	@Tags			project
//	@Param			id	path	string	true	"Project ID"	format(uuid)
//	@Success		204
//	@Router			/projects/{id} [delete]
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", errors.New("invalid project id")))
		return
	}

	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListPublicProjects godoc
//
//	@Summary		List public projects
//	@Tags			public
//	@Produce		json
//	@Success		200	{object}	serializer.Response{data=[]model.ProjectSummary}
//	@Router			/public/projects [get]
func (h *ProjectHandler) ListPublicProjects(c *gin.Context) {
	out, err := h.svc.ListPublic(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.OK(out))
}

// GetPublicProject godoc
//
//	@Summary		Get public project
//	@Description	Get a PUBLIC or UNLISTED project by slug
//	@Tags			public
//	@Produce		json
//	@Param			slug	path	string	true	"Project slug"
//	@Success		200	{object}	serializer.Response{data=model.ProjectAggregate}
//	@Failure		404	{object}	serializer.Response
//	@Router			/public/projects/{slug} [get]
func (h *ProjectHandler) GetPublicProject(c *gin.Context) {
	p, err := h.svc.GetPublicBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		writeError(c, err)
		return
	}
	if p == nil {
		writeError(c, service.ErrProjectNotFound)
		return
	}
	c.JSON(http.StatusOK, serializer.OK(p))
}
