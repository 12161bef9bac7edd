package service

import (
	"context"
	"errors"
	"time"

	"github.com/devfolio-io/devfolio/internal/config"
	"github.com/devfolio-io/devfolio/internal/modules/model"
	"github.com/devfolio-io/devfolio/internal/modules/repo"
	"github.com/devfolio-io/devfolio/internal/pkg/slug"
	"github.com/devfolio-io/devfolio/internal/pkg/validation"
	"github.com/devfolio-io/devfolio/internal/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	publicListKey    = "projects:public"
	publicSlugPrefix = "project:slug:"
)

// ReadCache is a read-through cache for the public endpoints.
type ReadCache interface {
	Fetch(ctx context.Context, key string, dst any, load func(ctx context.Context) (any, error)) error
	Invalidate(ctx context.Context, keys ...string) error
}

// EventPublisher delivers lifecycle events after a write has committed.
type EventPublisher interface {
	PublishJSON(ctx context.Context, exchangeName string, routingKey string, body any) error
}

// ProjectEvent is the body of project.created, project.updated and project.deleted.
type ProjectEvent struct {
	Type       string           `json:"type"`
	ProjectID  uuid.UUID        `json:"projectId"`
	Slug       string           `json:"slug,omitempty"`
	Visibility model.Visibility `json:"visibility,omitempty"`
	OccurredAt time.Time        `json:"occurredAt"`
}

type ProjectService interface {
	Create(ctx context.Context, in validation.ProjectInsertInput) (*CreateProjectOutput, error)
	List(ctx context.Context, in ListProjectsInput) ([]model.ProjectSummary, error)
	Get(ctx context.Context, id uuid.UUID) (*model.ProjectAggregate, error)
	GetBySlug(ctx context.Context, s string) (*model.ProjectAggregate, error)
	Update(ctx context.Context, id uuid.UUID, in validation.ProjectUpdateInput) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListPublic(ctx context.Context) ([]model.ProjectSummary, error)
	GetPublicBySlug(ctx context.Context, s string) (*model.ProjectAggregate, error)
}

type projectService struct {
	r      repo.ProjectRepo
	cache  ReadCache
	events EventPublisher
	mq     config.MQCfg
	log    *zap.Logger
}

// NewProjectService wires the project repo. cache and events may be nil.
func NewProjectService(r repo.ProjectRepo, cache ReadCache, events EventPublisher, mq config.MQCfg, log *zap.Logger) ProjectService {
	if log == nil {
		log = zap.NewNop()
	}
	return &projectService{r: r, cache: cache, events: events, mq: mq, log: log}
}

type CreateProjectOutput struct {
	ID uuid.UUID `json:"id"`
}

type ListProjectsInput struct {
	// Visibilities filters the list; empty means every visibility.
	Visibilities []model.Visibility
}

func (s *projectService) Create(ctx context.Context, in validation.ProjectInsertInput) (*CreateProjectOutput, error) {
	start := time.Now()

	parsed, fe := validation.Parse(in)
	if fe != nil {
		return nil, fe
	}

	agg, err := s.r.Insert(ctx, parsed.ToInsert())
	if err != nil {
		err = s.mapWriteError(err)
		telemetry.RecordProjectWriteError(ctx, "create", errorType(err), since(start))
		return nil, err
	}
	telemetry.RecordProjectWrite(ctx, "create", since(start))

	s.invalidate(ctx, agg.Slug)
	s.publish(ctx, s.mq.RoutingKey.ProjectCreated, ProjectEvent{
		Type:       "project.created",
		ProjectID:  agg.ID,
		Slug:       agg.Slug,
		Visibility: agg.Visibility,
	})
	return &CreateProjectOutput{ID: agg.ID}, nil
}

func (s *projectService) List(ctx context.Context, in ListProjectsInput) ([]model.ProjectSummary, error) {
	vis := in.Visibilities
	if len(vis) == 0 {
		vis = model.AllVisibilities()
	}
	return s.r.List(ctx, vis...)
}

// Get returns (nil, nil) when the project does not exist.
func (s *projectService) Get(ctx context.Context, id uuid.UUID) (*model.ProjectAggregate, error) {
	return s.r.GetByID(ctx, id)
}

func (s *projectService) GetBySlug(ctx context.Context, sl string) (*model.ProjectAggregate, error) {
	return s.r.GetBySlug(ctx, sl)
}

func (s *projectService) Update(ctx context.Context, id uuid.UUID, in validation.ProjectUpdateInput) error {
	start := time.Now()

	parsed, fe := validation.Parse(in)
	if fe != nil {
		return fe
	}
	patch := parsed.ToPatch()

	current, err := s.r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if current == nil {
		return ErrProjectNotFound
	}
	if patch.IsEmpty() {
		return nil
	}

	if err := s.r.Edit(ctx, id, patch); err != nil {
		err = s.mapWriteError(err)
		telemetry.RecordProjectWriteError(ctx, "update", errorType(err), since(start))
		return err
	}
	telemetry.RecordProjectWrite(ctx, "update", since(start))

	newSlug := current.Slug
	if patch.Slug != nil {
		newSlug = slug.Make(*patch.Slug)
	}
	vis := current.Visibility
	if patch.Visibility != nil {
		vis = *patch.Visibility
	}
	s.invalidate(ctx, current.Slug, newSlug)
	s.publish(ctx, s.mq.RoutingKey.ProjectUpdated, ProjectEvent{
		Type:       "project.updated",
		ProjectID:  id,
		Slug:       newSlug,
		Visibility: vis,
	})
	return nil
}

// Delete is idempotent: a missing id is not an error.
func (s *projectService) Delete(ctx context.Context, id uuid.UUID) error {
	start := time.Now()

	current, err := s.r.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.r.Delete(ctx, id); err != nil {
		telemetry.RecordProjectWriteError(ctx, "delete", errorType(err), since(start))
		return err
	}
	telemetry.RecordProjectWrite(ctx, "delete", since(start))

	if current == nil {
		return nil
	}
	s.invalidate(ctx, current.Slug)
	s.publish(ctx, s.mq.RoutingKey.ProjectDeleted, ProjectEvent{
		Type:      "project.deleted",
		ProjectID: id,
		Slug:      current.Slug,
	})
	return nil
}

func (s *projectService) ListPublic(ctx context.Context) ([]model.ProjectSummary, error) {
	load := func(ctx context.Context) (any, error) {
		return s.r.List(ctx, model.VisibilityPublic)
	}
	if s.cache == nil {
		out, err := load(ctx)
		if err != nil {
			return nil, err
		}
		return out.([]model.ProjectSummary), nil
	}

	var out []model.ProjectSummary
	if err := s.cache.Fetch(ctx, publicListKey, &out, load); err != nil {
		return nil, err
	}
	if out == nil {
		out = []model.ProjectSummary{}
	}
	return out, nil
}

// GetPublicBySlug returns PUBLIC and UNLISTED projects; PRIVATE ones read as absent.
func (s *projectService) GetPublicBySlug(ctx context.Context, sl string) (*model.ProjectAggregate, error) {
	load := func(ctx context.Context) (any, error) {
		p, err := s.r.GetBySlug(ctx, sl)
		if err != nil {
			return nil, err
		}
		if p == nil || p.Visibility == model.VisibilityPrivate {
			return (*model.ProjectAggregate)(nil), nil
		}
		return p, nil
	}
	if s.cache == nil {
		out, err := load(ctx)
		if err != nil {
			return nil, err
		}
		return out.(*model.ProjectAggregate), nil
	}

	var out *model.ProjectAggregate
	if err := s.cache.Fetch(ctx, publicSlugPrefix+sl, &out, load); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *projectService) mapWriteError(err error) error {
	switch {
	case errors.Is(err, repo.ErrUniqueConstraint):
		return ErrProjectSlugAlreadyExists
	case errors.Is(err, repo.ErrNotFound):
		return ErrProjectNotFound
	case errors.Is(err, repo.ErrEmptySlug):
		fe := &validation.FieldErrors{}
		fe.Add("slug", "must contain at least one letter or digit")
		return fe
	}
	return err
}

func (s *projectService) invalidate(ctx context.Context, slugs ...string) {
	if s.cache == nil {
		return
	}
	keys := []string{publicListKey}
	for _, sl := range slugs {
		if sl != "" {
			keys = append(keys, publicSlugPrefix+sl)
		}
	}
	if err := s.cache.Invalidate(ctx, keys...); err != nil {
		s.log.Warn("invalidate public cache", zap.Strings("keys", keys), zap.Error(err))
	}
}

// publish never fails the caller; the write has already committed.
func (s *projectService) publish(ctx context.Context, routingKey string, ev ProjectEvent) {
	if s.events == nil {
		return
	}
	ev.OccurredAt = time.Now().UTC()
	if err := s.events.PublishJSON(ctx, s.mq.ExchangeName.ProjectEvents, routingKey, ev); err != nil {
		s.log.Error("publish project event",
			zap.String("type", ev.Type),
			zap.String("project_id", ev.ProjectID.String()),
			zap.Error(err),
		)
	}
}

func errorType(err error) string {
	var fe *validation.FieldErrors
	switch {
	case errors.Is(err, ErrProjectSlugAlreadyExists):
		return "duplicate_slug"
	case errors.Is(err, ErrProjectNotFound):
		return "not_found"
	case errors.As(err, &fe):
		return "validation"
	}
	return "internal"
}

func since(t time.Time) float64 {
	return float64(time.Since(t).Microseconds()) / 1000
}
