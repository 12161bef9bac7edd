package editstate

import (
	"context"
	"fmt"

	"github.com/devfolio-io/devfolio/internal/modules/model"
	"github.com/devfolio-io/devfolio/internal/pkg/validation"
	"github.com/devfolio-io/devfolio/pkg/client"
	"go.uber.org/zap"
)

// ProjectAPI is the part of the API client the saver needs.
type ProjectAPI interface {
	GetProject(ctx context.Context, id string) (*client.Project, error)
	UpdateProject(ctx context.Context, p client.Project) error
}

type SaveResult struct {
	// Version is the store version the saved snapshot was taken at.
	Version uint64
	// Stale is set when the store moved on while the requests were in flight.
	// The server has the saved snapshot, but the store stays dirty.
	Stale bool
}

type Saver struct {
	store *Store
	api   ProjectAPI
	log   *zap.Logger
}

func NewSaver(store *Store, api ProjectAPI, log *zap.Logger) *Saver {
	if log == nil {
		log = zap.NewNop()
	}
	return &Saver{store: store, api: api, log: log}
}

// Save validates the current snapshot, sends it and reloads the server's
// normalized copy, which becomes the baseline. Failures are returned as-is
// and never retried.
func (s *Saver) Save(ctx context.Context) (SaveResult, error) {
	snap, version := s.store.Snapshot()
	if snap == nil {
		return SaveResult{}, ErrNotLoaded
	}

	if _, fe := validation.Parse(updateInput(snap)); fe != nil {
		return SaveResult{Version: version}, fe
	}

	if err := s.api.UpdateProject(ctx, *snap); err != nil {
		return SaveResult{Version: version}, fmt.Errorf("save project %s: %w", snap.ID, err)
	}

	saved, err := s.api.GetProject(ctx, snap.ID)
	if err != nil {
		// the write went through; the store stays dirty so the next save repeats it
		return SaveResult{Version: version}, fmt.Errorf("reload project %s: %w", snap.ID, err)
	}

	if !s.store.Confirm(*saved, version) {
		s.log.Debug("discarding stale save result",
			zap.String("project_id", snap.ID),
			zap.Uint64("saved_version", version),
			zap.Uint64("store_version", s.store.Version()),
		)
		return SaveResult{Version: version, Stale: true}, nil
	}
	return SaveResult{Version: version}, nil
}

func updateInput(p *client.Project) validation.ProjectUpdateInput {
	vis := model.Visibility(p.Visibility)
	badges := p.Badges
	if badges == nil {
		badges = []string{}
	}
	title, slug := p.Title, p.Slug
	return validation.ProjectUpdateInput{
		Title:            &title,
		Slug:             &slug,
		ShortDescription: p.ShortDescription,
		Description:      p.Description,
		GithubURL:        p.GithubURL,
		Visibility:       &vis,
		Badges:           &badges,
	}
}
