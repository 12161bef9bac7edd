package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/devfolio-io/devfolio/internal/modules/model"
	"github.com/devfolio-io/devfolio/internal/pkg/slug"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrUniqueConstraint wraps driver errors for a colliding slug.
	ErrUniqueConstraint = errors.New("unique constraint violation")
	ErrNotFound         = errors.New("record not found")
	ErrEmptySlug        = errors.New("slug is empty after normalization")
)

type ProjectRepo interface {
	Insert(ctx context.Context, in model.ProjectInsert) (*model.ProjectAggregate, error)
	List(ctx context.Context, visibilities ...model.Visibility) ([]model.ProjectSummary, error)
	Edit(ctx context.Context, id uuid.UUID, patch model.ProjectPatch) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.ProjectAggregate, error)
	GetBySlug(ctx context.Context, s string) (*model.ProjectAggregate, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type projectRepo struct{ db *gorm.DB }

func NewProjectRepo(db *gorm.DB) ProjectRepo {
	return &projectRepo{db: db}
}

func (r *projectRepo) Insert(ctx context.Context, in model.ProjectInsert) (*model.ProjectAggregate, error) {
	s := in.Slug
	if strings.TrimSpace(s) == "" {
		s = in.Title
	}
	s = slug.Make(s)
	if s == "" {
		return nil, ErrEmptySlug
	}

	vis := in.Visibility
	if vis == "" {
		vis = model.VisibilityPrivate
	}
	badges := model.NormalizeBadges(in.Badges)

	p := model.Project{
		Title:            in.Title,
		Slug:             s,
		ShortDescription: in.ShortDescription,
		Description:      in.Description,
		GithubURL:        in.GithubURL,
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(&p).Error; err != nil {
			return err
		}
		if err := tx.Create(&model.ProjectAccess{ProjectID: p.ID, Visibility: vis}).Error; err != nil {
			return err
		}
		if len(badges) > 0 {
			rows := badgeRows(p.ID, badges)
			if err := tx.Create(&rows).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, translateError(err)
	}

	return &model.ProjectAggregate{
		ID:               p.ID,
		Title:            p.Title,
		Slug:             p.Slug,
		ShortDescription: p.ShortDescription,
		Description:      p.Description,
		GithubURL:        p.GithubURL,
		CreatedAt:        p.CreatedAt,
		Visibility:       vis,
		Badges:           badges,
	}, nil
}

// List returns the projects whose visibility is one of visibilities,
// PUBLIC only when none are given.
func (r *projectRepo) List(ctx context.Context, visibilities ...model.Visibility) ([]model.ProjectSummary, error) {
	if len(visibilities) == 0 {
		visibilities = []model.Visibility{model.VisibilityPublic}
	}

	ids := r.db.WithContext(ctx).
		Model(&model.ProjectAccess{}).
		Select("project_id").
		Where("visibility IN ?", visibilities)

	var rows []model.Project
	err := r.db.WithContext(ctx).
		Select("id", "title", "slug", "short_description", "created_at").
		Where("id IN (?)", ids).
		Preload("Access").
		Preload("Badges", orderedBadges).
		Order("created_at DESC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]model.ProjectSummary, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].Summary())
	}
	return out, nil
}

func (r *projectRepo) Edit(ctx context.Context, id uuid.UUID, patch model.ProjectPatch) error {
	if patch.IsEmpty() {
		return nil
	}

	updates := patch.CoreUpdates()
	if v, ok := updates["slug"]; ok {
		s := slug.Make(v.(string))
		if s == "" {
			return ErrEmptySlug
		}
		updates["slug"] = s
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&model.Project{}).Where("id = ?", id).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return ErrNotFound
		}

		if len(updates) > 0 {
			if err := tx.Model(&model.Project{}).Where("id = ?", id).Updates(updates).Error; err != nil {
				return err
			}
		}

		if patch.Visibility != nil {
			if err := tx.Model(&model.ProjectAccess{}).
				Where("project_id = ?", id).
				Update("visibility", *patch.Visibility).Error; err != nil {
				return err
			}
		}

		if patch.Badges != nil {
			if err := tx.Where("project_id = ?", id).Delete(&model.ProjectBadge{}).Error; err != nil {
				return err
			}
			badges := model.NormalizeBadges(*patch.Badges)
			if len(badges) > 0 {
				rows := badgeRows(id, badges)
				if err := tx.Create(&rows).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
	return translateError(err)
}

func (r *projectRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.ProjectAggregate, error) {
	return r.getOne(ctx, "id = ?", id)
}

func (r *projectRepo) GetBySlug(ctx context.Context, s string) (*model.ProjectAggregate, error) {
	return r.getOne(ctx, "slug = ?", s)
}

// getOne returns (nil, nil) when no row matches.
func (r *projectRepo) getOne(ctx context.Context, query string, arg any) (*model.ProjectAggregate, error) {
	var p model.Project
	err := r.db.WithContext(ctx).
		Preload("Access").
		Preload("Badges", orderedBadges).
		Where(query, arg).
		First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p.Aggregate(), nil
}

// Delete removes dependents before the core row so the result does not depend
// on the driver enforcing ON DELETE CASCADE. Missing ids are not an error.
func (r *projectRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("project_id = ?", id).Delete(&model.ProjectBadge{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", id).Delete(&model.ProjectAccess{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&model.Project{}).Error
	})
}

func orderedBadges(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

func badgeRows(projectID uuid.UUID, badges []string) []model.ProjectBadge {
	rows := make([]model.ProjectBadge, 0, len(badges))
	for i, b := range badges {
		rows = append(rows, model.ProjectBadge{ProjectID: projectID, BadgeID: b, Position: i})
	}
	return rows
}

func translateError(err error) error {
	if err == nil {
		return nil
	}
	if IsUniqueViolation(err) {
		return fmt.Errorf("%w: %v", ErrUniqueConstraint, err)
	}
	return err
}

// IsUniqueViolation recognizes unique-key errors from postgres and sqlite,
// whether or not gorm translated them.
func IsUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "23505") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}
