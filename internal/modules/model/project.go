package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Visibility string

const (
	VisibilityPrivate  Visibility = "PRIVATE"
	VisibilityPublic   Visibility = "PUBLIC"
	VisibilityUnlisted Visibility = "UNLISTED"
)

func AllVisibilities() []Visibility {
	return []Visibility{VisibilityPrivate, VisibilityPublic, VisibilityUnlisted}
}

func (v Visibility) Valid() bool {
	switch v {
	case VisibilityPrivate, VisibilityPublic, VisibilityUnlisted:
		return true
	}
	return false
}

// ParseVisibility accepts the enum value in any case.
func ParseVisibility(s string) (Visibility, error) {
	v := Visibility(strings.ToUpper(strings.TrimSpace(s)))
	if !v.Valid() {
		return "", fmt.Errorf("invalid visibility %q", s)
	}
	return v, nil
}

// Project is the core record. Visibility and badges live in their own tables.
type Project struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Title            string    `gorm:"type:varchar(200);not null" json:"title"`
	Slug             string    `gorm:"type:varchar(200);not null;uniqueIndex:idx_projects_slug" json:"slug"`
	ShortDescription *string   `gorm:"type:varchar(300)" json:"shortDescription"`
	Description      *string   `gorm:"type:text" json:"description"`
	GithubURL        *string   `gorm:"column:github_url;type:text" json:"githubUrl"`

	CreatedAt time.Time `gorm:"autoCreateTime;not null" json:"createdAt"`

	// Project <-> ProjectAccess
	Access *ProjectAccess `gorm:"foreignKey:ProjectID;references:ID;constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"-"`

	// Project <-> ProjectBadge
	Badges []ProjectBadge `gorm:"foreignKey:ProjectID;references:ID;constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"-"`
}

func (Project) TableName() string { return "projects" }

func (p *Project) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

type ProjectAccess struct {
	ProjectID  uuid.UUID  `gorm:"type:uuid;primaryKey" json:"projectId"`
	Visibility Visibility `gorm:"type:varchar(16);not null;default:PRIVATE;index" json:"visibility"`
}

func (ProjectAccess) TableName() string { return "project_access" }

type ProjectBadge struct {
	ProjectID uuid.UUID `gorm:"type:uuid;primaryKey" json:"projectId"`
	BadgeID   string    `gorm:"type:varchar(64);primaryKey" json:"badgeId"`
	// Position keeps badges in the order they were submitted.
	Position int `gorm:"not null;default:0" json:"-"`
}

func (ProjectBadge) TableName() string { return "project_badges" }

// ProjectAggregate is the merged read shape: core fields, visibility and badges.
type ProjectAggregate struct {
	ID               uuid.UUID  `json:"id"`
	Title            string     `json:"title"`
	Slug             string     `json:"slug"`
	ShortDescription *string    `json:"shortDescription"`
	Description      *string    `json:"description"`
	GithubURL        *string    `json:"githubUrl"`
	CreatedAt        time.Time  `json:"createdAt"`
	Visibility       Visibility `json:"visibility"`
	Badges           []string   `json:"badges"`
}

// ProjectSummary is the list projection.
type ProjectSummary struct {
	ID               uuid.UUID  `json:"id"`
	Title            string     `json:"title"`
	Slug             string     `json:"slug"`
	ShortDescription *string    `json:"shortDescription"`
	Visibility       Visibility `json:"visibility"`
	Badges           []string   `json:"badges"`
}

// ProjectInsert carries everything needed to create an aggregate.
// ID and CreatedAt are generated by storage.
type ProjectInsert struct {
	Title            string
	Slug             string
	ShortDescription *string
	Description      *string
	GithubURL        *string
	Visibility       Visibility
	Badges           []string
}

// ProjectPatch is a partial update; nil fields are left untouched.
// A non-nil Badges pointing at an empty slice clears every badge.
type ProjectPatch struct {
	Title            *string
	Slug             *string
	ShortDescription *string
	Description      *string
	GithubURL        *string
	Visibility       *Visibility
	Badges           *[]string
}

func (p ProjectPatch) HasCoreFields() bool {
	return p.Title != nil || p.Slug != nil || p.ShortDescription != nil ||
		p.Description != nil || p.GithubURL != nil
}

func (p ProjectPatch) IsEmpty() bool {
	return !p.HasCoreFields() && p.Visibility == nil && p.Badges == nil
}

// CoreUpdates returns the column map for the core record.
func (p ProjectPatch) CoreUpdates() map[string]any {
	m := map[string]any{}
	if p.Title != nil {
		m["title"] = *p.Title
	}
	if p.Slug != nil {
		m["slug"] = *p.Slug
	}
	if p.ShortDescription != nil {
		m["short_description"] = *p.ShortDescription
	}
	if p.Description != nil {
		m["description"] = *p.Description
	}
	if p.GithubURL != nil {
		m["github_url"] = *p.GithubURL
	}
	return m
}

// NormalizeBadges trims entries, drops empty ones and removes duplicates
// keeping the first occurrence. It never returns nil.
func NormalizeBadges(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, b := range in {
		b = strings.TrimSpace(b)
		if b == "" {
			continue
		}
		if _, ok := seen[b]; ok {
			continue
		}
		seen[b] = struct{}{}
		out = append(out, b)
	}
	return out
}

func badgeIDs(rows []ProjectBadge) []string {
	out := make([]string, 0, len(rows))
	for _, b := range rows {
		out = append(out, b.BadgeID)
	}
	return out
}

// Aggregate merges a loaded project with its access row and badges.
// Badges are expected to be preloaded in position order.
func (p *Project) Aggregate() *ProjectAggregate {
	vis := VisibilityPrivate
	if p.Access != nil {
		vis = p.Access.Visibility
	}
	return &ProjectAggregate{
		ID:               p.ID,
		Title:            p.Title,
		Slug:             p.Slug,
		ShortDescription: p.ShortDescription,
		Description:      p.Description,
		GithubURL:        p.GithubURL,
		CreatedAt:        p.CreatedAt,
		Visibility:       vis,
		Badges:           badgeIDs(p.Badges),
	}
}

func (p *Project) Summary() ProjectSummary {
	vis := VisibilityPrivate
	if p.Access != nil {
		vis = p.Access.Visibility
	}
	return ProjectSummary{
		ID:               p.ID,
		Title:            p.Title,
		Slug:             p.Slug,
		ShortDescription: p.ShortDescription,
		Visibility:       vis,
		Badges:           badgeIDs(p.Badges),
	}
}
