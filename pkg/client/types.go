package client

import "time"

const (
	VisibilityPrivate  = "PRIVATE"
	VisibilityPublic   = "PUBLIC"
	VisibilityUnlisted = "UNLISTED"
)

type Project struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	Slug             string    `json:"slug"`
	ShortDescription *string   `json:"shortDescription"`
	Description      *string   `json:"description"`
	GithubURL        *string   `json:"githubUrl"`
	CreatedAt        time.Time `json:"createdAt"`
	Visibility       string    `json:"visibility"`
	Badges           []string  `json:"badges"`
}

// Clone returns a deep copy.
func (p Project) Clone() Project {
	p.ShortDescription = cloneStr(p.ShortDescription)
	p.Description = cloneStr(p.Description)
	p.GithubURL = cloneStr(p.GithubURL)
	if p.Badges != nil {
		p.Badges = append([]string(nil), p.Badges...)
	}
	return p
}

// Equal compares every field, pointer fields by value.
func (p Project) Equal(o Project) bool {
	if p.ID != o.ID || p.Title != o.Title || p.Slug != o.Slug || p.Visibility != o.Visibility ||
		!p.CreatedAt.Equal(o.CreatedAt) {
		return false
	}
	if !eqStr(p.ShortDescription, o.ShortDescription) || !eqStr(p.Description, o.Description) ||
		!eqStr(p.GithubURL, o.GithubURL) {
		return false
	}
	if len(p.Badges) != len(o.Badges) {
		return false
	}
	for i := range p.Badges {
		if p.Badges[i] != o.Badges[i] {
			return false
		}
	}
	return true
}

// UpdateBody is the PATCH payload for p.
type UpdateBody struct {
	Title            *string   `json:"title,omitempty"`
	Slug             *string   `json:"slug,omitempty"`
	ShortDescription *string   `json:"shortDescription,omitempty"`
	Description      *string   `json:"description,omitempty"`
	GithubURL        *string   `json:"githubUrl,omitempty"`
	Visibility       *string   `json:"visibility,omitempty"`
	Badges           *[]string `json:"badges,omitempty"`
}

func (p Project) updateBody() UpdateBody {
	badges := p.Badges
	if badges == nil {
		badges = []string{}
	}
	b := UpdateBody{
		Title:            &p.Title,
		Slug:             &p.Slug,
		ShortDescription: p.ShortDescription,
		Description:      p.Description,
		GithubURL:        p.GithubURL,
		Badges:           &badges,
	}
	if p.Visibility != "" {
		b.Visibility = &p.Visibility
	}
	return b
}

type ProjectSummary struct {
	ID               string   `json:"id"`
	Title            string   `json:"title"`
	Slug             string   `json:"slug"`
	ShortDescription *string  `json:"shortDescription"`
	Visibility       string   `json:"visibility"`
	Badges           []string `json:"badges"`
}

type CreateProjectRequest struct {
	Title            string   `json:"title"`
	Slug             string   `json:"slug,omitempty"`
	ShortDescription *string  `json:"shortDescription,omitempty"`
	Description      *string  `json:"description,omitempty"`
	GithubURL        *string  `json:"githubUrl,omitempty"`
	Visibility       string   `json:"visibility,omitempty"`
	Badges           []string `json:"badges,omitempty"`
}

func cloneStr(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func eqStr(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
