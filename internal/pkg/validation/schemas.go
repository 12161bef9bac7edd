package validation

import (
	"strings"

	"github.com/devfolio-io/devfolio/internal/modules/model"
	"github.com/devfolio-io/devfolio/internal/pkg/slug"
)

// MaxDescriptionLength is the visible character budget of a project description.
const MaxDescriptionLength = 2000

// Fields are declared in the order their errors are reported.
type SignUpInput struct {
	Email           string `json:"email" validate:"required,email"`
	Name            string `json:"name" validate:"required,person_name"`
	Password        string `json:"password" validate:"required,min=8,max=32"`
	Username        string `json:"username" validate:"required,username"`
	DisplayUsername string `json:"displayUsername" validate:"required,display_username"`
}

func (in SignUpInput) Normalize() SignUpInput {
	in.Email = strings.TrimSpace(in.Email)
	in.Name = strings.TrimSpace(in.Name)
	in.Username = strings.TrimSpace(in.Username)
	in.DisplayUsername = strings.TrimSpace(in.DisplayUsername)
	return in
}

type SignInUsernameInput struct {
	Username string `json:"username" validate:"required,username"`
	Password string `json:"password" validate:"required,min=8,max=32"`
}

func (in SignInUsernameInput) Normalize() SignInUsernameInput {
	in.Username = strings.TrimSpace(in.Username)
	return in
}

type SignInEmailInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=32"`
}

func (in SignInEmailInput) Normalize() SignInEmailInput {
	in.Email = strings.TrimSpace(in.Email)
	return in
}

type ProjectInsertInput struct {
	Title            string           `json:"title" validate:"required,max=200"`
	Slug             string           `json:"slug" validate:"required,slug,max=200"`
	ShortDescription *string          `json:"shortDescription" validate:"omitnil,max=300"`
	Description      *string          `json:"description" validate:"omitnil,html_max=2000"`
	GithubURL        *string          `json:"githubUrl" validate:"omitnil,optional_url"`
	Visibility       model.Visibility `json:"visibility" validate:"required,visibility"`
	Badges           []string         `json:"badges" validate:"badges"`
}

// Normalize trims text, derives a missing slug from the title, defaults the
// visibility to PRIVATE and deduplicates badges.
func (in ProjectInsertInput) Normalize() ProjectInsertInput {
	in.Title = strings.TrimSpace(in.Title)
	in.Slug = strings.TrimSpace(in.Slug)
	if in.Slug == "" {
		in.Slug = slug.Make(in.Title)
	}
	in.ShortDescription = trimmedOrNil(in.ShortDescription)
	in.GithubURL = trimmedOrNil(in.GithubURL)
	if in.Visibility == "" {
		in.Visibility = model.VisibilityPrivate
	}
	in.Badges = model.NormalizeBadges(in.Badges)
	return in
}

func (in ProjectInsertInput) ToInsert() model.ProjectInsert {
	return model.ProjectInsert{
		Title:            in.Title,
		Slug:             in.Slug,
		ShortDescription: in.ShortDescription,
		Description:      in.Description,
		GithubURL:        in.GithubURL,
		Visibility:       in.Visibility,
		Badges:           in.Badges,
	}
}

// ProjectUpdateInput is the PATCH body. Absent fields stay untouched.
type ProjectUpdateInput struct {
	Title            *string           `json:"title,omitempty" validate:"omitnil,min=1,max=200"`
	Slug             *string           `json:"slug,omitempty" validate:"omitnil,slug,max=200"`
	ShortDescription *string           `json:"shortDescription,omitempty" validate:"omitnil,max=300"`
	Description      *string           `json:"description,omitempty" validate:"omitnil,html_max=2000"`
	GithubURL        *string           `json:"githubUrl,omitempty" validate:"omitnil,optional_url"`
	Visibility       *model.Visibility `json:"visibility,omitempty" validate:"omitnil,visibility"`
	Badges           *[]string         `json:"badges,omitempty" validate:"omitnil,badges"`
}

func (in ProjectUpdateInput) Normalize() ProjectUpdateInput {
	in.Title = trimmed(in.Title)
	in.Slug = trimmed(in.Slug)
	in.ShortDescription = trimmed(in.ShortDescription)
	in.GithubURL = trimmed(in.GithubURL)
	if in.Badges != nil {
		b := model.NormalizeBadges(*in.Badges)
		in.Badges = &b
	}
	return in
}

func (in ProjectUpdateInput) ToPatch() model.ProjectPatch {
	return model.ProjectPatch{
		Title:            in.Title,
		Slug:             in.Slug,
		ShortDescription: in.ShortDescription,
		Description:      in.Description,
		GithubURL:        in.GithubURL,
		Visibility:       in.Visibility,
		Badges:           in.Badges,
	}
}

type normalizer[T any] interface {
	Normalize() T
}

// Parse normalizes in and validates the result. The normalized value is
// returned in both cases so callers can echo it back.
func Parse[T normalizer[T]](in T) (T, *FieldErrors) {
	out := in.Normalize()
	if fe := Validate(out); fe != nil {
		return out, fe
	}
	return out, nil
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	return &t
}

func trimmedOrNil(s *string) *string {
	t := trimmed(s)
	if t == nil || *t == "" {
		return nil
	}
	return t
}
