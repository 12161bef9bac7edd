package validation

import (
	"strings"
	"testing"

	"github.com/devfolio-io/devfolio/internal/modules/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func validSignUp() SignUpInput {
	return SignUpInput{
		Email:           "ada@example.com",
		Name:            "Ada Lovelace",
		Password:        "validpw123",
		Username:        "ada_l",
		DisplayUsername: "Ada L",
	}
}

func TestParse_SignUp(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*SignUpInput)
		wantCode string
	}{
		{name: "valid input", mutate: func(*SignUpInput) {}},
		{name: "numeric name", mutate: func(in *SignUpInput) { in.Name = "123" }, wantCode: CodeInvalidName},
		{name: "short username", mutate: func(in *SignUpInput) { in.Username = "1" }, wantCode: CodeInvalidUsername},
		{name: "username with dash", mutate: func(in *SignUpInput) { in.Username = "ada-l" }, wantCode: CodeInvalidUsername},
		{name: "bad email", mutate: func(in *SignUpInput) { in.Email = "not-an-email" }, wantCode: CodeInvalidEmail},
		{name: "short password", mutate: func(in *SignUpInput) { in.Password = "short" }, wantCode: CodeInvalidPassword},
		{name: "long password", mutate: func(in *SignUpInput) { in.Password = strings.Repeat("x", 33) }, wantCode: CodeInvalidPassword},
		{name: "display username symbols", mutate: func(in *SignUpInput) { in.DisplayUsername = "Ada!" }, wantCode: CodeInvalidDisplayUsername},
		{
			name: "first failing field wins",
			mutate: func(in *SignUpInput) {
				in.Email = "bad"
				in.Username = "x"
			},
			wantCode: CodeInvalidEmail,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validSignUp()
			tt.mutate(&in)

			_, fe := Parse(in)
			if tt.wantCode == "" {
				assert.Nil(t, fe)
				return
			}
			require.NotNil(t, fe)
			code, ok := fe.FirstAuthCode()
			require.True(t, ok)
			assert.Equal(t, tt.wantCode, code)
		})
	}
}

func TestParse_SignUpTrimsUsername(t *testing.T) {
	in := validSignUp()
	in.Username = "  ada_l  "
	out, fe := Parse(in)
	assert.Nil(t, fe)
	assert.Equal(t, "ada_l", out.Username)
}

func TestParse_SignInUsername(t *testing.T) {
	_, fe := Parse(SignInUsernameInput{Username: "ab", Password: "validpw123"})
	require.NotNil(t, fe)
	code, _ := fe.FirstAuthCode()
	assert.Equal(t, CodeInvalidUsername, code)

	_, fe = Parse(SignInUsernameInput{Username: "alice", Password: "password"})
	assert.Nil(t, fe)

	_, fe = Parse(SignInUsernameInput{Username: "alice", Password: "pw"})
	require.NotNil(t, fe)
	code, _ = fe.FirstAuthCode()
	assert.Equal(t, CodeInvalidPassword, code)
}

func TestParse_ProjectInsert(t *testing.T) {
	out, fe := Parse(ProjectInsertInput{
		Title:  "  My Project ",
		Badges: []string{"go", "go", " redis "},
	})
	require.Nil(t, fe)
	assert.Equal(t, "My Project", out.Title)
	assert.Equal(t, "my-project", out.Slug)
	assert.Equal(t, model.VisibilityPrivate, out.Visibility)
	assert.Equal(t, []string{"go", "redis"}, out.Badges)

	_, fe = Parse(ProjectInsertInput{Title: ""})
	require.NotNil(t, fe)
	assert.True(t, fe.Has("title"))

	_, fe = Parse(ProjectInsertInput{Title: "x", Slug: "Not A Slug"})
	require.NotNil(t, fe)
	assert.True(t, fe.Has("slug"))

	_, fe = Parse(ProjectInsertInput{Title: "x", Visibility: "SECRET"})
	require.NotNil(t, fe)
	assert.True(t, fe.Has("visibility"))

	_, fe = Parse(ProjectInsertInput{Title: "x", GithubURL: strPtr("ftp://example.com")})
	require.NotNil(t, fe)
	assert.True(t, fe.Has("githubUrl"))

	out, fe = Parse(ProjectInsertInput{Title: "x", GithubURL: strPtr("  ")})
	require.Nil(t, fe)
	assert.Nil(t, out.GithubURL)
}

func TestParse_ProjectDescriptionLimit(t *testing.T) {
	ok := "<p>" + strings.Repeat("a", MaxDescriptionLength) + "</p>"
	_, fe := Parse(ProjectInsertInput{Title: "x", Description: &ok})
	assert.Nil(t, fe)

	tooLong := "<p>" + strings.Repeat("a", MaxDescriptionLength+1) + "</p>"
	_, fe = Parse(ProjectInsertInput{Title: "x", Description: &tooLong})
	require.NotNil(t, fe)
	assert.True(t, fe.Has("description"))
}

func TestParse_ProjectUpdate(t *testing.T) {
	_, fe := Parse(ProjectUpdateInput{})
	assert.Nil(t, fe)

	_, fe = Parse(ProjectUpdateInput{Title: strPtr("   ")})
	require.NotNil(t, fe)
	assert.True(t, fe.Has("title"))

	vis := model.Visibility("nope")
	_, fe = Parse(ProjectUpdateInput{Visibility: &vis})
	require.NotNil(t, fe)
	assert.True(t, fe.Has("visibility"))

	badges := []string{"a", "a", "b"}
	out, fe := Parse(ProjectUpdateInput{Badges: &badges})
	require.Nil(t, fe)
	assert.Equal(t, []string{"a", "b"}, *out.Badges)

	patch := out.ToPatch()
	assert.False(t, patch.HasCoreFields())
	assert.NotNil(t, patch.Badges)
}

func TestValidate_NonStructInput(t *testing.T) {
	assert.NotPanics(t, func() {
		fe := Validate("not a struct")
		require.NotNil(t, fe)
		assert.True(t, fe.Has("_"))
	})
}

func TestTextLength(t *testing.T) {
	assert.Equal(t, 5, TextLength("<p>hello</p>"))
	assert.Equal(t, 3, TextLength("a&amp;b"))
}

func TestFieldErrors_Error(t *testing.T) {
	fe := &FieldErrors{}
	fe.Add("title", "is required")
	fe.Add("slug", "is invalid")
	assert.Equal(t, []string{"title", "slug"}, fe.Order())
	assert.Contains(t, fe.Error(), "title: is required")
	_, ok := fe.FirstAuthCode()
	assert.False(t, ok)
}
