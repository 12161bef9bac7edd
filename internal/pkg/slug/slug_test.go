package slug

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMake(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "simple title", in: "My Project", want: "my-project"},
		{name: "accents folded", in: "Café Crème", want: "cafe-creme"},
		{name: "punctuation collapsed", in: "Hello,   World!!", want: "hello-world"},
		{name: "leading and trailing separators", in: "  --Go!--  ", want: "go"},
		{name: "repeated dashes", in: "a---b", want: "a-b"},
		{name: "underscores become dashes", in: "snake_case_name", want: "snake-case-name"},
		{name: "digits kept", in: "Top 10 Tips", want: "top-10-tips"},
		{name: "only symbols", in: "!!!", want: ""},
		{name: "empty", in: "", want: ""},
		{name: "already a slug", in: "already-slugged", want: "already-slugged"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Make(tt.in))
		})
	}
}

func TestMake_Idempotent(t *testing.T) {
	inputs := []string{
		"My Project",
		"Ünïcödé Tïtle",
		"--a--b--",
		"x_y z.w",
		"  ",
		"日本語 title",
		"ALL CAPS 123",
	}
	for _, in := range inputs {
		once := Make(in)
		assert.Equal(t, once, Make(once), "input %q", in)
		if once != "" {
			assert.True(t, Valid(once), "input %q produced %q", in, once)
		}
	}
}

func TestSanitize(t *testing.T) {
	assert.Equal(t, "myproject-", Sanitize("My Project-"))
	assert.Equal(t, "abc--1", Sanitize("a_b c--1"))
}

func TestValid(t *testing.T) {
	assert.True(t, Valid("abc-123"))
	assert.False(t, Valid("Abc"))
	assert.False(t, Valid("a b"))
	assert.False(t, Valid(""))
}
