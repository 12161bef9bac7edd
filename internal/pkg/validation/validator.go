package validation

import (
	"errors"
	"html"
	"net/url"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/devfolio-io/devfolio/internal/modules/model"
	"github.com/devfolio-io/devfolio/internal/pkg/slug"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	usernameRe        = regexp.MustCompile(`^[A-Za-z0-9_]{3,32}$`)
	displayUsernameRe = regexp.MustCompile(`^[A-Za-z0-9_ ]{2,32}$`)
	htmlTagRe         = regexp.MustCompile(`<[^>]*>`)
)

const (
	maxBadgeLen = 64
	maxBadges   = 32
)

var validate = newValidate()

func newValidate() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := Register(v); err != nil {
		panic(err)
	}
	return v
}

// Register installs the custom rules and JSON field naming on v.
func Register(v *validator.Validate) error {
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return f.Name
	})

	rules := map[string]validator.Func{
		"username":         isUsername,
		"display_username": isDisplayUsername,
		"person_name":      isPersonName,
		"slug":             isSlug,
		"visibility":       isVisibility,
		"html_max":         isHTMLMax,
		"optional_url":     isOptionalURL,
		"badges":           isBadgeList,
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return err
		}
	}
	return nil
}

// RegisterGinBinding shares the custom rules with gin's binding validator.
func RegisterGinBinding() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("gin binding engine is not validator/v10")
	}
	return Register(v)
}

func isUsername(fl validator.FieldLevel) bool {
	return usernameRe.MatchString(fl.Field().String())
}

func isDisplayUsername(fl validator.FieldLevel) bool {
	return displayUsernameRe.MatchString(fl.Field().String())
}

func isPersonName(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	n := utf8.RuneCountInString(s)
	if n < 2 || n > 64 {
		return false
	}
	hasLetter := false
	for _, r := range s {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.Is(unicode.Mn, r), r == ' ', r == '\'', r == '-', r == '.':
		default:
			return false
		}
	}
	return hasLetter
}

func isSlug(fl validator.FieldLevel) bool {
	return slug.Valid(fl.Field().String())
}

func isVisibility(fl validator.FieldLevel) bool {
	return model.Visibility(fl.Field().String()).Valid()
}

// isHTMLMax limits the visible text of an HTML fragment.
func isHTMLMax(fl validator.FieldLevel) bool {
	limit, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	return TextLength(fl.Field().String()) <= limit
}

func isOptionalURL(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if s == "" {
		return true
	}
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func isBadgeList(fl validator.FieldLevel) bool {
	f := fl.Field()
	if f.Kind() != reflect.Slice {
		return false
	}
	if f.Len() > maxBadges {
		return false
	}
	for i := 0; i < f.Len(); i++ {
		s := f.Index(i).String()
		if s == "" || utf8.RuneCountInString(s) > maxBadgeLen {
			return false
		}
	}
	return true
}

// TextLength counts the characters a reader sees once tags are stripped.
func TextLength(fragment string) int {
	text := html.UnescapeString(htmlTagRe.ReplaceAllString(fragment, ""))
	return utf8.RuneCountInString(text)
}

// Validate checks v against its validate tags. It returns nil when v is valid.
func Validate(v any) *FieldErrors {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	fe := &FieldErrors{}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		fe.Add("_", "invalid input")
		return fe
	}
	for _, e := range verrs {
		fe.Add(rootField(e.Field()), message(e))
	}
	return fe
}

// rootField turns "badges[2]" into "badges".
func rootField(f string) string {
	if i := strings.IndexByte(f, '['); i >= 0 {
		return f[:i]
	}
	return f
}

func message(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		if e.Param() == "1" {
			return "is required"
		}
		return "must be at least " + e.Param() + " characters"
	case "max":
		return "must be at most " + e.Param() + " characters"
	case "username":
		return "must be 3-32 letters, numbers or underscores"
	case "display_username":
		return "must be 2-32 letters, numbers, underscores or spaces"
	case "person_name":
		return "must be 2-64 letters"
	case "slug":
		return "may only contain lowercase letters, numbers and dashes"
	case "visibility":
		return "must be one of PRIVATE, PUBLIC, UNLISTED"
	case "html_max":
		return "must be at most " + e.Param() + " characters"
	case "optional_url":
		return "must be a valid http(s) URL"
	case "badges":
		return "must be a list of non-empty badge identifiers"
	}
	return "is invalid"
}
