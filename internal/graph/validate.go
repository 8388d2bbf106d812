package graph

import (
	"fmt"
	"math"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"socialgraph/internal/physics"
)

var (
	aliasPattern   = regexp.MustCompile(`^\w+$`)
	nonWordPattern = regexp.MustCompile(`\W`)

	validateOnce sync.Once
	validate     *validator.Validate
)

func documentValidator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		must(v.RegisterValidation("license", func(fl validator.FieldLevel) bool {
			_, ok := LookupLicense(fl.Field().String())
			return ok
		}))
		must(v.RegisterValidation("alias", func(fl validator.FieldLevel) bool {
			return aliasPattern.MatchString(fl.Field().String())
		}))
		must(v.RegisterValidation("kind", func(fl validator.FieldLevel) bool {
			_, err := physics.ParseKind(fl.Field().String())
			return err == nil
		}))
		must(v.RegisterValidation("rgbtriple", func(fl validator.FieldLevel) bool {
			return IsRGB(fl.Field().String())
		}))
		validate = v
	})
	return validate
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

// Validate checks d against the document rules and returns a
// *ValidationError describing every violation, or nil.
func (d *Document) Validate() error {
	var problems []string

	if err := documentValidator().Struct(d); err != nil {
		problems = append(problems, fieldProblems(err)...)
	}

	seen := make(map[string]int, len(d.Vertices))
	for i, v := range d.Vertices {
		if v == nil {
			problems = append(problems, fmt.Sprintf("vertices[%d]: null vertex", i))
			continue
		}
		if first, dup := seen[v.ID]; dup && v.ID != "" {
			problems = append(problems, fmt.Sprintf("vertices[%d].id: duplicate of vertices[%d] (%s)", i, first, v.ID))
		} else {
			seen[v.ID] = i
		}
		if p := v.Position; p != nil && !finite(p.X, p.Y) {
			problems = append(problems, fmt.Sprintf("vertices[%d].position: coordinates must be finite", i))
		}
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

func finite(vals ...float64) bool {
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func fieldProblems(err error) []string {
	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []string{err.Error()}
	}
	problems := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		problems = append(problems, formatFieldError(fe))
	}
	return problems
}

// formatFieldError turns a validator field error into a path-prefixed message.
func formatFieldError(fe validator.FieldError) string {
	path := fe.Namespace()
	if i := strings.IndexByte(path, '.'); i >= 0 {
		path = path[i+1:]
	}
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s: is required", path)
	case "max":
		return fmt.Sprintf("%s: must be at most %s characters", path, fe.Param())
	case "gte":
		return fmt.Sprintf("%s: must be at least %s", path, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s: must be one of: %s", path, fe.Param())
	case "license":
		return fmt.Sprintf("%s: unknown license %q", path, fe.Value())
	case "alias":
		return fmt.Sprintf("%s: %q must contain only letters, digits and underscores", path, fe.Value())
	case "kind":
		return fmt.Sprintf("%s: unknown vertex type %q", path, fe.Value())
	case "rgbtriple":
		return fmt.Sprintf("%s: %q is not an \"R,G,B\" colour", path, fe.Value())
	default:
		return fmt.Sprintf("%s: failed %s", path, fe.Tag())
	}
}

// IsRGB reports whether s is an "R,G,B" triple with components in 0..255.
func IsRGB(s string) bool {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return false
	}
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || n < 0 || n > 255 {
			return false
		}
	}
	return true
}

// SanitizeAlias strips every non-word character from s. An empty result
// becomes DefaultAlias.
func SanitizeAlias(s string) string {
	s = nonWordPattern.ReplaceAllString(s, "")
	if s == "" {
		return DefaultAlias
	}
	return s
}
