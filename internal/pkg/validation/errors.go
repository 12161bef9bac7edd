package validation

import (
	"fmt"
	"strings"
)

// FieldErrors collects messages per JSON field, remembering the order in which
// fields first failed.
type FieldErrors struct {
	Fields map[string][]string `json:"fields"`
	order  []string
}

func (e *FieldErrors) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = map[string][]string{}
	}
	if _, ok := e.Fields[field]; !ok {
		e.order = append(e.order, field)
	}
	e.Fields[field] = append(e.Fields[field], msg)
}

func (e *FieldErrors) Has(field string) bool {
	_, ok := e.Fields[field]
	return ok
}

// Order returns the failing fields in declaration order.
func (e *FieldErrors) Order() []string {
	return append([]string(nil), e.order...)
}

func (e *FieldErrors) Error() string {
	parts := make([]string, 0, len(e.order))
	for _, f := range e.order {
		parts = append(parts, fmt.Sprintf("%s: %s", f, strings.Join(e.Fields[f], ", ")))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *FieldErrors) empty() bool { return e == nil || len(e.order) == 0 }
