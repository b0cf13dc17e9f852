package query

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/cast"

	"tenantadmin/internal/domain"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 12
	MaxPageSize     = 1000
	DefaultSortKey  = "created_on"
)

// Direction is the sort order of a FilterSpec.
type Direction string

const (
	Ascending  Direction = "ascending"
	Descending Direction = "descending"
)

// Equal matches documents whose Field equals Value.
type Equal struct {
	Field string `json:"field"`
	Value any    `json:"value"`
}

// Regex matches documents whose Field contains Pattern, case-insensitively.
type Regex struct {
	Field   string `json:"field"`
	Pattern string `json:"value"`
}

// Between matches documents whose Field lies in [Low, High].
type Between struct {
	Field string `json:"field"`
	Low   any    `json:"low"`
	High  any    `json:"high"`
}

type Sort struct {
	Field string    `json:"field"`
	Order Direction `json:"order"`
}

// FilterSpec describes pagination, filtering and sort for a list request.
// Equal, Regex and Between are never nil after ParseFilter or Normalize.
type FilterSpec struct {
	Page     int       `json:"page"`
	PageSize int       `json:"page_size"`
	Equal    []Equal   `json:"equal"`
	Regex    []Regex   `json:"regex"`
	Between  []Between `json:"between"`
	Sort     Sort      `json:"sort"`
}

// DefaultFilter is the filter used by plain GET list endpoints.
func DefaultFilter(page, pageSize int) FilterSpec {
	return FilterSpec{Page: page, PageSize: pageSize}.Normalize()
}

// Normalize fills defaults, caps PageSize at MaxPageSize and replaces absent collections with empty ones.
func (f FilterSpec) Normalize() FilterSpec {
	if f.Page < 1 {
		f.Page = DefaultPage
	}
	if f.PageSize < 1 {
		f.PageSize = DefaultPageSize
	}
	if f.PageSize > MaxPageSize {
		f.PageSize = MaxPageSize
	}
	if f.Equal == nil {
		f.Equal = []Equal{}
	}
	if f.Regex == nil {
		f.Regex = []Regex{}
	}
	if f.Between == nil {
		f.Between = []Between{}
	}
	if strings.TrimSpace(f.Sort.Field) == "" {
		f.Sort = Sort{Field: DefaultSortKey, Order: Descending}
	}
	if f.Sort.Order == "" {
		f.Sort.Order = Descending
	}
	return f
}

// ParseFilter validates an untyped request payload into a FilterSpec.
// Pagination fields never fail: bad values fall back to defaults.
// Unknown keys and operators are ignored.
func ParseFilter(payload map[string]any) (FilterSpec, error) {
	spec := FilterSpec{
		Page:     coercePositive(payload["page"], DefaultPage),
		PageSize: coercePositive(payload["page_size"], DefaultPageSize),
	}

	var err error
	if spec.Equal, err = parseEqual(payload["equal"]); err != nil {
		return FilterSpec{}, err
	}
	if spec.Regex, err = parseRegex(payload["regex"]); err != nil {
		return FilterSpec{}, err
	}
	if spec.Between, err = parseBetween(payload["between"]); err != nil {
		return FilterSpec{}, err
	}
	if spec.Sort, err = parseSort(payload["sort"]); err != nil {
		return FilterSpec{}, err
	}
	return spec.Normalize(), nil
}

func coercePositive(v any, def int) int {
	if v == nil {
		return def
	}
	switch x := v.(type) {
	case string:
		v = strings.TrimSpace(x)
	case json.Number:
		v = x.String()
	}
	n, err := cast.ToIntE(v)
	if err != nil || n < 1 {
		// "3.0" and friends are numeric-looking too.
		f, ferr := cast.ToFloat64E(v)
		if ferr != nil || math.IsNaN(f) || f < 1 {
			return def
		}
		if f >= math.MaxInt {
			return math.MaxInt
		}
		return int(f)
	}
	return n
}

func entries(v any, op string) ([]map[string]any, error) {
	if v == nil {
		return nil, nil
	}
	list, ok := v.([]any)
	if !ok {
		return nil, domain.ValidationError{Field: op, Msg: "must be a list"}
	}
	out := make([]map[string]any, 0, len(list))
	for i, item := range list {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, domain.ValidationError{Field: fmt.Sprintf("%s[%d]", op, i), Msg: "must be an object"}
		}
		out = append(out, m)
	}
	return out, nil
}

func fieldName(m map[string]any, op string, i int) (string, error) {
	name, _ := m["field"].(string)
	name = strings.TrimSpace(name)
	if name == "" {
		return "", domain.ValidationError{Field: fmt.Sprintf("%s[%d].field", op, i), Msg: "field is required"}
	}
	return name, nil
}

func parseEqual(v any) ([]Equal, error) {
	list, err := entries(v, "equal")
	if err != nil {
		return nil, err
	}
	out := make([]Equal, 0, len(list))
	for i, m := range list {
		name, err := fieldName(m, "equal", i)
		if err != nil {
			return nil, err
		}
		value, ok := scalar(m["value"])
		if !ok {
			return nil, domain.ValidationError{Field: fmt.Sprintf("equal[%d].value", i), Msg: "value must be a string, number, boolean or null"}
		}
		out = append(out, Equal{Field: name, Value: value})
	}
	return out, nil
}

// goOnlySyntax matches constructs Go accepts but ICU (MySQL) and PCRE (MongoDB) reject:
// (?P<name>) groups, the ungreedy U flag and \C.
var goOnlySyntax = regexp.MustCompile(`\(\?P<|\(\?[a-zA-Z-]*U|\\C`)

func parseRegex(v any) ([]Regex, error) {
	list, err := entries(v, "regex")
	if err != nil {
		return nil, err
	}
	out := make([]Regex, 0, len(list))
	for i, m := range list {
		name, err := fieldName(m, "regex", i)
		if err != nil {
			return nil, err
		}
		pattern, ok := m["value"].(string)
		if !ok {
			return nil, domain.ValidationError{Field: fmt.Sprintf("regex[%d].value", i), Msg: "pattern must be a string"}
		}
		if _, err := regexp.Compile("(?i)" + pattern); err != nil {
			return nil, domain.ValidationError{Field: fmt.Sprintf("regex[%d].value", i), Msg: "pattern is not a valid regular expression", Err: err}
		}
		if goOnlySyntax.MatchString(pattern) {
			return nil, domain.ValidationError{Field: fmt.Sprintf("regex[%d].value", i), Msg: "pattern uses syntax the store does not support"}
		}
		out = append(out, Regex{Field: name, Pattern: pattern})
	}
	return out, nil
}

func parseBetween(v any) ([]Between, error) {
	list, err := entries(v, "between")
	if err != nil {
		return nil, err
	}
	out := make([]Between, 0, len(list))
	for i, m := range list {
		name, err := fieldName(m, "between", i)
		if err != nil {
			return nil, err
		}
		low, hasLow := m["low"]
		high, hasHigh := m["high"]
		if !hasLow || low == nil {
			return nil, domain.ValidationError{Field: fmt.Sprintf("between[%d].low", i), Msg: "lower bound is required"}
		}
		if !hasHigh || high == nil {
			return nil, domain.ValidationError{Field: fmt.Sprintf("between[%d].high", i), Msg: "upper bound is required"}
		}
		low, high, ok := comparableBounds(low, high)
		if !ok {
			return nil, domain.ValidationError{Field: fmt.Sprintf("between[%d]", i), Msg: "bounds must be of the same comparable type"}
		}
		out = append(out, Between{Field: name, Low: low, High: high})
	}
	return out, nil
}

func parseSort(v any) (Sort, error) {
	if v == nil {
		return Sort{}, nil
	}
	m, ok := v.(map[string]any)
	if !ok {
		return Sort{}, domain.ValidationError{Field: "sort", Msg: "must be an object"}
	}
	field, _ := m["field"].(string)
	s := Sort{Field: strings.TrimSpace(field)}

	order, _ := m["order"].(string)
	switch strings.ToLower(strings.TrimSpace(order)) {
	case "", "descending", "desc":
		s.Order = Descending
	case "ascending", "asc":
		s.Order = Ascending
	default:
		return Sort{}, domain.ValidationError{Field: "sort.order", Msg: "order must be ascending or descending"}
	}
	return s, nil
}

// scalar normalizes JSON scalars; json.Number becomes float64.
func scalar(v any) (any, bool) {
	switch x := v.(type) {
	case nil, string, bool, float64, float32, int, int32, int64:
		return x, true
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return nil, false
		}
		return f, true
	case time.Time:
		return x, true
	default:
		return nil, false
	}
}

// comparableBounds returns the bounds as two values of the same kind:
// float64, time.Time (both RFC 3339 strings) or string.
func comparableBounds(low, high any) (any, any, bool) {
	l, okL := scalar(low)
	h, okH := scalar(high)
	if !okL || !okH {
		return nil, nil, false
	}
	switch lv := l.(type) {
	case string:
		hv, ok := h.(string)
		if !ok {
			return nil, nil, false
		}
		lt, errL := time.Parse(time.RFC3339Nano, lv)
		ht, errH := time.Parse(time.RFC3339Nano, hv)
		if errL == nil && errH == nil {
			return lt.UTC(), ht.UTC(), true
		}
		return lv, hv, true
	case bool:
		return nil, nil, false
	case time.Time:
		ht, ok := h.(time.Time)
		return lv, ht, ok
	default:
		lf, errL := cast.ToFloat64E(l)
		if _, isStr := h.(string); isStr {
			return nil, nil, false
		}
		if _, isBool := h.(bool); isBool {
			return nil, nil, false
		}
		hf, errH := cast.ToFloat64E(h)
		if errL != nil || errH != nil {
			return nil, nil, false
		}
		return lf, hf, true
	}
}

// ScopedTo drops every Equal entry on field and appends exactly one equal(field, value).
func (f FilterSpec) ScopedTo(field string, value any) FilterSpec {
	equal := make([]Equal, 0, len(f.Equal)+1)
	for _, e := range f.Equal {
		if e.Field == field {
			continue
		}
		equal = append(equal, e)
	}
	f.Equal = append(equal, Equal{Field: field, Value: value})
	return f
}
