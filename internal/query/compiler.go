package query

import (
	"fmt"
	"math"

	"tenantadmin/internal/domain"
)

// Scope carries the mandatory constraints granted to a request.
// The zero Scope grants nothing: it compiles neither tenant-owned nor global collections.
type Scope struct {
	TenantID string
	Global   bool
}

// TenantScope restricts queries to one tenant.
func TenantScope(tenantID string) Scope {
	return Scope{TenantID: tenantID}
}

// GlobalScope allows queries on collections that are not tenant-owned.
func GlobalScope() Scope {
	return Scope{Global: true}
}

// Compile turns a FilterSpec into a QueryPlan for collection c under scope.
// It has no side effects; the same input always yields an equal plan.
func Compile(c Collection, spec FilterSpec, scope Scope) (QueryPlan, error) {
	spec = spec.Normalize()

	if c.TenantOwned() {
		if scope.TenantID == "" {
			return QueryPlan{}, domain.AuthorizationError{Msg: fmt.Sprintf("%s requires a tenant scope", c.Name)}
		}
		spec = spec.ScopedTo(c.TenantField, scope.TenantID)
	} else if !scope.Global {
		return QueryPlan{}, domain.AuthorizationError{Msg: fmt.Sprintf("%s requires a global scope", c.Name)}
	}

	if err := checkFields(c, spec); err != nil {
		return QueryPlan{}, err
	}

	sortKeys := []SortKey{{Field: spec.Sort.Field, Order: spec.Sort.Order}}
	if c.Key != "" && spec.Sort.Field != c.Key {
		sortKeys = append(sortKeys, SortKey{Field: c.Key, Order: spec.Sort.Order})
	}

	pageSize := int64(spec.PageSize)
	return QueryPlan{
		Stages: []Stage{
			{Kind: StageMatchEqual, Equal: append([]Equal{}, spec.Equal...)},
			{Kind: StageMatchRegex, Regex: append([]Regex{}, spec.Regex...)},
			{Kind: StageMatchRange, Range: append([]Between{}, spec.Between...)},
			{Kind: StageSort, Sort: sortKeys},
		},
		Items: []Stage{
			{Kind: StageSkip, N: skipOf(spec.Page, pageSize)},
			{Kind: StageLimit, N: pageSize},
		},
		Total: []Stage{
			{Kind: StageCount},
		},
		Page:     spec.Page,
		PageSize: spec.PageSize,
	}, nil
}

// skipOf saturates at MaxInt64 instead of overflowing; such a window is past any page.
func skipOf(page int, size int64) int64 {
	before := int64(page - 1)
	if before > 0 && before > math.MaxInt64/size {
		return math.MaxInt64
	}
	return before * size
}

func checkFields(c Collection, spec FilterSpec) error {
	for i, e := range spec.Equal {
		if !c.Has(e.Field) {
			return unknownField(c, fmt.Sprintf("equal[%d].field", i), e.Field)
		}
	}
	for i, r := range spec.Regex {
		if !c.Has(r.Field) {
			return unknownField(c, fmt.Sprintf("regex[%d].field", i), r.Field)
		}
	}
	for i, b := range spec.Between {
		if !c.Has(b.Field) {
			return unknownField(c, fmt.Sprintf("between[%d].field", i), b.Field)
		}
	}
	if !c.Has(spec.Sort.Field) {
		return unknownField(c, "sort.field", spec.Sort.Field)
	}
	return nil
}

func unknownField(c Collection, tag, field string) error {
	return domain.ValidationError{Field: tag, Msg: fmt.Sprintf("%q is not a field of %s", field, c.Name)}
}
