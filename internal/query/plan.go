package query

// StageKind enumerates the closed set of plan stages.
type StageKind int

const (
	StageMatchEqual StageKind = iota + 1
	StageMatchRegex
	StageMatchRange
	StageSort
	StageSkip
	StageLimit
	StageCount
)

func (k StageKind) String() string {
	switch k {
	case StageMatchEqual:
		return "match_equal"
	case StageMatchRegex:
		return "match_regex"
	case StageMatchRange:
		return "match_range"
	case StageSort:
		return "sort"
	case StageSkip:
		return "skip"
	case StageLimit:
		return "limit"
	case StageCount:
		return "count"
	default:
		return "unknown"
	}
}

// SortKey is one key of a sort stage.
type SortKey struct {
	Field string
	Order Direction
}

// Stage is a single step of a QueryPlan. Only the fields relevant to Kind are set.
type Stage struct {
	Kind  StageKind
	Equal []Equal
	Regex []Regex
	Range []Between
	Sort  []SortKey
	N     int64
}

// QueryPlan is the compiled, storage-agnostic form of a FilterSpec.
//
// Stages run first; the filtered, sorted set then feeds both facets.
// Items yields the page; Total yields the count of the whole filtered set.
type QueryPlan struct {
	Stages   []Stage
	Items    []Stage
	Total    []Stage
	Page     int
	PageSize int
}

// Filters returns the match stages of the plan, in order.
func (p QueryPlan) Filters() []Stage {
	out := make([]Stage, 0, 3)
	for _, s := range p.Stages {
		switch s.Kind {
		case StageMatchEqual, StageMatchRegex, StageMatchRange:
			out = append(out, s)
		}
	}
	return out
}

// SortKeys returns the keys of the plan's sort stage, or nil.
func (p QueryPlan) SortKeys() []SortKey {
	for _, s := range p.Stages {
		if s.Kind == StageSort {
			return s.Sort
		}
	}
	return nil
}

// Window returns the skip and limit of the items facet.
func (p QueryPlan) Window() (skip, limit int64) {
	for _, s := range p.Items {
		switch s.Kind {
		case StageSkip:
			skip = s.N
		case StageLimit:
			limit = s.N
		}
	}
	return skip, limit
}
