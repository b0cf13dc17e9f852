package query

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cast"
)

// MemoryExecutor runs plans against in-process documents. It backs the memory activity store
// used for local runs, and tests.
type MemoryExecutor struct {
	mu   sync.RWMutex
	docs map[string][]MapRecord
}

func NewMemoryExecutor() *MemoryExecutor {
	return &MemoryExecutor{docs: map[string][]MapRecord{}}
}

// Insert appends documents to a collection.
func (m *MemoryExecutor) Insert(collection string, docs ...map[string]any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range docs {
		cp := make(MapRecord, len(d))
		for k, v := range d {
			cp[k] = v
		}
		m.docs[collection] = append(m.docs[collection], cp)
	}
}

// Find returns the first document of collection that pred accepts.
func (m *MemoryExecutor) Find(collection string, pred func(MapRecord) bool) (MapRecord, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, d := range m.docs[collection] {
		if pred(d) {
			return d, true
		}
	}
	return nil, false
}

func (m *MemoryExecutor) Execute(ctx context.Context, collection string, plan QueryPlan) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	m.mu.RLock()
	docs := append([]MapRecord(nil), m.docs[collection]...)
	m.mu.RUnlock()

	for _, st := range plan.Stages {
		var err error
		switch st.Kind {
		case StageMatchEqual:
			docs = keep(docs, func(d MapRecord) bool { return matchEqual(d, st.Equal) })
		case StageMatchRegex:
			docs, err = keepRegex(docs, st.Regex)
		case StageMatchRange:
			docs = keep(docs, func(d MapRecord) bool { return matchRange(d, st.Range) })
		case StageSort:
			sortDocs(docs, st.Sort)
		default:
			err = fmt.Errorf("memory: unexpected stage %s", st.Kind)
		}
		if err != nil {
			return Result{}, err
		}
	}

	total := int64(len(docs))
	for _, st := range plan.Total {
		if st.Kind != StageCount {
			return Result{}, fmt.Errorf("memory: unexpected total stage %s", st.Kind)
		}
	}

	page := docs
	for _, st := range plan.Items {
		switch st.Kind {
		case StageSkip:
			if st.N >= int64(len(page)) {
				page = nil
			} else {
				page = page[st.N:]
			}
		case StageLimit:
			if st.N < int64(len(page)) {
				page = page[:st.N]
			}
		default:
			return Result{}, fmt.Errorf("memory: unexpected items stage %s", st.Kind)
		}
	}

	records := make([]Record, 0, len(page))
	for _, d := range page {
		records = append(records, d)
	}
	return Result{Records: records, Total: total}, nil
}

func keep(docs []MapRecord, pred func(MapRecord) bool) []MapRecord {
	out := docs[:0:0]
	for _, d := range docs {
		if pred(d) {
			out = append(out, d)
		}
	}
	return out
}

func keepRegex(docs []MapRecord, conds []Regex) ([]MapRecord, error) {
	res := make([]*regexp.Regexp, len(conds))
	for i, c := range conds {
		re, err := regexp.Compile("(?i)" + c.Pattern)
		if err != nil {
			return nil, err
		}
		res[i] = re
	}
	return keep(docs, func(d MapRecord) bool {
		for i, c := range conds {
			v, ok := d[c.Field]
			if !ok || v == nil {
				return false
			}
			if !res[i].MatchString(cast.ToString(v)) {
				return false
			}
		}
		return true
	}), nil
}

func matchEqual(d MapRecord, conds []Equal) bool {
	for _, c := range conds {
		v := d[c.Field]
		if c.Value == nil || v == nil {
			if c.Value != v {
				return false
			}
			continue
		}
		cmp, ok := compare(v, c.Value)
		if !ok || cmp != 0 {
			return false
		}
	}
	return true
}

func matchRange(d MapRecord, conds []Between) bool {
	for _, c := range conds {
		v, ok := d[c.Field]
		if !ok || v == nil {
			return false
		}
		lo, okLo := compare(v, c.Low)
		hi, okHi := compare(v, c.High)
		if !okLo || !okHi || lo < 0 || hi > 0 {
			return false
		}
	}
	return true
}

func sortDocs(docs []MapRecord, keys []SortKey) {
	sort.SliceStable(docs, func(i, j int) bool {
		for _, k := range keys {
			c := order(docs[i][k.Field], docs[j][k.Field])
			if c == 0 {
				continue
			}
			if k.Order == Ascending {
				return c < 0
			}
			return c > 0
		}
		return false
	})
}

// order compares for sorting; nil sorts first.
func order(a, b any) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	if c, ok := compare(a, b); ok {
		return c
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

// compare orders two values of the same kind: times, numbers, strings or booleans.
func compare(a, b any) (int, bool) {
	if ta, ok := a.(time.Time); ok {
		tb, ok := b.(time.Time)
		if !ok {
			return 0, false
		}
		return ta.Compare(tb), true
	}
	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		if !ok {
			return 0, false
		}
		return strings.Compare(av, bv), true
	case bool:
		bv, ok := b.(bool)
		if !ok {
			return 0, false
		}
		switch {
		case av == bv:
			return 0, true
		case !av:
			return -1, true
		default:
			return 1, true
		}
	}
	af, errA := cast.ToFloat64E(a)
	if _, isStr := b.(string); isStr {
		return 0, false
	}
	bf, errB := cast.ToFloat64E(b)
	if errA != nil || errB != nil {
		return 0, false
	}
	switch {
	case af < bf:
		return -1, true
	case af > bf:
		return 1, true
	default:
		return 0, true
	}
}
