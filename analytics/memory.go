package analytics

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Record is the slice of a property the analytics rules look at.
type Record struct {
	ListedOn  string
	CreatedAt time.Time
	Agent     string
	Subtype   string
}

// MemoryStore evaluates Store queries in process using EffectiveDate. It is
// the reference the Mongo pipelines are checked against.
type MemoryStore struct {
	mu      sync.RWMutex
	records []Record
	err     error
}

func NewMemoryStore(records ...Record) *MemoryStore {
	return &MemoryStore{records: append([]Record(nil), records...)}
}

func (m *MemoryStore) Add(records ...Record) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, records...)
}

// FailWith makes every subsequent query return err. Pass nil to recover.
func (m *MemoryStore) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

func (m *MemoryStore) matching(q Query) ([]Record, []time.Time, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.err != nil {
		return nil, nil, m.err
	}
	rng := Range{Start: q.Start, End: q.End}
	var (
		recs  []Record
		dates []time.Time
	)
	for _, r := range m.records {
		if q.Agent != "" && r.Agent != q.Agent {
			continue
		}
		d := EffectiveDate(r.ListedOn, r.CreatedAt)
		if !rng.Contains(d) {
			continue
		}
		recs = append(recs, r)
		dates = append(dates, d)
	}
	return recs, dates, nil
}

func (m *MemoryStore) Count(_ context.Context, q Query) (int64, error) {
	_, dates, err := m.matching(q)
	return int64(len(dates)), err
}

func (m *MemoryStore) CountByWeekday(_ context.Context, q Query) (map[int]int64, error) {
	_, dates, err := m.matching(q)
	if err != nil {
		return nil, err
	}
	counts := make(map[int]int64)
	for _, d := range dates {
		counts[ISOWeekday(d)]++
	}
	return counts, nil
}

func (m *MemoryStore) CountByMonthSegment(_ context.Context, q Query) (map[int]int64, error) {
	_, dates, err := m.matching(q)
	if err != nil {
		return nil, err
	}
	counts := make(map[int]int64)
	for _, d := range dates {
		counts[SegmentIndex(d)]++
	}
	return counts, nil
}

func (m *MemoryStore) AgentSubtypes(_ context.Context, q Query) ([]AgentSubtypes, error) {
	recs, _, err := m.matching(q)
	if err != nil {
		return nil, err
	}
	byAgent := make(map[string]map[string]int64)
	for _, r := range recs {
		if r.Agent == "" || r.Subtype == "" {
			continue
		}
		if byAgent[r.Agent] == nil {
			byAgent[r.Agent] = make(map[string]int64)
		}
		byAgent[r.Agent][r.Subtype]++
	}

	out := make([]AgentSubtypes, 0, len(byAgent))
	for agent, subtypes := range byAgent {
		row := AgentSubtypes{Agent: agent}
		for subtype, n := range subtypes {
			row.Subtypes = append(row.Subtypes, SubtypeCount{Subtype: subtype, Count: n})
			row.Total += n
		}
		sort.Slice(row.Subtypes, func(i, j int) bool { return row.Subtypes[i].Subtype < row.Subtypes[j].Subtype })
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Total != out[j].Total {
			return out[i].Total > out[j].Total
		}
		return out[i].Agent < out[j].Agent
	})
	return out, nil
}
