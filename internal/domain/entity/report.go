package entity

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// SearchResults groups matching records by entity plural.
type SearchResults struct {
	Query         string              `json:"query"`
	TotalResults  int                 `json:"total_results"`
	ResultsByType map[string][]Record `json:"results_by_type"`
}

// Search returns records of every type (or only plural, when set) whose
// string fields contain query, case-insensitively.
func (s *Service) Search(ctx context.Context, query, plural string) (*SearchResults, error) {
	results := &SearchResults{Query: query, ResultsByType: map[string][]Record{}}
	needle := strings.ToLower(strings.TrimSpace(query))

	for _, d := range Catalog() {
		if plural != "" && plural != "all" && d.Plural != plural {
			continue
		}
		results.ResultsByType[d.Plural] = []Record{}
		if needle == "" {
			continue
		}
		records, err := s.List(ctx, d)
		if err != nil {
			return nil, err
		}
		for _, rec := range records {
			if matches(d, rec, needle) {
				results.ResultsByType[d.Plural] = append(results.ResultsByType[d.Plural], rec)
				results.TotalResults++
			}
		}
	}
	return results, nil
}

func matches(d *Descriptor, rec Record, needle string) bool {
	for _, f := range d.Fields {
		if f.Kind != KindString && f.Kind != KindText {
			continue
		}
		if v, ok := rec.Fields[f.Name].(string); ok && strings.Contains(strings.ToLower(v), needle) {
			return true
		}
	}
	return false
}

// Dashboard summarises record counts for the analytics view.
type Dashboard struct {
	Overview      Overview                  `json:"overview"`
	Distributions map[string]map[string]int `json:"distributions"`
	Statuses      map[string]map[string]int `json:"statuses"`
}

// Overview holds headline numbers.
type Overview struct {
	Totals                map[string]int `json:"totals"`
	CompletedDeliverables int            `json:"completed_deliverables"`
	OverdueDeliverables   int            `json:"overdue_deliverables"`
	ProjectCompletion     float64        `json:"project_completion"`
	ActiveIntegrations    int            `json:"active_integrations"`
	FollowUpsNeeded       int            `json:"follow_ups_needed"`
}

// Dashboard computes totals, per-status counts and per-group distributions.
func (s *Service) Dashboard(ctx context.Context) (*Dashboard, error) {
	dash := &Dashboard{
		Overview:      Overview{Totals: map[string]int{}},
		Distributions: map[string]map[string]int{},
		Statuses:      map[string]map[string]int{},
	}
	today := s.now().UTC().Format(dateLayout)

	for _, d := range Catalog() {
		records, err := s.List(ctx, d)
		if err != nil {
			return nil, err
		}
		dash.Overview.Totals[d.Plural] = len(records)

		groups := map[string]int{}
		statuses := map[string]int{}
		for _, rec := range records {
			groups[label(rec.Fields[d.GroupField])]++
			statuses[label(rec.Fields[d.StatusField])]++
		}
		dash.Distributions[fmt.Sprintf("%s_by_%s", d.Plural, d.GroupField)] = groups
		dash.Statuses[d.Plural] = statuses

		switch d {
		case Deliverable:
			var completion int64
			for _, rec := range records {
				status, _ := rec.Fields["status"].(string)
				if status == "Completed" {
					dash.Overview.CompletedDeliverables++
				} else if due, ok := rec.Fields["due_date"].(string); ok && due < today {
					dash.Overview.OverdueDeliverables++
				}
				if pct, ok := rec.Fields["completion_percentage"].(int64); ok {
					completion += pct
				}
			}
			if len(records) > 0 {
				dash.Overview.ProjectCompletion = float64(completion) / float64(len(records))
			}
		case Integration:
			for _, rec := range records {
				if rec.Fields["setup_status"] == "Active" {
					dash.Overview.ActiveIntegrations++
				}
			}
		case ResearchItem:
			for _, rec := range records {
				if rec.Fields["follow_up_needed"] == true {
					dash.Overview.FollowUpsNeeded++
				}
			}
		}
	}
	return dash, nil
}

func label(v any) string {
	s, ok := v.(string)
	if !ok || s == "" {
		return "Unspecified"
	}
	return s
}

// Snapshot is a point-in-time copy of every record, keyed by entity plural.
type Snapshot struct {
	ExportedAt time.Time           `json:"exported_at"`
	Data       map[string][]Record `json:"data"`
}

// Count returns the total number of records in the snapshot.
func (s *Snapshot) Count() int {
	n := 0
	for _, records := range s.Data {
		n += len(records)
	}
	return n
}

// Snapshot reads every record of the given types, or of all types when
// none are named.
func (s *Service) Snapshot(ctx context.Context, plurals ...string) (*Snapshot, error) {
	want := map[string]bool{}
	for _, p := range plurals {
		want[p] = true
	}

	snap := &Snapshot{ExportedAt: s.now().UTC(), Data: map[string][]Record{}}
	for _, d := range Catalog() {
		if len(want) > 0 && !want[d.Plural] {
			continue
		}
		records, err := s.List(ctx, d)
		if err != nil {
			return nil, err
		}
		snap.Data[d.Plural] = records
	}
	return snap, nil
}
