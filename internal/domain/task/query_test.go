package task

import "testing"

func TestParseListQuery(t *testing.T) {
	tests := []struct {
		name          string
		completed     string
		sortBy        string
		limit         string
		skip          string
		wantCompleted *bool
		wantField     string
		wantDesc      bool
		wantLimit     int
		wantSkip      int
	}{
		{name: "empty"},
		{name: "completed_true", completed: "true", wantCompleted: boolPtr(true)},
		{name: "completed_anything_else_is_false", completed: "yes", wantCompleted: boolPtr(false)},
		{name: "sort_desc", sortBy: "createdAt_desc", wantField: "createdAt", wantDesc: true},
		{name: "sort_asc", sortBy: "createdAt_asc", wantField: "createdAt"},
		{name: "sort_unknown_direction_is_asc", sortBy: "description_sideways", wantField: "description"},
		{name: "sort_without_direction", sortBy: "completed", wantField: "completed"},
		{name: "sort_unknown_field_ignored", sortBy: "owner_desc"},
		{name: "pagination", limit: "10", skip: "20", wantLimit: 10, wantSkip: 20},
		{name: "pagination_garbage_ignored", limit: "ten", skip: "-3"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			q := ParseListQuery(tt.completed, tt.sortBy, tt.limit, tt.skip)

			switch {
			case tt.wantCompleted == nil && q.Completed != nil:
				t.Fatalf("expected no completed filter, got %v", *q.Completed)
			case tt.wantCompleted != nil && q.Completed == nil:
				t.Fatalf("expected completed filter %v, got none", *tt.wantCompleted)
			case tt.wantCompleted != nil && *q.Completed != *tt.wantCompleted:
				t.Fatalf("completed filter: got %v want %v", *q.Completed, *tt.wantCompleted)
			}

			if q.SortField != tt.wantField || q.SortDesc != tt.wantDesc {
				t.Fatalf("sort: got %q desc=%v want %q desc=%v", q.SortField, q.SortDesc, tt.wantField, tt.wantDesc)
			}
			if q.Limit != tt.wantLimit || q.Skip != tt.wantSkip {
				t.Fatalf("pagination: got limit=%d skip=%d want limit=%d skip=%d", q.Limit, q.Skip, tt.wantLimit, tt.wantSkip)
			}
		})
	}
}

func boolPtr(b bool) *bool { return &b }
