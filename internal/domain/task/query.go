package task

import (
	"strconv"
	"strings"
)

// Sortable fields as exposed in the API.
const (
	SortDescription = "description"
	SortCompleted   = "completed"
	SortCreatedAt   = "createdAt"
	SortUpdatedAt   = "updatedAt"
)

// ListQuery is the parsed form of the GET /tasks query string.
// Zero Limit or Skip means unbounded / no offset.
type ListQuery struct {
	Completed *bool
	SortField string
	SortDesc  bool
	Limit     int
	Skip      int
}

// ParseListQuery never fails: values that cannot be used are ignored, the
// same way a NaN limit is ignored by the store.
func ParseListQuery(completed, sortBy, limit, skip string) ListQuery {
	var q ListQuery

	if completed != "" {
		v := completed == "true"
		q.Completed = &v
	}

	if sortBy != "" {
		field, dir, _ := strings.Cut(sortBy, "_")
		if isSortable(field) {
			q.SortField = field
			q.SortDesc = dir == "desc"
		}
	}

	q.Limit = nonNegativeInt(limit)
	q.Skip = nonNegativeInt(skip)

	return q
}

func isSortable(field string) bool {
	switch field {
	case SortDescription, SortCompleted, SortCreatedAt, SortUpdatedAt:
		return true
	default:
		return false
	}
}

func nonNegativeInt(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0
	}
	return n
}
