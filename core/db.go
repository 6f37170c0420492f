package core

import (
	"strings"
)

type DBOrdering struct {
	Field     string
	Ascending bool
}

func (ord DBOrdering) String() string {
	direction := "DESC"
	if ord.Ascending {
		direction = "ASC"
	}
	return ord.Field + " " + direction
}

// CleanOrderings drops orderings on fields that are not in `allowed`.
// Field names come straight from query strings and end up in ORDER BY clauses.
func CleanOrderings(orderings []DBOrdering, allowed ...string) []DBOrdering {
	if len(orderings) == 0 {
		return nil
	}
	clean := make([]DBOrdering, 0, len(orderings))
	for _, ord := range orderings {
		field := strings.ToLower(strings.TrimSpace(ord.Field))
		for _, a := range allowed {
			if field == a {
				clean = append(clean, DBOrdering{Field: field, Ascending: ord.Ascending})
				break
			}
		}
	}
	return clean
}

// OrderBy joins orderings into an ORDER BY clause body, or returns `fallback`.
func OrderBy(orderings []DBOrdering, fallback string) string {
	if len(orderings) == 0 {
		return fallback
	}
	list := make([]string, 0, len(orderings))
	for _, ord := range orderings {
		list = append(list, ord.String())
	}
	return strings.Join(list, ", ")
}
