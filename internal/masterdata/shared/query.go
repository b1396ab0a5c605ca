package shared

import (
	"strconv"
	"strings"
)

// Where accumulates AND-ed predicates with positional arguments. Each clause uses
// "?" for its single argument; placeholders are numbered on Add.
type Where struct {
	clauses []string
	args    []any
}

// Add appends clause, replacing every "?" with the next positional placeholder.
func (w *Where) Add(clause string, arg any) {
	w.args = append(w.args, arg)
	w.clauses = append(w.clauses, strings.ReplaceAll(clause, "?", "$"+strconv.Itoa(len(w.args))))
}

// SQL renders the WHERE clause, or an empty string when no predicate was added.
func (w *Where) SQL() string {
	if len(w.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.clauses, " AND ")
}

// Args returns the collected arguments.
func (w *Where) Args() []any {
	return w.args
}

// Page appends LIMIT/OFFSET placeholders and returns the clause with its arguments.
func (w *Where) Page(f ListFilters) (string, []any) {
	f = f.Normalize()
	n := len(w.args)
	args := append(append([]any{}, w.args...), f.Limit, f.Offset())
	return " LIMIT $" + strconv.Itoa(n+1) + " OFFSET $" + strconv.Itoa(n+2), args
}
