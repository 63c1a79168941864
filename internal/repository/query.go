package repository

import (
	"strings"
	"time"

	domrepo "NewsSignal/internal/domain/repository"
)

const defaultQueryLimit = 50

// whereClause renders the filter as a WHERE clause with ? placeholders.
// ts converts a time bound into the column's driver type.
func whereClause(f domrepo.RecordFilter, ts func(time.Time) any) (string, []any) {
	var conds []string
	var args []any
	if f.Source != "" {
		conds = append(conds, "source = ?")
		args = append(args, f.Source)
	}
	if f.Label != nil {
		conds = append(conds, "label = ?")
		args = append(args, f.Label.String())
	}
	if !f.From.IsZero() {
		conds = append(conds, "predicted_at >= ?")
		args = append(args, ts(f.From))
	}
	if !f.To.IsZero() {
		conds = append(conds, "predicted_at <= ?")
		args = append(args, ts(f.To))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func queryLimit(f domrepo.RecordFilter) int {
	if f.Limit <= 0 {
		return defaultQueryLimit
	}
	return f.Limit
}
