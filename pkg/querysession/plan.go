package querysession

import (
	"fmt"
	"strings"
	"time"

	"github.com/3leaps/logcove/pkg/querysession/plan"
)

// DefaultTimestampColumn is used for the synthesized time filter when a
// stream has no configured time-partition field (spec §4.8).
const DefaultTimestampColumn = "p_timestamp"

// Transformer builds the final executable plan from a raw query plan,
// injecting a time-range filter on the relevant table scan (spec §4.8).
type Transformer struct {
	// AttachFilters controls whether the synthesized filter is actually
	// wired into the returned plan. The spec's own source stages the
	// filter but never attaches it (§9 open question); default true
	// implements the evident intent, with false reachable for anyone
	// diffing against that historical behavior.
	AttachFilters bool
}

// NewTransformer returns a Transformer with AttachFilters on.
func NewTransformer() *Transformer {
	return &Transformer{AttachFilters: true}
}

// FinalPlan implements final_plan(raw_plan, [t_lo, t_hi], time_partition)
// from spec §4.8:
//  1. Find the scan's table and check whether an existing filter already
//     references the time-partition column (or the default timestamp
//     column when none is configured).
//  2. If not, synthesize `col >= t_lo AND col < t_hi` and wrap the scan in
//     a filter.
//  3. Preserve an EXPLAIN wrapper by re-stringifying the transformed inner
//     plan underneath it.
func (t *Transformer) FinalPlan(rawPlan string, lo, hi time.Time, timePartitionColumn string) (string, error) {
	column := timePartitionColumn
	if column == "" {
		column = DefaultTimestampColumn
	}

	explain, inner := splitExplain(rawPlan)

	if !t.AttachFilters {
		return rawPlan, nil
	}

	visitor := plan.NewTableScanVisitor(inner)
	if visitor.HasColumnFilter(column) {
		return rawPlan, nil
	}

	table, ok := visitor.FirstTable()
	if !ok {
		return "", fmt.Errorf("querysession: no table scan found in plan")
	}

	filtered := fmt.Sprintf(
		"SELECT * FROM (%s) AS %s WHERE %s >= %d AND %s < %d",
		inner, scanAlias(table), column, lo.UTC().UnixMilli(), column, hi.UTC().UnixMilli(),
	)

	if explain != "" {
		return explain + " " + filtered, nil
	}
	return filtered, nil
}

// splitExplain strips a leading EXPLAIN (optionally EXPLAIN QUERY PLAN)
// wrapper and returns it alongside the remaining statement text.
func splitExplain(rawPlan string) (explain string, inner string) {
	trimmed := strings.TrimSpace(rawPlan)
	upper := strings.ToUpper(trimmed)
	switch {
	case strings.HasPrefix(upper, "EXPLAIN QUERY PLAN"):
		return trimmed[:len("EXPLAIN QUERY PLAN")], strings.TrimSpace(trimmed[len("EXPLAIN QUERY PLAN"):])
	case strings.HasPrefix(upper, "EXPLAIN"):
		return trimmed[:len("EXPLAIN")], strings.TrimSpace(trimmed[len("EXPLAIN"):])
	default:
		return "", trimmed
	}
}

func scanAlias(table string) string {
	return table + "_scan"
}
