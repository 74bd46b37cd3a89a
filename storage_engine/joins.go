package storageengine

import (
	"strings"

	"EmberDB/types"
)

/*
Nested-loop join: evaluate the ON condition for every pair in the Cartesian
product of the two row sets and merge the matches. A LEFT marker is accepted
but evaluated with inner semantics.
*/

func nestedLoopJoin(left, right []types.Row, leftTable, rightTable string, on types.JoinCondition) []types.Row {
	out := make([]types.Row, 0)
	for _, l := range left {
		for _, r := range right {
			a := resolveRef(on.Column, l, leftTable, r, rightTable)
			b := resolveRef(on.Value, l, leftTable, r, rightTable)
			if !compareWithOperator(a, b, on.Operator) {
				continue
			}
			out = append(out, mergeRows(l, r, rightTable))
		}
	}
	return out
}

// resolveRef resolves a reference string against the row pair: a bare column
// of either side first, then a qualified `table.column`, then the reference
// itself as a literal string.
func resolveRef(ref string, l types.Row, leftTable string, r types.Row, rightTable string) types.Value {
	if v, ok := l.Get(ref); ok {
		return v
	}
	if v, ok := r.Get(ref); ok {
		return v
	}
	if table, column, found := strings.Cut(ref, "."); found {
		if table == leftTable {
			if v, ok := l.Get(column); ok {
				return v
			}
		}
		if table == rightTable {
			if v, ok := r.Get(column); ok {
				return v
			}
		}
	}
	return types.NewText(ref)
}

// mergeRows shallow-merges r into a copy of l. A right-side column whose name
// already exists lands under "{rightTable}.{column}" instead of overwriting.
func mergeRows(l, r types.Row, rightTable string) types.Row {
	out := l.Clone()
	for k, v := range r.Values {
		if _, exists := out.Values[k]; exists {
			out.Values[rightTable+"."+k] = v
		} else {
			out.Values[k] = v
		}
	}
	return out
}
