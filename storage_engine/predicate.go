package storageengine

import "EmberDB/types"

/*
Predicate evaluation for WHERE clauses: each condition is independent, the
clause is their AND. Comparison is weak — a string that parses as a number
compares numerically against a number, so `age > '28'` and `id = '1'` behave
the way the REPL user expects.
*/

func rowMatches(row types.Row, tableName string, conds []types.Condition) bool {
	for _, cond := range conds {
		if !evalCondition(row, tableName, cond) {
			return false
		}
	}
	return true
}

func evalCondition(row types.Row, tableName string, cond types.Condition) bool {
	v, ok := row.Get(cond.Column)
	if !ok {
		v, ok = row.Get(tableName + "." + cond.Column)
	}
	if !ok {
		return false
	}
	return compareWithOperator(v, cond.Value, cond.Operator)
}

func compareWithOperator(a, b types.Value, operator string) bool {
	cmp := types.CompareValues(a, b)
	switch operator {
	case "=":
		return cmp == 0
	case "<":
		return cmp < 0
	case ">":
		return cmp > 0
	case "<=":
		return cmp <= 0
	case ">=":
		return cmp >= 0
	default:
		return false
	}
}
