// Package parser turns SQL statement text into types.Command values using a
// participle grammar. The engine only ever sees the validated Command; the
// grammar is the full surface of the dialect.
package parser

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"EmberDB/types"
)

var sqlLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Keyword", Pattern: `(?i)\b(CREATE|TABLE|PRIMARY|KEY|INSERT|INTO|VALUES|SELECT|FROM|LEFT|JOIN|ON|WHERE|AND|UPDATE|SET|DELETE|BEGIN|COMMIT|ROLLBACK|NULL|INTEGER|TEXT)\b`},
	{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*(\.[a-zA-Z_][a-zA-Z0-9_]*)?`},
	{Name: "Number", Pattern: `-?\d+`},
	{Name: "String", Pattern: `'[^']*'`},
	{Name: "Operators", Pattern: `<=|>=|[-+*/=<>(),;.]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var sqlParser = participle.MustBuild[stmt](
	participle.Lexer(sqlLexer),
	participle.Elide("Whitespace"),
	participle.CaseInsensitive("Keyword"),
)

type stmt struct {
	Create   *createStmt `  @@`
	Insert   *insertStmt `| @@`
	Select   *selectStmt `| @@`
	Update   *updateStmt `| @@`
	Delete   *deleteStmt `| @@`
	Begin    bool        `| @"BEGIN"`
	Commit   bool        `| @"COMMIT"`
	Rollback bool        `| @"ROLLBACK"`
}

type createStmt struct {
	Name    string       `"CREATE" "TABLE" @Ident`
	Columns []columnStmt `"(" @@ ("," @@)* ")"`
}

type columnStmt struct {
	Name string `@Ident`
	Type string `@("INTEGER" | "TEXT")`
	PK   bool   `@("PRIMARY" "KEY")?`
}

type insertStmt struct {
	Table   string    `"INSERT" "INTO" @Ident`
	Columns []string  `("(" @Ident ("," @Ident)* ")")?`
	Values  []litExpr `"VALUES" "(" @@ ("," @@)* ")"`
}

type selectStmt struct {
	Table string     `"SELECT" "*" "FROM" @Ident`
	Join  *joinStmt  `@@?`
	Where *whereStmt `@@?`
}

type joinStmt struct {
	Left   bool   `@"LEFT"? "JOIN"`
	Table  string `@Ident`
	Column string `"ON" @(Ident | Number | String)`
	Op     string `@("<=" | ">=" | "=" | "<" | ">")`
	Value  string `@(Ident | Number | String)`
}

type whereStmt struct {
	Conditions []condStmt `"WHERE" @@ ("AND" @@)*`
}

type condStmt struct {
	Column string  `@Ident`
	Op     string  `@("<=" | ">=" | "=" | "<" | ">")`
	Value  litExpr `@@`
}

type updateStmt struct {
	Table       string       `"UPDATE" @Ident "SET"`
	Assignments []assignStmt `@@ ("," @@)*`
	Where       *whereStmt   `@@?`
}

type assignStmt struct {
	Column string  `@Ident "="`
	Value  litExpr `@@`
}

type deleteStmt struct {
	Table string     `"DELETE" "FROM" @Ident`
	Where *whereStmt `@@?`
}

type litExpr struct {
	Null bool    `  @"NULL"`
	Int  *int64  `| @Number`
	Str  *string `| @String`
}

// Parse parses one SQL statement. A trailing semicolon is accepted and
// ignored.
func Parse(input string) (types.Command, error) {
	input = strings.TrimSpace(input)
	input = strings.TrimSuffix(input, ";")

	parsed, err := sqlParser.ParseString("", input)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	return convert(parsed)
}

func convert(s *stmt) (types.Command, error) {
	switch {
	case s.Create != nil:
		cols := make([]types.ColumnDef, 0, len(s.Create.Columns))
		for _, c := range s.Create.Columns {
			cols = append(cols, types.ColumnDef{
				Name:         c.Name,
				Type:         strings.ToUpper(c.Type),
				IsPrimaryKey: c.PK,
			})
		}
		return types.CreateTableCommand{Name: s.Create.Name, Columns: cols}, nil

	case s.Insert != nil:
		values := make([]types.Value, 0, len(s.Insert.Values))
		for _, lit := range s.Insert.Values {
			v, err := lit.value()
			if err != nil {
				return nil, err
			}
			values = append(values, v)
		}
		return types.InsertCommand{
			Table:   s.Insert.Table,
			Columns: s.Insert.Columns,
			Values:  values,
		}, nil

	case s.Select != nil:
		where, err := convertWhere(s.Select.Where)
		if err != nil {
			return nil, err
		}
		cmd := types.SelectCommand{Table: s.Select.Table, Where: where}
		if s.Select.Join != nil {
			cmd.Join = &types.JoinClause{
				Table: s.Select.Join.Table,
				Left:  s.Select.Join.Left,
				On: types.JoinCondition{
					Column:   stripQuotes(s.Select.Join.Column),
					Operator: s.Select.Join.Op,
					Value:    stripQuotes(s.Select.Join.Value),
				},
			}
		}
		return cmd, nil

	case s.Update != nil:
		assigns := make([]types.Assignment, 0, len(s.Update.Assignments))
		for _, a := range s.Update.Assignments {
			v, err := a.Value.value()
			if err != nil {
				return nil, err
			}
			assigns = append(assigns, types.Assignment{Column: a.Column, Value: v})
		}
		where, err := convertWhere(s.Update.Where)
		if err != nil {
			return nil, err
		}
		return types.UpdateCommand{Table: s.Update.Table, Assignments: assigns, Where: where}, nil

	case s.Delete != nil:
		where, err := convertWhere(s.Delete.Where)
		if err != nil {
			return nil, err
		}
		return types.DeleteCommand{Table: s.Delete.Table, Where: where}, nil

	case s.Begin:
		return types.BeginCommand{}, nil
	case s.Commit:
		return types.CommitCommand{}, nil
	case s.Rollback:
		return types.RollbackCommand{}, nil
	}
	return nil, fmt.Errorf("parse: empty statement")
}

func convertWhere(w *whereStmt) ([]types.Condition, error) {
	if w == nil {
		return nil, nil
	}
	out := make([]types.Condition, 0, len(w.Conditions))
	for _, c := range w.Conditions {
		v, err := c.Value.value()
		if err != nil {
			return nil, err
		}
		out = append(out, types.Condition{Column: c.Column, Operator: c.Op, Value: v})
	}
	return out, nil
}

func (l litExpr) value() (types.Value, error) {
	switch {
	case l.Null:
		return types.Null(), nil
	case l.Int != nil:
		n := *l.Int
		if n < -2147483648 || n > 2147483647 {
			return types.Value{}, fmt.Errorf("parse: integer literal %d out of range", n)
		}
		return types.NewInt(int32(n)), nil
	case l.Str != nil:
		return types.NewText(stripQuotes(*l.Str)), nil
	}
	return types.Value{}, fmt.Errorf("parse: empty literal")
}

func stripQuotes(s string) string {
	if len(s) >= 2 && s[0] == '\'' && s[len(s)-1] == '\'' {
		return s[1 : len(s)-1]
	}
	return s
}
