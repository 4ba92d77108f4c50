package ref

import "strings"

// Invalid replaces an address that would move off an edge of the sheet.
const Invalid = "#REF!"

// Cond decides from an address's original position whether it moves.
type Cond func(col, row int) bool

// Shift moves a single address token by dc columns and dr rows. When cond is
// non-nil it is evaluated against the original position and a false result
// leaves the token untouched. Absolute markers and letter case survive the
// move. Anything that is not an address (a bare number, for instance) comes
// back unchanged.
func Shift(token string, dc, dr int, cond Cond) string {
	if dc == 0 && dr == 0 {
		return token
	}
	t, ok := Parse(token)
	if !ok {
		return token
	}
	return shift(t, dc, dr, cond, token)
}

func shift(t Token, dc, dr int, cond Cond, orig string) string {
	if cond != nil && !cond(t.Col, t.Row) {
		return orig
	}
	t.Col += dc
	t.Row += dr
	if t.Col < 0 || t.Row < 0 || t.Col > MaxCol {
		return Invalid
	}
	return t.String()
}

// Rewrite shifts every address in a formula. Text that is not a formula is
// returned as is.
func Rewrite(formula string, dc, dr int, cond Cond) string {
	if !IsFormula(formula) || (dc == 0 && dr == 0) {
		return formula
	}
	toks := Tokenize(formula)
	if len(toks) == 0 {
		return formula
	}
	var b strings.Builder
	b.Grow(len(formula) + len(toks))
	last := 0
	for _, t := range toks {
		b.WriteString(formula[last:t.Pos])
		b.WriteString(shift(t, dc, dr, cond, formula[t.Pos:t.End]))
		last = t.End
	}
	b.WriteString(formula[last:])
	return b.String()
}

// Rows returns a condition matching addresses whose row satisfies fn.
func Rows(fn func(row int) bool) Cond {
	return func(_, row int) bool { return fn(row) }
}

// Cols returns a condition matching addresses whose column satisfies fn.
func Cols(fn func(col int) bool) Cond {
	return func(col, _ int) bool { return fn(col) }
}
