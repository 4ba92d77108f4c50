// Package calc evaluates formula text against cell contents supplied by a
// resolver callback.
package calc

import (
	"math"
	"strconv"
	"strings"

	"sheetgrid/internal/ref"
)

// Error values a formula can produce.
const (
	ErrRef   = "#REF!"
	ErrDiv0  = "#DIV/0!"
	ErrValue = "#VALUE!"
	ErrName  = "#NAME?"
	ErrOther = "#ERROR!"
)

// Resolver returns the raw text stored at ri, ci on the named sheet. An
// empty sheet name is the sheet the formula lives on. ok is false when the
// sheet does not exist.
type Resolver func(sheet string, ri, ci int) (text string, ok bool)

type cellKey struct {
	sheet  string
	ri, ci int
}

type evaluator struct {
	resolve Resolver
	visited map[cellKey]bool
}

// Render returns text unchanged unless it is a formula, in which case the
// formula is evaluated and its result formatted. Formulas in referenced
// cells are evaluated too; a reference cycle yields #REF!.
func Render(text string, resolve Resolver) string {
	e := &evaluator{resolve: resolve, visited: map[cellKey]bool{}}
	return e.render(text, "")
}

// RenderCell renders the cell at ri, ci of the current sheet.
func RenderCell(ri, ci int, resolve Resolver) string {
	text, _ := resolve("", ri, ci)
	e := &evaluator{resolve: resolve, visited: map[cellKey]bool{{"", ri, ci}: true}}
	return e.render(text, "")
}

func (e *evaluator) render(text, sheet string) string {
	if !ref.IsFormula(text) {
		return text
	}
	v, err := e.eval(text[1:], sheet)
	if err != "" {
		return err
	}
	return Format(v)
}

func (e *evaluator) eval(expr, sheet string) (any, string) {
	p := parser{input: expr, sheet: sheet, e: e}
	val, err := p.parseExpr()
	if err != "" {
		return nil, err
	}
	p.skipSpaces()
	if p.pos < len(p.input) {
		return nil, ErrOther
	}
	if _, ok := val.(rangeVal); ok {
		return nil, ErrValue
	}
	return val, ""
}

// cellValue resolves a referenced cell to a scalar.
func (e *evaluator) cellValue(sheet string, ri, ci int) (any, string) {
	text, ok := e.resolve(sheet, ri, ci)
	if !ok {
		return nil, ErrRef
	}
	if !ref.IsFormula(text) {
		return literal(text), ""
	}
	k := cellKey{sheet, ri, ci}
	if e.visited[k] {
		return nil, ErrRef
	}
	e.visited[k] = true
	defer delete(e.visited, k)
	return e.eval(text[1:], sheet)
}

// literal turns stored text into a number when it reads as one.
func literal(text string) any {
	s := strings.TrimSpace(text)
	if s == "" {
		return nil
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return v
	}
	return text
}

// Format renders an evaluated value as cell text.
func Format(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return ErrOther
		}
		if math.Abs(x-math.Round(x)) < 1e-9 {
			return strconv.FormatFloat(math.Round(x), 'f', 0, 64)
		}
		s := strconv.FormatFloat(x, 'f', 6, 64)
		s = strings.TrimRight(s, "0")
		return strings.TrimRight(s, ".")
	case bool:
		if x {
			return "TRUE"
		}
		return "FALSE"
	case string:
		return x
	}
	return ErrValue
}
