package calc

import (
	"math"
	"strconv"
	"strings"

	"sheetgrid/internal/ref"
)

// rangeVal is a rectangular reference; only functions can consume it.
type rangeVal struct {
	sheet          string
	r1, c1, r2, c2 int
}

// arg is an evaluated function argument. Errors are kept per argument so
// IF can ignore the branch it does not take.
type arg struct {
	v   any
	err string
}

type parser struct {
	input string
	pos   int
	depth int // open parentheses
	sheet string
	e     *evaluator
}

func (p *parser) skipSpaces() {
	for p.pos < len(p.input) && (p.input[p.pos] == ' ' || p.input[p.pos] == '\t' || p.input[p.pos] == '\n') {
		p.pos++
	}
}

func (p *parser) peek() byte {
	p.skipSpaces()
	if p.pos < len(p.input) {
		return p.input[p.pos]
	}
	return 0
}

func (p *parser) parseExpr() (any, string) {
	return p.parseCompare()
}

func (p *parser) parseCompare() (any, string) {
	left, err := p.parseConcat()
	if err != "" {
		return nil, err
	}
	for {
		op := p.compareOp()
		if op == "" {
			return left, ""
		}
		right, err := p.parseConcat()
		if err != "" {
			return nil, err
		}
		if left, err = compare(op, left, right); err != "" {
			return nil, err
		}
	}
}

func (p *parser) compareOp() string {
	p.skipSpaces()
	for _, op := range []string{"<>", "<=", ">=", "=", "<", ">"} {
		if strings.HasPrefix(p.input[p.pos:], op) {
			p.pos += len(op)
			return op
		}
	}
	return ""
}

func (p *parser) parseConcat() (any, string) {
	left, err := p.parseAddSub()
	if err != "" {
		return nil, err
	}
	for p.peek() == '&' {
		p.pos++
		right, err := p.parseAddSub()
		if err != "" {
			return nil, err
		}
		if isRange(left) || isRange(right) {
			return nil, ErrValue
		}
		left = Format(left) + Format(right)
	}
	return left, ""
}

func (p *parser) parseAddSub() (any, string) {
	val, err := p.parseMulDiv()
	if err != "" {
		return nil, err
	}
	for {
		op := p.peek()
		if op != '+' && op != '-' {
			return val, ""
		}
		p.pos++
		right, err := p.parseMulDiv()
		if err != "" {
			return nil, err
		}
		a, b, err := numbers2(val, right)
		if err != "" {
			return nil, err
		}
		if op == '+' {
			val = a + b
		} else {
			val = a - b
		}
	}
}

func (p *parser) parseMulDiv() (any, string) {
	val, err := p.parsePower()
	if err != "" {
		return nil, err
	}
	for {
		op := p.peek()
		if op != '*' && op != '/' {
			return val, ""
		}
		p.pos++
		right, err := p.parsePower()
		if err != "" {
			return nil, err
		}
		a, b, err := numbers2(val, right)
		if err != "" {
			return nil, err
		}
		if op == '*' {
			val = a * b
			continue
		}
		if math.Abs(b) < 1e-12 {
			return nil, ErrDiv0
		}
		val = a / b
	}
}

func (p *parser) parsePower() (any, string) {
	val, err := p.parseFactor()
	if err != "" {
		return nil, err
	}
	for p.peek() == '^' {
		p.pos++
		right, err := p.parseFactor()
		if err != "" {
			return nil, err
		}
		a, b, err := numbers2(val, right)
		if err != "" {
			return nil, err
		}
		val = math.Pow(a, b)
	}
	return val, ""
}

func (p *parser) parseFactor() (any, string) {
	switch p.peek() {
	case '+':
		p.pos++
		return p.parseFactor()
	case '-':
		p.pos++
		v, err := p.parseFactor()
		if err != "" {
			return nil, err
		}
		n, err := toNumber(v)
		if err != "" {
			return nil, err
		}
		return -n, ""
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (any, string) {
	ch := p.peek()
	switch {
	case ch == 0:
		return nil, ErrOther
	case ch == '(':
		p.pos++
		p.depth++
		v, err := p.parseExpr()
		if err != "" {
			return nil, err
		}
		if p.peek() != ')' {
			return nil, ErrOther
		}
		p.pos++
		p.depth--
		return v, ""
	case ch == '"':
		return p.parseString()
	case isDigit(ch) || ch == '.':
		return p.parseNumber()
	case ch == '\'':
		name, ok := p.quotedSheet()
		if !ok || p.peek() != '!' {
			return nil, ErrOther
		}
		p.pos++
		return p.parseReference(name)
	case isLetter(ch) || ch == '$':
		return p.parseIdent()
	}
	return nil, ErrOther
}

func (p *parser) parseString() (any, string) {
	p.pos++
	var b strings.Builder
	for p.pos < len(p.input) {
		c := p.input[p.pos]
		if c == '"' {
			if p.pos+1 < len(p.input) && p.input[p.pos+1] == '"' {
				b.WriteByte('"')
				p.pos += 2
				continue
			}
			p.pos++
			return b.String(), ""
		}
		b.WriteByte(c)
		p.pos++
	}
	return nil, ErrOther
}

func (p *parser) parseNumber() (any, string) {
	start := p.pos
	j := p.pos
	seenDot, seenE := false, false
	for j < len(p.input) {
		c := p.input[j]
		switch {
		case isDigit(c):
			j++
			continue
		case c == '.' && !seenDot && !seenE:
			seenDot = true
			j++
			continue
		case (c == 'e' || c == 'E') && !seenE:
			seenE = true
			j++
			if j < len(p.input) && (p.input[j] == '+' || p.input[j] == '-') {
				j++
			}
			continue
		}
		break
	}
	p.pos = j
	v, err := strconv.ParseFloat(p.input[start:j], 64)
	if err != nil {
		return nil, ErrOther
	}
	return v, ""
}

func (p *parser) quotedSheet() (string, bool) {
	p.pos++
	var b strings.Builder
	for p.pos < len(p.input) {
		c := p.input[p.pos]
		if c == '\'' {
			if p.pos+1 < len(p.input) && p.input[p.pos+1] == '\'' {
				b.WriteByte('\'')
				p.pos += 2
				continue
			}
			p.pos++
			return b.String(), true
		}
		b.WriteByte(c)
		p.pos++
	}
	return "", false
}

func (p *parser) word() string {
	start := p.pos
	for p.pos < len(p.input) && isWordByte(p.input[p.pos]) {
		p.pos++
	}
	return p.input[start:p.pos]
}

// parseIdent handles function calls, booleans, sheet prefixes and cell
// references.
func (p *parser) parseIdent() (any, string) {
	w := p.word()
	if p.pos < len(p.input) && p.input[p.pos] == '!' {
		p.pos++
		return p.parseReference(w)
	}
	if p.peek() == '(' {
		p.pos++
		p.depth++
		args, err := p.parseArgs()
		if err != "" {
			return nil, err
		}
		return call(p.e, strings.ToUpper(w), args)
	}
	switch strings.ToUpper(w) {
	case "TRUE":
		return true, ""
	case "FALSE":
		return false, ""
	}
	if _, ok := ref.Parse(w); !ok {
		return nil, ErrName
	}
	p.pos -= len(w)
	return p.parseReference(p.sheet)
}

// parseReference reads "A1" or "A1:B2" at the current position.
func (p *parser) parseReference(sheet string) (any, string) {
	t, ok := ref.Parse(p.word())
	if !ok {
		return nil, ErrRef
	}
	if p.peek() != ':' {
		return p.e.cellValue(sheet, t.Row, t.Col)
	}
	p.pos++
	p.skipSpaces()
	w := p.word()
	if p.pos < len(p.input) && p.input[p.pos] == '!' {
		p.pos++
		w = p.word()
	}
	t2, ok := ref.Parse(w)
	if !ok {
		return nil, ErrRef
	}
	rv := rangeVal{sheet: sheet}
	rv.r1, rv.r2 = min(t.Row, t2.Row), max(t.Row, t2.Row)
	rv.c1, rv.c2 = min(t.Col, t2.Col), max(t.Col, t2.Col)
	return rv, ""
}

func (p *parser) parseArgs() ([]arg, string) {
	var args []arg
	level := p.depth
	if p.peek() == ')' {
		p.pos++
		p.depth--
		return args, ""
	}
	for {
		v, err := p.parseExpr()
		if err != "" {
			if !isValueError(err) {
				return nil, err
			}
			p.skipArg(level)
		}
		args = append(args, arg{v: v, err: err})
		switch p.peek() {
		case ',':
			p.pos++
		case ')':
			p.pos++
			p.depth--
			return args, ""
		default:
			return nil, ErrOther
		}
	}
}

// skipArg moves past the rest of an argument whose evaluation stopped
// early, up to the next ',' or ')' back at nesting level.
func (p *parser) skipArg(level int) {
	for p.pos < len(p.input) {
		switch p.input[p.pos] {
		case '"':
			p.parseString()
			continue
		case '(':
			p.depth++
		case ')':
			if p.depth == level {
				return
			}
			p.depth--
		case ',':
			if p.depth == level {
				return
			}
		}
		p.pos++
	}
}

// isValueError separates errors a formula can produce as a value from
// syntax errors, which abort the whole evaluation.
func isValueError(err string) bool {
	switch err {
	case ErrRef, ErrDiv0, ErrValue, ErrName:
		return true
	}
	return false
}

func isRange(v any) bool {
	_, ok := v.(rangeVal)
	return ok
}

func toNumber(v any) (float64, string) {
	switch x := v.(type) {
	case nil:
		return 0, ""
	case float64:
		return x, ""
	case bool:
		if x {
			return 1, ""
		}
		return 0, ""
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, ErrValue
		}
		return n, ""
	}
	return 0, ErrValue
}

func numbers2(a, b any) (float64, float64, string) {
	x, err := toNumber(a)
	if err != "" {
		return 0, 0, err
	}
	y, err := toNumber(b)
	if err != "" {
		return 0, 0, err
	}
	return x, y, ""
}

func toBool(v any) (bool, string) {
	switch x := v.(type) {
	case nil:
		return false, ""
	case bool:
		return x, ""
	case float64:
		return x != 0, ""
	case string:
		switch strings.ToUpper(strings.TrimSpace(x)) {
		case "TRUE":
			return true, ""
		case "FALSE":
			return false, ""
		}
	}
	return false, ErrValue
}

func compare(op string, a, b any) (any, string) {
	if isRange(a) || isRange(b) {
		return nil, ErrValue
	}
	var c int
	x, errA := toNumber(a)
	y, errB := toNumber(b)
	if errA == "" && errB == "" {
		switch {
		case x < y:
			c = -1
		case x > y:
			c = 1
		}
	} else {
		c = strings.Compare(strings.ToLower(Format(a)), strings.ToLower(Format(b)))
	}
	switch op {
	case "=":
		return c == 0, ""
	case "<>":
		return c != 0, ""
	case "<":
		return c < 0, ""
	case ">":
		return c > 0, ""
	case "<=":
		return c <= 0, ""
	}
	return c >= 0, ""
}

func isLetter(b byte) bool {
	return (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z')
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func isWordByte(b byte) bool {
	return isLetter(b) || isDigit(b) || b == '$' || b == '_' || b == '.'
}
