package ref

import (
	"strconv"
	"strings"
)

// maxColLetters bounds the column part of an address (XFD is the widest
// column a sheet can have).
const maxColLetters = 3

// MaxCol is the zero based index of column XFD.
const MaxCol = 16383

// Token is a cell address found in formula text.
type Token struct {
	Pos    int // byte offset of the first character
	End    int // byte offset just past the last character
	Col    int // zero based
	Row    int // zero based
	AbsCol bool
	AbsRow bool
	// Letters holds the column letters as written.
	Letters string
}

// String encodes the token back into A1 notation keeping its markers and case.
func (t Token) String() string {
	var b strings.Builder
	if t.AbsCol {
		b.WriteByte('$')
	}
	b.WriteString(t.colName())
	if t.AbsRow {
		b.WriteByte('$')
	}
	b.WriteString(strconv.Itoa(t.Row + 1))
	return b.String()
}

// colName spells the column the way it was written when it did not move.
// A moved column is lower case only if all of its letters were.
func (t Token) colName() string {
	name := ColToName(t.Col)
	switch {
	case t.Letters == "":
		return name
	case strings.EqualFold(name, t.Letters):
		return t.Letters
	case strings.ToLower(t.Letters) == t.Letters:
		return strings.ToLower(name)
	}
	return name
}

// Parse decodes a single address such as "B7", "$b$7" or "AB$12".
// The whole input must be the address.
func Parse(s string) (Token, bool) {
	var t Token
	i := 0
	if i < len(s) && s[i] == '$' {
		t.AbsCol = true
		i++
	}
	start := i
	for i < len(s) && isLetter(s[i]) {
		i++
	}
	letters := s[start:i]
	if len(letters) == 0 || len(letters) > maxColLetters {
		return Token{}, false
	}
	if i < len(s) && s[i] == '$' {
		t.AbsRow = true
		i++
	}
	digits := s[i:]
	if digits == "" {
		return Token{}, false
	}
	for j := 0; j < len(digits); j++ {
		if !isDigit(digits[j]) {
			return Token{}, false
		}
	}
	row, err := strconv.Atoi(digits)
	if err != nil || row < 1 {
		return Token{}, false
	}
	t.Col, _ = NameToCol(letters)
	t.Row = row - 1
	t.Letters = letters
	t.End = len(s)
	return t, true
}

// Lexer walks formula text and yields the addresses that may be rewritten.
// String literals, function names and sheet-qualified references
// (Sheet1!A1, 'My Sheet'!A1:B2) are skipped.
type Lexer struct {
	src string
	pos int
}

// NewLexer creates a lexer over src.
func NewLexer(src string) *Lexer {
	return &Lexer{src: src}
}

// Tokenize returns every rewritable address in src in order of appearance.
func Tokenize(src string) []Token {
	return NewLexer(src).Tokenize()
}

// Tokenize runs the lexer to the end of its input.
func (l *Lexer) Tokenize() []Token {
	var toks []Token
	for {
		t, ok := l.Next()
		if !ok {
			return toks
		}
		toks = append(toks, t)
	}
}

// Next returns the next address token, or false at end of input.
func (l *Lexer) Next() (Token, bool) {
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch {
		case c == '"':
			l.skipQuoted('"')
		case c == '\'':
			l.skipQuoted('\'')
			if l.peek() == '!' {
				l.skipQualified()
			}
		case isWordByte(c):
			start := l.pos
			word := l.word()
			if l.peek() == '!' {
				l.skipQualified()
				continue
			}
			if l.peek() == '(' {
				continue
			}
			t, ok := Parse(word)
			if !ok {
				continue
			}
			t.Pos = start
			t.End = start + len(word)
			return t, true
		default:
			l.pos++
		}
	}
	return Token{}, false
}

func (l *Lexer) peek() byte {
	if l.pos < len(l.src) {
		return l.src[l.pos]
	}
	return 0
}

func (l *Lexer) word() string {
	start := l.pos
	for l.pos < len(l.src) && isWordByte(l.src[l.pos]) {
		l.pos++
	}
	return l.src[start:l.pos]
}

// skipQuoted consumes a quoted run; a doubled quote is an escaped quote.
func (l *Lexer) skipQuoted(q byte) {
	l.pos++
	for l.pos < len(l.src) {
		if l.src[l.pos] == q {
			if l.pos+1 < len(l.src) && l.src[l.pos+1] == q {
				l.pos += 2
				continue
			}
			l.pos++
			return
		}
		l.pos++
	}
}

// skipQualified consumes "!ref" and an optional ":ref" after a sheet name.
func (l *Lexer) skipQualified() {
	l.pos++
	l.word()
	if l.peek() == ':' {
		l.pos++
		if l.peek() == '\'' {
			l.skipQuoted('\'')
			if l.peek() == '!' {
				l.pos++
			}
		}
		l.word()
		if l.peek() == '!' {
			l.pos++
			l.word()
		}
	}
}

func isWordByte(b byte) bool {
	return isLetter(b) || isDigit(b) || b == '$' || b == '_' || b == '.'
}
