// Package ref knows how cell addresses are spelled inside formula text and
// how to move them when rows or columns shift.
package ref

import (
	"strconv"
	"strings"
)

// ColToName: 0 -> A, 25 -> Z, 26 -> AA and so on
func ColToName(col int) string {
	if col < 0 {
		return "?"
	}
	var buf [8]byte
	i := len(buf)
	for n := col + 1; n > 0; n = (n - 1) / 26 {
		i--
		buf[i] = byte('A' + (n-1)%26)
	}
	return string(buf[i:])
}

// NameToCol is the inverse of ColToName. Letters are case-insensitive.
// Returns false for an empty or non-alphabetic name.
func NameToCol(name string) (int, bool) {
	if name == "" {
		return 0, false
	}
	col := 0
	for i := 0; i < len(name); i++ {
		b := name[i]
		if !isLetter(b) {
			return 0, false
		}
		col = col*26 + int(upper(b)-'A') + 1
	}
	return col - 1, true
}

// ColRowToName builds cell name from 0-based col,row -> e.g., col 0,row0 -> "A1"
func ColRowToName(col, row int) string {
	return ColToName(col) + strconv.Itoa(row+1)
}

// ParseCellRef parses names like A1, AA10 returning 0-based (row, col).
// Accepts sheet prefixes like Sheet!A1 and removes $ signs.
func ParseCellRef(name string) (int, int, bool) {
	name = strings.TrimSpace(name)
	if idx := strings.LastIndex(name, "!"); idx != -1 {
		name = strings.TrimSpace(name[idx+1:])
	}
	t, ok := Parse(name)
	if !ok {
		return 0, 0, false
	}
	return t.Row, t.Col, true
}

// IsFormula reports whether text is a formula, i.e. starts with '='.
func IsFormula(text string) bool {
	return len(text) > 0 && text[0] == '='
}

func isLetter(b byte) bool {
	return (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z')
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func isLower(b byte) bool {
	return b >= 'a' && b <= 'z'
}

func upper(b byte) byte {
	if isLower(b) {
		return b - ('a' - 'A')
	}
	return b
}
