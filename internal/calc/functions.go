package calc

import (
	"math"
	"strings"
)

type function func(e *evaluator, args []arg) (any, string)

// functions is filled in init: IF and friends evaluate their arguments
// through the evaluator, which looks names up here.
var functions map[string]function

func init() {
	functions = map[string]function{
		"SUM":     fnSum,
		"AVERAGE": fnAverage,
		"MIN":     fnMin,
		"MAX":     fnMax,
		"COUNT":   fnCount,
		"ROUND":   fnRound,
		"IF":      fnIf,
		"AND":     fnAnd,
		"OR":      fnOr,
		"NOT":     fnNot,
		"CONCAT":  fnConcat,
		"ABS":     fnAbs,
	}
}

func call(e *evaluator, name string, args []arg) (any, string) {
	fn, ok := functions[name]
	if !ok {
		return nil, ErrName
	}
	return fn(e, args)
}

// value is a flattened argument. fromRange marks values read out of a
// range, which aggregates coerce more leniently than literal arguments.
type value struct {
	v         any
	fromRange bool
}

// flatten expands ranges into their cells. The first error wins.
func flatten(e *evaluator, args []arg) ([]value, string) {
	var out []value
	for _, a := range args {
		if a.err != "" {
			return nil, a.err
		}
		rv, ok := a.v.(rangeVal)
		if !ok {
			out = append(out, value{v: a.v})
			continue
		}
		for ri := rv.r1; ri <= rv.r2; ri++ {
			for ci := rv.c1; ci <= rv.c2; ci++ {
				v, err := e.cellValue(rv.sheet, ri, ci)
				if err != "" {
					return nil, err
				}
				out = append(out, value{v: v, fromRange: true})
			}
		}
	}
	return out, ""
}

// numbers collects the numeric arguments. Range cells that are not numbers
// are skipped; a literal argument that cannot be read as a number is an
// error.
func numbers(e *evaluator, args []arg) ([]float64, string) {
	vals, err := flatten(e, args)
	if err != "" {
		return nil, err
	}
	var nums []float64
	for _, v := range vals {
		if v.fromRange {
			if n, ok := v.v.(float64); ok {
				nums = append(nums, n)
			}
			continue
		}
		n, err := toNumber(v.v)
		if err != "" {
			return nil, err
		}
		nums = append(nums, n)
	}
	return nums, ""
}

func scalar(a arg) (any, string) {
	if a.err != "" {
		return nil, a.err
	}
	if isRange(a.v) {
		return nil, ErrValue
	}
	return a.v, ""
}

func fnSum(e *evaluator, args []arg) (any, string) {
	nums, err := numbers(e, args)
	if err != "" {
		return nil, err
	}
	total := 0.0
	for _, n := range nums {
		total += n
	}
	return total, ""
}

func fnAverage(e *evaluator, args []arg) (any, string) {
	nums, err := numbers(e, args)
	if err != "" {
		return nil, err
	}
	if len(nums) == 0 {
		return nil, ErrDiv0
	}
	total := 0.0
	for _, n := range nums {
		total += n
	}
	return total / float64(len(nums)), ""
}

func fnMin(e *evaluator, args []arg) (any, string) {
	nums, err := numbers(e, args)
	if err != "" {
		return nil, err
	}
	if len(nums) == 0 {
		return 0.0, ""
	}
	m := nums[0]
	for _, n := range nums[1:] {
		m = math.Min(m, n)
	}
	return m, ""
}

func fnMax(e *evaluator, args []arg) (any, string) {
	nums, err := numbers(e, args)
	if err != "" {
		return nil, err
	}
	if len(nums) == 0 {
		return 0.0, ""
	}
	m := nums[0]
	for _, n := range nums[1:] {
		m = math.Max(m, n)
	}
	return m, ""
}

// fnCount counts numeric values and ignores errors, like a spreadsheet.
func fnCount(e *evaluator, args []arg) (any, string) {
	count := 0
	for _, a := range args {
		if a.err != "" {
			continue
		}
		vals, err := flatten(e, []arg{a})
		if err != "" {
			continue
		}
		for _, v := range vals {
			if _, ok := v.v.(float64); ok {
				count++
			}
		}
	}
	return float64(count), ""
}

func fnRound(_ *evaluator, args []arg) (any, string) {
	if len(args) < 1 || len(args) > 2 {
		return nil, ErrValue
	}
	v, err := scalar(args[0])
	if err != "" {
		return nil, err
	}
	x, err := toNumber(v)
	if err != "" {
		return nil, err
	}
	digits := 0.0
	if len(args) == 2 {
		d, err := scalar(args[1])
		if err != "" {
			return nil, err
		}
		if digits, err = toNumber(d); err != "" {
			return nil, err
		}
	}
	pow := math.Pow(10, math.Trunc(digits))
	return math.Round(x*pow) / pow, ""
}

func fnIf(_ *evaluator, args []arg) (any, string) {
	if len(args) < 2 || len(args) > 3 {
		return nil, ErrValue
	}
	c, err := scalar(args[0])
	if err != "" {
		return nil, err
	}
	cond, err := toBool(c)
	if err != "" {
		return nil, err
	}
	if cond {
		return scalar(args[1])
	}
	if len(args) == 3 {
		return scalar(args[2])
	}
	return false, ""
}

func logical(e *evaluator, args []arg, and bool) (any, string) {
	vals, err := flatten(e, args)
	if err != "" {
		return nil, err
	}
	if len(vals) == 0 {
		return nil, ErrValue
	}
	result := and
	for _, v := range vals {
		if v.fromRange && v.v == nil {
			continue
		}
		b, err := toBool(v.v)
		if err != "" {
			return nil, err
		}
		if and {
			result = result && b
		} else {
			result = result || b
		}
	}
	return result, ""
}

func fnAnd(e *evaluator, args []arg) (any, string) {
	return logical(e, args, true)
}

func fnOr(e *evaluator, args []arg) (any, string) {
	return logical(e, args, false)
}

func fnNot(_ *evaluator, args []arg) (any, string) {
	if len(args) != 1 {
		return nil, ErrValue
	}
	v, err := scalar(args[0])
	if err != "" {
		return nil, err
	}
	b, err := toBool(v)
	if err != "" {
		return nil, err
	}
	return !b, ""
}

func fnConcat(e *evaluator, args []arg) (any, string) {
	vals, err := flatten(e, args)
	if err != "" {
		return nil, err
	}
	var b strings.Builder
	for _, v := range vals {
		b.WriteString(Format(v.v))
	}
	return b.String(), ""
}

func fnAbs(_ *evaluator, args []arg) (any, string) {
	if len(args) != 1 {
		return nil, ErrValue
	}
	v, err := scalar(args[0])
	if err != "" {
		return nil, err
	}
	x, err := toNumber(v)
	if err != "" {
		return nil, err
	}
	return math.Abs(x), ""
}
