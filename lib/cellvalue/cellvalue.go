// Package cellvalue turns the raw cells of irregular spreadsheets into
// canonical typed values. Every parser in the pipeline returns a Value,
// never a raw dynamically-typed cell.
package cellvalue

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

type Kind int

const (
	KindAbsent Kind = iota
	KindBool
	KindInt
	KindFloat
	KindText
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindText:
		return "text"
	}
	return "absent"
}

// Value is a tagged union of bool | int | float | text | absent.
// Absent is distinct from zero and false and is dropped before emission.
type Value struct {
	kind Kind
	b    bool
	i    int64
	f    float64
	s    string
}

func AbsentValue() Value         { return Value{} }
func BoolValue(b bool) Value     { return Value{kind: KindBool, b: b} }
func IntValue(i int64) Value     { return Value{kind: KindInt, i: i} }
func FloatValue(f float64) Value { return Value{kind: KindFloat, f: f} }
func TextValue(s string) Value   { return Value{kind: KindText, s: s} }

func (v Value) Kind() Kind     { return v.kind }
func (v Value) IsAbsent() bool { return v.kind == KindAbsent }
func (v Value) Bool() bool     { return v.b }
func (v Value) Int() int64     { return v.i }
func (v Value) Float() float64 { return v.f }
func (v Value) Text() string   { return v.s }

// Float64 views int and float values through a common numeric lens.
func (v Value) Float64() (float64, bool) {
	switch v.kind {
	case KindInt:
		return float64(v.i), true
	case KindFloat:
		return v.f, true
	}
	return 0, false
}

func (v Value) Equal(o Value) bool { return v == o }

// String renders the value for storage and display.
func (v Value) String() string {
	switch v.kind {
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'f', -1, 64)
	case KindText:
		return v.s
	}
	return ""
}

var sentinels = map[string]struct{}{
	"":    {},
	"-":   {},
	"--":  {},
	"---": {},
	"n/a": {},
	"na":  {},
}

var affirmative = map[string]struct{}{
	"sim": {}, "s": {}, "yes": {}, "true": {},
}

var negative = map[string]struct{}{
	"nao": {}, "não": {}, "n": {}, "no": {}, "false": {},
}

// ParseCell coerces a raw cell string into a canonical Value. Blank cells
// and sentinel markers become Absent, pt-BR/en boolean tokens become Bool,
// pt-BR formatted numbers ("1.234,5", "12%") become Int or Float, and
// anything else is kept as trimmed Text. Ambiguity is never an error.
func ParseCell(raw string) Value {
	text := strings.TrimSpace(raw)
	if _, ok := sentinels[strings.ToLower(text)]; ok {
		return AbsentValue()
	}

	lowered := strings.ToLower(text)
	if _, ok := affirmative[lowered]; ok {
		return BoolValue(true)
	}
	if _, ok := negative[lowered]; ok {
		return BoolValue(false)
	}

	// "%" and "." are noise (percent sign, thousands separator),
	// "," is the pt-BR decimal separator.
	numeric := strings.ReplaceAll(text, "%", "")
	numeric = strings.ReplaceAll(numeric, ".", "")
	numeric = strings.ReplaceAll(numeric, ",", ".")

	if !strings.Contains(numeric, ".") {
		if i, err := strconv.ParseInt(numeric, 10, 64); err == nil {
			return IntValue(i)
		}
	} else if f, err := strconv.ParseFloat(numeric, 64); err == nil {
		return FloatValue(f)
	}

	return TextValue(text)
}

// ParseAny is ParseCell generalized over the cell types a reader can hand
// us. Native booleans and numbers pass through unchanged and a Value is
// returned as-is, which makes the parser idempotent.
func ParseAny(raw any) Value {
	switch v := raw.(type) {
	case nil:
		return AbsentValue()
	case Value:
		return v
	case bool:
		return BoolValue(v)
	case int:
		return IntValue(int64(v))
	case int64:
		return IntValue(v)
	case float64:
		if v == float64(int64(v)) {
			return IntValue(int64(v))
		}
		return FloatValue(v)
	case string:
		return ParseCell(v)
	}
	return ParseCell(fmt.Sprint(raw))
}

// rawText views a raw cell as text for digit and token extraction.
// Integral floats render without a fractional part, so codes and years
// read from number-typed spreadsheet cells keep their digit count.
func rawText(raw any) string {
	switch v := raw.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		if v == float64(int64(v)) {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return fmt.Sprint(raw)
}

var nonDigits = regexp.MustCompile(`\D`)

// EntityCode extracts a geographic entity code from a noisy cell: every
// non-digit character is stripped and a 7-digit result is the canonical
// code. A 6-digit result is accepted as-is, completion to the full length
// is the reference table's responsibility, not ours. Any other digit
// count means the cell is not a code.
func EntityCode(raw any) (int64, bool) {
	digits := nonDigits.ReplaceAllString(rawText(raw), "")
	if len(digits) != 6 && len(digits) != 7 {
		return 0, false
	}
	code, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, false
	}
	return code, true
}

var yearToken = regexp.MustCompile(`(19\d{2}|20\d{2})`)

// Year returns the first 4-digit token within the plausible reporting
// window [1980, current year + 1] found anywhere in the cell. Tokens
// outside the window are skipped.
func Year(raw any) (int, bool) {
	max := time.Now().Year() + 1
	for _, m := range yearToken.FindAllString(rawText(raw), -1) {
		y, err := strconv.Atoi(m)
		if err != nil {
			continue
		}
		if y >= 1980 && y <= max {
			return y, true
		}
	}
	return 0, false
}
