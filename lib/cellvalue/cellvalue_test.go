package cellvalue

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestParseCell(t *testing.T) {
	testCases := []struct {
		raw      string
		expected Value
	}{
		{raw: "", expected: AbsentValue()},
		{raw: "   ", expected: AbsentValue()},
		{raw: "-", expected: AbsentValue()},
		{raw: "--", expected: AbsentValue()},
		{raw: "---", expected: AbsentValue()},
		{raw: "N/A", expected: AbsentValue()},
		{raw: "n/a", expected: AbsentValue()},
		{raw: "NA", expected: AbsentValue()},
		{raw: "Sim", expected: BoolValue(true)},
		{raw: "s", expected: BoolValue(true)},
		{raw: "yes", expected: BoolValue(true)},
		{raw: "TRUE", expected: BoolValue(true)},
		{raw: "Não", expected: BoolValue(false)},
		{raw: "nao", expected: BoolValue(false)},
		{raw: "no", expected: BoolValue(false)},
		{raw: "42", expected: IntValue(42)},
		{raw: "1.234", expected: IntValue(1234)},
		{raw: "12,5", expected: FloatValue(12.5)},
		{raw: "1.234,56", expected: FloatValue(1234.56)},
		{raw: "85%", expected: IntValue(85)},
		{raw: "85,3%", expected: FloatValue(85.3)},
		{raw: "-7", expected: IntValue(-7)},
		{raw: "  texto livre  ", expected: TextValue("texto livre")},
		{raw: "12a34", expected: TextValue("12a34")},
	}

	for _, test := range testCases {
		got := ParseCell(test.raw)
		diff := cmp.Diff(test.expected, got)
		if diff != "" {
			t.Fatalf("ParseCell(%q): %s", test.raw, diff)
		}
	}
}

func TestParseAnyPassthroughAndIdempotence(t *testing.T) {
	require.Equal(t, BoolValue(true), ParseAny(true))
	require.Equal(t, IntValue(3), ParseAny(3))
	require.Equal(t, IntValue(3), ParseAny(3.0))
	require.Equal(t, FloatValue(3.5), ParseAny(3.5))
	require.Equal(t, AbsentValue(), ParseAny(nil))
	require.Equal(t, AbsentValue(), ParseAny("-"))

	// feeding a parsed value back in changes nothing
	for _, raw := range []any{true, int64(17), 2.25, "sim", "1.234,5", "-", "texto"} {
		once := ParseAny(raw)
		require.Equal(t, once, ParseAny(once), fmt.Sprintf("raw=%v", raw))
	}
}

func TestEntityCode(t *testing.T) {
	testCases := []struct {
		raw  string
		code int64
		ok   bool
	}{
		{raw: "3550308", code: 3550308, ok: true},
		{raw: "  35.0101-0 ", code: 3501010, ok: true},
		{raw: "350101", code: 350101, ok: true},
		{raw: "12345", ok: false},
		{raw: "12345678", ok: false},
		{raw: "São Paulo", ok: false},
		{raw: "", ok: false},
	}

	for _, test := range testCases {
		code, ok := EntityCode(test.raw)
		require.Equal(t, test.ok, ok, test.raw)
		require.Equal(t, test.code, code, test.raw)
	}

	// number-typed spreadsheet cells keep their digit count
	code, ok := EntityCode(float64(3550308))
	require.True(t, ok)
	require.Equal(t, int64(3550308), code)
	_, ok = EntityCode(12.5)
	require.False(t, ok)
}

func TestYear(t *testing.T) {
	current := time.Now().Year()

	y, ok := Year("sinisa_agua_2023.xlsx")
	require.True(t, ok)
	require.Equal(t, 2023, y)

	// out-of-window tokens are skipped, not returned
	y, ok = Year("serie_1975_2020")
	require.True(t, ok)
	require.Equal(t, 2020, y)

	_, ok = Year("arquivo_1975")
	require.False(t, ok)

	_, ok = Year(fmt.Sprintf("projecao_%d", current+2))
	require.False(t, ok)

	y, ok = Year(fmt.Sprintf("%d", current+1))
	require.True(t, ok)
	require.Equal(t, current+1, y)

	_, ok = Year("sem ano nenhum")
	require.False(t, ok)

	y, ok = Year(float64(2023))
	require.True(t, ok)
	require.Equal(t, 2023, y)
}
