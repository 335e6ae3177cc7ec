// Package warehouse shapes the engine's canonical record stream into
// per-indicator collections with a declared value type, the form the
// final warehouse schema wants.
package warehouse

import (
	"sort"

	"inteligente-backend/lib/cellvalue"
	"inteligente-backend/lib/scrapers/sinisa"
)

type DataType string

const (
	TypeBool    DataType = "bool"
	TypeInt     DataType = "int"
	TypeFloat   DataType = "float"
	TypeString  DataType = "string"
	TypeUnknown DataType = "unknown"
)

type Row struct {
	Year       int
	EntityCode int64
	Value      cellvalue.Value
}

// Collection is one indicator's full time series under a single
// declared type.
type Collection struct {
	Category  string
	Indicator string
	DataType  DataType
	Years     []int
	Rows      []Row
}

// BuildCollections folds the per-year datasets into one collection per
// indicator: infer the indicator's declared type from every value it
// carries, cast each value to it and drop the rows that will not cast.
func BuildCollections(category string, datasets []sinisa.YearDataset) []Collection {
	rowsByIndicator := map[string][]Row{}
	for _, ds := range datasets {
		for _, r := range ds.Records {
			rowsByIndicator[r.Indicator] = append(rowsByIndicator[r.Indicator], Row{
				Year:       r.Year,
				EntityCode: r.EntityCode,
				Value:      r.Value,
			})
		}
	}

	indicators := make([]string, 0, len(rowsByIndicator))
	for name := range rowsByIndicator {
		indicators = append(indicators, name)
	}
	sort.Strings(indicators)

	var collections []Collection
	for _, name := range indicators {
		rows := rowsByIndicator[name]

		values := make([]cellvalue.Value, len(rows))
		for i, r := range rows {
			values[i] = r.Value
		}
		dtype := InferDataType(values)

		var kept []Row
		yearSet := map[int]struct{}{}
		for _, r := range rows {
			cast, ok := castValue(r.Value, dtype)
			if !ok {
				continue
			}
			r.Value = cast
			kept = append(kept, r)
			yearSet[r.Year] = struct{}{}
		}
		if len(kept) == 0 {
			continue
		}

		years := make([]int, 0, len(yearSet))
		for y := range yearSet {
			years = append(years, y)
		}
		sort.Ints(years)

		collections = append(collections, Collection{
			Category:  category,
			Indicator: name,
			DataType:  dtype,
			Years:     years,
			Rows:      kept,
		})
	}
	return collections
}

// InferDataType declares a type for an indicator from its observed
// values: bool when everything is boolean, int when everything is
// numeric and integral, float when everything is at least numeric, and
// string otherwise.
func InferDataType(values []cellvalue.Value) DataType {
	present := 0
	allBool := true
	allNumeric := true
	allIntegral := true
	for _, v := range values {
		if v.IsAbsent() {
			continue
		}
		present++

		if v.Kind() != cellvalue.KindBool {
			allBool = false
		}
		switch v.Kind() {
		case cellvalue.KindInt, cellvalue.KindBool:
		case cellvalue.KindFloat:
			if v.Float() != float64(int64(v.Float())) {
				allIntegral = false
			}
		default:
			allNumeric = false
		}
	}

	switch {
	case present == 0:
		return TypeUnknown
	case allBool:
		return TypeBool
	case allNumeric && allIntegral:
		return TypeInt
	case allNumeric:
		return TypeFloat
	}
	return TypeString
}

func castValue(v cellvalue.Value, dtype DataType) (cellvalue.Value, bool) {
	if v.IsAbsent() {
		return v, false
	}
	switch dtype {
	case TypeBool:
		switch v.Kind() {
		case cellvalue.KindBool:
			return v, true
		case cellvalue.KindInt:
			// 0/1 flags show up alongside sim/não in the same column
			if v.Int() == 0 || v.Int() == 1 {
				return cellvalue.BoolValue(v.Int() == 1), true
			}
		}
		return v, false
	case TypeInt:
		switch v.Kind() {
		case cellvalue.KindInt:
			return v, true
		case cellvalue.KindFloat:
			if v.Float() == float64(int64(v.Float())) {
				return cellvalue.IntValue(int64(v.Float())), true
			}
		case cellvalue.KindBool:
			if v.Bool() {
				return cellvalue.IntValue(1), true
			}
			return cellvalue.IntValue(0), true
		}
		return v, false
	case TypeFloat:
		if f, ok := v.Float64(); ok {
			return cellvalue.FloatValue(f), true
		}
		if v.Kind() == cellvalue.KindBool {
			if v.Bool() {
				return cellvalue.FloatValue(1), true
			}
			return cellvalue.FloatValue(0), true
		}
		return v, false
	case TypeString:
		return cellvalue.TextValue(v.String()), true
	}
	return v, false
}
