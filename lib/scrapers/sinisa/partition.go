package sinisa

import "sort"

// YearDataset is the per-year unit handed to downstream consumers.
type YearDataset struct {
	Year    int
	Records []Record
}

// partitionByYear groups records by year, years ascending, records in
// their original assembly order. Side-effect-free.
func partitionByYear(records []Record) []YearDataset {
	byYear := map[int][]Record{}
	for _, r := range records {
		byYear[r.Year] = append(byYear[r.Year], r)
	}

	years := make([]int, 0, len(byYear))
	for year := range byYear {
		years = append(years, year)
	}
	sort.Ints(years)

	datasets := make([]YearDataset, 0, len(years))
	for _, year := range years {
		datasets = append(datasets, YearDataset{Year: year, Records: byYear[year]})
	}
	return datasets
}
