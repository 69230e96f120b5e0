package alloy

import "fmt"

// SeriesUnknown tags compositions matching no known alloy family.
const SeriesUnknown = "Custom/Novel"

// Series is a named alloy family defined by per-element range membership.
type Series struct {
	Name   string
	Label  string
	Ranges map[string]Range
}

// alloySeries is the family table, in classification order. Families may
// overlap; a composition can match several.
var alloySeries = []Series{
	{Name: "2xxx", Label: "Cu-based (aerospace)", Ranges: map[string]Range{"Cu": {2.0, 5.0}, "Mg": {0.0, 2.0}}},
	{Name: "5xxx", Label: "Mg-based (marine)", Ranges: map[string]Range{"Mg": {2.0, 6.0}, "Cu": {0.0, 0.5}}},
	{Name: "6xxx", Label: "Mg-Si (extrusions)", Ranges: map[string]Range{"Mg": {0.5, 1.5}, "Si": {0.5, 1.5}}},
	{Name: "7xxx", Label: "Zn-based (aerospace)", Ranges: map[string]Range{"Zn": {4.0, 8.0}, "Mg": {1.0, 3.0}}},
}

// ClassifySeries tags a composition against the known alloy families.
// Every listed element (0 when absent) must lie in range for a family to
// match. Always returns at least one tag.
func ClassifySeries(composition map[string]float64) []string {
	var matches []string
	for _, series := range alloySeries {
		match := true
		for elem, r := range series.Ranges {
			if !r.Contains(composition[elem]) {
				match = false
				break
			}
		}
		if match {
			matches = append(matches, fmt.Sprintf("%s (%s)", series.Name, series.Label))
		}
	}
	if len(matches) == 0 {
		return []string{SeriesUnknown}
	}
	return matches
}
