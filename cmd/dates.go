package main

import (
	"fmt"
	"strings"
)

// open bounds used when one end of a date range is not supplied
const (
	earliestDate = "1609-02-12"
	latestDate   = "2009-02-12"
)

const dateFacetSeparator = "::"

var dateComponentFields = []string{"year", "month", "day", "year-max", "month-max", "day-max"}

// dateString builds a yyyy[-mm[-dd]] token.  a day requires a month;
// anything that cannot form a date yields an empty string.
func dateString(year, month, day string) string {
	if year == "" {
		return ""
	}

	if day != "" && month == "" {
		return ""
	}

	var parts []string

	for _, part := range []string{year, month, day} {
		if part != "" {
			parts = append(parts, zeroPad(part, 2))
		}
	}

	return strings.Join(parts, "-")
}

// dateRangeFilter returns the dateRange filter query for the given bounds and
// search type (on, before, after, between), or an empty string if there is
// nothing to filter on
func dateRangeFilter(dateMin, dateMax, searchType string) string {
	predicate := "Within"
	value := dateMin

	switch {
	case searchType == "between" || dateMax != "":
		lower := dateMin
		if lower == "" {
			lower = earliestDate
		}

		upper := dateMax
		if upper == "" {
			upper = latestDate
		}

		predicate = "Intersects"
		value = fmt.Sprintf("[%s TO %s]", lower, upper)

	case searchType == "after":
		predicate = "Intersects"
		value = fmt.Sprintf("[%s TO %s]", dateMin, latestDate)

	case searchType == "before":
		predicate = "Intersects"
		value = fmt.Sprintf("[%s TO %s]", earliestDate, dateMin)
	}

	if value == "" {
		return ""
	}

	return fmt.Sprintf("{!field f=dateRange op=%s}%s", predicate, value)
}

// dateFacetSelection describes one selected value of a hierarchical date facet
type dateFacetSelection struct {
	field    string            // facet field matching the depth of the value
	value    string            // value with wrapping quotes removed
	contains map[string]string // facet field -> contains-prefix
}

// selectDateFacet works out which of the (shallowest first) facet fields a
// "::"-separated date value belongs to, along with the contains-prefix for
// every level: ancestors get the truncated value, the selected level and
// below get the full value.
func selectDateFacet(fields []string, raw string) dateFacetSelection {
	value := unquote(raw)
	parts := strings.Split(value, dateFacetSeparator)

	depth := len(parts) - 1
	if depth >= len(fields) {
		depth = len(fields) - 1
	}

	sel := dateFacetSelection{
		field:    fields[depth],
		value:    value,
		contains: make(map[string]string),
	}

	for i, field := range fields {
		prefix := value
		if i < len(parts)-1 {
			prefix = strings.Join(parts[:i+1], dateFacetSeparator)
		}

		sel.contains[fmt.Sprintf("f.%s.facet.contains", field)] = prefix
	}

	return sel
}
