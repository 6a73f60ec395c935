package main

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testServiceConfig() *serviceConfig {
	return &serviceConfig{
		SolrHost:        "localhost",
		SolrPort:        "8983",
		SolrTimeout:     60,
		ItemCore:        "dcp",
		PageCore:        "site",
		DefaultRows:     20,
		DateFacetFields: []string{"facet-year", "facet-year-month", "facet-year-month-day"},
		CorsOrigins:     []string{"http://localhost:5173"},
		facetJSON:       `{"f1-author":{"type":"terms"}}`,
	}
}

func itemParams(rawQuery string) *queryParams {
	return newQueryParams(newItemResource(testServiceConfig()), parseQueryParams(rawQuery), 20)
}

func pageParams(rawQuery string) *queryParams {
	return newQueryParams(newPageResource(testServiceConfig()), parseQueryParams(rawQuery), 20)
}

func TestParseQueryParamsKeepsOrder(t *testing.T) {
	params := parseQueryParams("b=2&a=1&b=3&s-Map+theme=x%20y&bad=%zz&&=novalue")

	require.Len(t, params, 4)
	assert.Equal(t, param{name: "b", values: []string{"2"}}, params[0])
	assert.Equal(t, param{name: "a", values: []string{"1"}}, params[1])
	assert.Equal(t, param{name: "b", values: []string{"3"}}, params[2])
	assert.Equal(t, param{name: "s-Map theme", values: []string{"x y"}}, params[3])
}

func TestParamSetSetKeepsPosition(t *testing.T) {
	p := newParamSet()
	p.set("a", listify("1"))
	p.set("b", listify("2"))
	p.set("a", listify("3"))
	p.add("c", "4", "5")

	assert.Equal(t, []string{"a", "b", "c"}, p.names())
	assert.Equal(t, []string{"3"}, p.get("a"))
	assert.Equal(t, []string{"4", "5"}, p.get("c"))

	p.del("b")
	p.del("missing")

	assert.Equal(t, []string{"a", "c"}, p.names())
	assert.False(t, p.has("b"))
}

func TestDynamicFacetKeysCollapse(t *testing.T) {
	q := itemParams("f1-author=A&f2-author=B&f7-author=C")

	assert.Equal(t, []string{"A", "B", "C"}, q.fields.get("f1-author"))
	assert.False(t, q.fields.has("f2-author"))
	assert.False(t, q.fields.has("f7-author"))
}

func TestDynamicFacetKeysKeepFirstSeenOrder(t *testing.T) {
	q := itemParams("f3-author=B&f1-author=A&f2-date=1850")

	assert.Equal(t, []string{"B", "A"}, q.fields.get("f1-author"))
	assert.Equal(t, []string{"1850"}, q.fields.get("f1-date"))

	// undeclared canonical facets follow the declared fields
	assert.Equal(t, []string{"page", "search-date-type", "f1-author", "f1-date", "rows"}, q.fields.names())
}

func TestUnknownParametersDropped(t *testing.T) {
	q := itemParams("keyword=darwin&bogus=1&f-author=x&facet-author=y")

	assert.True(t, q.fields.has("keyword"))
	assert.False(t, q.fields.has("bogus"))
	assert.False(t, q.fields.has("f-author"))
	assert.False(t, q.fields.has("facet-author"))
}

func TestPageAcceptsPrefixedFacets(t *testing.T) {
	q := pageParams("facet-topic=a&s-anything=b&f1-author=c&other=d")

	assert.Equal(t, []string{"a"}, q.fields.get("facet-topic"))
	assert.Equal(t, []string{"b"}, q.fields.get("s-anything"))
	assert.False(t, q.fields.has("f1-author"))
	assert.False(t, q.fields.has("other"))
}

func TestFieldNormalization(t *testing.T) {
	q := itemParams("keyword=origin&keyword=species&sort=date&sort=author&page=3&page=4")

	assert.Equal(t, []string{"origin species"}, q.fields.get("keyword"))
	assert.Equal(t, []string{"date"}, q.fields.get("sort"))
	assert.Equal(t, 3, q.page)
}

func TestRowsAllowList(t *testing.T) {
	tests := []struct {
		query string
		rows  int
	}{
		{"", 20},
		{"rows=10", 10},
		{"rows=20", 20},
		{"rows=8", 20},
		{"rows=abc", 20},
		{"rows=10&rows=50", 10},
		{"rows=50&rows=10", 20},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			for _, q := range []*queryParams{itemParams(tt.query), pageParams(tt.query)} {
				assert.Equal(t, tt.rows, q.rows)
				assert.Equal(t, []string{strconv.Itoa(tt.rows)}, q.fields.get("rows"))
			}
		})
	}
}

func TestRowsDefaultIsInjected(t *testing.T) {
	rc := newItemResource(testServiceConfig())

	q := newQueryParams(rc, parseQueryParams("rows=7"), 10)

	assert.Equal(t, 10, q.rows)
}

func TestPageDefaults(t *testing.T) {
	for query, page := range map[string]int{"": 1, "page=0": 1, "page=-2": 1, "page=x": 1, "page=5": 5} {
		assert.Equal(t, page, itemParams(query).page, query)
	}
}

func TestSearchableDefault(t *testing.T) {
	assert.Equal(t, []string{"true"}, pageParams("").fields.get("facet-searchable"))
	assert.Equal(t, []string{"false"}, pageParams("facet-searchable=false").fields.get("facet-searchable"))
	assert.Equal(t, []string{"true"}, pageParams("facet-searchable=maybe").fields.get("facet-searchable"))
}

func TestSeparateParameters(t *testing.T) {
	q := itemParams("keyword=darwin&text=&f2-author=A&f1-year=1850&year=1850")

	params, facets := q.separateParameters()

	assert.Equal(t, []string{"keyword", "page", "year", "search-date-type", "rows"}, filterNames(params.names(), "keyword", "page", "rows", "year", "search-date-type"))
	assert.False(t, params.has("text"))
	assert.False(t, params.has("f1-author"))

	assert.Equal(t, []string{"f1-author", "f1-year"}, facets.names())
}

func TestSeparateParametersPage(t *testing.T) {
	q := pageParams("keyword=evolution&s-topics=plants&facet-document-type=site")

	params, facets := q.separateParameters()

	assert.True(t, params.has("keyword"))
	assert.False(t, params.has("s-topics"))
	assert.Equal(t, []string{"s-topics", "facet-searchable", "facet-document-type"}, facets.names())
}

func TestEmptyValuesAreAbsent(t *testing.T) {
	q := itemParams("keyword=+&f1-author=&f2-author=")

	params, facets := q.separateParameters()

	assert.False(t, params.has("keyword"))
	assert.False(t, facets.has("f1-author"))
}

// filterNames keeps the names that appear in want, in their original order
func filterNames(names []string, want ...string) []string {
	var res []string

	for _, n := range names {
		if sliceContainsString(want, n, false) {
			res = append(res, n)
		}
	}

	return res
}
