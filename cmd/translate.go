package main

import (
	"fmt"
	"math"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var quotedTokenRegex = regexp.MustCompile(`"[^"]*"`)

var sortableFields = []string{"author", "addressee", "correspondent", "date", "name"}

var expandableFacets = []string{"author", "addressee", "correspondent", "repository", "volume"}

// largest start offset the backend accepts
const maxStart = math.MaxInt32

// placeholder query strings that mean no search terms were supplied
var degenerateQueries = []string{"", "['*']", "['']"}

// solrQuery is the backend query built for one search
type solrQuery struct {
	Q         string
	Fq        []string
	Sort      string
	Start     int
	Rows      int
	Params    map[string]string // facet control parameters
	FacetJSON string
}

// values renders the query as backend request parameters
func (s *solrQuery) values() url.Values {
	v := url.Values{}

	v.Set("q", s.Q)

	for _, fq := range s.Fq {
		v.Add("fq", fq)
	}

	if s.Sort != "" {
		v.Set("sort", s.Sort)
	}

	v.Set("start", strconv.Itoa(s.Start))
	v.Set("rows", strconv.Itoa(s.Rows))

	for key, val := range s.Params {
		v.Set(key, val)
	}

	if s.FacetJSON != "" {
		v.Set("json.facet", s.FacetJSON)
	}

	return v
}

// translation holds the working state while a parameter set is turned into
// a backend query
type translation struct {
	resource *resourceConfig
	rows     int
	params   *paramSet
	query    []string
	filters  []string
	contains map[string]string
	expand   map[string]string
	sort     string
	start    int
}

// translateQuery converts normalized search parameters into a backend query.
// it never fails: anything that cannot be interpreted is left out.
func translateQuery(qp *queryParams) *solrQuery {
	params, facets := qp.separateParameters()

	t := translation{
		resource: qp.resource,
		rows:     qp.rows,
		params:   params.merge(facets),
		filters:  []string{},
		contains: make(map[string]string),
		expand:   make(map[string]string),
	}

	t.pruneExcludeFlags()
	t.remapTextField()
	t.joinCollections()
	t.buildDateRange()
	t.buildClauses()

	return t.assemble()
}

func (t *translation) pruneExcludeFlags() {
	for _, flag := range t.resource.excludeFlags {
		if strings.EqualFold(t.params.first(flag), "no") {
			t.params.del(flag)
		}
	}
}

func (t *translation) remapTextField() {
	sectionType := t.params.first("sectionType")
	t.params.del("sectionType")

	if t.params.has("text") == false {
		return
	}

	field, ok := t.resource.sectionTypes[sectionType]
	if ok == false {
		return
	}

	text := t.params.get("text")
	t.params.del("text")
	t.params.set(field, text)
}

func (t *translation) joinCollections() {
	if t.resource.collectionJoin == false {
		return
	}

	join := t.params.first("collection-join")
	t.params.del("collection-join")

	tokens := quotedTokenRegex.FindAllString(stringify(t.params.get("collection")), -1)
	if len(tokens) == 0 {
		return
	}

	op := " AND "
	if strings.EqualFold(join, "or") {
		op = " OR "
	}

	t.params.set("collection", listify(strings.Join(tokens, op)))
}

func (t *translation) buildDateRange() {
	dateMin := dateString(t.params.first("year"), t.params.first("month"), t.params.first("day"))
	dateMax := dateString(t.params.first("year-max"), t.params.first("month-max"), t.params.first("day-max"))
	searchType := t.params.first("search-date-type")

	t.params.del("search-date-type")

	if dateMin == "" && searchType != "between" {
		return
	}

	for _, name := range dateComponentFields {
		t.params.del(name)
	}

	if filter := dateRangeFilter(dateMin, dateMax, searchType); filter != "" {
		t.filters = append(t.filters, filter)
	}
}

func (t *translation) buildClauses() {
	rc := t.resource

	for _, name := range t.params.names() {
		values := t.params.get(name)
		if len(values) == 0 {
			continue
		}

		joined := stringify(values)

		switch {
		case sliceContainsString(rc.remapFields, name, false):
			t.query = append(t.query, fmt.Sprintf("%s:(%s)", name, joined))

		case name == "keyword" || name == "text":
			t.query = append(t.query, fmt.Sprintf("(%s)", joined))

		case dateFacetRegex.MatchString(name) && len(rc.dateFacetFields) > 0:
			t.addDateFacetFilters(values)

		case numberedFacetRegex.MatchString(name):
			field := numberedFacetRegex.ReplaceAllString(name, "facet-$1")
			for _, v := range values {
				t.filters = append(t.filters, fmt.Sprintf(`%s:"%s"`, field, unquote(v)))
			}

		case prefixedFacetRegex.MatchString(name):
			field := escapeFieldName(name)

			if rc.groupFacetValues == true {
				t.filters = append(t.filters, fmt.Sprintf(`%s:"%s"`, field, unquote(joined)))
				break
			}

			for _, v := range values {
				t.filters = append(t.filters, fmt.Sprintf(`%s:"%s"`, field, unquote(v)))
			}

		case name == "page":
			page := integerWithMinimum(values[0], 1)
			if t.rows > 0 && page-1 > maxStart/t.rows {
				page = 1
			}
			t.start = (page - 1) * t.rows

		case name == "sort":
			t.sort = "score desc"
			if sliceContainsString(sortableFields, values[0], false) {
				t.sort = fmt.Sprintf("sort-%s asc", values[0])
			}

		case name == "expand":
			if sliceContainsString(expandableFacets, values[0], false) {
				t.expand[fmt.Sprintf("f.facet-%s.facet.limit", values[0])] = "-1"
				t.expand[fmt.Sprintf("f.facet-%s.facet.sort", values[0])] = "-1"
			}

		case name == "rows":

		default:
			t.query = append(t.query, fmt.Sprintf("%s:(%s)", name, joined))
		}
	}
}

// escapeFieldName escapes whitespace so a field name like "s-Map theme" stays one term
func escapeFieldName(name string) string {
	return strings.ReplaceAll(name, " ", `\ `)
}

func (t *translation) addDateFacetFilters(values []string) {
	sorted := append([]string{}, values...)
	sort.Strings(sorted)

	for _, v := range sorted {
		sel := selectDateFacet(t.resource.dateFacetFields, v)

		for key, prefix := range sel.contains {
			t.contains[key] = prefix
		}

		t.filters = append(t.filters, fmt.Sprintf(`%s:"%s"`, sel.field, sel.value))
	}
}

func (t *translation) assemble() *solrQuery {
	q := strings.Join(t.query, " ")
	if sliceContainsString(degenerateQueries, q, false) {
		q = "*"
	}

	extra := make(map[string]string)

	for _, src := range []map[string]string{t.contains, t.expand} {
		for key, val := range src {
			extra[key] = val
		}
	}

	return &solrQuery{
		Q:         q,
		Fq:        t.filters,
		Sort:      t.sort,
		Start:     t.start,
		Rows:      t.rows,
		Params:    extra,
		FacetJSON: t.resource.facetJSON,
	}
}
