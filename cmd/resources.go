package main

import (
	"net/url"
	"regexp"
	"strings"
)

var (
	numberedFacetKeyRegex = regexp.MustCompile(`^f[0-9]+((-[a-zA-Z0-9]+)+)$`)
	numberedFacetRegex    = regexp.MustCompile(`^f[0-9]+-(.+)$`)
	dateFacetRegex        = regexp.MustCompile(`^f[0-9]+-date$`)
	prefixedFacetRegex    = regexp.MustCompile(`^(facet|s)-.+$`)
)

// resourceConfig holds everything that differs between resource kinds.
// built once at startup and read-only afterwards.
type resourceConfig struct {
	name             string            // canonical resource kind
	core             string            // backend collection
	fields           []paramField      // declared parameters, in output order
	fieldIndex       map[string]bool   // declared parameter lookup
	rowSizes         []int             // allowed page sizes
	facetRegex       *regexp.Regexp    // facet parameter predicate
	foldFacetKeys    bool              // collapse f<n>-<name> onto f1-<name>
	remapFields      []string          // fields searched as name:(value)
	excludeFlags     []string          // boolean flags dropped when "no"
	sectionTypes     map[string]string // sectionType -> content field
	dateFacetFields  []string          // hierarchical date facet fields, shallowest first
	collectionJoin   bool              // compose quoted collection tokens with AND/OR
	groupFacetValues bool              // one combined clause for multi-valued facet-/s- params
	documentTypes    []string          // indexable facet-document-type values
	writeParams      url.Values        // extra params for document writes
	facetJSON        string            // json.facet template sent with searches, if any
}

func (rc *resourceConfig) init() {
	rc.fieldIndex = make(map[string]bool)

	for _, f := range rc.fields {
		rc.fieldIndex[f.name] = true
	}
}

func (rc *resourceConfig) isDeclared(name string) bool {
	return rc.fieldIndex[name]
}

func (rc *resourceConfig) isFacet(name string) bool {
	return rc.facetRegex.MatchString(name)
}

// canonicalName returns the name a raw key is accepted under, if any.
// numbered facet keys collapse onto slot 1, e.g. "f3-author" => "f1-author".
func (rc *resourceConfig) canonicalName(name string) (string, bool) {
	if rc.foldFacetKeys == true {
		if m := numberedFacetKeyRegex.FindStringSubmatch(name); m != nil {
			return "f1" + m[1], true
		}
	}

	if rc.isDeclared(name) {
		return name, true
	}

	// page searches pass any facet-/s- parameter through as-is
	if rc.foldFacetKeys == false && prefixedFacetRegex.MatchString(name) {
		return name, true
	}

	return "", false
}

func (rc *resourceConfig) isWritable(documentType string) bool {
	return sliceContainsString(rc.documentTypes, documentType, false)
}

func coreFields() []paramField {
	return []paramField{
		{name: "keyword", normalize: joinValues},
		{name: "sort", normalize: firstValue},
		{name: "rows", normalize: firstValue},
		{name: "page", defaults: listify("1"), normalize: firstValue},
	}
}

func newItemResource(cfg *serviceConfig) *resourceConfig {
	fields := coreFields()

	fields = append(fields, []paramField{
		{name: "expand", normalize: firstValue},
		{name: "text"},
		{name: "sectionType", normalize: firstValue},
		{name: "search-author"},
		{name: "search-addressee"},
		{name: "search-correspondent"},
		{name: "search-repository"},
		{name: "exclude-cancelled", normalize: firstValue},
		{name: "exclude-widedate", normalize: firstValue},
		{name: "collection"},
		{name: "collection-join", normalize: firstValue},
		{name: "year", normalize: firstValue},
		{name: "month", normalize: firstValue},
		{name: "day", normalize: firstValue},
		{name: "year-max", normalize: firstValue},
		{name: "month-max", normalize: firstValue},
		{name: "day-max", normalize: firstValue},
		{name: "search-date-type", defaults: listify("on"), normalize: firstValue},
	}...)

	// canonical facets, so that they keep a stable position in the output
	for _, facet := range []string{"document-type", "author", "addressee", "correspondent", "year",
		"repository", "volume", "entry-cancelled", "document-online", "letter-published",
		"translation-published", "footnotes-published", "has-tnotes", "has-cdnotes",
		"has-annotations", "linked-to-cudl-images", "darwin-letter"} {
		fields = append(fields, paramField{name: "f1-" + facet})
	}

	rc := &resourceConfig{
		name:          "item",
		core:          cfg.ItemCore,
		fields:        fields,
		rowSizes:      []int{10, 20},
		facetRegex:    regexp.MustCompile(`^f[0-9]+-.+$`),
		foldFacetKeys: true,
		remapFields: []string{"exclude-widedate", "exclude-cancelled", "search-correspondent",
			"search-addressee", "search-author", "search-repository", "day", "month", "dateRange"},
		excludeFlags: []string{"exclude-widedate", "exclude-cancelled"},
		sectionTypes: map[string]string{
			"transcribed": "content_textual-content",
			"footnote":    "content_footnotes",
			"summary":     "content_summary",
		},
		dateFacetFields:  cfg.DateFacetFields,
		collectionJoin:   true,
		groupFacetValues: true,
		documentTypes:    []string{"letter", "bibliography", "people", "repository", "documentation"},
		writeParams:      url.Values{"f": []string{"$FQN:/**", "/*"}},
		facetJSON:        cfg.facetJSON,
	}

	rc.init()

	return rc
}

func newPageResource(cfg *serviceConfig) *resourceConfig {
	fields := coreFields()

	fields = append(fields, []paramField{
		{name: "s-commentary"},
		{name: "s-key-stage"},
		{name: "s-ages"},
		{name: "s-topics"},
		{name: "s-Map theme"},
		{name: "facet-searchable", defaults: listify("true"), normalize: searchableValue},
	}...)

	rc := &resourceConfig{
		name:          "page",
		core:          cfg.PageCore,
		fields:        fields,
		rowSizes:      []int{10, 20},
		facetRegex:    prefixedFacetRegex,
		documentTypes: []string{"site"},
		writeParams:   url.Values{"f": []string{"$FQN:/**"}},
	}

	rc.init()

	return rc
}

func searchableValue(values []string) []string {
	if v := firstElementOf(values); v == "true" || v == "false" {
		return listify(v)
	}

	return listify("true")
}

// resolveResource maps a resource name such as "items" or "Page" onto its
// configuration, or nil if there is none
func (svc *serviceContext) resolveResource(kind string) *resourceConfig {
	name := strings.TrimSuffix(strings.ToLower(kind), "s")

	return svc.resources[name]
}
