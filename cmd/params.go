package main

import (
	"net/url"
	"strconv"
	"strings"
)

// param is a single name/value pair, in the order it was supplied
type param struct {
	name   string
	values []string
}

// paramSet is an insertion-ordered parameter mapping.  values are always
// lists; single-valued parameters are one-element lists.
type paramSet struct {
	order  []string
	values map[string][]string
}

func newParamSet() *paramSet {
	return &paramSet{values: make(map[string][]string)}
}

func (p *paramSet) has(name string) bool {
	_, ok := p.values[name]
	return ok
}

func (p *paramSet) get(name string) []string {
	return p.values[name]
}

func (p *paramSet) first(name string) string {
	return firstElementOf(p.values[name])
}

// set replaces the values for name, keeping its position if already present
func (p *paramSet) set(name string, values []string) {
	if p.has(name) == false {
		p.order = append(p.order, name)
	}

	p.values[name] = values
}

// add appends values to name, creating it at the end if not present
func (p *paramSet) add(name string, values ...string) {
	p.set(name, append(p.values[name], values...))
}

func (p *paramSet) del(name string) {
	if p.has(name) == false {
		return
	}

	delete(p.values, name)

	for i, n := range p.order {
		if n == name {
			p.order = append(p.order[:i:i], p.order[i+1:]...)
			break
		}
	}
}

func (p *paramSet) names() []string {
	return append([]string{}, p.order...)
}

func (p *paramSet) merge(other *paramSet) *paramSet {
	res := newParamSet()

	for _, src := range []*paramSet{p, other} {
		for _, name := range src.order {
			res.set(name, append([]string{}, src.values[name]...))
		}
	}

	return res
}

// parseQueryParams splits a raw query string into ordered pairs.
// pairs that cannot be unescaped are skipped.
func parseQueryParams(rawQuery string) []param {
	var params []param

	for _, pair := range strings.Split(rawQuery, "&") {
		if pair == "" {
			continue
		}

		key, val, _ := strings.Cut(pair, "=")

		k, err := url.QueryUnescape(key)
		if err != nil || k == "" {
			continue
		}

		v, err := url.QueryUnescape(val)
		if err != nil {
			continue
		}

		params = append(params, param{name: k, values: []string{v}})
	}

	return params
}

// field-level normalizers

func joinValues(values []string) []string {
	return listify(stringify(values))
}

func firstValue(values []string) []string {
	return listify(firstElementOf(values))
}

// paramField declares one accepted input parameter for a resource kind
type paramField struct {
	name      string
	defaults  []string
	normalize func([]string) []string
}

// queryParams is the validated and normalized parameter set for one request
type queryParams struct {
	resource *resourceConfig
	fields   *paramSet
	rows     int
	page     int
}

// newQueryParams folds the raw parameters into the declared fields of the
// resource kind.  dynamic facet keys are collapsed onto their canonical name,
// and anything unrecognized is dropped.
func newQueryParams(rc *resourceConfig, raw []param, defaultRows int) *queryParams {
	accepted := newParamSet()

	// pass one: collapse each raw key onto its canonical name, accumulating
	// values in first-seen order; unrecognized keys are dropped

	for _, p := range raw {
		if name, ok := rc.canonicalName(p.name); ok == true {
			accepted.add(name, p.values...)
		}
	}

	// pass two: declared fields in declaration order (with defaults),
	// followed by dynamic keys in first-seen order

	fields := newParamSet()

	for _, f := range rc.fields {
		if accepted.has(f.name) {
			fields.set(f.name, accepted.get(f.name))
		} else if len(f.defaults) > 0 {
			fields.set(f.name, append([]string{}, f.defaults...))
		}
	}

	for _, name := range accepted.names() {
		if rc.isDeclared(name) == false {
			fields.set(name, accepted.get(name))
		}
	}

	// per-field normalization

	for _, f := range rc.fields {
		if f.normalize == nil || fields.has(f.name) == false {
			continue
		}

		fields.set(f.name, f.normalize(fields.get(f.name)))
	}

	for _, name := range fields.names() {
		fields.set(name, nonemptyValues(fields.get(name)))
	}

	q := queryParams{
		resource: rc,
		fields:   fields,
	}

	// row count is restricted to an allow-list, after list collapsing

	q.rows = integerInList(fields.first("rows"), rc.rowSizes, defaultRows)
	fields.set("rows", listify(strconv.Itoa(q.rows)))

	q.page = integerWithMinimum(fields.first("page"), 1)
	fields.set("page", listify(strconv.Itoa(q.page)))

	return &q
}

func (q *queryParams) isFacet(name string) bool {
	return q.resource.isFacet(name)
}

// separateParameters returns the non-empty fields split into plain query
// parameters and facet parameters, each in field order
func (q *queryParams) separateParameters() (*paramSet, *paramSet) {
	params := newParamSet()
	facets := newParamSet()

	for _, name := range q.fields.names() {
		values := q.fields.get(name)

		if len(values) == 0 {
			continue
		}

		if q.isFacet(name) {
			facets.set(name, append([]string{}, values...))
		} else {
			params.set(name, append([]string{}, values...))
		}
	}

	return params, facets
}
