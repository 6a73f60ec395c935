package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/mitchellh/mapstructure"
)

// upstreamError is a failed or unsuccessful backend call
type upstreamError struct {
	status int
	msg    string
}

func (e *upstreamError) Error() string {
	return e.msg
}

// transportError wraps a failure to reach the backend at all
func transportError(err error) *upstreamError {
	return &upstreamError{status: http.StatusBadGateway, msg: lastSegmentOf(err.Error(), ":")}
}

// backendError builds an upstream error from an unsuccessful backend
// response, preferring the status and message in its error body
func backendError(status int, body []byte) *upstreamError {
	var raw map[string]interface{}

	if err := json.Unmarshal(body, &raw); err == nil {
		var res solrResponse

		if err := decodeSolrResponse(raw, &res); err == nil && res.Error.Msg != "" {
			code := res.ResponseHeader.Status
			if code < 400 || code > 599 {
				code = status
			}

			return &upstreamError{status: code, msg: res.Error.Msg}
		}
	}

	return &upstreamError{status: http.StatusBadGateway, msg: fmt.Sprintf("backend returned %d %s", status, http.StatusText(status))}
}

func decodeSolrResponse(raw map[string]interface{}, res *solrResponse) error {
	cfg := &mapstructure.DecoderConfig{
		Metadata:         nil,
		Result:           res,
		TagName:          "json",
		WeaklyTypedInput: true,
	}

	dec, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return err
	}

	return dec.Decode(raw)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	return false
}

func (s *searchContext) solrURL(handler string, params url.Values) string {
	u := fmt.Sprintf("%s/%s/%s", s.svc.solr.url, s.resource.core, handler)

	if len(params) > 0 {
		u = u + "?" + params.Encode()
	}

	return u
}

// solrDo performs one backend call, returning the decoded body on success.
// failures to get any response at all are retryable; everything else is final.
func (s *searchContext) solrDo(client *http.Client, method, u string, body []byte) (map[string]interface{}, int, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(s.ctx(), method, u, reader)
	if err != nil {
		s.err("NewRequest() failed: %s", err.Error())
		return nil, 0, backoff.Permanent(transportError(err))
	}

	req.Header.Set("Content-Type", "application/json; charset=UTF-8")

	start := time.Now()
	res, err := client.Do(req)
	elapsedMS := int64(time.Since(start) / time.Millisecond)

	if err != nil {
		s.err("Failed response from %s %s. Elapsed Time: %d (ms): %s", method, u, elapsedMS, err.Error())

		if isTimeout(err) || errors.Is(err, context.Canceled) {
			return nil, 0, backoff.Permanent(transportError(err))
		}

		return nil, 0, transportError(err)
	}

	defer res.Body.Close()

	resBody, err := io.ReadAll(res.Body)
	if err != nil {
		s.err("ReadAll() failed: %s", err.Error())
		return nil, res.StatusCode, backoff.Permanent(transportError(err))
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		uerr := backendError(res.StatusCode, resBody)
		s.err("Failed response from %s %s - %d:%s. Elapsed Time: %d (ms)", method, u, uerr.status, uerr.msg, elapsedMS)
		return nil, res.StatusCode, backoff.Permanent(uerr)
	}

	s.log("Successful response from %s %s. Elapsed Time: %d (ms)", method, s.resource.core, elapsedMS)

	var data map[string]interface{}

	dec := json.NewDecoder(bytes.NewReader(resBody))
	dec.UseNumber()

	if err := dec.Decode(&data); err != nil {
		s.err("Decode() failed: %s", err.Error())
		return nil, res.StatusCode, backoff.Permanent(&upstreamError{status: http.StatusBadGateway, msg: "invalid backend response"})
	}

	return data, res.StatusCode, nil
}

// solrRetry runs a backend call with bounded exponential backoff
func (s *searchContext) solrRetry(op func() error) error {
	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 0

	notify := func(err error, next time.Duration) {
		s.log("[SOLR] retrying in %v: %s", next, err.Error())
	}

	err := backoff.RetryNotify(op, backoff.WithContext(backoff.WithMaxRetries(bo, uint64(s.svc.solr.retries)), s.ctx()), notify)
	if err == nil {
		return nil
	}

	var uerr *upstreamError
	if errors.As(err, &uerr) {
		return uerr
	}

	return transportError(err)
}

// solrSearch runs a translated query against the resource's collection.
// if originalSort is set, it replaces the sort echoed back by the backend.
func (s *searchContext) solrSearch(query *solrQuery, originalSort string) (map[string]interface{}, error) {
	u := s.solrURL("spell", query.values())

	if s.client.opts.Verbose == true {
		s.log("[SOLR] req: [%s]", u)
	} else {
		s.log("[SOLR] req: q = [%s], fq = %v, sort = [%s], start = %d, rows = %d", query.Q, query.Fq, query.Sort, query.Start, query.Rows)
	}

	var data map[string]interface{}

	op := func() error {
		var err error
		data, _, err = s.solrDo(s.svc.solr.client, http.MethodGet, u, nil)
		return err
	}

	if err := s.solrRetry(op); err != nil {
		return nil, err
	}

	var res solrResponse
	if err := decodeSolrResponse(data, &res); err != nil {
		s.err("response header decode failed: %s", err.Error())
	}

	s.log("[SOLR] res: header: { status = %d, QTime = %d }, body: { numFound = %d, start = %d }",
		res.ResponseHeader.Status, res.ResponseHeader.QTime, res.Response.NumFound, res.Response.Start)

	if originalSort != "" {
		restoreSortLabel(data, originalSort)
	}

	return data, nil
}

// restoreSortLabel overwrites the sort parameter echoed in the response
// header, if there is one
func restoreSortLabel(data map[string]interface{}, sort string) {
	header, ok := data["responseHeader"].(map[string]interface{})
	if ok == false {
		return
	}

	params, ok := header["params"].(map[string]interface{})
	if ok == false {
		return
	}

	if _, ok := params["sort"]; ok == true {
		params["sort"] = sort
	}
}

// solrWrite posts a raw document to the collection's bulk-index endpoint
func (s *searchContext) solrWrite(doc []byte) (int, error) {
	u := s.solrURL("update/json/docs", s.resource.writeParams)

	_, status, err := s.solrDo(s.svc.solr.client, http.MethodPost, u, doc)
	if err != nil {
		return 0, s.unwrapPermanent(err)
	}

	return status, nil
}

// solrDelete removes all documents with the given identifier.  the backend
// status is returned as-is, including unsuccessful ones.
func (s *searchContext) solrDelete(id string) (int, error) {
	cmd := solrDeleteCommand{Delete: solrDeleteQuery{Query: fmt.Sprintf("fileID:%s", id)}}

	body, err := json.Marshal(cmd)
	if err != nil {
		return 0, err
	}

	_, status, err := s.solrDo(s.svc.solr.client, http.MethodPost, s.solrURL("update", nil), body)
	if err != nil && status == 0 {
		return 0, s.unwrapPermanent(err)
	}

	return status, nil
}

// solrPing checks that the collection answers a match-all query
func (s *searchContext) solrPing() error {
	params := url.Values{}
	params.Set("q", "*")
	params.Set("rows", "0")

	_, _, err := s.solrDo(s.svc.solr.healthcheckClient, http.MethodGet, s.solrURL("spell", params), nil)

	return s.unwrapPermanent(err)
}

func (s *searchContext) unwrapPermanent(err error) error {
	if err == nil {
		return nil
	}

	var uerr *upstreamError
	if errors.As(err, &uerr) {
		return uerr
	}

	return err
}
