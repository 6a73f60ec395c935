package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

type searchContext struct {
	svc      *serviceContext
	client   *clientContext
	resource *resourceConfig
}

type serviceResponse struct {
	status int         // http status code
	data   interface{} // data to return as JSON
	err    error       // error, if any
}

func (s *searchContext) init(svc *serviceContext, c *clientContext, kind string) {
	s.svc = svc
	s.client = c
	s.resource = svc.resolveResource(kind)
}

func (s *searchContext) ctx() context.Context {
	if s.client.ginCtx == nil || s.client.ginCtx.Request == nil {
		return context.Background()
	}

	return s.client.ginCtx.Request.Context()
}

func (s *searchContext) log(format string, args ...interface{}) {
	s.client.log(format, args...)
}

func (s *searchContext) err(format string, args ...interface{}) {
	s.client.err(format, args...)
}

// errorResponse maps an error onto a response, keeping backend statuses
func errorResponse(err error) serviceResponse {
	var uerr *upstreamError
	if errors.As(err, &uerr) {
		return serviceResponse{status: uerr.status, err: uerr}
	}

	return serviceResponse{status: http.StatusInternalServerError, err: err}
}

func (s *searchContext) checkResource() *serviceResponse {
	if s.resource != nil {
		return nil
	}

	s.err("no collection configured for this resource")

	return &serviceResponse{status: http.StatusInternalServerError, err: fmt.Errorf("invalid resource")}
}

func (s *searchContext) handleSearchRequest(raw []param) serviceResponse {
	if resp := s.checkResource(); resp != nil {
		return *resp
	}

	qp := newQueryParams(s.resource, raw, s.svc.config.DefaultRows)
	query := translateQuery(qp)

	data, err := s.solrSearch(query, s.client.opts.OriginalSort)
	if err != nil {
		return errorResponse(err)
	}

	if s.client.opts.Debug == true {
		data["debug_query"] = query.values()
	}

	return serviceResponse{status: http.StatusOK, data: data}
}

func (s *searchContext) handleWriteRequest(body []byte) serviceResponse {
	if resp := s.checkResource(); resp != nil {
		return *resp
	}

	doc, err := parseIndexDocument(body)
	if err != nil {
		s.err("unreadable document: %s", err.Error())
		return serviceResponse{status: http.StatusInternalServerError, err: err}
	}

	if s.resource.isWritable(doc.DocumentType) == false {
		s.err("%s document does not conform to expectations: [%s] (type [%s])", s.resource.name, doc.FileID, doc.DocumentType)
		return serviceResponse{status: http.StatusInternalServerError, err: fmt.Errorf("ineligible document type: [%s]", doc.DocumentType)}
	}

	s.log("indexing %s [%s]", s.resource.name, doc.FileID)

	status, err := s.solrWrite(body)
	if err != nil {
		return errorResponse(err)
	}

	return serviceResponse{status: status, data: status}
}

func (s *searchContext) handleDeleteRequest(id string) serviceResponse {
	if resp := s.checkResource(); resp != nil {
		return *resp
	}

	s.log("deleting %s [%s]", s.resource.name, id)

	status, err := s.solrDelete(id)
	if err != nil {
		return errorResponse(err)
	}

	return serviceResponse{status: status, data: status}
}

func (s *searchContext) handlePingRequest() serviceResponse {
	if resp := s.checkResource(); resp != nil {
		return *resp
	}

	if err := s.solrPing(); err != nil {
		return errorResponse(err)
	}

	return serviceResponse{status: http.StatusOK}
}
