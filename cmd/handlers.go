package main

import (
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// resourceKind returns the resource named by the first segment of the
// matched route, e.g. "/items" => "items", "/page/:id" => "page"
func resourceKind(c *gin.Context) string {
	path := strings.TrimPrefix(c.FullPath(), "/")
	kind, _, _ := strings.Cut(path, "/")
	return kind
}

func respond(c *gin.Context, resp serviceResponse) {
	if resp.err != nil {
		c.JSON(resp.status, gin.H{"detail": resp.err.Error()})
		return
	}

	c.JSON(resp.status, resp.data)
}

func (svc *serviceContext) searchHandler(c *gin.Context) {
	cl := clientContext{}
	cl.init(c)

	s := searchContext{}
	s.init(svc, &cl, resourceKind(c))

	cl.logRequest()
	resp := s.handleSearchRequest(parseQueryParams(c.Request.URL.RawQuery))
	cl.logResponse(resp)

	respond(c, resp)
}

func (svc *serviceContext) writeHandler(c *gin.Context) {
	cl := clientContext{}
	cl.init(c)

	s := searchContext{}
	s.init(svc, &cl, resourceKind(c))

	cl.logRequest()

	var resp serviceResponse

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		cl.err("ReadAll() failed: %s", err.Error())
		resp = serviceResponse{status: http.StatusInternalServerError, err: err}
	} else {
		resp = s.handleWriteRequest(body)
	}

	cl.logResponse(resp)

	respond(c, resp)
}

func (svc *serviceContext) deleteHandler(c *gin.Context) {
	cl := clientContext{}
	cl.init(c)

	s := searchContext{}
	s.init(svc, &cl, resourceKind(c))

	cl.logRequest()
	resp := s.handleDeleteRequest(c.Param("id"))
	cl.logResponse(resp)

	respond(c, resp)
}

func (svc *serviceContext) ignoreHandler(c *gin.Context) {
}

func (svc *serviceContext) versionHandler(c *gin.Context) {
	c.JSON(http.StatusOK, svc.version)
}

func (svc *serviceContext) healthCheckHandler(c *gin.Context) {
	cl := clientContext{}
	cl.init(c)

	// build response

	internalServiceError := false

	type hcResp struct {
		Healthy bool   `json:"healthy"`
		Message string `json:"message,omitempty"`
	}

	hcMap := make(map[string]hcResp)

	for _, kind := range []string{"item", "page"} {
		s := searchContext{}
		s.init(svc, &cl, kind)

		hc := hcResp{Healthy: true}

		if ping := s.handlePingRequest(); ping.err != nil {
			internalServiceError = true
			hc = hcResp{Healthy: false, Message: ping.err.Error()}
		}

		hcMap["solr-"+kind] = hc
	}

	hcStatus := http.StatusOK
	if internalServiceError == true {
		hcStatus = http.StatusInternalServerError
	}

	c.JSON(hcStatus, hcMap)
}
