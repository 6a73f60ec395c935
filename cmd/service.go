package main

import (
	"fmt"
	"net"
	"net/http"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"go.uber.org/zap"
)

// git commit used for this build; supplied at compile time
var gitCommit string

type serviceVersion struct {
	BuildVersion string `json:"build,omitempty"`
	GoVersion    string `json:"go_version,omitempty"`
	GitCommit    string `json:"git_commit,omitempty"`
}

type serviceSolr struct {
	client            *http.Client
	healthcheckClient *http.Client
	url               string
	retries           int
}

type serviceContext struct {
	config    *serviceConfig
	version   serviceVersion
	solr      serviceSolr
	resources map[string]*resourceConfig
}

func (svc *serviceContext) initVersion() {
	buildVersion := "unknown"
	files, _ := filepath.Glob("buildtag.*")
	if len(files) == 1 {
		buildVersion = strings.Replace(files[0], "buildtag.", "", 1)
	}

	svc.version = serviceVersion{
		BuildVersion: buildVersion,
		GoVersion:    fmt.Sprintf("%s %s/%s", runtime.Version(), runtime.GOOS, runtime.GOARCH),
		GitCommit:    gitCommit,
	}

	zap.S().Infof("[SERVICE] version.BuildVersion = [%s]", svc.version.BuildVersion)
	zap.S().Infof("[SERVICE] version.GoVersion    = [%s]", svc.version.GoVersion)
	zap.S().Infof("[SERVICE] version.GitCommit    = [%s]", svc.version.GitCommit)
}

func newSolrClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout:   5 * time.Second,
				KeepAlive: 60 * time.Second,
			}).DialContext,
			MaxIdleConns:        100, // we are hitting one solr host, so
			MaxIdleConnsPerHost: 100, // these two values can be the same
			IdleConnTimeout:     90 * time.Second,
		},
	}
}

func (svc *serviceContext) initSolr() {
	host := svc.config.SolrHost
	if strings.Contains(host, "://") == false {
		host = "http://" + host
	}

	svc.solr = serviceSolr{
		client:            newSolrClient(time.Duration(svc.config.SolrTimeout) * time.Second),
		healthcheckClient: newSolrClient(5 * time.Second),
		url:               fmt.Sprintf("%s:%s/solr", strings.TrimSuffix(host, "/"), svc.config.SolrPort),
		retries:           svc.config.SolrRetries,
	}

	zap.S().Infof("[SERVICE] solr.url             = [%s]", svc.solr.url)
	zap.S().Infof("[SERVICE] solr.timeout         = [%v]", svc.solr.client.Timeout)
	zap.S().Infof("[SERVICE] solr.retries         = [%d]", svc.solr.retries)
}

func (svc *serviceContext) initResources() {
	svc.resources = make(map[string]*resourceConfig)

	for _, rc := range []*resourceConfig{newItemResource(svc.config), newPageResource(svc.config)} {
		svc.resources[rc.name] = rc
		zap.S().Infof("[SERVICE] resource.%-12s = [%s] (%d fields)", rc.name, rc.core, len(rc.fields))
	}
}

func initializeService(cfg *serviceConfig) *serviceContext {
	svc := serviceContext{}

	svc.config = cfg

	svc.initVersion()
	svc.initSolr()
	svc.initResources()

	return &svc
}
