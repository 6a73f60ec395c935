package main

import (
	"bytes"
	"compress/gzip"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/mcuadros/go-defaults"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

type serviceConfig struct {
	// backend
	SolrHost    string `mapstructure:"SOLR_HOST" validate:"required"`
	SolrPort    string `mapstructure:"SOLR_PORT" validate:"required"`
	SolrTimeout int    `mapstructure:"SOLR_TIMEOUT" default:"60" validate:"min=1"`
	SolrRetries int    `mapstructure:"SOLR_RETRIES" default:"2" validate:"min=0"`

	// collections
	ItemCore string `mapstructure:"ITEM_CORE" default:"dcp" validate:"required"`
	PageCore string `mapstructure:"PAGE_CORE" default:"site" validate:"required"`

	// search
	DefaultRows        int    `mapstructure:"DEFAULT_ROWS" default:"20" validate:"min=1"`
	DateFacetFieldsStr string `mapstructure:"DATE_FACET_FIELDS" default:"facet-year,facet-year-month,facet-year-month-day" validate:"required"`
	FacetQueryJSON     string `mapstructure:"FACET_QUERY_JSON" default:""`

	// service
	ListenPort     string `mapstructure:"LISTEN_PORT" default:"8080" validate:"required"`
	CorsOriginsStr string `mapstructure:"CORS_ORIGINS" default:"http://localhost:5173,https://darwin-editorial.cudl-sandbox.net,https://darwin-editorial.darwinproject.ac.uk"`
	PprofEnabled   bool   `mapstructure:"PPROF_ENABLED" default:"false"`
	LogLevel       string `mapstructure:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`

	// derived
	DateFacetFields []string `mapstructure:"-"`
	CorsOrigins     []string `mapstructure:"-"`
	facetJSON       string
}

var configKeys = []string{
	"SOLR_HOST",
	"SOLR_PORT",
	"SOLR_TIMEOUT",
	"SOLR_RETRIES",
	"ITEM_CORE",
	"PAGE_CORE",
	"DEFAULT_ROWS",
	"DATE_FACET_FIELDS",
	"FACET_QUERY_JSON",
	"LISTEN_PORT",
	"CORS_ORIGINS",
	"PPROF_ENABLED",
	"LOG_LEVEL",
}

func loadConfig() (*serviceConfig, error) {
	v := viper.New()

	for _, key := range configKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, err
		}
	}

	cfg := serviceConfig{}

	defaults.SetDefaults(&cfg)

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	cfg.DateFacetFields = splitList(cfg.DateFacetFieldsStr)
	cfg.CorsOrigins = splitList(cfg.CorsOriginsStr)

	if len(cfg.DateFacetFields) == 0 || len(cfg.CorsOrigins) == 0 {
		return nil, fmt.Errorf("invalid config: DATE_FACET_FIELDS and CORS_ORIGINS must list at least one value")
	}

	facetJSON, err := facetTemplate(cfg.FacetQueryJSON)
	if err != nil {
		return nil, err
	}

	cfg.facetJSON = facetJSON

	return &cfg, nil
}

func (cfg *serviceConfig) log() {
	zap.S().Infof("[CONFIG] solr.host          = [%s]", cfg.SolrHost)
	zap.S().Infof("[CONFIG] solr.port          = [%s]", cfg.SolrPort)
	zap.S().Infof("[CONFIG] solr.timeout       = [%d]", cfg.SolrTimeout)
	zap.S().Infof("[CONFIG] solr.retries       = [%d]", cfg.SolrRetries)
	zap.S().Infof("[CONFIG] core.item          = [%s]", cfg.ItemCore)
	zap.S().Infof("[CONFIG] core.page          = [%s]", cfg.PageCore)
	zap.S().Infof("[CONFIG] search.defaultRows = [%d]", cfg.DefaultRows)
	zap.S().Infof("[CONFIG] search.dateFacets  = [%s]", strings.Join(cfg.DateFacetFields, ", "))
	zap.S().Infof("[CONFIG] search.facetJSON   = [%d bytes]", len(cfg.facetJSON))
	zap.S().Infof("[CONFIG] service.port       = [%s]", cfg.ListenPort)
	zap.S().Infof("[CONFIG] service.cors       = [%s]", strings.Join(cfg.CorsOrigins, ", "))
	zap.S().Infof("[CONFIG] service.pprof      = [%v]", cfg.PprofEnabled)
	zap.S().Infof("[CONFIG] service.logLevel   = [%s]", cfg.LogLevel)
}

func splitList(s string) []string {
	var res []string

	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			res = append(res, item)
		}
	}

	return res
}

// facetTemplate returns the compacted "facet" object of a json.facet
// template.  the template may be plain JSON or gzipped and base64 encoded;
// an empty value selects the built-in template.
func facetTemplate(raw string) (string, error) {
	raw = strings.TrimSpace(raw)

	if raw == "" {
		raw = defaultFacetQuery
	}

	data := []byte(raw)

	if json.Valid(data) == false {
		decoded, err := decodeCompressed(raw)
		if err != nil {
			return "", fmt.Errorf("FACET_QUERY_JSON is neither JSON nor gzip+base64: %w", err)
		}

		data = decoded
	}

	var template map[string]json.RawMessage

	if err := json.Unmarshal(data, &template); err != nil {
		return "", fmt.Errorf("FACET_QUERY_JSON is not a JSON object: %w", err)
	}

	if facet, ok := template["facet"]; ok == true {
		data = facet
	}

	var buf bytes.Buffer

	if err := json.Compact(&buf, data); err != nil {
		return "", fmt.Errorf("FACET_QUERY_JSON cannot be compacted: %w", err)
	}

	return buf.String(), nil
}

func decodeCompressed(s string) ([]byte, error) {
	compressed, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, err
	}

	gz, err := gzip.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, err
	}

	defer gz.Close()

	data, err := io.ReadAll(gz)
	if err != nil {
		return nil, err
	}

	if json.Valid(data) == false {
		return nil, fmt.Errorf("decompressed value is not valid JSON")
	}

	return data, nil
}

const defaultFacetQuery = `{"facet":{
"f1-document-type":{"type":"terms","field":"facet-document-type","limit":10,"sort":{"index":"asc"}},
"f1-author":{"type":"terms","field":"facet-author","limit":5,"sort":{"count":"desc"}},
"f1-addressee":{"type":"terms","field":"facet-addressee","limit":5,"sort":{"count":"desc"}},
"f1-correspondent":{"type":"terms","field":"facet-correspondent","limit":5,"sort":{"count":"desc"}},
"f1-repository":{"type":"terms","field":"facet-repository","limit":5,"sort":{"index":"asc"}},
"f1-volume":{"type":"terms","field":"facet-volume","limit":5,"sort":{"index":"asc"}},
"f1-entry-cancelled":{"type":"terms","field":"facet-entry-cancelled","limit":5,"sort":{"index":"desc"}},
"f1-document-online":{"type":"terms","field":"facet-document-online","limit":5,"sort":{"index":"desc"}},
"f1-letter-published":{"type":"terms","field":"facet-letter-published","limit":5,"sort":{"index":"desc"}},
"f1-translation-published":{"type":"terms","field":"facet-translation-published","limit":5,"sort":{"index":"desc"}},
"f1-footnotes-published":{"type":"terms","field":"facet-footnotes-published","limit":5,"sort":{"index":"desc"}},
"f1-has-tnotes":{"type":"terms","field":"facet-has-tnotes","limit":5,"sort":{"index":"desc"}},
"f1-has-cdnotes":{"type":"terms","field":"facet-has-cdnotes","limit":5,"sort":{"index":"desc"}},
"f1-has-annotations":{"type":"terms","field":"facet-has-annotations","limit":5,"sort":{"index":"desc"}},
"f1-linked-to-cudl-images":{"type":"terms","field":"facet-linked-to-cudl-images","limit":5,"sort":{"index":"desc"}},
"f1-darwin-letter":{"type":"terms","field":"facet-darwin-letter","limit":5,"sort":{"index":"desc"}},
"f1-year":{"type":"terms","field":"facet-year","limit":100,"sort":{"index":"asc"},"facet":{
  "f1-year-month":{"type":"terms","field":"facet-year-month","limit":24,"sort":{"index":"asc"},"facet":{
    "f1-year-month-day":{"type":"terms","field":"facet-year-month-day","limit":62,"sort":{"index":"asc"}}}}}}
}}`
