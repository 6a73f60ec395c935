package main

import (
	"encoding/json"
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// indexDocument holds the fields of an incoming document that decide
// whether it may be indexed.  the document is otherwise passed on as-is.
type indexDocument struct {
	DocumentType string `mapstructure:"facet-document-type"`
	FileID       string `mapstructure:"fileID"`
}

func parseIndexDocument(body []byte) (*indexDocument, error) {
	var raw map[string]interface{}

	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("document is not a JSON object")
	}

	var doc indexDocument

	cfg := &mapstructure.DecoderConfig{
		Result:           &doc,
		WeaklyTypedInput: true,
	}

	dec, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return nil, err
	}

	if err := dec.Decode(raw); err != nil {
		return nil, fmt.Errorf("document fields cannot be decoded: %w", err)
	}

	return &doc, nil
}
