package main

import (
	"bytes"
	"compress/gzip"
	"encoding/base64"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
)

func main() {
	var facetFile string
	var solrHost string
	var solrPort string
	var tgtEnv string
	flag.StringVar(&facetFile, "facets", "", "json.facet template file")
	flag.StringVar(&solrHost, "host", "", "solr host")
	flag.StringVar(&solrPort, "port", "8983", "solr port")
	flag.StringVar(&tgtEnv, "env", "staging", "production or staging")
	flag.Parse()

	if facetFile == "" {
		log.Fatal("facets is required")
	}
	if tgtEnv != "staging" && tgtEnv != "production" {
		log.Fatal("env must be staging or production")
	}
	if solrHost == "" {
		solrHost = fmt.Sprintf("solr-%s.internal", tgtEnv)
	}

	log.Printf("Generate %s service config from %s", tgtEnv, facetFile)

	jsonBytes, err := os.ReadFile(facetFile)
	if err != nil {
		log.Fatal(err.Error())
	}

	if json.Valid(jsonBytes) == false {
		log.Fatalf("%s is not valid json", facetFile)
	}

	var gzBuf bytes.Buffer
	gz := gzip.NewWriter(&gzBuf)
	_, zErr := gz.Write(jsonBytes)
	if zErr != nil {
		log.Fatal(zErr.Error())
	}
	gz.Close()
	sEnc := base64.StdEncoding.EncodeToString(gzBuf.Bytes())

	out := []string{
		fmt.Sprintf("export SOLR_HOST=%s", solrHost),
		fmt.Sprintf("export SOLR_PORT=%s", solrPort),
		fmt.Sprintf("export FACET_QUERY_JSON=%s", sEnc),
	}

	outF, err := os.Create("setup_env.sh")
	if err != nil {
		log.Fatal(err.Error())
	}
	outF.WriteString("#!/bin/bash\n\n")
	outF.WriteString(strings.Join(out, "\n"))
	outF.WriteString("\n")
	outF.Close()
	os.Chmod("setup_env.sh", 0777)
}
