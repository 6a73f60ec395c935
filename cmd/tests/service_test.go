package tests

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v2"
)

type testConfig struct {
	Endpoint string
}

var cfg = loadConfig()

var httpClient = &http.Client{Timeout: 30 * time.Second}

func emptyField(field string) bool {
	return len(strings.TrimSpace(field)) == 0
}

func loadConfig() testConfig {

	var c testConfig

	data, err := os.ReadFile("service_test.yml")
	if err == nil {
		if err := yaml.Unmarshal(data, &c); err != nil {
			log.Fatal(err)
		}
	}

	// allow environment variables to override the configuration file
	if len(os.Getenv("TC_ENDPOINT")) != 0 {
		c.Endpoint = os.Getenv("TC_ENDPOINT")
	}

	log.Printf("endpoint [%s]\n", c.Endpoint)

	return c
}

func requireEndpoint(t *testing.T) string {
	if emptyField(cfg.Endpoint) == true {
		t.Skip("no service endpoint configured")
	}

	return strings.TrimSuffix(cfg.Endpoint, "/")
}

func get(endpoint string, path string) (int, []byte) {
	url := fmt.Sprintf("%s%s", endpoint, path)

	resp, err := httpClient.Get(url)
	if err != nil {
		log.Printf("GET %s failed: %s", url, err.Error())
		return http.StatusBadGateway, nil
	}

	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	return resp.StatusCode, body
}

// VersionCheck returns the status and build version reported by the service
func VersionCheck(endpoint string) (int, string) {
	status, body := get(endpoint, "/version")

	var v struct {
		Build string `json:"build"`
	}

	json.Unmarshal(body, &v)

	return status, v.Build
}

// HealthCheck returns the status reported by the service health check
func HealthCheck(endpoint string) int {
	status, _ := get(endpoint, "/healthcheck")
	return status
}

// Search runs a search against a resource and returns the status and decoded body
func Search(endpoint string, resource string, query string) (int, map[string]interface{}) {
	status, body := get(endpoint, fmt.Sprintf("/%s?%s", resource, query))

	var res map[string]interface{}

	json.Unmarshal(body, &res)

	return status, res
}

//
// end of file
//
