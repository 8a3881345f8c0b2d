package sim

import (
	"encoding/json"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
)

func TestGenerateDatasetIsDeterministic(t *testing.T) {
	frame := Frame{Videos: 6, Endpoints: 3, Requests: 8, Caches: 2, Capacity: 20, Seed: 7}

	first := GenerateDataset(frame)
	second := GenerateDataset(frame)

	for v := range first.Videos {
		if first.Videos[v].Size != second.Videos[v].Size {
			t.Fatalf("video %d differs between runs", v)
		}
	}
	for r := range first.Requests {
		if first.Requests[r] != second.Requests[r] {
			t.Fatalf("request %d differs between runs", r)
		}
	}
	for e := range first.Endpoints {
		if len(first.Endpoints[e].CacheLatencies) != len(second.Endpoints[e].CacheLatencies) {
			t.Fatalf("endpoint %d differs between runs", e)
		}
	}
}

func TestGenerateDatasetStaysInRange(t *testing.T) {
	data := GenerateDataset(Frame{Videos: 10, Endpoints: 4, Requests: 20, Caches: 3, Capacity: 50, Seed: 1})

	for _, request := range data.Requests {
		if request.Video < 0 || request.Video >= len(data.Videos) {
			t.Fatalf("request references video %d", request.Video)
		}
		if request.Endpoint < 0 || request.Endpoint >= len(data.Endpoints) {
			t.Fatalf("request references endpoint %d", request.Endpoint)
		}
	}
	for _, endpoint := range data.Endpoints {
		for cache := range endpoint.CacheLatencies {
			if cache < 0 || cache >= data.Caches {
				t.Fatalf("endpoint references cache %d", cache)
			}
		}
	}
}

func TestRunProducesReport(t *testing.T) {
	dir := t.TempDir()

	scenario := []Frame{{Videos: 4, Endpoints: 2, Requests: 5, Caches: 2, Capacity: 20, Seed: 11}}
	content, err := json.Marshal(scenario)
	if err != nil {
		t.Fatalf("could not marshal scenario: %v", err)
	}

	scenarioPath := filepath.Join(dir, "scenario.json")
	reportPath := filepath.Join(dir, "report.json")
	if err := ioutil.WriteFile(scenarioPath, content, 0644); err != nil {
		t.Fatalf("could not write scenario: %v", err)
	}

	if err := Run(scenarioPath, reportPath); err != nil {
		t.Fatalf("sim run failed: %v", err)
	}

	if _, err := os.Stat(reportPath); err != nil {
		t.Fatalf("expected a report file: %v", err)
	}

	reportContent, err := ioutil.ReadFile(reportPath)
	if err != nil {
		t.Fatalf("could not read report: %v", err)
	}

	var parsed struct {
		Objectives []float64 `json:"objectives"`
		Variables  []int     `json:"variables"`
		Nodes      []int     `json:"nodes"`
	}
	if err := json.Unmarshal(reportContent, &parsed); err != nil {
		t.Fatalf("could not parse report: %v", err)
	}

	if len(parsed.Objectives) != 1 || len(parsed.Variables) != 1 {
		t.Fatalf("expected one entry per frame, got %+v", parsed)
	}
	if parsed.Objectives[0] < 0 {
		t.Fatalf("objective can never be negative, got %g", parsed.Objectives[0])
	}
}
