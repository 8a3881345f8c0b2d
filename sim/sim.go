// Package sim generates synthetic datasets and drives the whole
// pipeline over them, producing a JSON report. It exists for sizing the
// formulation and the search on inputs larger than the checked-in
// fixtures.
package sim

import (
	"context"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"math/rand"
	"time"

	"github.com/streamopt/cacheplan/alg"
	"github.com/streamopt/cacheplan/internal/model"
	"github.com/streamopt/cacheplan/internal/solver"
	"github.com/streamopt/cacheplan/logging"
)

var log = logging.Get()

type Frame struct {
	Videos    int   `json:"videos"`
	Endpoints int   `json:"endpoints"`
	Requests  int   `json:"requests"`
	Caches    int   `json:"caches"`
	Capacity  int   `json:"capacity"`
	Seed      int64 `json:"seed"`
}

var report struct {
	Objectives []float64 `json:"objectives"`
	Variables  []int     `json:"variables"`
	Nodes      []int     `json:"nodes"`
	SolveMs    []int64   `json:"solve_ms"`
}

// GenerateDataset builds a random dataset from a frame description. The
// same frame always yields the same dataset. Roughly one video in ten is
// generated oversized and some links are generated slower than the
// datacenter, so the sparsity filters stay exercised.
func GenerateDataset(frame Frame) *model.Dataset {
	rng := rand.New(rand.NewSource(frame.Seed))

	data := &model.Dataset{
		Videos:        make([]model.Video, frame.Videos),
		Caches:        frame.Caches,
		CacheCapacity: frame.Capacity,
	}

	for v := range data.Videos {
		size := 1 + rng.Intn(frame.Capacity)
		if rng.Intn(10) == 0 {
			size = frame.Capacity + 1 + rng.Intn(frame.Capacity)
		}
		data.Videos[v] = model.Video{Id: v, Size: size}
	}

	for e := 0; e < frame.Endpoints; e++ {
		endpoint := &model.Endpoint{
			Id:                e,
			DatacenterLatency: 200 + rng.Intn(800),
			CacheLatencies:    make(map[int]int),
		}

		links := 1 + rng.Intn(frame.Caches)
		for k := 0; k < links; k++ {
			endpoint.CacheLatencies[rng.Intn(frame.Caches)] = 10 + rng.Intn(1200)
		}

		data.Endpoints = append(data.Endpoints, endpoint)
	}

	for r := 0; r < frame.Requests; r++ {
		data.Requests = append(data.Requests, model.Request{
			Id:       r,
			Video:    rng.Intn(frame.Videos),
			Endpoint: rng.Intn(frame.Endpoints),
			Count:    1 + rng.Intn(1000),
		})
	}

	return data
}

// Run executes every frame of the scenario file and writes the report.
func Run(scenarioPath, reportPath string) error {
	content, err := ioutil.ReadFile(scenarioPath)
	if err != nil {
		return fmt.Errorf("could not read scenario: %w", err)
	}

	var frames []Frame
	if err := json.Unmarshal(content, &frames); err != nil {
		return fmt.Errorf("could not parse scenario: %w", err)
	}

	for index, frame := range frames {
		data := GenerateDataset(frame)

		placementModel, err := alg.BuildPlacementModel(data)
		if err != nil {
			return err
		}

		engine := solver.NewBranchBound(nil)
		started := time.Now()
		solution, err := engine.Solve(context.Background(), placementModel.Model, solver.Options{
			RelativeGap: 0.005,
		})
		if err != nil {
			return err
		}
		elapsed := time.Since(started)

		log.Info().Msgf(
			"frame %d: %s, objective %g after %d nodes in %s",
			index, solution.Status, solution.Objective, solution.Nodes, elapsed,
		)

		report.Objectives = append(report.Objectives, solution.Objective)
		report.Variables = append(report.Variables, placementModel.Model.NumVars())
		report.Nodes = append(report.Nodes, solution.Nodes)
		report.SolveMs = append(report.SolveMs, elapsed.Milliseconds())
	}

	reportContent, err := json.Marshal(report)
	if err != nil {
		return err
	}

	return ioutil.WriteFile(reportPath, reportContent, 0644)
}
