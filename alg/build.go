// Package alg translates a video caching dataset into a binary linear
// program and a solved program back into a placement.
//
// The formulation is sparse on purpose: a decision variable exists only
// where choosing it is both feasible (the video fits a cache) and
// beneficial (the cache link beats the datacenter). At dataset scale the
// dense alternative is intractable.
package alg

import (
	"fmt"

	"github.com/streamopt/cacheplan/internal/milp"
	"github.com/streamopt/cacheplan/internal/model"
	"github.com/streamopt/cacheplan/logging"
	"github.com/streamopt/cacheplan/statistics"
)

var log = logging.Get()

type cacheVideo struct {
	cache int
	video int
}

type requestCache struct {
	request int
	cache   int
}

// PlacementModel couples the built program with the variable registries
// needed to read a solution back.
type PlacementModel struct {
	Model *milp.Model

	// Cached maps (cache, video) to its storage variable. Present only
	// when the video fits the cache capacity.
	Cached map[cacheVideo]milp.Var
	// Served maps (request, cache) to its serving variable. Present only
	// when the link is strictly faster than the datacenter and the
	// storage variable exists.
	Served map[requestCache]milp.Var
}

func (pm *PlacementModel) CachedVar(cache, video int) (milp.Var, bool) {
	v, ok := pm.Cached[cacheVideo{cache: cache, video: video}]
	return v, ok
}

func (pm *PlacementModel) ServedVar(request, cache int) (milp.Var, bool) {
	v, ok := pm.Served[requestCache{request: request, cache: cache}]
	return v, ok
}

// BuildPlacementModel emits the full optimization model for a dataset:
//
//   - cached[c,v] binaries for every video fitting the shared capacity,
//   - served[r,c] binaries for every beneficial reachable pair, weighted
//     in the objective by the latency saving,
//   - served[r,c] <= cached[c,v(r)] linkage rows,
//   - per-cache capacity rows,
//   - per-request at-most-one-cache rows.
//
// Building is deterministic: endpoint connections are visited in cache-id
// order.
func BuildPlacementModel(data *model.Dataset) (*PlacementModel, error) {
	pm := &PlacementModel{
		Model:  milp.NewModel(),
		Cached: make(map[cacheVideo]milp.Var),
		Served: make(map[requestCache]milp.Var),
	}
	m := pm.Model

	for cache := 0; cache < data.Caches; cache++ {
		for _, video := range data.Videos {
			if video.Size > data.CacheCapacity {
				continue
			}

			v, err := m.AddBinary(fmt.Sprintf("cached_%d_%d", cache, video.Id))
			if err != nil {
				return nil, err
			}
			pm.Cached[cacheVideo{cache: cache, video: video.Id}] = v
		}
	}

	skippedSlow := 0
	skippedLarge := 0
	for _, request := range data.Requests {
		endpoint := data.Endpoints[request.Endpoint]

		for _, cache := range endpoint.ConnectedCaches() {
			latency := endpoint.CacheLatencies[cache]
			if latency >= endpoint.DatacenterLatency {
				// Serving from here saves nothing, leave the pair out.
				skippedSlow += 1
				continue
			}

			saving := Saving(endpoint.DatacenterLatency, latency, request.Count)
			if saving <= 0 {
				// Zero demand earns nothing even over a fast link.
				skippedSlow += 1
				continue
			}

			storage, ok := pm.CachedVar(cache, request.Video)
			if !ok {
				// The video fits no cache, the pair can never serve.
				skippedLarge += 1
				continue
			}

			serving, err := m.AddBinary(fmt.Sprintf("served_%d_%d", request.Id, cache))
			if err != nil {
				return nil, err
			}
			pm.Served[requestCache{request: request.Id, cache: cache}] = serving

			m.AddObjTerm(serving, float64(saving))

			var link milp.LinExpr
			link.Add(1, serving)
			link.Add(-1, storage)
			if err := m.AddConstr(fmt.Sprintf("link_%d_%d", request.Id, cache), link, milp.LessEq, 0); err != nil {
				return nil, err
			}
		}
	}

	for cache := 0; cache < data.Caches; cache++ {
		var usage milp.LinExpr
		for _, video := range data.Videos {
			if v, ok := pm.CachedVar(cache, video.Id); ok {
				usage.Add(float64(video.Size), v)
			}
		}
		if len(usage.Terms()) == 0 {
			continue
		}

		if err := m.AddConstr(fmt.Sprintf("cap_%d", cache), usage, milp.LessEq, float64(data.CacheCapacity)); err != nil {
			return nil, err
		}
	}

	for _, request := range data.Requests {
		endpoint := data.Endpoints[request.Endpoint]

		var assignment milp.LinExpr
		for _, cache := range endpoint.ConnectedCaches() {
			if v, ok := pm.ServedVar(request.Id, cache); ok {
				assignment.Add(1, v)
			}
		}
		// A request with no eligible pair simply stays on the
		// datacenter, no row needed.
		if len(assignment.Terms()) == 0 {
			continue
		}

		if err := m.AddConstr(fmt.Sprintf("assign_%d", request.Id), assignment, milp.LessEq, 1); err != nil {
			return nil, err
		}
	}

	statistics.Set("storage variables", len(pm.Cached))
	statistics.Set("serving variables", len(pm.Served))
	statistics.Set("constraints", m.NumConstrs())
	statistics.Set("pairs skipped as not beneficial", skippedSlow)
	statistics.Set("pairs skipped as oversized", skippedLarge)

	log.Debug().Msgf(
		"placement model built: %d variables, %d constraints",
		m.NumVars(), m.NumConstrs(),
	)

	return pm, nil
}
