package alg

import (
	"sort"

	"github.com/streamopt/cacheplan/internal/model"
	"github.com/streamopt/cacheplan/internal/solver"
)

// ExtractPlacement reads the solved storage variables back into a
// placement. Solver output is floating point, so anything above 0.5
// counts as stored. Caches holding nothing are left out.
func ExtractPlacement(pm *PlacementModel, solution *solver.Solution) model.Placement {
	perCache := make(map[int][]int)
	for key, v := range pm.Cached {
		if solution.Values[v.Index()] > 0.5 {
			perCache[key.cache] = append(perCache[key.cache], key.video)
		}
	}

	placement := make(model.Placement, 0, len(perCache))
	for cache, videos := range perCache {
		sort.Ints(videos)
		placement = append(placement, model.CacheContent{Cache: cache, Videos: videos})
	}
	sort.Slice(placement, func(i, j int) bool {
		return placement[i].Cache < placement[j].Cache
	})

	return placement
}
