package model

import "sort"

type Video struct {
	Id   int
	Size int
}

type Endpoint struct {
	Id                int
	DatacenterLatency int

	// CacheLatencies maps a connected cache id to the latency of that link.
	// A cache absent from the map is unreachable from this endpoint.
	CacheLatencies map[int]int
}

// ConnectedCaches returns the reachable cache ids in increasing order,
// so that iteration over connections is deterministic.
func (e *Endpoint) ConnectedCaches() []int {
	caches := make([]int, 0, len(e.CacheLatencies))
	for c := range e.CacheLatencies {
		caches = append(caches, c)
	}
	sort.Ints(caches)

	return caches
}

type Request struct {
	Id       int
	Video    int
	Endpoint int
	Count    int
}

// Dataset is the immutable input of the planner. Caches carry no state of
// their own beyond the shared capacity, so they exist only as indices
// 0..Caches-1.
type Dataset struct {
	Videos    []Video
	Endpoints []*Endpoint
	Requests  []Request

	Caches        int
	CacheCapacity int
}
