package alg

// Saving is the total latency saved by serving a request batch from a
// cache instead of the datacenter: the per-request latency difference
// weighted by the number of requests. It is only meaningful for links
// strictly faster than the datacenter; callers skip the rest.
func Saving(dcLatency, linkLatency, count int) int {
	return (dcLatency - linkLatency) * count
}
