package statistics

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

type statisticsData struct {
	dataMap map[string]int

	mutex sync.Mutex
}

var stats = &statisticsData{
	dataMap: make(map[string]int),
}

func Set(key string, value int) {
	stats.mutex.Lock()
	defer stats.mutex.Unlock()

	stats.dataMap[key] = value
}

func Change(key string, value int) {
	stats.mutex.Lock()
	defer stats.mutex.Unlock()

	stats.dataMap[key] += value
}

// Snapshot returns a copy of the current counters.
func Snapshot() map[string]int {
	stats.mutex.Lock()
	defer stats.mutex.Unlock()

	snapshot := make(map[string]int, len(stats.dataMap))
	for key, value := range stats.dataMap {
		snapshot[key] = value
	}

	return snapshot
}

func Display() string {
	snapshot := Snapshot()

	keys := make([]string, 0, len(snapshot))
	for key := range snapshot {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var sb strings.Builder
	sb.WriteString("Statistics results are:\n")
	for _, key := range keys {
		sb.WriteString(fmt.Sprintf("Number of %s is %d\n", key, snapshot[key]))
	}

	return sb.String()
}
