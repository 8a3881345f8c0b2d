// Package dataset reads the line-oriented problem description:
//
//	V E R C X
//	<V video sizes>
//	for each endpoint: "Ld K" followed by K lines "cache_id latency"
//	for each request: "video_id endpoint_id count"
//
// The declared counts are authoritative. Any mismatch between them and the
// lines that follow, and any reference outside the declared id ranges, is
// fatal and reported with the offending line number.
package dataset

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/streamopt/cacheplan/internal/model"
	"github.com/streamopt/cacheplan/logging"
)

var log = logging.Get()

type MalformedInputError struct {
	Line   int
	Reason string
}

func (e *MalformedInputError) Error() string {
	return fmt.Sprintf("malformed dataset at line %d: %s", e.Line, e.Reason)
}

type scanner struct {
	inner *bufio.Scanner
	line  int
}

func (s *scanner) nextInts(want int) ([]int, error) {
	for s.inner.Scan() {
		s.line += 1
		text := strings.TrimSpace(s.inner.Text())
		if text == "" {
			continue
		}

		fields := strings.Fields(text)
		if len(fields) != want {
			return nil, &MalformedInputError{
				Line:   s.line,
				Reason: fmt.Sprintf("expected %d integers, got %d", want, len(fields)),
			}
		}

		values := make([]int, len(fields))
		for i, field := range fields {
			value, err := strconv.Atoi(field)
			if err != nil {
				return nil, &MalformedInputError{
					Line:   s.line,
					Reason: fmt.Sprintf("%q is not an integer", field),
				}
			}
			values[i] = value
		}

		return values, nil
	}

	if err := s.inner.Err(); err != nil {
		return nil, err
	}

	return nil, &MalformedInputError{
		Line:   s.line,
		Reason: "unexpected end of input, fewer lines than the header declares",
	}
}

func (s *scanner) expectEnd() error {
	for s.inner.Scan() {
		s.line += 1
		if strings.TrimSpace(s.inner.Text()) != "" {
			return &MalformedInputError{
				Line:   s.line,
				Reason: "trailing data after the last declared request",
			}
		}
	}

	return s.inner.Err()
}

// Load reads and parses the dataset file at path.
func Load(path string) (*model.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := Parse(f)
	if err != nil {
		return nil, err
	}

	log.Info().Msgf(
		"dataset loaded: %d videos, %d endpoints, %d requests, %d caches of capacity %d",
		len(data.Videos), len(data.Endpoints), len(data.Requests), data.Caches, data.CacheCapacity,
	)

	return data, nil
}

func Parse(r io.Reader) (*model.Dataset, error) {
	inner := bufio.NewScanner(r)
	// The video size line holds V integers, which can be far beyond the
	// default token limit.
	inner.Buffer(make([]byte, 1<<16), 1<<26)
	sc := &scanner{inner: inner}

	header, err := sc.nextInts(5)
	if err != nil {
		return nil, err
	}
	numVideos, numEndpoints, numRequests, numCaches, capacity := header[0], header[1], header[2], header[3], header[4]
	for _, count := range header {
		if count < 0 {
			return nil, &MalformedInputError{Line: sc.line, Reason: "negative count in header"}
		}
	}

	var sizes []int
	if numVideos > 0 {
		if sizes, err = sc.nextInts(numVideos); err != nil {
			return nil, err
		}
	}

	data := &model.Dataset{
		Videos:        make([]model.Video, numVideos),
		Caches:        numCaches,
		CacheCapacity: capacity,
	}
	for v, size := range sizes {
		if size < 0 {
			return nil, &MalformedInputError{Line: sc.line, Reason: fmt.Sprintf("video %d has negative size", v)}
		}
		data.Videos[v] = model.Video{Id: v, Size: size}
	}

	for e := 0; e < numEndpoints; e++ {
		head, err := sc.nextInts(2)
		if err != nil {
			return nil, err
		}
		dcLatency, numLinks := head[0], head[1]
		if dcLatency < 0 {
			return nil, &MalformedInputError{Line: sc.line, Reason: "negative datacenter latency"}
		}
		if numLinks < 0 {
			return nil, &MalformedInputError{Line: sc.line, Reason: "negative connection count"}
		}

		endpoint := &model.Endpoint{
			Id:                e,
			DatacenterLatency: dcLatency,
			CacheLatencies:    make(map[int]int, numLinks),
		}

		for k := 0; k < numLinks; k++ {
			link, err := sc.nextInts(2)
			if err != nil {
				return nil, err
			}
			cache, latency := link[0], link[1]
			if cache < 0 || cache >= numCaches {
				return nil, &MalformedInputError{
					Line:   sc.line,
					Reason: fmt.Sprintf("cache id %d out of range [0, %d)", cache, numCaches),
				}
			}
			if latency < 0 {
				return nil, &MalformedInputError{
					Line:   sc.line,
					Reason: fmt.Sprintf("negative latency on the link to cache %d", cache),
				}
			}
			if _, ok := endpoint.CacheLatencies[cache]; ok {
				return nil, &MalformedInputError{
					Line:   sc.line,
					Reason: fmt.Sprintf("duplicate connection to cache %d", cache),
				}
			}
			endpoint.CacheLatencies[cache] = latency
		}

		data.Endpoints = append(data.Endpoints, endpoint)
	}

	for r := 0; r < numRequests; r++ {
		fields, err := sc.nextInts(3)
		if err != nil {
			return nil, err
		}
		video, endpoint, count := fields[0], fields[1], fields[2]
		if video < 0 || video >= numVideos {
			return nil, &MalformedInputError{
				Line:   sc.line,
				Reason: fmt.Sprintf("video id %d out of range [0, %d)", video, numVideos),
			}
		}
		if endpoint < 0 || endpoint >= numEndpoints {
			return nil, &MalformedInputError{
				Line:   sc.line,
				Reason: fmt.Sprintf("endpoint id %d out of range [0, %d)", endpoint, numEndpoints),
			}
		}
		if count < 0 {
			return nil, &MalformedInputError{Line: sc.line, Reason: "negative request count"}
		}

		data.Requests = append(data.Requests, model.Request{
			Id:       r,
			Video:    video,
			Endpoint: endpoint,
			Count:    count,
		})
	}

	if err := sc.expectEnd(); err != nil {
		return nil, err
	}

	return data, nil
}
