package model

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

type CacheContent struct {
	Cache  int
	Videos []int // increasing video ids
}

// Placement is the solved cache assignment, ordered by cache id.
// Caches holding nothing are not listed.
type Placement []CacheContent

// Write emits the placement in the submission format: the number of
// non-empty caches, then one line per cache with its id followed by the
// stored video ids.
func (p Placement) Write(w io.Writer) error {
	out := bufio.NewWriter(w)

	if _, err := fmt.Fprintf(out, "%d\n", len(p)); err != nil {
		return err
	}

	for _, content := range p {
		fields := make([]string, 0, len(content.Videos)+1)
		fields = append(fields, strconv.Itoa(content.Cache))
		for _, video := range content.Videos {
			fields = append(fields, strconv.Itoa(video))
		}

		if _, err := fmt.Fprintln(out, strings.Join(fields, " ")); err != nil {
			return err
		}
	}

	return out.Flush()
}

func (p Placement) Display() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d non-empty caches\n", len(p)))
	for _, content := range p {
		sb.WriteString(fmt.Sprintf("cache %d holds videos %v\n", content.Cache, content.Videos))
	}

	return sb.String()
}
