package alg

import "testing"

func TestSaving(t *testing.T) {
	cases := []struct {
		dcLatency   int
		linkLatency int
		count       int
		want        int
	}{
		{100, 10, 1, 90},
		{100, 10, 3, 270},
		{1000, 999, 500, 500},
		{100, 10, 0, 0},
	}

	for _, tc := range cases {
		if got := Saving(tc.dcLatency, tc.linkLatency, tc.count); got != tc.want {
			t.Errorf("Saving(%d, %d, %d) = %d, want %d",
				tc.dcLatency, tc.linkLatency, tc.count, got, tc.want)
		}
	}
}
