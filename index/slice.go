package index

import (
	"strconv"
	"strings"
)

// Slice is a Python-style range. Nil bounds take their defaults.
type Slice struct {
	Start *int
	Stop  *int
	Step  *int
}

// Range returns the slice start:stop.
func Range(start, stop int) Slice {
	return Slice{Start: &start, Stop: &stop}
}

// From returns the slice start:.
func From(start int) Slice {
	return Slice{Start: &start}
}

// Until returns the slice :stop.
func Until(stop int) Slice {
	return Slice{Stop: &stop}
}

// By returns a copy of s with the given step.
func (s Slice) By(step int) Slice {
	s.Step = &step
	return s
}

// Indices resolves s against a sequence of length n, following Python's
// slice.indices.
func (s Slice) Indices(n int) (start, stop, step int, err error) {
	step = 1
	if s.Step != nil {
		step = *s.Step
	}
	if step == 0 {
		return 0, 0, 0, invalidShape(s, "slice step cannot be zero")
	}

	lower, upper := 0, n
	if step < 0 {
		lower, upper = -1, n-1
	}

	clamp := func(v *int, def int) int {
		if v == nil {
			return def
		}
		x := *v
		if x < 0 {
			x += n
			if x < lower {
				x = lower
			}
		} else if x > upper {
			x = upper
		}
		return x
	}

	if step > 0 {
		start = clamp(s.Start, lower)
		stop = clamp(s.Stop, upper)
	} else {
		start = clamp(s.Start, upper)
		stop = clamp(s.Stop, lower)
	}
	return start, stop, step, nil
}

// Offsets returns the positions selected by s in a sequence of length n.
func (s Slice) Offsets(n int) ([]int, error) {
	start, stop, step, err := s.Indices(n)
	if err != nil {
		return nil, err
	}
	var count int
	switch {
	case step > 0 && start < stop:
		count = (stop-start-1)/step + 1
	case step < 0 && start > stop:
		count = (start-stop-1)/(-step) + 1
	}
	out := make([]int, count)
	for i := range out {
		out[i] = start + i*step
	}
	return out, nil
}

func (s Slice) String() string {
	var b strings.Builder
	if s.Start != nil {
		b.WriteString(strconv.Itoa(*s.Start))
	}
	b.WriteByte(':')
	if s.Stop != nil {
		b.WriteString(strconv.Itoa(*s.Stop))
	}
	if s.Step != nil {
		b.WriteByte(':')
		b.WriteString(strconv.Itoa(*s.Step))
	}
	return b.String()
}
