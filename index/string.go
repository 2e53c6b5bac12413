package index

import (
	"strconv"
	"strings"
)

// ParseString parses the textual index syntax used on the command line:
//
//	3, -1        offset
//	1:4, ::2     slice
//	...          all
//	@c,m         path
//	a,b,0        list
//	0:2#text     pair; the part after '#' is an offset, id or attribute,
//	             or a comma separated attribute list
//
// Anything else is an id.
func ParseString(s string) (Expr, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, invalidShape(s, "empty index")
	}

	if first, second, ok := strings.Cut(s, "#"); ok {
		f, err := ParseString(first)
		if err != nil {
			return nil, err
		}
		if second == "" {
			return nil, invalidShape(s, "missing attribute after '#'")
		}
		var sec any = second
		if strings.Contains(second, ",") {
			sec = strings.Split(second, ",")
		} else if n, err := strconv.Atoi(second); err == nil {
			sec = n
		}
		return newPair(f, sec)
	}

	switch {
	case s == "...":
		return Ellipsis, nil
	case strings.HasPrefix(s, PathSigil):
		return Path(s[len(PathSigil):]), nil
	case strings.Contains(s, ","):
		parts := strings.Split(s, ",")
		out := make(List, len(parts))
		for i, p := range parts {
			out[i] = scalarString(strings.TrimSpace(p))
		}
		return out, nil
	case strings.Contains(s, ":"):
		if sl, ok := parseSlice(s); ok {
			return sl, nil
		}
	}
	return scalarString(s), nil
}

func scalarString(s string) Expr {
	if n, err := strconv.Atoi(s); err == nil {
		return Offset(n)
	}
	return ID(s)
}

func parseSlice(s string) (Slice, bool) {
	parts := strings.Split(s, ":")
	if len(parts) > 3 {
		return Slice{}, false
	}
	var bounds [3]*int
	for i, p := range parts {
		if p == "" {
			continue
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			return Slice{}, false
		}
		bounds[i] = &n
	}
	return Slice{Start: bounds[0], Stop: bounds[1], Step: bounds[2]}, true
}
