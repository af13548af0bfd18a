package geo

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// joinRings joins lines end to end. Chains that close are returned as rings,
// the rest as open lines. Input lines are not modified.
func joinRings(lines []orb.LineString) (rings []orb.Ring, open []orb.LineString) {
	pool := make([]orb.LineString, 0, len(lines))
	for _, l := range lines {
		if len(l) >= 2 {
			pool = append(pool, l.Clone())
		}
	}

	for len(pool) > 0 {
		cur := pool[0]
		pool = pool[1:]

		for !closed(cur) {
			i, reverse, atStart := next(pool, cur)
			if i < 0 {
				break
			}
			seg := pool[i]
			pool = append(pool[:i], pool[i+1:]...)
			if reverse {
				seg.Reverse()
			}
			if atStart {
				cur = append(seg[:len(seg)-1:len(seg)-1], cur...)
			} else {
				cur = append(cur, seg[1:]...)
			}
		}

		if closed(cur) && len(cur) >= 4 {
			rings = append(rings, orb.Ring(cur))
		} else {
			open = append(open, cur)
		}
	}
	return rings, open
}

// next finds a line in pool that continues cur. It reports whether the line
// must be reversed and whether it attaches before cur's first point.
func next(pool []orb.LineString, cur orb.LineString) (idx int, reverse, atStart bool) {
	first, last := cur[0], cur[len(cur)-1]
	for i, l := range pool {
		switch {
		case l[0] == last:
			return i, false, false
		case l[len(l)-1] == last:
			return i, true, false
		case l[len(l)-1] == first:
			return i, false, true
		case l[0] == first:
			return i, true, true
		}
	}
	return -1, false, false
}

func closed(l orb.LineString) bool {
	return len(l) > 2 && l[0] == l[len(l)-1]
}

// assemble builds polygons from outer and inner rings. Each inner ring goes
// to the first outer ring containing its first vertex; inner rings outside
// every outer ring are dropped.
func assemble(outer, inner []orb.Ring) []orb.Polygon {
	polys := make([]orb.Polygon, len(outer))
	for i, r := range outer {
		if r.Orientation() != orb.CCW {
			r.Reverse()
		}
		polys[i] = orb.Polygon{r}
	}
	for _, r := range inner {
		for i := range polys {
			if planar.RingContains(polys[i][0], r[0]) {
				if r.Orientation() != orb.CW {
					r.Reverse()
				}
				polys[i] = append(polys[i], r)
				break
			}
		}
	}
	return polys
}
