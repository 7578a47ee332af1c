package opt

import (
	"fmt"
	"math"

	"routeopt/internal/geo"
	"routeopt/internal/model"
)

// Cluster partitions locations into groups of roughly maxSize members.
// Every input location lands in exactly one returned group.
func (e *Engine) Cluster(locations []model.Location, maxSize int) []model.ClusterGroup {
	if len(locations) == 0 {
		return nil
	}
	if maxSize <= 0 || len(locations) <= maxSize {
		return []model.ClusterGroup{e.group(0, locations)}
	}
	k := int(math.Ceil(float64(len(locations)) / float64(maxSize)))
	members := e.singlePassCenters(locations, k)

	out := make([]model.ClusterGroup, 0, k)
	for _, m := range members {
		if len(m) == 0 {
			continue
		}
		out = append(out, e.group(len(out), m))
	}
	return out
}

// singlePassCenters is a one-shot nearest-center assignment: k distinct
// random seeds, every location joins its nearest seed, done. It is not
// k-means and makes no attempt to reach a fixed point, so group sizes may
// exceed maxSize.
func (e *Engine) singlePassCenters(locations []model.Location, k int) [][]model.Location {
	perm := e.rng.Perm(len(locations))
	centers := make([]geo.Point, k)
	for i := 0; i < k; i++ {
		l := locations[perm[i]]
		centers[i] = locationPoint(l)
	}
	members := make([][]model.Location, k)
	for _, l := range locations {
		p := locationPoint(l)
		best, bestD := 0, math.Inf(1)
		for c, center := range centers {
			if d := e.cache.Distance(p, center); d < bestD {
				best, bestD = c, d
			}
		}
		members[best] = append(members[best], l)
	}
	return members
}

func (e *Engine) group(n int, locs []model.Location) model.ClusterGroup {
	coords := make([]model.Coordinates, len(locs))
	total := 0
	for i, l := range locs {
		coords[i] = l.Coordinates
		total += l.EstimatedDuration
	}
	c := geo.Centroid(coords)
	radius := 0.0
	for _, p := range coords {
		radius = math.Max(radius, geo.Distance(c, p))
	}
	return model.ClusterGroup{
		ID:            fmt.Sprintf("cluster_%d", n),
		Locations:     append([]model.Location(nil), locs...),
		Centroid:      c,
		Radius:        radius,
		TotalDuration: total,
	}
}
