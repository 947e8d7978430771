package geo

import (
	"fmt"
	"math"

	"github.com/uber/h3-go/v4"
)

// MaxRings bounds the grid distance of a radius query. ResolutionFor picks
// the finest resolution that stays within it.
const MaxRings = 8

// average hexagon edge length in km per resolution
var avgEdgeKm = [16]float64{
	1281.256011, 483.0568391, 182.5129565, 68.97922179,
	26.07175968, 9.854090990, 3.724532667, 1.406475763,
	0.531414010, 0.200786148, 0.075863783, 0.028663897,
	0.010830188, 0.004092010, 0.001546100, 0.000584169,
}

// Index buckets points into H3 cells so radius queries only look at
// nearby cells. Candidates is a superset of the true neighbours and callers
// filter with DistanceKm.
type Index struct {
	resolution int
	cells      map[h3.Cell][]int
}

// NewIndex creates an empty index at the given H3 resolution
func NewIndex(resolution int) (*Index, error) {
	if resolution < 0 || resolution > 15 {
		return nil, fmt.Errorf("invalid h3 resolution %d", resolution)
	}
	return &Index{
		resolution: resolution,
		cells:      make(map[h3.Cell][]int),
	}, nil
}

// Insert records item i at c
func (x *Index) Insert(i int, c Coordinates) error {
	cell, err := h3.LatLngToCell(h3.NewLatLng(c.Lat, c.Lon), x.resolution)
	if err != nil {
		return fmt.Errorf("failed to index point %d: %w", i, err)
	}
	x.cells[cell] = append(x.cells[cell], i)
	return nil
}

// Candidates returns every item in cells that could hold a point within
// radiusKm of c. Order follows the grid disk and is not sorted.
func (x *Index) Candidates(c Coordinates, radiusKm float64) ([]int, error) {
	origin, err := h3.LatLngToCell(h3.NewLatLng(c.Lat, c.Lon), x.resolution)
	if err != nil {
		return nil, fmt.Errorf("failed to locate origin cell: %w", err)
	}

	disk, err := h3.GridDisk(origin, ringsAt(x.resolution, radiusKm))
	if err != nil {
		return nil, fmt.Errorf("failed to expand grid disk: %w", err)
	}

	var out []int
	for _, cell := range disk {
		out = append(out, x.cells[cell]...)
	}
	return out, nil
}

// ResolutionFor returns the finest resolution whose grid disk covers
// radiusKm in at most MaxRings rings. It reports false when even resolution 0
// needs more, in which case an index gives no speed-up over a full scan.
func ResolutionFor(radiusKm float64) (int, bool) {
	for res := len(avgEdgeKm) - 1; res >= 0; res-- {
		if ringsAt(res, radiusKm) <= MaxRings {
			return res, true
		}
	}
	return 0, false
}

// ringsAt converts a radius to a grid distance. Cell edges within one
// resolution can shrink to about half the average, so the ring spacing uses
// half of sqrt(3)*edge/2, plus two rings for the origin's offset in its cell.
func ringsAt(resolution int, radiusKm float64) int {
	spacing := math.Sqrt(3) / 4 * avgEdgeKm[resolution]
	return int(math.Ceil(radiusKm/spacing)) + 2
}
