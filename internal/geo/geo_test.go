package geo

import (
	"encoding/json"
	"math"
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// DistanceKm
// =============================================================================

func TestDistanceKm_IdenticalPoints(t *testing.T) {
	assert.Equal(t, 0.0, DistanceKm(12.9716, 77.5946, 12.9716, 77.5946))
}

func TestDistanceKm_Symmetric(t *testing.T) {
	a := DistanceKm(12.9716, 77.5946, 19.0760, 72.8777)
	b := DistanceKm(19.0760, 72.8777, 12.9716, 77.5946)
	assert.InDelta(t, a, b, 1e-9)
}

func TestDistanceKm_OneDegreeOfLatitude(t *testing.T) {
	d := DistanceKm(0, 0, 1, 0)
	assert.InEpsilon(t, 111.19, d, 0.01)
}

func TestDistanceKm_NonNegative(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for i := 0; i < 200; i++ {
		d := DistanceKm(r.Float64()*180-90, r.Float64()*360-180, r.Float64()*180-90, r.Float64()*360-180)
		assert.GreaterOrEqual(t, d, 0.0)
		assert.LessOrEqual(t, d, math.Pi*EarthRadiusKm+1e-6)
	}
}

func TestDistance_Coordinates(t *testing.T) {
	a := Coordinates{Lat: 12.9716, Lon: 77.5946}
	b := Coordinates{Lat: 12.9352, Lon: 77.6245}
	assert.InDelta(t, DistanceKm(a.Lat, a.Lon, b.Lat, b.Lon), Distance(a, b), 1e-12)
	assert.InDelta(t, 5.1, Distance(a, b), 0.3)
}

// =============================================================================
// ExtractCoordinates
// =============================================================================

func TestExtractCoordinates(t *testing.T) {
	tests := []struct {
		name string
		loc  Location
		want Coordinates
		ok   bool
	}{
		{name: "point", loc: PointLocation(12.9, 77.5), want: Coordinates{Lat: 12.9, Lon: 77.5}, ok: true},
		{name: "raw", loc: RawLocation("12.9716,77.5946"), want: Coordinates{Lat: 12.9716, Lon: 77.5946}, ok: true},
		{name: "raw with spaces", loc: RawLocation(" 12.9716 , 77.5946 "), want: Coordinates{Lat: 12.9716, Lon: 77.5946}, ok: true},
		{name: "raw with trailing text", loc: RawLocation("12.97N,77.59E"), want: Coordinates{Lat: 12.97, Lon: 77.59}, ok: true},
		{name: "raw with extra parts", loc: RawLocation("1,2,3"), want: Coordinates{Lat: 1, Lon: 2}, ok: true},
		{name: "raw negative", loc: RawLocation("-33.86,151.2"), want: Coordinates{Lat: -33.86, Lon: 151.2}, ok: true},
		{name: "raw no comma", loc: RawLocation("Koramangala"), ok: false},
		{name: "raw not numeric", loc: RawLocation("abc,def"), ok: false},
		{name: "raw missing longitude", loc: RawLocation("12.9,"), ok: false},
		{name: "raw infinity", loc: RawLocation("Infinity,1"), ok: false},
		{name: "raw overflow", loc: RawLocation("1e999,1"), ok: false},
		{name: "blank raw", loc: RawLocation("   "), ok: false},
		{name: "missing", loc: Location{}, ok: false},
		{name: "point NaN", loc: PointLocation(math.NaN(), 1), ok: false},
		{name: "point Inf", loc: PointLocation(1, math.Inf(1)), ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractCoordinates(tt.loc)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.InDelta(t, tt.want.Lat, got.Lat, 1e-12)
				assert.InDelta(t, tt.want.Lon, got.Lon, 1e-12)
			}
		})
	}
}

// =============================================================================
// JSON
// =============================================================================

func TestLocation_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		kind LocationKind
	}{
		{name: "object", in: `{"lat":12.9,"lon":77.5}`, kind: LocationPoint},
		{name: "object with precision", in: `{"lat":12.9,"lon":77.5,"precision_level":"block"}`, kind: LocationPoint},
		{name: "object missing lon", in: `{"lat":12.9}`, kind: LocationMissing},
		{name: "object with string lat", in: `{"lat":"12.9","lon":77.5}`, kind: LocationMissing},
		{name: "string", in: `"12.9,77.5"`, kind: LocationRaw},
		{name: "empty string", in: `""`, kind: LocationMissing},
		{name: "null", in: `null`, kind: LocationMissing},
		{name: "number", in: `42`, kind: LocationMissing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var doc struct {
				Location Location `json:"location"`
			}
			require.NoError(t, json.Unmarshal([]byte(`{"location":`+tt.in+`}`), &doc))
			assert.Equal(t, tt.kind, doc.Location.Kind())
		})
	}
}

func TestLocation_UnmarshalJSON_AbsentField(t *testing.T) {
	var doc struct {
		Location Location `json:"location"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{}`), &doc))
	assert.True(t, doc.Location.IsMissing())
}

func TestLocation_MarshalJSON(t *testing.T) {
	point, err := json.Marshal(PointLocationWithPrecision(12.5, 77.25, "exact"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"lat":12.5,"lon":77.25,"precision_level":"exact"}`, string(point))

	raw, err := json.Marshal(RawLocation("12.5,77.25"))
	require.NoError(t, err)
	assert.Equal(t, `"12.5,77.25"`, string(raw))

	missing, err := json.Marshal(Location{})
	require.NoError(t, err)
	assert.Equal(t, `null`, string(missing))
}

func TestLocation_String(t *testing.T) {
	assert.Equal(t, "12.5,77.25", PointLocation(12.5, 77.25).String())
	assert.Equal(t, "near MG Road", RawLocation("near MG Road").String())
	assert.Equal(t, "", Location{}.String())

	c, ok := ExtractCoordinates(RawLocation(PointLocation(12.9716, 77.5946).String()))
	require.True(t, ok)
	assert.Equal(t, Coordinates{Lat: 12.9716, Lon: 77.5946}, c)
}

func TestParseLocation(t *testing.T) {
	tests := []struct {
		in   string
		kind LocationKind
	}{
		{in: "12.9716,77.5946", kind: LocationPoint},
		{in: " 12.9716 , 77.5946 ", kind: LocationPoint},
		{in: "12.97, 77.59 (approx)", kind: LocationRaw},
		{in: "MG Road", kind: LocationRaw},
		{in: "NaN,1", kind: LocationRaw},
		{in: "", kind: LocationMissing},
		{in: "  ", kind: LocationMissing},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.kind, ParseLocation(tt.in).Kind())
		})
	}

	c, ok := ExtractCoordinates(ParseLocation("12.97, 77.59 (approx)"))
	require.True(t, ok)
	assert.Equal(t, Coordinates{Lat: 12.97, Lon: 77.59}, c)
}

// =============================================================================
// Index
// =============================================================================

func TestNewIndex_InvalidResolution(t *testing.T) {
	_, err := NewIndex(16)
	assert.Error(t, err)
	_, err = NewIndex(-1)
	assert.Error(t, err)
}

func TestResolutionFor(t *testing.T) {
	tests := []struct {
		name     string
		radiusKm float64
		want     int
		ok       bool
	}{
		{name: "street level", radiusKm: 0.1, want: 10, ok: true},
		{name: "default neighbourhood", radiusKm: 5, want: 6, ok: true},
		{name: "regional", radiusKm: 200, want: 2, ok: true},
		{name: "continental", radiusKm: 20000, ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, ok := ResolutionFor(tt.radiusKm)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, res)
				assert.LessOrEqual(t, ringsAt(res, tt.radiusKm), MaxRings)
			}
		})
	}
}

func TestIndex_CandidatesCoverAllNeighbours(t *testing.T) {
	res, ok := ResolutionFor(5)
	require.True(t, ok)
	idx, err := NewIndex(res)
	require.NoError(t, err)

	r := rand.New(rand.NewSource(42))
	points := make([]Coordinates, 500)
	for i := range points {
		// roughly a 40km square around Bengaluru
		points[i] = Coordinates{Lat: 12.8 + r.Float64()*0.36, Lon: 77.4 + r.Float64()*0.36}
		require.NoError(t, idx.Insert(i, points[i]))
	}

	const radius = 5.0
	for i, origin := range points[:50] {
		cands, err := idx.Candidates(origin, radius)
		require.NoError(t, err)

		candSet := make(map[int]bool, len(cands))
		for _, c := range cands {
			candSet[c] = true
		}
		assert.True(t, candSet[i], "origin must be its own candidate")

		for j, p := range points {
			if Distance(origin, p) <= radius {
				assert.True(t, candSet[j], "point %d within %.1fkm of %d missing from candidates", j, radius, i)
			}
		}
	}
}

func TestIndex_CandidatesCoverLargeRadiusWorldwide(t *testing.T) {
	const radius = 200.0
	res, ok := ResolutionFor(radius)
	require.True(t, ok)
	idx, err := NewIndex(res)
	require.NoError(t, err)

	r := rand.New(rand.NewSource(7))
	points := make([]Coordinates, 0, 400)
	for i := 0; i < 300; i++ {
		points = append(points, Coordinates{Lat: r.Float64()*178 - 89, Lon: r.Float64()*360 - 180})
	}
	// clusters straddling the antimeridian and near the pole
	for i := 0; i < 50; i++ {
		lon := 178 + r.Float64()*4
		if lon > 180 {
			lon -= 360
		}
		points = append(points, Coordinates{Lat: -16 + r.Float64()*4, Lon: lon})
		points = append(points, Coordinates{Lat: 88 + r.Float64()*1.9, Lon: r.Float64()*360 - 180})
	}
	for i, p := range points {
		require.NoError(t, idx.Insert(i, p))
	}

	for i, origin := range points {
		cands, err := idx.Candidates(origin, radius)
		require.NoError(t, err)

		candSet := make(map[int]bool, len(cands))
		for _, c := range cands {
			candSet[c] = true
		}
		for j, p := range points {
			if Distance(origin, p) <= radius {
				assert.True(t, candSet[j], "point %d within %.0fkm of %d missing from candidates", j, radius, i)
			}
		}
	}
}

func TestIndex_CandidatesExcludeFarCells(t *testing.T) {
	res, ok := ResolutionFor(5)
	require.True(t, ok)
	idx, err := NewIndex(res)
	require.NoError(t, err)

	require.NoError(t, idx.Insert(0, Coordinates{Lat: 12.9716, Lon: 77.5946}))
	require.NoError(t, idx.Insert(1, Coordinates{Lat: 19.0760, Lon: 72.8777}))
	assert.Len(t, idx.cells, 2)

	cands, err := idx.Candidates(Coordinates{Lat: 12.9716, Lon: 77.5946}, 5)
	require.NoError(t, err)
	sort.Ints(cands)
	assert.Equal(t, []int{0}, cands)
}
