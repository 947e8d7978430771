package geo

import (
	"bytes"
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Coordinates is a WGS84 point in degrees
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Valid reports whether both components are finite numbers
func (c Coordinates) Valid() bool {
	return isFinite(c.Lat) && isFinite(c.Lon)
}

// LocationKind tags which variant a Location holds
type LocationKind uint8

const (
	LocationMissing LocationKind = iota
	LocationPoint
	LocationRaw
)

func (k LocationKind) String() string {
	switch k {
	case LocationPoint:
		return "point"
	case LocationRaw:
		return "raw"
	default:
		return "missing"
	}
}

// Location is the location attached to a report: a structured point,
// a free-form "lat,lon" string, or nothing. The zero value is missing.
type Location struct {
	kind      LocationKind
	point     Coordinates
	precision string
	raw       string
}

// PointLocation builds a structured location
func PointLocation(lat, lon float64) Location {
	return Location{kind: LocationPoint, point: Coordinates{Lat: lat, Lon: lon}}
}

// PointLocationWithPrecision builds a structured location carrying the
// reporter-selected precision level ("exact" or "block")
func PointLocationWithPrecision(lat, lon float64, precision string) Location {
	l := PointLocation(lat, lon)
	l.precision = precision
	return l
}

// RawLocation wraps a free-form location string. Blank input is missing.
func RawLocation(s string) Location {
	if strings.TrimSpace(s) == "" {
		return Location{}
	}
	return Location{kind: LocationRaw, raw: s}
}

// ParseLocation decodes the stored text form produced by String. A value
// holding exactly a "lat,lon" pair becomes a point; any other non-blank text
// is kept raw so annotations survive a round trip.
func ParseLocation(s string) Location {
	s = strings.TrimSpace(s)
	if s == "" {
		return Location{}
	}

	parts := strings.Split(s, ",")
	if len(parts) == 2 {
		lat, errLat := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
		lon, errLon := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if errLat == nil && errLon == nil && isFinite(lat) && isFinite(lon) {
			return PointLocation(lat, lon)
		}
	}
	return RawLocation(s)
}

// Kind returns the variant held by l
func (l Location) Kind() LocationKind { return l.kind }

// IsMissing reports whether no location was supplied
func (l Location) IsMissing() bool { return l.kind == LocationMissing }

// Raw returns the original string for raw locations
func (l Location) Raw() string { return l.raw }

// String encodes the location the way it is stored: "lat,lon" for points,
// the original text for raw locations and "" when missing.
func (l Location) String() string {
	switch l.kind {
	case LocationPoint:
		return strconv.FormatFloat(l.point.Lat, 'f', -1, 64) + "," + strconv.FormatFloat(l.point.Lon, 'f', -1, 64)
	case LocationRaw:
		return l.raw
	default:
		return ""
	}
}

// ExtractCoordinates resolves a location to a point. It returns false when
// the location is missing, malformed, or yields non-finite numbers.
func ExtractCoordinates(l Location) (Coordinates, bool) {
	switch l.kind {
	case LocationPoint:
		if !l.point.Valid() {
			return Coordinates{}, false
		}
		return l.point, true
	case LocationRaw:
		return parseLatLon(l.raw)
	default:
		return Coordinates{}, false
	}
}

// leadingNumber matches the numeric prefix of a trimmed component, so
// "77.59 (approx)" parses as 77.59.
var leadingNumber = regexp.MustCompile(`^[+-]?(?:\d+\.?\d*|\.\d+)(?:[eE][+-]?\d+)?`)

func parseLatLon(s string) (Coordinates, bool) {
	parts := strings.Split(s, ",")
	if len(parts) < 2 {
		return Coordinates{}, false
	}

	lat, ok := parseComponent(parts[0])
	if !ok {
		return Coordinates{}, false
	}
	lon, ok := parseComponent(parts[1])
	if !ok {
		return Coordinates{}, false
	}
	return Coordinates{Lat: lat, Lon: lon}, true
}

func parseComponent(s string) (float64, bool) {
	num := leadingNumber.FindString(strings.TrimSpace(s))
	if num == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(num, 64)
	if err != nil || !isFinite(v) {
		return 0, false
	}
	return v, true
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

type pointJSON struct {
	Lat       *float64 `json:"lat"`
	Lon       *float64 `json:"lon"`
	Precision string   `json:"precision_level,omitempty"`
}

// UnmarshalJSON accepts an object with lat/lon, a string, or null.
// Anything else decodes as missing rather than failing the whole document.
func (l *Location) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*l = Location{}

	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*l = RawLocation(s)
	case '{':
		var p pointJSON
		if err := json.Unmarshal(data, &p); err != nil {
			return nil
		}
		if p.Lat != nil && p.Lon != nil {
			*l = PointLocationWithPrecision(*p.Lat, *p.Lon, p.Precision)
		}
	}
	return nil
}

// MarshalJSON writes points as objects, raw locations as strings and missing as null
func (l Location) MarshalJSON() ([]byte, error) {
	switch l.kind {
	case LocationPoint:
		lat, lon := l.point.Lat, l.point.Lon
		return json.Marshal(pointJSON{Lat: &lat, Lon: &lon, Precision: l.precision})
	case LocationRaw:
		return json.Marshal(l.raw)
	default:
		return []byte("null"), nil
	}
}
