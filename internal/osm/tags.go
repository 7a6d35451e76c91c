package osm

import (
	"strconv"
	"strings"
)

// Tags is the attribute mapping of a single OSM feature. Keys are not
// guaranteed to be present; Get returns "" for missing keys.
type Tags map[string]string

// Get returns the value for key, or "" when absent.
func (t Tags) Get(key string) string {
	return t[key]
}

// In reports whether the value of key equals any of the given values.
// A missing key never matches.
func (t Tags) In(key string, values ...string) bool {
	v, ok := t[key]
	if !ok {
		return false
	}
	for _, candidate := range values {
		if v == candidate {
			return true
		}
	}
	return false
}

// SpeedUnknown is the sentinel returned when no speed limit can be derived
// from the tag set.
const SpeedUnknown = -1

// mphToKmh converts statute miles per hour to km/h.
const mphToKmh = 1.60934

// ParseSpeed converts a raw maxspeed tag value to km/h. Malformed values are
// treated as absent and yield SpeedUnknown. "none" (no limit, German
// autobahns) maps to a value above every category threshold; "walk" maps to
// walking pace.
func ParseSpeed(raw string) float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return SpeedUnknown
	}
	switch raw {
	case "none":
		return 999
	case "walk":
		return 7
	}

	value := raw
	factor := 1.0
	if cut, ok := strings.CutSuffix(raw, "mph"); ok {
		value = strings.TrimSpace(cut)
		factor = mphToKmh
	}
	speed, err := strconv.ParseFloat(value, 64)
	if err != nil || speed < 0 {
		return SpeedUnknown
	}
	return speed * factor
}

// MaxSpeed derives the effective speed limit in km/h from the explicit
// maxspeed tags and speed-zone tags, taking the maximum of all present
// values. Returns SpeedUnknown when nothing usable is tagged.
func MaxSpeed(tags Tags) float64 {
	speeds := []float64{
		ParseSpeed(tags.Get("maxspeed")),
		ParseSpeed(tags.Get("maxspeed:forward")),
		ParseSpeed(tags.Get("maxspeed:backward")),
		zoneSpeed(tags),
	}
	best := float64(SpeedUnknown)
	for _, s := range speeds {
		if s > best {
			best = s
		}
	}
	return best
}

// zoneSpeed resolves zone:maxspeed / zone:traffic tags like "DE:urban" or
// "FR:30" to a km/h value. Country-specific defaults follow the legal limits
// of the tagged jurisdiction.
func zoneSpeed(tags Tags) float64 {
	zone := tags.Get("zone:maxspeed")
	if zone == "" {
		zone = tags.Get("zone:traffic")
	}
	if zone == "" {
		return SpeedUnknown
	}

	country, info, found := strings.Cut(zone, ":")
	if !found {
		info = country
		country = ""
	}

	switch info {
	case "urban":
		switch country {
		case "BQ-SE", "BQ-BO", "CW":
			return 40
		case "BE-BRU", "BQ-SA", "SX":
			return 30
		default:
			return 50
		}
	case "rural":
		switch country {
		case "DE":
			return 100
		case "LU", "BE-WAL":
			return 90
		case "NL", "FR", "AW":
			return 80
		case "BE-VLG", "BE-BRU":
			return 70
		case "BQ-SA", "BQ-SE", "BQ-BO", "CW":
			return 60
		case "SX":
			return 50
		default:
			return 70
		}
	case "school":
		return 50
	case "motorway":
		return 120
	default:
		return ParseSpeed(info)
	}
}
