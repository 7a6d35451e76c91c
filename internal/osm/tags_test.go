package osm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSpeed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want float64
	}{
		{"plain number", "30", 30},
		{"decimal", "12.5", 12.5},
		{"mph", "20 mph", 32.1868},
		{"mph no space", "20mph", 32.1868},
		{"none", "none", 999},
		{"walk", "walk", 7},
		{"empty", "", SpeedUnknown},
		{"garbage", "fast", SpeedUnknown},
		{"negative", "-5", SpeedUnknown},
		{"number with unit garbage", "30 km/h-ish", SpeedUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, ParseSpeed(tt.raw), 1e-3)
		})
	}
}

func TestMaxSpeed(t *testing.T) {
	tests := []struct {
		name string
		tags Tags
		want float64
	}{
		{"no tags", Tags{}, SpeedUnknown},
		{"maxspeed only", Tags{"maxspeed": "50"}, 50},
		{"directional max wins", Tags{"maxspeed": "30", "maxspeed:forward": "50"}, 50},
		{"backward", Tags{"maxspeed:backward": "70"}, 70},
		{"malformed treated as absent", Tags{"maxspeed": "signals"}, SpeedUnknown},
		{"malformed does not mask valid", Tags{"maxspeed": "signals", "maxspeed:forward": "30"}, 30},
		{"zone numeric", Tags{"zone:maxspeed": "DE:30"}, 30},
		{"zone urban default", Tags{"zone:maxspeed": "urban"}, 50},
		{"zone urban SX", Tags{"zone:traffic": "SX:urban"}, 30},
		{"zone rural DE", Tags{"zone:traffic": "DE:rural"}, 100},
		{"zone rural NL", Tags{"zone:maxspeed": "NL:rural"}, 80},
		{"zone rural default", Tags{"zone:maxspeed": "XX:rural"}, 70},
		{"zone school", Tags{"zone:maxspeed": "FR:school"}, 50},
		{"zone motorway", Tags{"zone:traffic": "DE:motorway"}, 120},
		{"explicit beats zone", Tags{"maxspeed": "70", "zone:maxspeed": "DE:30"}, 70},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, MaxSpeed(tt.tags), 1e-9)
		})
	}
}

func TestTags_In(t *testing.T) {
	tags := Tags{"highway": "residential", "sidewalk": "both"}

	assert.True(t, tags.In("highway", "residential", "service"))
	assert.False(t, tags.In("highway", "footway"))
	assert.False(t, tags.In("surface", "asphalt"), "missing key never matches")
	assert.False(t, tags.In("highway"))
}

func TestPropertiesToTags(t *testing.T) {
	tags := propertiesToTags(map[string]interface{}{
		"highway": "path",
		"lanes":   2.0,
		"oneway":  true,
		"nothing": nil,
		"tunnel":  "no",
	})

	assert.Equal(t, "path", tags.Get("highway"))
	assert.Equal(t, "2", tags.Get("lanes"))
	assert.Equal(t, "true", tags.Get("oneway"))
	assert.Equal(t, "", tags.Get("nothing"))
	assert.Equal(t, "no", tags.Get("tunnel"))
}
