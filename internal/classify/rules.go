package classify

import (
	"github.com/urbanform/walkability/internal/osm"
)

// SpeedBands holds the km/h thresholds separating the shared-traffic
// categories.
type SpeedBands struct {
	Slow   float64 `yaml:"slow" mapstructure:"slow"`
	Medium float64 `yaml:"medium" mapstructure:"medium"`
	Fast   float64 `yaml:"fast" mapstructure:"fast"`
}

// DefaultSpeedBands returns the standard thresholds: slow traffic up to
// 15 km/h, medium up to 30, fast up to 50. Anything above 50 is its own
// category.
func DefaultSpeedBands() SpeedBands {
	return SpeedBands{Slow: 15, Medium: 30, Fast: 50}
}

var (
	potentialHighways = []string{
		"primary", "primary_link",
		"secondary", "secondary_link",
		"tertiary", "tertiary_link",
		"road", "cycleway", "unclassified", "residential", "track",
	}
	lowSpeedHighways     = []string{"living_street", "service"}
	allPotentialHighways = append(append([]string{}, potentialHighways...), lowSpeedHighways...)

	walkableHighways = append(append([]string{}, allPotentialHighways...),
		"pedestrian", "steps", "corridor", "platform", "path", "footway")
)

// CategoryRule pairs a named predicate with the category it assigns.
// Rules are evaluated in table order and the first match wins.
type CategoryRule struct {
	Name  string
	Match func(p probe) bool
	Label Category
}

// probe bundles a path's tags with its derived speed limit so predicates
// evaluate each attribute exactly once.
type probe struct {
	tags  osm.Tags
	speed float64
	bands SpeedBands
}

func newProbe(tags osm.Tags, bands SpeedBands) probe {
	return probe{tags: tags, speed: osm.MaxSpeed(tags), bands: bands}
}

// categoryRules is the ordered walkability rule table. Inaccessibility is
// checked first so that access restrictions override any walkable signal;
// the remaining rules run best category to worst. Paths matching nothing
// stay Unknown: when it is unclear whether pedestrians must share the
// roadway we do not guess.
func categoryRules() []CategoryRule {
	return []CategoryRule{
		{Name: "inaccessible", Match: probe.inaccessible, Label: CategoryNotWalkable},
		{Name: "designated", Match: probe.designated, Label: CategoryDesignated},
		{Name: "designated_shared_with_bikes", Match: probe.designatedSharedWithBikes, Label: CategorySharedWithBikes},
		{Name: "shared_low_speed", Match: probe.sharedWithLowSpeed, Label: CategorySharedLowSpeed},
		{Name: "shared_medium_speed", Match: probe.sharedWithMediumSpeed, Label: CategorySharedMediumSpeed},
		{Name: "shared_high_speed", Match: probe.sharedWithHighSpeed, Label: CategorySharedHighSpeed},
		{Name: "shared_very_high_speed", Match: probe.sharedWithVeryHighSpeed, Label: CategorySharedVeryHigh},
		{Name: "shared_unknown_speed", Match: probe.sharedWithUnknownSpeed, Label: CategorySharedUnknownSpeed},
	}
}

// categorize runs the rule table over a probe.
func categorize(p probe) Category {
	for _, rule := range categoryRules() {
		if rule.Match(p) {
			return rule.Label
		}
	}
	return CategoryUnknown
}

// potential matches features that could carry pedestrians alongside other
// traffic.
func (p probe) potential() bool {
	return p.tags.In("highway", allPotentialHighways...) || p.tags.Get("route") == "ferry"
}

// potentiallyExclusive matches infrastructure built for pedestrians only.
func (p probe) potentiallyExclusive() bool {
	t := p.tags
	pedestrianInfra := t.In("highway", "steps", "corridor", "pedestrian", "platform") ||
		t.Get("railway") == "platform" ||
		(t.Get("highway") == "path" &&
			(t.In("foot", "yes", "designated", "official") ||
				t.In("footway", "access_aisle", "alley", "residential", "link", "path") ||
				t.Get("bicycle") == "no")) ||
		(t.Get("highway") == "footway" &&
			!t.In("footway", "sidewalk", "crossing", "traffic_island", "yes"))
	return pedestrianInfra &&
		t.Get("motor_vehicle") != "yes" &&
		t.Get("vehicle") != "yes"
}

func (p probe) sharedWithBikes() bool {
	return p.tags.In("bicycle", "yes", "designated", "permissive", "official") &&
		p.tags.Get("segregated") != "yes"
}

// designatedFoot matches explicit foot access without any speed limit,
// indicating pedestrian infrastructure rather than a shared roadway.
func (p probe) designatedFoot() bool {
	return p.tags.In("foot", "yes", "permissive", "designated", "official") &&
		p.speed == osm.SpeedUnknown
}

// potentiallySeparated matches paths physically separated from car traffic.
func (p probe) potentiallySeparated() bool {
	t := p.tags
	separatedPath := t.In("highway", "footway", "path", "cycleway") &&
		(p.designatedFoot() || t.In("footway", "sidewalk", "crossing", "traffic_island", "yes"))
	return separatedPath || (p.potential() && p.designatedFoot())
}

func (p probe) hasSidewalk() bool {
	t := p.tags
	return t.In("sidewalk", "both", "left", "right", "yes", "lane") ||
		t.Get("sidewalk:left") == "yes" ||
		t.Get("sidewalk:right") == "yes" ||
		t.Get("sidewalk:both") == "yes"
}

func (p probe) hasNoSidewalk() bool {
	t := p.tags
	return t.In("sidewalk", "no", "none") ||
		t.In("sidewalk:both", "no", "none") ||
		(t.Get("sidewalk:left") == "no" && t.Get("sidewalk:right") == "no") ||
		(t.Get("sidewalk:left") == "none" && t.Get("sidewalk:right") == "none")
}

// sidewalkIsSeparate matches roads whose sidewalk is mapped as its own way.
// The road itself is then not pedestrian infrastructure.
func (p probe) sidewalkIsSeparate() bool {
	t := p.tags
	return t.Get("sidewalk") == "separate" ||
		t.Get("sidewalk:both") == "separate" ||
		(t.Get("sidewalk:left") == "separate" && t.Get("sidewalk:right") == "separate")
}

func (p probe) designated() bool {
	return ((p.potentiallyExclusive() || p.potentiallySeparated()) && !p.sharedWithBikes()) ||
		(p.potential() && p.hasSidewalk())
}

func (p probe) designatedSharedWithBikes() bool {
	return ((p.potentiallyExclusive() || p.potentiallySeparated()) && p.sharedWithBikes()) ||
		p.tags.Get("highway") == "path"
}

func (p probe) sharedWithLowSpeed() bool {
	return (p.tags.In("highway", lowSpeedHighways...) && p.speed <= p.bands.Slow) ||
		(0 < p.speed && p.speed <= p.bands.Slow)
}

func (p probe) sharedWithMediumSpeed() bool {
	inBand := p.bands.Slow < p.speed && p.speed <= p.bands.Medium
	return (p.tags.Get("highway") == "track" && (inBand || p.speed == osm.SpeedUnknown)) || inBand
}

func (p probe) sharedWithHighSpeed() bool {
	return p.bands.Medium < p.speed && p.speed <= p.bands.Fast
}

func (p probe) sharedWithVeryHighSpeed() bool {
	return p.speed > p.bands.Fast
}

func (p probe) sharedWithUnknownSpeed() bool {
	return p.potential() && p.hasNoSidewalk() && p.speed == osm.SpeedUnknown
}

func (p probe) inaccessible() bool {
	t := p.tags
	// A missing highway tag is missing data, not an access restriction.
	notWalkableHighway := t.Get("highway") != "" &&
		!t.In("highway", walkableHighways...) && t.Get("railway") != "platform"
	return notWalkableHighway ||
		p.sidewalkIsSeparate() ||
		t.Get("footway") == "no" ||
		t.In("access", "no", "private", "permit", "military", "delivery", "customers") ||
		t.In("foot", "no", "private", "use_sidepath", "discouraged", "destination") ||
		(t.Get("highway") == "service" && t.In("bus", "designated", "yes")) ||
		t.Get("ford") == "yes"
}
