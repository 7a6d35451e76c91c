package classify

import (
	"github.com/rotisserie/eris"
)

// Category is the walkability class of a path, ordered best to worst.
type Category string

const (
	CategoryDesignated         Category = "designated"
	CategorySharedWithBikes    Category = "designated_shared_with_bikes"
	CategorySharedLowSpeed     Category = "shared_with_motorized_traffic_low_speed"
	CategorySharedMediumSpeed  Category = "shared_with_motorized_traffic_medium_speed"
	CategorySharedHighSpeed    Category = "shared_with_motorized_traffic_high_speed"
	CategorySharedUnknownSpeed Category = "shared_with_motorized_traffic_unknown_speed"
	CategorySharedVeryHigh     Category = "shared_with_motorized_traffic_very_high_speed"
	CategoryNotWalkable        Category = "not_walkable"
	CategoryUnknown            Category = "unknown"
)

// Categories lists every walkability category in best-to-worst order.
var Categories = []Category{
	CategoryDesignated,
	CategorySharedWithBikes,
	CategorySharedLowSpeed,
	CategorySharedMediumSpeed,
	CategorySharedHighSpeed,
	CategorySharedUnknownSpeed,
	CategorySharedVeryHigh,
	CategoryNotWalkable,
	CategoryUnknown,
}

// Valid reports whether c is a member of the fixed enumeration.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// RatingMap assigns each category a qualitative 0..1 rating published with
// the classification output.
type RatingMap map[Category]float64

// DefaultRatings mirrors the semantic order of the categories.
func DefaultRatings() RatingMap {
	return RatingMap{
		CategoryDesignated:         1.0,
		CategorySharedWithBikes:    0.8,
		CategorySharedLowSpeed:     0.6,
		CategorySharedMediumSpeed:  0.4,
		CategorySharedHighSpeed:    0.2,
		CategorySharedUnknownSpeed: 0.1,
		CategorySharedVeryHigh:     0.05,
		CategoryNotWalkable:        0.0,
		CategoryUnknown:            0.0,
	}
}

// Validate checks that every category is rated within 0..1 and that ratings
// respect the best-to-worst category order. Unknown is exempt from the order
// check since it represents missing data rather than a quality level.
func (r RatingMap) Validate() error {
	ordered := []Category{
		CategoryNotWalkable,
		CategorySharedVeryHigh,
		CategorySharedUnknownSpeed,
		CategorySharedHighSpeed,
		CategorySharedMediumSpeed,
		CategorySharedLowSpeed,
		CategorySharedWithBikes,
		CategoryDesignated,
	}
	for _, cat := range Categories {
		rating, ok := r[cat]
		if !ok {
			return eris.Errorf("classify: rating map missing category %q", cat)
		}
		if rating < 0 || rating > 1 {
			return eris.Errorf("classify: rating for %q out of range [0,1]: %v", cat, rating)
		}
	}
	for i := 1; i < len(ordered); i++ {
		if r[ordered[i-1]] > r[ordered[i]] {
			return eris.Errorf("classify: rating order violated: %q (%v) > %q (%v)",
				ordered[i-1], r[ordered[i-1]], ordered[i], r[ordered[i]])
		}
	}
	return nil
}

// Quality is a surface-quality grade. Grades inferred from the surface
// material alone carry a "potentially" qualifier to signal that good
// maintenance was assumed.
type Quality string

const (
	QualityGood                Quality = "good"
	QualityPotentiallyGood     Quality = "potentially_good"
	QualityMediocre            Quality = "mediocre"
	QualityPotentiallyMediocre Quality = "potentially_mediocre"
	QualityPoor                Quality = "poor"
	QualityPotentiallyPoor     Quality = "potentially_poor"
	QualityVeryPoor            Quality = "very_poor"
	QualityUnknown             Quality = "unknown"
)

// Potentially downgrades a grade to its uncertainty-qualified variant.
// Very poor surfaces collapse to potentially_poor since the distinction is
// void once maintenance is assumed unknown.
func Potentially(q Quality) Quality {
	switch q {
	case QualityGood:
		return QualityPotentiallyGood
	case QualityMediocre:
		return QualityPotentiallyMediocre
	case QualityPoor, QualityVeryPoor:
		return QualityPotentiallyPoor
	default:
		return QualityUnknown
	}
}
