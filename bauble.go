package arix

import (
	"math"
	"math/rand/v2"
)

// Bauble placement and animation constants.
const (
	baubleMaxHeight     = 7.5
	baubleInset         = 0.9
	baubleExplodeRadius = 3.5
	baubleVerticalLift  = 0.8
	baubleLiftOffset    = 1.0
	baubleDamp          = 3.0
)

// DefaultBaubleCount is the number of ornaments on a default tree.
const DefaultBaubleCount = 90

// DefaultPalette is the ornament color cycle.
var DefaultPalette = []string{"#d4af37", "#b8860b", "#ff4500", "#e5e4e2", "#ffffff"}

// BaubleSpec is the immutable construction-time configuration of one
// ornament.
type BaubleSpec struct {
	Position Vec3
	Scale    float64
	Color    Color
	// Outward is the unit direction in the XZ plane the ornament flies along
	// when the tree explodes.
	Outward Vec3
}

// BaubleRadius returns the cone radius ornaments are placed on at height y.
func BaubleRadius(y float64) float64 {
	return 1.9*(1-y/8.0) + 0.3
}

// SampleBaubles places count ornaments on the tree's silhouette using rng.
// Colors cycle through palette by index.
func SampleBaubles(count int, palette []Color, rng *rand.Rand) []BaubleSpec {
	if len(palette) == 0 {
		palette = []Color{ColorWhite}
	}
	specs := make([]BaubleSpec, count)
	for i := range specs {
		y := randFloat(rng) * baubleMaxHeight
		r := BaubleRadius(y)
		theta := randFloat(rng) * math.Pi * 2
		x := r * math.Cos(theta)
		z := r * math.Sin(theta)
		scale := randFloat(rng)*0.15 + 0.1

		specs[i] = BaubleSpec{
			Position: Vec3{x * baubleInset, y - 0.5, z * baubleInset},
			Scale:    scale,
			Color:    palette[i%len(palette)],
			Outward:  Vec3{x, 0, z}.Normalize(),
		}
	}
	return specs
}

// BaubleAnimator eases an ornament between its resting position and a point
// pushed outward and upward from the trunk.
type BaubleAnimator struct {
	spec BaubleSpec
}

// NewBaubleAnimator returns an animator for spec.
func NewBaubleAnimator(spec BaubleSpec) *BaubleAnimator {
	return &BaubleAnimator{spec: spec}
}

// Spec returns the ornament's immutable configuration.
func (a *BaubleAnimator) Spec() BaubleSpec { return a.spec }

// Rest returns the resting transform.
func (a *BaubleAnimator) Rest() Transform {
	return NewTransform(a.spec.Position, Vec3{}, a.spec.Scale)
}

// Target returns the position the ornament eases toward.
func (a *BaubleAnimator) Target(st *SceneState) Vec3 {
	p := a.spec.Position
	if !st.Exploded {
		return p
	}
	return p.
		Add(a.spec.Outward.Scale(baubleExplodeRadius)).
		Add(Vec3{0, p.Y*baubleVerticalLift + baubleLiftOffset, 0})
}

// Update implements Animator. The position is eased as a whole vector.
func (a *BaubleAnimator) Update(t *Transform, f Frame, st *SceneState) {
	if t == nil {
		return
	}
	t.Position = DampVec3(t.Position, a.Target(st), f.DT, baubleDamp)
}
