package arix

// EntityKind distinguishes the animated parts of the tree.
type EntityKind uint8

const (
	KindLayer  EntityKind = iota // cone tier of the tree
	KindBauble                   // ornament sphere
	KindTinsel                   // spiral ribbon
	KindStar                     // topper
	KindTrunk                    // static trunk, never animated
	KindFloor                    // reflective ground plane, outside the tree group
)

// NoEntity is the ID carried by draw commands that belong to no entity.
const NoEntity = ^uint32(0)

// String returns the lower-case kind name.
func (k EntityKind) String() string {
	switch k {
	case KindLayer:
		return "layer"
	case KindBauble:
		return "bauble"
	case KindTinsel:
		return "tinsel"
	case KindStar:
		return "star"
	case KindTrunk:
		return "trunk"
	case KindFloor:
		return "floor"
	default:
		return "unknown"
	}
}

// Animator advances one entity's live transform toward the configuration
// selected by the scene state. Implementations must return without effect
// when t is nil (entity not mounted).
type Animator interface {
	Update(t *Transform, f Frame, st *SceneState)
}

// Entity is one record in a Tree's arena. The ID is the record's index and is
// stable for the lifetime of the tree.
type Entity struct {
	ID   uint32
	Kind EntityKind
	Name string
	// Color is the base material color.
	Color Color

	rest     Transform
	live     Transform
	mounted  bool
	animator Animator
}

// Transform returns the live transform, or nil if the entity is not mounted.
func (e *Entity) Transform() *Transform {
	if !e.mounted {
		return nil
	}
	return &e.live
}

// Rest returns the construction-time transform.
func (e *Entity) Rest() Transform {
	return e.rest
}

// Mounted reports whether the entity has a live transform.
func (e *Entity) Mounted() bool {
	return e.mounted
}

// Animator returns the entity's animator, or nil for static entities.
func (e *Entity) Animator() Animator {
	return e.animator
}

// update runs the entity's animator. Unmounted entities pass a nil
// transform, which every animator treats as a no-op.
func (e *Entity) update(f Frame, st *SceneState) {
	if e.animator == nil {
		return
	}
	e.animator.Update(e.Transform(), f, st)
}
