package arix

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"
)

// groupSpinRate is the base rotation rate of the whole tree in radians per
// second at speed 1.
const groupSpinRate = 0.1

// explodedSpinFactor slows the group spin while the tree is exploded.
const explodedSpinFactor = 0.2

// TrunkPosition is where the static trunk sits inside the group.
var TrunkPosition = Vec3{0, -0.5, 0}

// TreeConfig configures a Tree.
type TreeConfig struct {
	// Baubles is the ornament count.
	Baubles int `yaml:"baubles"`
	// Palette is the ornament color cycle as hex strings.
	Palette []string `yaml:"palette"`
	// GroupPosition offsets the whole tree in the world.
	GroupPosition Vec3 `yaml:"groupPosition"`
	// Sparkles float around the tree and turn with it.
	Sparkles SparkleConfig `yaml:"sparkles"`
	// StarSparkles cluster around the topper and follow it.
	StarSparkles SparkleConfig `yaml:"starSparkles"`
	// Stars is the distant backdrop.
	Stars StarFieldConfig `yaml:"stars"`
	// Detail scales mesh tessellation.
	Detail float64 `yaml:"detail"`
}

// DefaultTreeConfig returns the standard tree.
func DefaultTreeConfig() TreeConfig {
	return TreeConfig{
		Baubles:       DefaultBaubleCount,
		Palette:       append([]string(nil), DefaultPalette...),
		GroupPosition: Vec3{0, -3, 0},
		Sparkles: SparkleConfig{
			Count: 200, Scale: 12, Size: 5, Speed: 0.4, Opacity: 0.8, Color: "#ffd700", Noise: 1,
		},
		StarSparkles: SparkleConfig{
			Count: 40, Scale: 3, Size: 15, Speed: 0.4, Opacity: 1, Color: "#ffffff", Noise: 1,
		},
		Stars: StarFieldConfig{
			Count: 5000, Radius: 100, Depth: 50, Factor: 4, Speed: 1,
			FloatSpeed: 1, FloatRotation: 0.5, FloatHeight: 0.5,
		},
		Detail: 1,
	}
}

// SparkleLayer is a sparkle field together with the world matrix of the
// entity it is attached to.
type SparkleLayer struct {
	Field  *Sparkles
	Parent Affine3
}

// Tree is the scene composer. It owns the entity arena, the shared scene
// state and its controller, and runs every animator once per frame in a
// fixed order: layers, baubles, tinsel, star.
type Tree struct {
	config   TreeConfig
	entities []Entity

	layers  []uint32
	baubles []uint32
	tinsel  uint32
	star    uint32
	trunk   uint32

	state *SceneState
	ctl   *Controller

	groupRotation float64
	group         Affine3

	sparkles     *Sparkles
	starSparkles *Sparkles
	stars        *StarField
	meshes       *MeshSet

	logger *slog.Logger
	debug  debugState
}

// NewTree builds a tree in the default scene state. rng seeds every random
// placement; a nil rng uses the global source.
func NewTree(cfg TreeConfig, rng *rand.Rand) *Tree {
	st := DefaultSceneState()
	return newTree(cfg, rng, &st, nil)
}

// Rebuild constructs a new tree from cfg that shares t's scene state,
// controller, group rotation, and logger. It is used when the configuration
// is reloaded while running.
func (t *Tree) Rebuild(cfg TreeConfig, rng *rand.Rand) *Tree {
	nt := newTree(cfg, rng, t.state, t.ctl)
	nt.groupRotation = t.groupRotation
	nt.logger = t.logger
	nt.debug.enabled = t.debug.enabled
	nt.debug.every = t.debug.every
	nt.updateGroup()
	return nt
}

func newTree(cfg TreeConfig, rng *rand.Rand, st *SceneState, ctl *Controller) *Tree {
	if ctl == nil {
		ctl = NewController(st)
	}
	t := &Tree{
		config: cfg,
		state:  st,
		ctl:    ctl,
		logger: slog.Default(),
	}

	for _, spec := range DefaultLayerSpecs() {
		a := NewLayerAnimator(spec, rng)
		id := t.add(KindLayer, fmt.Sprintf("layer-%d", spec.Index), LeafMaterial.Color, a.Rest(), a)
		t.layers = append(t.layers, id)
	}

	palette := make([]Color, 0, len(cfg.Palette))
	for _, h := range cfg.Palette {
		c, err := ParseHexColor(h)
		if err != nil {
			t.logger.Warn("skipping palette entry", "color", h, "err", err)
			continue
		}
		palette = append(palette, c)
	}
	for i, spec := range SampleBaubles(max(cfg.Baubles, 0), palette, rng) {
		a := NewBaubleAnimator(spec)
		id := t.add(KindBauble, fmt.Sprintf("bauble-%d", i), spec.Color, a.Rest(), a)
		t.baubles = append(t.baubles, id)
	}

	tinsel := NewTinselAnimator()
	t.tinsel = t.add(KindTinsel, "tinsel", TinselMaterial.Color, tinsel.Rest(), tinsel)
	star := NewStarAnimator()
	t.star = t.add(KindStar, "star", GoldMaterial.Color, star.Rest(), star)
	t.trunk = t.add(KindTrunk, "trunk", TrunkMaterial.Color, NewTransform(TrunkPosition, Vec3{}, 1), nil)

	t.sparkles = NewSparkles(cfg.Sparkles, rng)
	t.starSparkles = NewSparkles(cfg.StarSparkles, rng)
	t.stars = NewStarField(cfg.Stars, rng)
	t.meshes = NewMeshSet(tinsel.Curve(), cfg.Detail)
	t.updateGroup()
	return t
}

// add appends a mounted entity to the arena and returns its ID.
func (t *Tree) add(kind EntityKind, name string, c Color, rest Transform, a Animator) uint32 {
	id := uint32(len(t.entities))
	t.entities = append(t.entities, Entity{
		ID:       id,
		Kind:     kind,
		Name:     name,
		Color:    c,
		rest:     rest,
		live:     rest,
		mounted:  true,
		animator: a,
	})
	return id
}

// SetLogger replaces the logger used by the tree and its controller.
func (t *Tree) SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.Default()
	}
	t.logger = l
	t.ctl.SetLogger(l)
}

// Config returns the configuration the tree was built from.
func (t *Tree) Config() TreeConfig { return t.config }

// Controller returns the controller that mutates the tree's scene state.
func (t *Tree) Controller() *Controller { return t.ctl }

// State returns a copy of the current scene state.
func (t *Tree) State() SceneState { return *t.state }

// Entity returns the entity with the given ID, or nil if none exists.
func (t *Tree) Entity(id uint32) *Entity {
	if int(id) >= len(t.entities) {
		return nil
	}
	return &t.entities[id]
}

// Entities returns the arena. Callers must not append to it.
func (t *Tree) Entities() []Entity { return t.entities }

// Layers returns the IDs of the cone tiers, bottom to top.
func (t *Tree) Layers() []uint32 { return t.layers }

// Baubles returns the IDs of the ornaments.
func (t *Tree) Baubles() []uint32 { return t.baubles }

// TinselID returns the ribbon's ID.
func (t *Tree) TinselID() uint32 { return t.tinsel }

// StarID returns the topper's ID.
func (t *Tree) StarID() uint32 { return t.star }

// TrunkID returns the trunk's ID.
func (t *Tree) TrunkID() uint32 { return t.trunk }

// Meshes returns the shared geometry.
func (t *Tree) Meshes() *MeshSet { return t.meshes }

// Stars returns the backdrop star field.
func (t *Tree) Stars() *StarField { return t.stars }

// Mount gives the entity a live transform reset to its rest pose. It reports
// whether id exists.
func (t *Tree) Mount(id uint32) bool {
	e := t.Entity(id)
	if e == nil {
		return false
	}
	e.live = e.rest
	e.mounted = true
	return true
}

// Unmount detaches the entity's live transform. Its animator keeps running
// but has no effect until the entity is mounted again.
func (t *Tree) Unmount(id uint32) {
	if e := t.Entity(id); e != nil {
		e.mounted = false
	}
}

// GroupRotation returns the accumulated Y rotation of the whole tree.
func (t *Tree) GroupRotation() float64 { return t.groupRotation }

// GroupMatrix returns the world matrix shared by every entity.
func (t *Tree) GroupMatrix() Affine3 { return t.group }

// WorldMatrix returns the entity's live world matrix. ok is false for
// unknown or unmounted entities.
func (t *Tree) WorldMatrix(id uint32) (m Affine3, ok bool) {
	e := t.Entity(id)
	if e == nil || !e.mounted {
		return Affine3{}, false
	}
	return t.group.Mul(e.live.Matrix()), true
}

// StarWorldPosition returns where the topper currently is in world space.
func (t *Tree) StarWorldPosition() Vec3 {
	m, ok := t.WorldMatrix(t.star)
	if !ok {
		return t.group.TransformPoint(Vec3{0, starRestY, 0})
	}
	return m.TransformPoint(Vec3{})
}

// SparkleLayers returns the sparkle fields with their parent matrices.
func (t *Tree) SparkleLayers() []SparkleLayer {
	starM, ok := t.WorldMatrix(t.star)
	if !ok {
		starM = t.group
	}
	return []SparkleLayer{
		{Field: t.sparkles, Parent: t.group},
		{Field: t.starSparkles, Parent: starM},
	}
}

// MaterialFor returns the surface material of e.
func MaterialFor(e *Entity) Material {
	switch e.Kind {
	case KindLayer:
		return LeafMaterial
	case KindBauble:
		return OrnamentMaterial(e.Color)
	case KindTinsel:
		return TinselMaterial
	case KindStar:
		return GoldMaterial
	case KindFloor:
		return FloorMaterial
	default:
		return TrunkMaterial
	}
}

// Update advances every animator by one frame, then the group spin and the
// particle fields. Animators see the scene state as it is at the start of
// the frame.
func (t *Tree) Update(f Frame) {
	var start time.Time
	if t.debug.enabled {
		start = time.Now()
	}

	for _, id := range t.layers {
		t.entities[id].update(f, t.state)
	}
	for _, id := range t.baubles {
		t.entities[id].update(f, t.state)
	}
	t.entities[t.tinsel].update(f, t.state)
	t.entities[t.star].update(f, t.state)

	speed := t.state.RotationSpeed
	if t.state.Exploded {
		speed *= explodedSpinFactor
	}
	t.groupRotation += f.DT * groupSpinRate * speed
	t.updateGroup()

	t.sparkles.Update(f)
	t.starSparkles.Update(f)
	t.stars.Update(f)

	if t.debug.enabled {
		t.debugFrame(time.Since(start))
	}
}

func (t *Tree) updateGroup() {
	t.group = NewTransform(t.config.GroupPosition, Vec3{0, t.groupRotation, 0}, 1).Matrix()
}
