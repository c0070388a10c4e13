package ecs

import (
	"github.com/phanxgames/arix"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
	"github.com/yohamta/donburi/filter"
)

// ControlEventType is the Donburi event type for arix control events.
var ControlEventType = events.NewEventType[arix.ControlEvent]()

type donburiStore struct {
	world donburi.World
}

// NewDonburiStore creates an EventSink backed by a Donburi world. Control
// events are published to ControlEventType and can be consumed with
// events.Subscribe and ProcessEvents.
func NewDonburiStore(world donburi.World) arix.EventSink {
	return &donburiStore{world: world}
}

func (s *donburiStore) EmitEvent(event arix.ControlEvent) {
	ControlEventType.Publish(s.world, event)
}

// PoseData is the world pose of one tree entity.
type PoseData struct {
	ID      uint32
	Kind    arix.EntityKind
	Mounted bool
	World   arix.Affine3
	Opacity float64
}

// Pose is the component Mirror maintains.
var Pose = donburi.NewComponentType[PoseData]()

// Mirror keeps one Donburi entity per tree entity.
type Mirror struct {
	world   donburi.World
	tree    *arix.Tree
	handles []donburi.Entity
}

// NewMirror creates a Pose entity for every entity in tree and syncs once.
func NewMirror(world donburi.World, tree *arix.Tree) *Mirror {
	m := &Mirror{world: world, tree: tree}
	for range tree.Entities() {
		m.handles = append(m.handles, world.Create(Pose))
	}
	m.Sync()
	return m
}

// Sync copies the current world pose of every tree entity.
func (m *Mirror) Sync() {
	for i, h := range m.handles {
		id := uint32(i)
		e := m.tree.Entity(id)
		if e == nil {
			continue
		}
		pose := PoseData{ID: id, Kind: e.Kind}
		if w, ok := m.tree.WorldMatrix(id); ok {
			pose.Mounted = true
			pose.World = w
			pose.Opacity = e.Transform().Opacity
		}
		Pose.SetValue(m.world.Entry(h), pose)
	}
}

// Each calls fn for every mirrored pose of the given kind.
func (m *Mirror) Each(kind arix.EntityKind, fn func(*PoseData)) {
	donburi.NewQuery(filter.Contains(Pose)).Each(m.world, func(entry *donburi.Entry) {
		p := Pose.Get(entry)
		if p.Kind == kind {
			fn(p)
		}
	})
}

// Close removes the mirrored entities from the world.
func (m *Mirror) Close() {
	for _, h := range m.handles {
		if m.world.Valid(h) {
			m.world.Remove(h)
		}
	}
	m.handles = nil
}
