// Package ecs provides ECS adapters for arix scenes.
//
// [NewDonburiStore] bridges control events (explode, speed, music) into a
// [Donburi] world as typed events. Subscribe to [ControlEventType] in your
// ECS systems to receive them. [Mirror] copies each tree entity's world pose
// into a Donburi component every frame so systems can query the tree without
// touching the arena.
//
// Usage:
//
//	tree.Controller().AddSink(ecs.NewDonburiStore(world))
//	mirror := ecs.NewMirror(world, tree)
//	// each frame, after tree.Update:
//	mirror.Sync()
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
