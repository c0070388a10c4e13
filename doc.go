// Package arix animates a decorative Christmas tree that can be exploded
// into floating parts and reassembled.
//
// The package holds the engine-independent core: scene state and its
// controller, per-entity animators, the [Tree] composer, the orbit [Camera],
// lighting, particles, and configuration. Frontends live in sub-packages:
// view (Ebitengine window or browser canvas), term (terminal), and audio.
//
// # Quick start
//
//	cfg := arix.DefaultConfig()
//	tree := arix.NewTree(cfg.Tree, arix.NewRand(cfg.Seed))
//	tree.Controller().ToggleExploded()
//	tree.Update(arix.Frame{DT: 1.0 / 60, Elapsed: 1.0 / 60})
//
// # Animation model
//
// Every animated entity owns an [Animator] that eases its live [Transform]
// toward the layout selected by the [SceneState]. Easing uses [Damp]:
// each frame covers clamp(dt*k, 0, 1) of the remaining distance, so motion
// is frame-rate independent and never overshoots.
//
// Animators run once per frame in a fixed order (layers, baubles, tinsel,
// star). A control command issued between frames is seen by every animator
// on the next frame. Entities that are not mounted are skipped without error.
//
// # Controls
//
// [Controller] is the only writer of the scene state. Each applied command
// emits a [ControlEvent] to registered [EventSink] values; the audio
// ambience and the ECS bridge are sinks.
//
// # Configuration
//
// [LoadConfig] layers a YAML file over [DefaultConfig] and then applies
// ARIX_* environment variables. [WatchConfig] reloads on change.
package arix
