package arix

import "testing"

// setupBenchTree builds a default tree with n baubles and a renderer over it.
func setupBenchTree(n int) (*Tree, *Renderer) {
	cfg := DefaultConfig()
	cfg.Tree.Baubles = n
	tree := NewTree(cfg.Tree, NewRand(1))
	cam := NewCamera(cfg.Camera)
	return tree, NewRenderer(tree, cam, cfg.Lighting, cfg.Post)
}

// --- Update Benchmarks ---

func BenchmarkUpdate_Assembled(b *testing.B) {
	tree, _ := setupBenchTree(DefaultBaubleCount)
	f := Frame{DT: 1.0 / 60}

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		f.Elapsed += f.DT
		tree.Update(f)
	}
}

func BenchmarkUpdate_Exploding(b *testing.B) {
	tree, _ := setupBenchTree(DefaultBaubleCount)
	tree.Controller().SetExploded(true)
	f := Frame{DT: 1.0 / 60}

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		f.Elapsed += f.DT
		tree.Update(f)
	}
}

// --- Render Benchmarks ---

func BenchmarkBuild_Default(b *testing.B) {
	tree, r := setupBenchTree(DefaultBaubleCount)
	tree.Update(Frame{DT: 1.0 / 60})

	// Warm up: first build grows the command and sort buffers.
	r.Build(1280, 720, 1.0/60)

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		r.Build(1280, 720, 1.0/60)
	}
}

func BenchmarkBuild_1000Baubles(b *testing.B) {
	tree, r := setupBenchTree(1000)
	tree.Update(Frame{DT: 1.0 / 60})
	r.Build(1280, 720, 1.0/60)

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		r.Build(1280, 720, 1.0/60)
	}
}

func BenchmarkMergeSort(b *testing.B) {
	tree, r := setupBenchTree(DefaultBaubleCount)
	tree.Update(Frame{DT: 1.0 / 60})
	cmds := append([]RenderCommand(nil), r.Build(1280, 720, 1.0/60)...)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		r.commands = append(r.commands[:0], cmds...)
		r.mergeSort()
	}
}
