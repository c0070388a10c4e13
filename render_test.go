package arix

import (
	"math"
	"testing"
)

func newTestRenderer(t *testing.T) (*Renderer, *Tree) {
	t.Helper()
	cfg := DefaultConfig()
	tree := NewTree(smallTreeConfig(), NewRand(7))
	r := NewRenderer(tree, NewCamera(cfg.Camera), cfg.Lighting, cfg.Post)
	return r, tree
}

func assertSorted(t *testing.T, cmds []RenderCommand) {
	t.Helper()
	for i := 1; i < len(cmds); i++ {
		a, b := cmds[i-1], cmds[i]
		if a.Layer > b.Layer {
			t.Fatalf("cmds[%d] layer %d after layer %d", i, b.Layer, a.Layer)
		}
		if a.Layer == b.Layer && a.Depth < b.Depth {
			t.Fatalf("cmds[%d] depth %v drawn after nearer %v", i, b.Depth, a.Depth)
		}
	}
}

// --- Sorting ---

func TestMergeSortOrder(t *testing.T) {
	r := &Renderer{}
	r.push(RenderCommand{Layer: LayerScene, Depth: 2})
	r.push(RenderCommand{Layer: LayerBackdrop, Depth: 1})
	r.push(RenderCommand{Layer: LayerScene, Depth: 9})
	r.push(RenderCommand{Layer: LayerScene, Depth: 2, Entity: 5})
	r.push(RenderCommand{Layer: LayerBackdrop, Depth: 100})
	r.mergeSort()

	want := []struct {
		layer uint8
		depth float64
		order int
	}{
		{LayerBackdrop, 100, 4},
		{LayerBackdrop, 1, 1},
		{LayerScene, 9, 2},
		{LayerScene, 2, 0},
		{LayerScene, 2, 3},
	}
	for i, w := range want {
		got := r.commands[i]
		if got.Layer != w.layer || got.Depth != w.depth || got.order != w.order {
			t.Errorf("commands[%d] = layer %d depth %v order %d, want %+v", i, got.Layer, got.Depth, got.order, w)
		}
	}
}

func TestMergeSortStableOnTies(t *testing.T) {
	r := &Renderer{}
	for i := 0; i < 37; i++ {
		r.push(RenderCommand{Layer: LayerScene, Depth: 3, Entity: uint32(i)})
	}
	r.mergeSort()
	for i, c := range r.commands {
		if c.Entity != uint32(i) {
			t.Fatalf("commands[%d].Entity = %d, want %d", i, c.Entity, i)
		}
	}
}

// --- Clipping ---

func TestClipNearAllInside(t *testing.T) {
	in := [3]clipVertex{
		{p: Vec3{0, 0, -1}}, {p: Vec3{1, 0, -1}}, {p: Vec3{0, 1, -1}},
	}
	out := clipNear(in, 0.1, nil)
	if len(out) != 3 {
		t.Fatalf("len = %d, want 3", len(out))
	}
}

func TestClipNearOneBehind(t *testing.T) {
	in := [3]clipVertex{
		{p: Vec3{0, 0, -2}, c: Color{1, 0, 0, 1}},
		{p: Vec3{1, 0, -2}, c: Color{1, 0, 0, 1}},
		{p: Vec3{0, 1, 2}, c: Color{0, 0, 1, 1}},
	}
	out := clipNear(in, 1, nil)
	if len(out) != 4 {
		t.Fatalf("len = %d, want 4", len(out))
	}
	for i, v := range out {
		if -v.p.Z < 1-1e-9 {
			t.Errorf("out[%d].z = %v, in front of near plane", i, v.p.Z)
		}
	}
	// b→c crosses at a quarter of the way: depth goes 2 → -2 against near 1.
	assertVec(t, "crossing", out[2].p, Vec3{0.75, 0.25, -1})
	assertNear(t, "crossing blue", out[2].c.B, 0.25)
}

func TestClipNearTwoBehind(t *testing.T) {
	in := [3]clipVertex{
		{p: Vec3{0, 0, -3}},
		{p: Vec3{1, 0, 1}},
		{p: Vec3{0, 1, 1}},
	}
	if out := clipNear(in, 1, nil); len(out) != 3 {
		t.Fatalf("len = %d, want 3", len(out))
	}
}

func TestClipNearAllBehind(t *testing.T) {
	in := [3]clipVertex{
		{p: Vec3{0, 0, 1}}, {p: Vec3{1, 0, 1}}, {p: Vec3{0, 1, 1}},
	}
	if out := clipNear(in, 0.1, nil); len(out) != 0 {
		t.Fatalf("len = %d, want 0", len(out))
	}
}

// --- Build ---

func TestBuildNilTree(t *testing.T) {
	r, _ := newTestRenderer(t)
	r.SetTree(nil)
	if cmds := r.Build(320, 180, 1.0/60); len(cmds) != 0 {
		t.Errorf("nil tree produced %d commands", len(cmds))
	}
}

func TestBuildEmptyViewport(t *testing.T) {
	r, _ := newTestRenderer(t)
	if cmds := r.Build(0, 180, 1.0/60); len(cmds) != 0 {
		t.Errorf("zero width produced %d commands", len(cmds))
	}
}

func TestBuildSortedAndShaded(t *testing.T) {
	r, _ := newTestRenderer(t)
	cmds := r.Build(320, 180, 1.0/60)
	if len(cmds) == 0 {
		t.Fatal("no commands")
	}
	assertSorted(t, cmds)

	st := r.Stats()
	if st.Triangles == 0 {
		t.Error("no triangles emitted")
	}
	if st.Culled == 0 {
		t.Error("closed meshes should have back faces culled")
	}
	if st.Luminance <= 0 {
		t.Errorf("luminance = %v, want > 0", st.Luminance)
	}

	kinds := map[EntityKind]bool{}
	for _, c := range cmds {
		if c.Type != CommandTriangle {
			continue
		}
		kinds[c.Kind] = true
		for i, v := range c.V {
			if v.Color.R < 0 || v.Color.R > 1 || v.Color.G < 0 || v.Color.G > 1 || v.Color.B < 0 || v.Color.B > 1 {
				t.Fatalf("vertex %d color %+v outside [0,1]", i, v.Color)
			}
			if v.Depth < r.Camera().Near-1e-9 {
				t.Fatalf("vertex %d depth %v in front of near plane", i, v.Depth)
			}
		}
	}
	for _, k := range []EntityKind{KindLayer, KindBauble, KindTinsel, KindStar, KindFloor} {
		if !kinds[k] {
			t.Errorf("no triangles for %s", k)
		}
	}
}

func TestBuildFloorOnBackdrop(t *testing.T) {
	r, _ := newTestRenderer(t)
	for _, c := range r.Build(320, 180, 1.0/60) {
		if c.Kind == KindFloor {
			if c.Layer != LayerBackdrop || c.Entity != NoEntity {
				t.Fatalf("floor command layer %d entity %d", c.Layer, c.Entity)
			}
		}
	}
}

func TestBuildSkipsUnmounted(t *testing.T) {
	r, tree := newTestRenderer(t)
	id := tree.Baubles()[0]
	tree.Unmount(id)
	for _, c := range r.Build(320, 180, 1.0/60) {
		if c.Type == CommandTriangle && c.Entity == id {
			t.Fatalf("unmounted bauble %d still drawn", id)
		}
	}
}

func TestBuildHidesFadedTinsel(t *testing.T) {
	r, tree := newTestRenderer(t)
	tree.Controller().SetExploded(true)
	f := Frame{DT: 1.0 / 60}
	for i := 0; i < 600; i++ {
		f.Elapsed += f.DT
		tree.Update(f)
	}
	for _, c := range r.Build(320, 180, f.DT) {
		if c.Kind == KindTinsel {
			t.Fatal("faded tinsel still drawn")
		}
	}
}

func TestBuildSparklesAdditive(t *testing.T) {
	cfg := DefaultConfig()
	tc := smallTreeConfig()
	tc.Stars.Count = 1000
	r := NewRenderer(NewTree(tc, NewRand(7)), NewCamera(cfg.Camera), cfg.Lighting, cfg.Post)
	var sparkles, stars int
	for _, c := range r.Build(640, 360, 1.0/60) {
		if c.Type != CommandPoint {
			continue
		}
		if c.Additive {
			sparkles++
			if c.Layer != LayerScene {
				t.Errorf("sparkle on layer %d", c.Layer)
			}
		} else {
			stars++
		}
	}
	if sparkles == 0 {
		t.Error("no sparkles drawn")
	}
	if stars == 0 {
		t.Error("no stars drawn")
	}
}

func TestBuildAdaptsLuminance(t *testing.T) {
	r, _ := newTestRenderer(t)
	start := r.Adapted()
	r.Build(320, 180, 1.0/60)
	measured := r.Stats().Luminance
	got := r.Adapted()
	if math.Abs(got-measured) >= math.Abs(start-measured) && start != measured {
		t.Errorf("adapted %v did not move from %v toward %v", got, start, measured)
	}
}

func TestToneMapDisabledClamps(t *testing.T) {
	r, _ := newTestRenderer(t)
	post := r.Post()
	post.Enabled = false
	r.SetPost(post)
	got := r.toneMap(Color{3, 0.5, -1, 1})
	if got != (Color{1, 0.5, 0, 1}) {
		t.Errorf("toneMap = %+v, want clamped", got)
	}
}

func TestSparklePixelSize(t *testing.T) {
	assertNear(t, "at 10 units", SparklePixelSize(5, 10, 720), 5)
	assertNear(t, "at 20 units", SparklePixelSize(5, 20, 720), 2.5)
	assertNear(t, "half height", SparklePixelSize(5, 10, 360), 2.5)
	assertNear(t, "behind", SparklePixelSize(5, 0, 720), 0)
}
