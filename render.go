package arix

// CommandType identifies the kind of render command.
type CommandType uint8

const (
	CommandTriangle CommandType = iota // filled, Gouraud-shaded triangle
	CommandPoint                       // round point sprite
)

// Draw layers. Commands on a lower layer are drawn first.
const (
	LayerBackdrop uint8 = iota // stars and floor
	LayerScene                 // tree geometry and sparkles
)

// Background is the clear color behind everything.
var Background = MustHex("#020403")

// DrawVertex is a projected vertex in screen pixels with Y down. Depth is
// the distance along the view axis.
type DrawVertex struct {
	X, Y, Depth float64
	Color       Color
}

// RenderCommand is a single draw instruction emitted by Renderer.Build.
// Point commands use V[0] and Size.
type RenderCommand struct {
	Type CommandType
	V    [3]DrawVertex
	// Size is the point diameter in pixels.
	Size float64
	// Depth is the mean view depth, used for back-to-front ordering.
	Depth    float64
	Layer    uint8
	Entity   uint32
	Kind     EntityKind
	Additive bool
	order    int // emission order, for stable sort
}

// RenderStats counts the work done by the last Build.
type RenderStats struct {
	Triangles int
	Culled    int
	Clipped   int
	Points    int
	// Luminance is the mean lit luminance measured this frame.
	Luminance float64
}

// Renderer turns a Tree and Camera into a sorted list of screen-space draw
// commands. Both frontends consume the same list; the terminal rasterizes it
// with a depth buffer, the window draws it back to front.
type Renderer struct {
	tree *Tree
	cam  *Camera
	rig  *LightRig
	post PostConfig

	adapted float64
	stats   RenderStats

	commands []RenderCommand
	sortBuf  []RenderCommand
	order    int

	// Per-mesh scratch, reused between entities.
	viewPos []Vec3
	colors  []Color
	clipBuf []clipVertex
}

// NewRenderer creates a renderer for tree seen through cam.
func NewRenderer(tree *Tree, cam *Camera, lighting LightingConfig, post PostConfig) *Renderer {
	r := &Renderer{
		tree:    tree,
		cam:     cam,
		rig:     NewLightRig(lighting),
		post:    post,
		adapted: post.ToneMapping.AverageLuminance,
	}
	if r.adapted <= 0 {
		r.adapted = 1
	}
	return r
}

// SetTree swaps the tree being drawn, for example after a config reload.
func (r *Renderer) SetTree(t *Tree) { r.tree = t }

// SetPost replaces the post-processing settings.
func (r *Renderer) SetPost(p PostConfig) { r.post = p }

// SetLighting rebuilds the light rig.
func (r *Renderer) SetLighting(cfg LightingConfig) { r.rig = NewLightRig(cfg) }

// Camera returns the renderer's camera.
func (r *Renderer) Camera() *Camera { return r.cam }

// Post returns the post-processing settings.
func (r *Renderer) Post() PostConfig { return r.post }

// Adapted returns the current adapted scene luminance.
func (r *Renderer) Adapted() float64 { return r.adapted }

// Stats returns counters from the last Build.
func (r *Renderer) Stats() RenderStats { return r.stats }

// Build produces the draw commands for a w×h viewport. dt drives luminance
// adaptation. The returned slice is owned by the renderer and valid until the
// next call.
func (r *Renderer) Build(w, h, dt float64) []RenderCommand {
	r.commands = r.commands[:0]
	r.order = 0
	r.stats = RenderStats{}
	if r.tree == nil || w <= 0 || h <= 0 {
		return r.commands
	}

	r.rig.SetStarPosition(r.tree.StarWorldPosition())

	var lumSum float64
	var lumN int
	eye := r.cam.Position()
	view := r.cam.ViewMatrix()

	r.emitStars(w, h)

	floor := NewTransform(Vec3{0, FloorY, 0}, Vec3{}, 1).Matrix()
	s, n := r.emitMesh(r.tree.Meshes().For(KindFloor), floor, FloorMaterial, 1, eye, view, w, h, LayerBackdrop, NoEntity, KindFloor)
	lumSum += s
	lumN += n

	ents := r.tree.Entities()
	for i := range ents {
		e := &ents[i]
		tr := e.Transform()
		if tr == nil {
			continue
		}
		if e.Kind == KindTinsel && tr.Opacity < 0.01 {
			continue
		}
		m, ok := r.tree.WorldMatrix(e.ID)
		if !ok {
			continue
		}
		s, n := r.emitMesh(r.tree.Meshes().For(e.Kind), m, MaterialFor(e), tr.Opacity, eye, view, w, h, LayerScene, e.ID, e.Kind)
		lumSum += s
		lumN += n
	}

	r.emitSparkles(w, h)

	if lumN > 0 {
		r.stats.Luminance = lumSum / float64(lumN)
		r.adapted = r.post.ToneMapping.Adapt(r.adapted, r.stats.Luminance, dt)
	}

	r.mergeSort()
	return r.commands
}

// emitMesh shades, culls, clips, and projects one mesh. It returns the sum
// and count of the HDR luminance of the shaded vertices.
func (r *Renderer) emitMesh(mesh *Mesh, world Affine3, mat Material, opacity float64,
	eye Vec3, view Affine3, w, h float64, layer uint8, id uint32, kind EntityKind) (lum float64, n int) {
	if mesh == nil {
		return 0, 0
	}
	normalM := world.NormalMatrix()
	nv := len(mesh.Positions)
	if cap(r.viewPos) < nv {
		r.viewPos = make([]Vec3, nv)
		r.colors = make([]Color, nv)
	}
	r.viewPos = r.viewPos[:nv]
	r.colors = r.colors[:nv]

	for i, p := range mesh.Positions {
		wp := world.TransformPoint(p)
		wn := normalM.TransformDir(mesh.Normals[i]).Normalize()
		c := r.rig.Shade(wp, wn, eye, mat)
		lum += c.Luminance()
		r.viewPos[i] = view.TransformPoint(wp)
		r.colors[i] = r.toneMap(c)
		r.colors[i].A = opacity
	}
	n = nv

	near := r.cam.Near
	for t := 0; t < mesh.Triangles(); t++ {
		ia, ib, ic := mesh.Triangle(t)
		a, b, c := r.viewPos[ia], r.viewPos[ib], r.viewPos[ic]
		// Camera sits at the origin of view space.
		if b.Sub(a).Cross(c.Sub(a)).Dot(a) >= 0 {
			r.stats.Culled++
			continue
		}
		in := [3]clipVertex{{a, r.colors[ia]}, {b, r.colors[ib]}, {c, r.colors[ic]}}
		if -a.Z >= near && -b.Z >= near && -c.Z >= near {
			r.emitTriangle(in[0], in[1], in[2], w, h, layer, id, kind)
			continue
		}
		poly := clipNear(in, near, r.clipBuf)
		r.clipBuf = poly
		if len(poly) < 3 {
			r.stats.Culled++
			continue
		}
		r.stats.Clipped++
		for k := 1; k+1 < len(poly); k++ {
			r.emitTriangle(poly[0], poly[k], poly[k+1], w, h, layer, id, kind)
		}
	}
	return lum, n
}

func (r *Renderer) emitTriangle(a, b, c clipVertex, w, h float64, layer uint8, id uint32, kind EntityKind) {
	f := r.cam.focal(h)
	cmd := RenderCommand{
		Type:   CommandTriangle,
		Layer:  layer,
		Entity: id,
		Kind:   kind,
	}
	for i, v := range [3]clipVertex{a, b, c} {
		d := -v.p.Z
		cmd.V[i] = DrawVertex{
			X:     w/2 + v.p.X*f/d,
			Y:     h/2 - v.p.Y*f/d,
			Depth: d,
			Color: v.c,
		}
		cmd.Depth += d
	}
	cmd.Depth /= 3
	r.push(cmd)
	r.stats.Triangles++
}

func (r *Renderer) emitStars(w, h float64) {
	stars := r.tree.Stars()
	if stars == nil {
		return
	}
	for i := 0; i < stars.Len(); i++ {
		pos, size, bright := stars.At(i)
		x, y, d, ok := r.cam.Project(pos, w, h)
		if !ok || !onScreen(x, y, w, h) {
			continue
		}
		r.push(RenderCommand{
			Type:  CommandPoint,
			V:     [3]DrawVertex{{X: x, Y: y, Depth: d, Color: ColorWhite.Scale(bright)}},
			Size:  size * h / 720,
			Depth: d,
			Layer: LayerBackdrop,
		})
		r.stats.Points++
	}
}

func (r *Renderer) emitSparkles(w, h float64) {
	for _, sl := range r.tree.SparkleLayers() {
		field := sl.Field
		if field == nil {
			continue
		}
		col := field.Color()
		for i := 0; i < field.Len(); i++ {
			pos, alpha, size := field.At(i)
			x, y, d, ok := r.cam.Project(sl.Parent.TransformPoint(pos), w, h)
			if !ok || !onScreen(x, y, w, h) || alpha <= 0 {
				continue
			}
			c := col
			c.A = alpha
			r.push(RenderCommand{
				Type:     CommandPoint,
				V:        [3]DrawVertex{{X: x, Y: y, Depth: d, Color: c}},
				Size:     SparklePixelSize(size, d, h),
				Depth:    d,
				Layer:    LayerScene,
				Additive: true,
			})
			r.stats.Points++
		}
	}
}

// SparklePixelSize attenuates a sparkle's nominal size with distance. size is
// the diameter at 10 units in a 720 pixel tall viewport.
func SparklePixelSize(size, depth, h float64) float64 {
	if depth <= 0 {
		return 0
	}
	return size * (10 / depth) * (h / 720)
}

// toneMap compresses a lit color for display. Without post-processing the
// color is only clamped.
func (r *Renderer) toneMap(c Color) Color {
	if !r.post.Enabled {
		return c.Clamped()
	}
	return r.post.ToneMapping.Apply(c, r.adapted)
}

func (r *Renderer) push(cmd RenderCommand) {
	cmd.order = r.order
	r.order++
	r.commands = append(r.commands, cmd)
}

func onScreen(x, y, w, h float64) bool {
	return x >= -8 && y >= -8 && x <= w+8 && y <= h+8
}

// --- Near-plane clipping ---

type clipVertex struct {
	p Vec3 // view space
	c Color
}

// clipNear clips a view-space triangle against the plane -z = near and
// returns the resulting polygon (0, 3, or 4 vertices) in out's storage.
func clipNear(in [3]clipVertex, near float64, out []clipVertex) []clipVertex {
	out = out[:0]
	for i := 0; i < 3; i++ {
		a, b := in[i], in[(i+1)%3]
		da := -a.p.Z - near
		db := -b.p.Z - near
		if da >= 0 {
			out = append(out, a)
		}
		if (da >= 0) != (db >= 0) {
			t := da / (da - db)
			out = append(out, clipVertex{p: a.p.Lerp(b.p, t), c: lerpColor(a.c, b.c, t)})
		}
	}
	return out
}

func lerpColor(a, b Color, t float64) Color {
	return Color{lerp(a.R, b.R, t), lerp(a.G, b.G, t), lerp(a.B, b.B, t), lerp(a.A, b.A, t)}
}

// --- Merge sort ---

// commandLessOrEqual returns true if a should sort before or at the same
// position as b: lower layers first, then far to near, then emission order.
func commandLessOrEqual(a, b RenderCommand) bool {
	if a.Layer != b.Layer {
		return a.Layer < b.Layer
	}
	if a.Depth != b.Depth {
		return a.Depth > b.Depth
	}
	return a.order <= b.order
}

// mergeSort sorts r.commands in-place using r.sortBuf as scratch space.
// Bottom-up merge sort: zero allocations after the sort buffer reaches its
// high-water mark.
func (r *Renderer) mergeSort() {
	n := len(r.commands)
	if n <= 1 {
		return
	}
	if cap(r.sortBuf) < n {
		r.sortBuf = make([]RenderCommand, n)
	}
	r.sortBuf = r.sortBuf[:n]

	a := r.commands
	b := r.sortBuf
	swapped := false

	for width := 1; width < n; width *= 2 {
		for i := 0; i < n; i += 2 * width {
			lo := i
			mid := min(lo+width, n)
			hi := min(lo+2*width, n)
			mergeRun(a, b, lo, mid, hi)
		}
		a, b = b, a
		swapped = !swapped
	}

	if swapped {
		copy(r.commands, r.sortBuf)
	}
}

// mergeRun merges two sorted runs [lo, mid) and [mid, hi) from src into dst.
func mergeRun(src, dst []RenderCommand, lo, mid, hi int) {
	i, j, k := lo, mid, lo
	for i < mid && j < hi {
		if commandLessOrEqual(src[i], src[j]) {
			dst[k] = src[i]
			i++
		} else {
			dst[k] = src[j]
			j++
		}
		k++
	}
	for i < mid {
		dst[k] = src[i]
		i++
		k++
	}
	for j < hi {
		dst[k] = src[j]
		j++
		k++
	}
}
