package arix

import (
	"math"
	"slices"
)

// Mesh is indexed triangle geometry in an entity's local space. Triangles
// wind counter-clockwise when seen from outside.
type Mesh struct {
	Positions []Vec3
	Normals   []Vec3
	Indices   []uint16
}

// Triangles returns the number of triangles in m.
func (m *Mesh) Triangles() int { return len(m.Indices) / 3 }

// Triangle returns the vertex indices of triangle i.
func (m *Mesh) Triangle(i int) (a, b, c uint16) {
	return m.Indices[i*3], m.Indices[i*3+1], m.Indices[i*3+2]
}

func (m *Mesh) vertex(p, n Vec3) uint16 {
	m.Positions = append(m.Positions, p)
	m.Normals = append(m.Normals, n)
	return uint16(len(m.Positions) - 1)
}

func (m *Mesh) tri(a, b, c uint16) {
	m.Indices = append(m.Indices, a, b, c)
}

// Shape dimensions of the tree's parts.
const (
	ConeRadius   = 1.8
	ConeHeight   = 2.5
	ConeSegments = 16

	TrunkRadiusTop    = 0.5
	TrunkRadiusBottom = 0.8
	TrunkHeight       = 2.0
	TrunkSegments     = 8

	FloorSize = 50.0
	FloorY    = -3.0

	FloorDivisions = 16
)

// CylinderMesh builds a capped, optionally tapered cylinder centered on the
// origin with its axis along +Y. A zero top radius produces a cone.
func CylinderMesh(radiusTop, radiusBottom, height float64, segments int) *Mesh {
	segments = max(segments, 3)
	m := &Mesh{}
	half := height / 2
	// Slope of the side normal.
	slope := (radiusBottom - radiusTop) / height

	for i := 0; i < segments; i++ {
		a0 := float64(i) / float64(segments) * 2 * math.Pi
		a1 := float64(i+1) / float64(segments) * 2 * math.Pi
		s0, c0 := math.Sincos(a0)
		s1, c1 := math.Sincos(a1)
		n0 := Vec3{s0, slope, c0}.Normalize()
		n1 := Vec3{s1, slope, c1}.Normalize()

		b0 := m.vertex(Vec3{radiusBottom * s0, -half, radiusBottom * c0}, n0)
		b1 := m.vertex(Vec3{radiusBottom * s1, -half, radiusBottom * c1}, n1)
		if radiusTop == 0 {
			apex := m.vertex(Vec3{0, half, 0}, n0.Add(n1).Normalize())
			m.tri(b0, b1, apex)
		} else {
			t0 := m.vertex(Vec3{radiusTop * s0, half, radiusTop * c0}, n0)
			t1 := m.vertex(Vec3{radiusTop * s1, half, radiusTop * c1}, n1)
			m.tri(b0, b1, t1)
			m.tri(b0, t1, t0)
		}
	}
	m.cap(radiusBottom, -half, segments, Vec3{0, -1, 0})
	if radiusTop > 0 {
		m.cap(radiusTop, half, segments, Vec3{0, 1, 0})
	}
	return m
}

func (m *Mesh) cap(radius, y float64, segments int, n Vec3) {
	center := m.vertex(Vec3{0, y, 0}, n)
	for i := 0; i < segments; i++ {
		a0 := float64(i) / float64(segments) * 2 * math.Pi
		a1 := float64(i+1) / float64(segments) * 2 * math.Pi
		s0, c0 := math.Sincos(a0)
		s1, c1 := math.Sincos(a1)
		p0 := m.vertex(Vec3{radius * s0, y, radius * c0}, n)
		p1 := m.vertex(Vec3{radius * s1, y, radius * c1}, n)
		if n.Y > 0 {
			m.tri(center, p0, p1)
		} else {
			m.tri(center, p1, p0)
		}
	}
}

// ConeMesh builds a capped cone centered on the origin, apex up.
func ConeMesh(radius, height float64, segments int) *Mesh {
	return CylinderMesh(0, radius, height, segments)
}

// SphereMesh builds a UV sphere.
func SphereMesh(radius float64, widthSegments, heightSegments int) *Mesh {
	widthSegments = max(widthSegments, 3)
	heightSegments = max(heightSegments, 2)
	m := &Mesh{}
	grid := make([][]uint16, heightSegments+1)
	for iy := 0; iy <= heightSegments; iy++ {
		v := float64(iy) / float64(heightSegments)
		row := make([]uint16, widthSegments+1)
		for ix := 0; ix <= widthSegments; ix++ {
			u := float64(ix) / float64(widthSegments)
			n := Vec3{
				-math.Cos(u*2*math.Pi) * math.Sin(v*math.Pi),
				math.Cos(v * math.Pi),
				math.Sin(u*2*math.Pi) * math.Sin(v*math.Pi),
			}
			row[ix] = m.vertex(n.Scale(radius), n)
		}
		grid[iy] = row
	}
	for iy := 0; iy < heightSegments; iy++ {
		for ix := 0; ix < widthSegments; ix++ {
			a := grid[iy][ix+1]
			b := grid[iy][ix]
			c := grid[iy+1][ix]
			d := grid[iy+1][ix+1]
			if iy != 0 {
				m.tri(a, b, d)
			}
			if iy != heightSegments-1 {
				m.tri(b, c, d)
			}
		}
	}
	return m
}

// TubeMesh sweeps a circle of radius along curve. Frames are carried along
// the curve by parallel transport so the tube does not twist.
func TubeMesh(curve *CatmullRom, tubularSegments int, radius float64, radialSegments int) *Mesh {
	tubularSegments = max(tubularSegments, 1)
	radialSegments = max(radialSegments, 3)
	m := &Mesh{}

	tangent := curve.Tangent(0)
	normal := tangent.Cross(Vec3{0, 1, 0})
	if normal.Len() < 1e-6 {
		normal = tangent.Cross(Vec3{1, 0, 0})
	}
	normal = normal.Normalize()

	rings := make([][]uint16, tubularSegments+1)
	for i := 0; i <= tubularSegments; i++ {
		u := float64(i) / float64(tubularSegments)
		p := curve.Point(u)
		t := curve.Tangent(u)
		// Remove the component of the previous normal along the new tangent.
		normal = normal.Sub(t.Scale(normal.Dot(t))).Normalize()
		binormal := t.Cross(normal)

		ring := make([]uint16, radialSegments+1)
		for j := 0; j <= radialSegments; j++ {
			a := float64(j) / float64(radialSegments) * 2 * math.Pi
			s, c := math.Sincos(a)
			n := normal.Scale(-c).Add(binormal.Scale(s)).Normalize()
			ring[j] = m.vertex(p.Add(n.Scale(radius)), n)
		}
		rings[i] = ring
	}
	for i := 0; i < tubularSegments; i++ {
		for j := 0; j < radialSegments; j++ {
			a := rings[i][j]
			b := rings[i+1][j]
			c := rings[i+1][j+1]
			d := rings[i][j+1]
			m.tri(a, b, d)
			m.tri(b, c, d)
		}
	}
	return m
}

// icosahedron vertices and faces; the dodecahedron is built as its dual.
var (
	icoPhi   = (1 + math.Sqrt(5)) / 2
	icoVerts = []Vec3{
		{-1, icoPhi, 0}, {1, icoPhi, 0}, {-1, -icoPhi, 0}, {1, -icoPhi, 0},
		{0, -1, icoPhi}, {0, 1, icoPhi}, {0, -1, -icoPhi}, {0, 1, -icoPhi},
		{icoPhi, 0, -1}, {icoPhi, 0, 1}, {-icoPhi, 0, -1}, {-icoPhi, 0, 1},
	}
	icoFaces = [][3]int{
		{0, 11, 5}, {0, 5, 1}, {0, 1, 7}, {0, 7, 10}, {0, 10, 11},
		{1, 5, 9}, {5, 11, 4}, {11, 10, 2}, {10, 7, 6}, {7, 1, 8},
		{3, 9, 4}, {3, 4, 2}, {3, 2, 6}, {3, 6, 8}, {3, 8, 9},
		{4, 9, 5}, {2, 4, 11}, {6, 2, 10}, {8, 6, 7}, {9, 8, 1},
	}
)

// DodecahedronMesh builds a flat-shaded regular dodecahedron whose vertices
// lie on a sphere of the given radius.
func DodecahedronMesh(radius float64) *Mesh {
	m := &Mesh{}
	for vi, v := range icoVerts {
		axis := v.Normalize()
		var corners []Vec3
		for _, f := range icoFaces {
			if f[0] != vi && f[1] != vi && f[2] != vi {
				continue
			}
			c := icoVerts[f[0]].Add(icoVerts[f[1]]).Add(icoVerts[f[2]])
			corners = append(corners, c.Normalize())
		}
		ref := corners[0].Sub(axis.Scale(corners[0].Dot(axis))).Normalize()
		side := axis.Cross(ref)
		slices.SortFunc(corners, func(a, b Vec3) int {
			aa := math.Atan2(a.Dot(side), a.Dot(ref))
			ab := math.Atan2(b.Dot(side), b.Dot(ref))
			switch {
			case aa < ab:
				return -1
			case aa > ab:
				return 1
			}
			return 0
		})

		first := m.vertex(corners[0].Scale(radius), axis)
		prev := m.vertex(corners[1].Scale(radius), axis)
		for _, c := range corners[2:] {
			next := m.vertex(c.Scale(radius), axis)
			m.tri(first, prev, next)
			prev = next
		}
	}
	return m
}

// PlaneMesh builds a horizontal square of the given size facing +Y, split
// into divisions×divisions cells so per-vertex lighting can resolve pools of
// light.
func PlaneMesh(size float64, divisions int) *Mesh {
	divisions = max(divisions, 1)
	h := size / 2
	step := size / float64(divisions)
	up := Vec3{0, 1, 0}
	m := &Mesh{}
	row := divisions + 1
	for iz := 0; iz <= divisions; iz++ {
		for ix := 0; ix <= divisions; ix++ {
			m.vertex(Vec3{-h + float64(ix)*step, 0, -h + float64(iz)*step}, up)
		}
	}
	for iz := 0; iz < divisions; iz++ {
		for ix := 0; ix < divisions; ix++ {
			a := uint16(iz*row + ix)
			b := a + uint16(row)
			m.tri(a, b, b+1)
			m.tri(a, b+1, a+1)
		}
	}
	return m
}

// MeshSet holds the shared geometry for each entity kind.
type MeshSet struct {
	Layer  *Mesh
	Bauble *Mesh
	Tinsel *Mesh
	Star   *Mesh
	Trunk  *Mesh
	Floor  *Mesh
}

// NewMeshSet builds every mesh once. detail scales sphere and tube
// tessellation; 1 is full detail, the terminal uses less.
func NewMeshSet(curve *CatmullRom, detail float64) *MeshSet {
	if detail <= 0 {
		detail = 1
	}
	seg := func(n int, floor int) int { return max(int(float64(n)*detail), floor) }
	return &MeshSet{
		Layer:  ConeMesh(ConeRadius, ConeHeight, seg(ConeSegments, 6)),
		Bauble: SphereMesh(1, seg(16, 6), seg(12, 4)),
		Tinsel: TubeMesh(curve, seg(TinselTubeSegments, 32), TinselTubeRadius, seg(TinselTubeSides, 3)),
		Star:   DodecahedronMesh(StarRadius * StarMeshScale),
		Trunk:  CylinderMesh(TrunkRadiusTop, TrunkRadiusBottom, TrunkHeight, TrunkSegments),
		Floor:  PlaneMesh(FloorSize, seg(FloorDivisions, 4)),
	}
}

// For returns the mesh used by entities of kind k.
func (s *MeshSet) For(k EntityKind) *Mesh {
	switch k {
	case KindLayer:
		return s.Layer
	case KindBauble:
		return s.Bauble
	case KindTinsel:
		return s.Tinsel
	case KindStar:
		return s.Star
	case KindTrunk:
		return s.Trunk
	case KindFloor:
		return s.Floor
	}
	return nil
}
