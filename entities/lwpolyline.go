package entities

import (
	"github.com/zooyer/dxf2elmt/core"
)

// Vertex 多段线顶点，Bulge 为到下一个顶点的凸度（tan(圆心角/4)）
type Vertex struct {
	core.Point
	Bulge float64
}

type LWPolyline struct {
	BaseEntity
	Vertices []Vertex
	Closed   bool
}

func init() {
	Register("LWPOLYLINE", func() Entity { return &LWPolyline{BaseEntity: BaseEntity{TypeName: "LWPOLYLINE"}} })
}

func (l *LWPolyline) Kind() Kind { return KindLwPolyline }

func (l *LWPolyline) Parse(s *core.Scanner) error {
	var x float64
	for {
		t := s.LastTag
		switch t.Code {
		case 10:
			x = t.AsFloat()
		case 20:
			l.Vertices = append(l.Vertices, Vertex{Point: core.Point{X: x, Y: t.AsFloat()}})
		case 42:
			// 凸度跟在当前顶点之后
			if n := len(l.Vertices); n > 0 {
				l.Vertices[n-1].Bulge = t.AsFloat()
			}
		case 70:
			l.Closed = t.AsInt()&1 != 0
		default:
			l.parseCommon(t)
		}
		if !s.Next() || s.LastTag.Code == 0 {
			break
		}
	}
	return nil
}

func (l *LWPolyline) BBox() core.BBox {
	return verticesBBox(l.Vertices)
}

func verticesBBox(vertices []Vertex) core.BBox {
	box := core.EmptyBBox()
	for _, v := range vertices {
		box = box.Extend(v.Point)
	}
	return box
}
