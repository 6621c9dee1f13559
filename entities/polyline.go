package entities

import (
	"github.com/zooyer/dxf2elmt/core"
)

const (
	polylineClosed     = 1
	polyline3DMesh     = 16
	polylinePolyface   = 64
	vertexSplineFrame  = 16
	vertexPolyfaceFace = 128
)

// Polyline 旧式多段线：POLYLINE 头 + 若干 VERTEX + SEQEND
type Polyline struct {
	BaseEntity
	Flags    int
	Vertices []Vertex
}

func init() {
	Register("POLYLINE", func() Entity { return &Polyline{BaseEntity: BaseEntity{TypeName: "POLYLINE"}} })
}

func (p *Polyline) Kind() Kind { return KindPolyline }

func (p *Polyline) Closed() bool { return p.Flags&polylineClosed != 0 }

// IsMesh 网格和多面体不是平面轮廓，不做转换
func (p *Polyline) IsMesh() bool { return p.Flags&(polyline3DMesh|polylinePolyface) != 0 }

func (p *Polyline) Parse(s *core.Scanner) error {
	for {
		t := s.LastTag
		switch t.Code {
		case 70:
			p.Flags = t.AsInt()
		default:
			p.parseCommon(t)
		}
		if !s.Next() || s.LastTag.Code == 0 {
			break
		}
	}

	// 继续抓取 VERTEX 直到 SEQEND
	for s.LastTag.Is("VERTEX") {
		var (
			v     Vertex
			flags int
		)
		for {
			t := s.LastTag
			switch t.Code {
			case 10:
				v.X = t.AsFloat()
			case 20:
				v.Y = t.AsFloat()
			case 30:
				v.Z = t.AsFloat()
			case 42:
				v.Bulge = t.AsFloat()
			case 70:
				flags = t.AsInt()
			}
			if !s.Next() || s.LastTag.Code == 0 {
				break
			}
		}
		// 样条拟合的控制框架点和多面体的面记录不属于轮廓
		if flags&(vertexSplineFrame|vertexPolyfaceFace) == 0 {
			p.Vertices = append(p.Vertices, v)
		}
		if s.Done() {
			break
		}
	}

	if s.LastTag.Is("SEQEND") {
		for s.Next() && s.LastTag.Code != 0 {
		}
	}
	return s.Err()
}

func (p *Polyline) BBox() core.BBox {
	return verticesBBox(p.Vertices)
}
