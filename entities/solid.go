package entities

import (
	"github.com/zooyer/dxf2elmt/core"
)

// Solid 实心填充的三角形或四边形，TRACE 与之格式相同
type Solid struct {
	BaseEntity
	Corners [4]core.Point // 组码 10/11/12/13
}

func init() {
	Register("SOLID", func() Entity { return &Solid{BaseEntity: BaseEntity{TypeName: "SOLID"}} })
	Register("TRACE", func() Entity { return &Solid{BaseEntity: BaseEntity{TypeName: "TRACE"}} })
}

func (so *Solid) Kind() Kind { return KindSolid }

func (so *Solid) Parse(s *core.Scanner) error {
	for {
		t := s.LastTag
		switch {
		case t.Code >= 10 && t.Code <= 13:
			so.Corners[t.Code-10].X = t.AsFloat()
		case t.Code >= 20 && t.Code <= 23:
			so.Corners[t.Code-20].Y = t.AsFloat()
		case t.Code >= 30 && t.Code <= 33:
			so.Corners[t.Code-30].Z = t.AsFloat()
		default:
			so.parseCommon(t)
		}
		if !s.Next() || s.LastTag.Code == 0 {
			break
		}
	}
	return nil
}

// Outline 按绘制顺序返回轮廓点：DXF 的角点顺序是 1-2-4-3
func (so *Solid) Outline() []core.Point {
	return []core.Point{so.Corners[0], so.Corners[1], so.Corners[3], so.Corners[2]}
}

func (so *Solid) BBox() core.BBox {
	return pointsBBox(so.Corners[:]...)
}
