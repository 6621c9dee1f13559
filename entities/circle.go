package entities

import (
	"github.com/zooyer/dxf2elmt/core"
)

type Circle struct {
	BaseEntity
	Center core.Point
	Radius float64
}

// Arc 圆弧，角度为度数，逆时针从 StartAngle 到 EndAngle
type Arc struct {
	BaseEntity
	Center     core.Point
	Radius     float64
	StartAngle float64
	EndAngle   float64
}

func init() {
	Register("CIRCLE", func() Entity { return &Circle{BaseEntity: BaseEntity{TypeName: "CIRCLE"}} })
	Register("ARC", func() Entity { return &Arc{BaseEntity: BaseEntity{TypeName: "ARC"}} })
}

func (c *Circle) Kind() Kind { return KindCircle }

func (c *Circle) Parse(s *core.Scanner) error {
	for {
		t := s.LastTag
		switch t.Code {
		case 10:
			c.Center.X = t.AsFloat()
		case 20:
			c.Center.Y = t.AsFloat()
		case 30:
			c.Center.Z = t.AsFloat()
		case 40:
			c.Radius = t.AsFloat()
		default:
			c.parseCommon(t)
		}
		if !s.Next() || s.LastTag.Code == 0 {
			break
		}
	}
	return nil
}

func (c *Circle) BBox() core.BBox {
	r := core.Point{X: c.Radius, Y: c.Radius}
	return pointsBBox(c.Center.Sub(r), c.Center.Add(r))
}

func (a *Arc) Kind() Kind { return KindArc }

func (a *Arc) Parse(s *core.Scanner) error {
	for {
		t := s.LastTag
		switch t.Code {
		case 10:
			a.Center.X = t.AsFloat()
		case 20:
			a.Center.Y = t.AsFloat()
		case 30:
			a.Center.Z = t.AsFloat()
		case 40:
			a.Radius = t.AsFloat()
		case 50:
			a.StartAngle = t.AsFloat()
		case 51:
			a.EndAngle = t.AsFloat()
		default:
			a.parseCommon(t)
		}
		if !s.Next() || s.LastTag.Code == 0 {
			break
		}
	}
	return nil
}

// Sweep 返回逆时针扫过的角度，范围 (0, 360]
func (a *Arc) Sweep() float64 {
	sweep := a.EndAngle - a.StartAngle
	for sweep <= 0 {
		sweep += 360
	}
	for sweep > 360 {
		sweep -= 360
	}
	return sweep
}

func (a *Arc) BBox() core.BBox {
	// 简化处理：使用整圆的包围盒
	r := core.Point{X: a.Radius, Y: a.Radius}
	return pointsBBox(a.Center.Sub(r), a.Center.Add(r))
}
