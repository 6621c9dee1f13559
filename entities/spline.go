package entities

import (
	"github.com/zooyer/dxf2elmt/core"
)

const (
	splineClosed   = 1
	splinePeriodic = 2
	splineRational = 4
)

type Spline struct {
	BaseEntity
	Flags         int          // 组码 70
	Degree        int          // 组码 71
	Knots         []float64    // 组码 40
	Weights       []float64    // 组码 41
	ControlPoints []core.Point // 组码 10/20/30
	FitPoints     []core.Point // 组码 11/21/31
}

func init() {
	Register("SPLINE", func() Entity {
		return &Spline{BaseEntity: BaseEntity{TypeName: "SPLINE"}, Degree: 3}
	})
}

func (sp *Spline) Kind() Kind { return KindSpline }

func (sp *Spline) Closed() bool { return sp.Flags&(splineClosed|splinePeriodic) != 0 }

func (sp *Spline) Rational() bool { return sp.Flags&splineRational != 0 }

func (sp *Spline) Parse(s *core.Scanner) error {
	var x, fx float64
	for {
		t := s.LastTag
		switch t.Code {
		case 70:
			sp.Flags = t.AsInt()
		case 71:
			sp.Degree = t.AsInt()
		case 40:
			sp.Knots = append(sp.Knots, t.AsFloat())
		case 41:
			sp.Weights = append(sp.Weights, t.AsFloat())
		case 10:
			x = t.AsFloat()
		case 20:
			sp.ControlPoints = append(sp.ControlPoints, core.Point{X: x, Y: t.AsFloat()})
		case 30:
			if n := len(sp.ControlPoints); n > 0 {
				sp.ControlPoints[n-1].Z = t.AsFloat()
			}
		case 11:
			fx = t.AsFloat()
		case 21:
			sp.FitPoints = append(sp.FitPoints, core.Point{X: fx, Y: t.AsFloat()})
		case 31:
			if n := len(sp.FitPoints); n > 0 {
				sp.FitPoints[n-1].Z = t.AsFloat()
			}
		default:
			sp.parseCommon(t)
		}
		if !s.Next() || s.LastTag.Code == 0 {
			break
		}
	}
	return nil
}

func (sp *Spline) BBox() core.BBox {
	// 控制多边形包含曲线本身（凸包性质）
	box := pointsBBox(sp.ControlPoints...)
	return box.Union(pointsBBox(sp.FitPoints...))
}
