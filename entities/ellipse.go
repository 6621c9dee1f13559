package entities

import (
	"math"

	"github.com/zooyer/dxf2elmt/core"
)

type Ellipse struct {
	BaseEntity
	Center     core.Point
	MajorAxis  core.Point // 组码 11，相对圆心的长轴端点
	Ratio      float64    // 组码 40，短轴/长轴
	StartParam float64    // 组码 41，弧度
	EndParam   float64    // 组码 42，弧度
}

func init() {
	Register("ELLIPSE", func() Entity {
		return &Ellipse{
			BaseEntity: BaseEntity{TypeName: "ELLIPSE"},
			Ratio:      1,
			EndParam:   2 * math.Pi,
		}
	})
}

func (e *Ellipse) Kind() Kind { return KindEllipse }

func (e *Ellipse) Parse(s *core.Scanner) error {
	for {
		t := s.LastTag
		switch t.Code {
		case 10:
			e.Center.X = t.AsFloat()
		case 20:
			e.Center.Y = t.AsFloat()
		case 30:
			e.Center.Z = t.AsFloat()
		case 11:
			e.MajorAxis.X = t.AsFloat()
		case 21:
			e.MajorAxis.Y = t.AsFloat()
		case 31:
			e.MajorAxis.Z = t.AsFloat()
		case 40:
			e.Ratio = t.AsFloat()
		case 41:
			e.StartParam = t.AsFloat()
		case 42:
			e.EndParam = t.AsFloat()
		default:
			e.parseCommon(t)
		}
		if !s.Next() || s.LastTag.Code == 0 {
			break
		}
	}
	return nil
}

// MinorAxis 短轴向量：长轴逆时针旋转 90° 再乘以比例
func (e *Ellipse) MinorAxis() core.Point {
	return core.Point{X: -e.MajorAxis.Y * e.Ratio, Y: e.MajorAxis.X * e.Ratio}
}

// PointAt 参数方程求点
func (e *Ellipse) PointAt(param float64) core.Point {
	minor := e.MinorAxis()
	cos, sin := math.Cos(param), math.Sin(param)
	return core.Point{
		X: e.Center.X + e.MajorAxis.X*cos + minor.X*sin,
		Y: e.Center.Y + e.MajorAxis.Y*cos + minor.Y*sin,
	}
}

// Span 返回参数跨度，范围 (0, 2π]
func (e *Ellipse) Span() float64 {
	span := e.EndParam - e.StartParam
	for span <= 0 {
		span += 2 * math.Pi
	}
	for span > 2*math.Pi+1e-9 {
		span -= 2 * math.Pi
	}
	return span
}

// IsFull 判断是否为完整椭圆
func (e *Ellipse) IsFull() bool {
	return math.Abs(e.Span()-2*math.Pi) < 1e-6
}

func (e *Ellipse) BBox() core.BBox {
	minor := e.MinorAxis()
	hx := math.Hypot(e.MajorAxis.X, minor.X)
	hy := math.Hypot(e.MajorAxis.Y, minor.Y)
	return pointsBBox(
		core.Point{X: e.Center.X - hx, Y: e.Center.Y - hy},
		core.Point{X: e.Center.X + hx, Y: e.Center.Y + hy},
	)
}
