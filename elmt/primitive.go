// Package elmt 描述 QElectroTech 元件（.elmt）的图元与文档结构。
// 所有坐标均为像素，Y 轴向下。
package elmt

import (
	"math"
	"strconv"

	"github.com/beevik/etree"

	"github.com/zooyer/dxf2elmt/core"
)

// Primitive 是 description 节点下的一个绘图图元
type Primitive interface {
	Tag() string
	Bounds() core.BBox
	Element() *etree.Element
}

// num 保留两位小数，去掉 -0
func num(v float64) string {
	v = math.Round(v*100) / 100
	if v == 0 {
		v = 0
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func boolAttr(b bool) string {
	return strconv.FormatBool(b)
}

type Line struct {
	P1, P2 core.Point
	Style  Style
}

func (l *Line) Tag() string { return "line" }

func (l *Line) Bounds() core.BBox {
	return core.EmptyBBox().Extend(l.P1).Extend(l.P2)
}

func (l *Line) Element() *etree.Element {
	el := etree.NewElement(l.Tag())
	el.CreateAttr("x1", num(l.P1.X))
	el.CreateAttr("y1", num(l.P1.Y))
	el.CreateAttr("x2", num(l.P2.X))
	el.CreateAttr("y2", num(l.P2.Y))
	el.CreateAttr("end1", "none")
	el.CreateAttr("end2", "none")
	el.CreateAttr("length1", "1.5")
	el.CreateAttr("length2", "1.5")
	el.CreateAttr("antialias", "false")
	el.CreateAttr("style", l.Style.String())
	return el
}

// Ellipse 轴对齐椭圆，RX == RY 时为圆
type Ellipse struct {
	Center core.Point
	RX, RY float64
	Style  Style
}

func (e *Ellipse) Tag() string { return "ellipse" }

func (e *Ellipse) Bounds() core.BBox {
	return core.EmptyBBox().
		Extend(core.Point{X: e.Center.X - e.RX, Y: e.Center.Y - e.RY}).
		Extend(core.Point{X: e.Center.X + e.RX, Y: e.Center.Y + e.RY})
}

func (e *Ellipse) Element() *etree.Element {
	el := etree.NewElement(e.Tag())
	el.CreateAttr("x", num(e.Center.X-e.RX))
	el.CreateAttr("y", num(e.Center.Y-e.RY))
	el.CreateAttr("width", num(2*e.RX))
	el.CreateAttr("height", num(2*e.RY))
	el.CreateAttr("antialias", "false")
	el.CreateAttr("style", e.Style.String())
	return el
}

// Arc 轴对齐椭圆弧。Start/Sweep 为像素坐标系（Y 向下）中的数学角度（度），
// 写出时转换为 QET 的视觉逆时针角度。
type Arc struct {
	Center       core.Point
	RX, RY       float64
	Start, Sweep float64
	Style        Style
}

func (a *Arc) Tag() string { return "arc" }

// PointAt 像素坐标系中角度 deg 处的点
func (a *Arc) PointAt(deg float64) core.Point {
	rad := deg * math.Pi / 180
	return core.Point{X: a.Center.X + a.RX*math.Cos(rad), Y: a.Center.Y + a.RY*math.Sin(rad)}
}

func (a *Arc) Bounds() core.BBox {
	box := core.EmptyBBox().Extend(a.PointAt(a.Start)).Extend(a.PointAt(a.Start + a.Sweep))
	// 扫过的坐标轴方向上的极值点
	lo, hi := a.Start, a.Start+a.Sweep
	if lo > hi {
		lo, hi = hi, lo
	}
	for k := math.Ceil(lo / 90); k*90 <= hi; k++ {
		box = box.Extend(a.PointAt(k * 90))
	}
	return box
}

func (a *Arc) Element() *etree.Element {
	el := etree.NewElement(a.Tag())
	el.CreateAttr("x", num(a.Center.X-a.RX))
	el.CreateAttr("y", num(a.Center.Y-a.RY))
	el.CreateAttr("width", num(2*a.RX))
	el.CreateAttr("height", num(2*a.RY))
	el.CreateAttr("start", num(-a.Start))
	el.CreateAttr("angle", num(-a.Sweep))
	el.CreateAttr("antialias", "false")
	el.CreateAttr("style", a.Style.String())
	return el
}

type Polygon struct {
	Points []core.Point
	Closed bool
	Style  Style
}

func (p *Polygon) Tag() string { return "polygon" }

func (p *Polygon) Bounds() core.BBox {
	box := core.EmptyBBox()
	for _, pt := range p.Points {
		box = box.Extend(pt)
	}
	return box
}

func (p *Polygon) Element() *etree.Element {
	el := etree.NewElement(p.Tag())
	for i, pt := range p.Points {
		idx := strconv.Itoa(i + 1)
		el.CreateAttr("x"+idx, num(pt.X))
		el.CreateAttr("y"+idx, num(pt.Y))
	}
	el.CreateAttr("closed", boolAttr(p.Closed))
	el.CreateAttr("antialias", "false")
	el.CreateAttr("style", p.Style.String())
	return el
}
