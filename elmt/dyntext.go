package elmt

import (
	"github.com/beevik/etree"
	"github.com/google/uuid"

	"github.com/zooyer/dxf2elmt/core"
)

type HAlignment string

const (
	AlignLeft    HAlignment = "AlignLeft"
	AlignHCenter HAlignment = "AlignHCenter"
	AlignRight   HAlignment = "AlignRight"
)

type VAlignment string

const (
	AlignTop     VAlignment = "AlignTop"
	AlignVCenter VAlignment = "AlignVCenter"
	AlignBottom  VAlignment = "AlignBottom"
)

// DynamicText 可在原理图编辑时修改内容的文字
type DynamicText struct {
	Position  core.Point
	Z         float64
	Rotation  float64
	UUID      uuid.UUID
	Font      Font
	HAlign    HAlignment
	VAlign    VAlignment
	Text      string
	InfoName  string  // 绑定到元件信息字段，例如 label
	RefWidth  float64 // MTEXT 的参考矩形宽度，为 0 时按字符估算
	Color     string
	Frame     bool
	TextWidth int
}

// NewDynamicText 默认 UserText、无边框、左上对齐
func NewDynamicText(text string, pos core.Point, font Font) *DynamicText {
	return &DynamicText{
		Position:  pos,
		UUID:      uuid.New(),
		Font:      font,
		HAlign:    AlignLeft,
		VAlign:    AlignTop,
		Text:      text,
		Color:     "#000000",
		TextWidth: -1,
	}
}

func (d *DynamicText) Tag() string { return "dynamic_text" }

func (d *DynamicText) width() float64 {
	if d.RefWidth > 2 {
		return d.RefWidth
	}
	return EstimateWidth(d.Text, d.Font.PointSize)
}

// origin QET 以文字框左上角定位，并带有固定的内边距
func (d *DynamicText) origin() core.Point {
	size := d.Font.PointSize
	x := d.Position.X + 0.5 - size/8.0 - 4.05
	switch d.HAlign {
	case AlignHCenter:
		x -= d.width() / 2
	case AlignRight:
		x -= d.width()
	}
	y := d.Position.Y + 0.5 - (7.0/5.0*size + 26.0/5.0) + size
	return core.Point{X: x, Y: y}
}

func (d *DynamicText) Bounds() core.BBox {
	o := d.origin()
	return core.EmptyBBox().Extend(o).Extend(core.Point{X: o.X + d.width(), Y: o.Y + d.Font.PointSize})
}

func (d *DynamicText) Element() *etree.Element {
	o := d.origin()
	el := etree.NewElement(d.Tag())
	el.CreateAttr("x", num(o.X))
	el.CreateAttr("y", num(o.Y))
	el.CreateAttr("z", num(d.Z))
	el.CreateAttr("rotation", num(d.Rotation))
	el.CreateAttr("uuid", "{"+d.UUID.String()+"}")
	el.CreateAttr("font", d.Font.String())
	el.CreateAttr("Halignment", string(d.HAlign))
	el.CreateAttr("Valignment", string(d.VAlign))
	el.CreateAttr("text_from", "UserText")
	el.CreateAttr("frame", boolAttr(d.Frame))
	el.CreateAttr("text_width", itoa(d.TextWidth))
	el.CreateAttr("color", d.Color)
	if d.InfoName != "" {
		el.CreateAttr("info_name", d.InfoName)
	}
	el.CreateElement("text").SetText(d.Text)
	return el
}
