package entities

import "github.com/zooyer/dxf2elmt/core"

type Attrib struct {
	BaseEntity
	Location   core.Point
	AlignPoint core.Point
	HasAlign   bool
	Tag        string // 属性标签，如 "序号"
	Text       string // 属性值
	Height     float64
	Rotation   float64
	Style      string
	Flags      int // 组码 70，1 = 不可见
	HAlign     int // 组码 72
	VAlign     int // 组码 74
}

func init() {
	Register("ATTRIB", func() Entity {
		return &Attrib{BaseEntity: BaseEntity{TypeName: "ATTRIB"}, Style: "STANDARD"}
	})
}

func (a *Attrib) Kind() Kind { return KindAttrib }

// Invisible 隐藏属性不输出到图形
func (a *Attrib) Invisible() bool { return a.Flags&1 != 0 }

func (a *Attrib) Parse(scanner *core.Scanner) error {
	for {
		tag := scanner.LastTag
		switch tag.Code {
		case 10:
			a.Location.X = tag.AsFloat()
		case 20:
			a.Location.Y = tag.AsFloat()
		case 30:
			a.Location.Z = tag.AsFloat()
		case 11:
			a.AlignPoint.X = tag.AsFloat()
			a.HasAlign = true
		case 21:
			a.AlignPoint.Y = tag.AsFloat()
		case 40:
			a.Height = tag.AsFloat()
		case 50:
			a.Rotation = tag.AsFloat()
		case 1:
			a.Text = tag.AsString()
		case 2:
			a.Tag = tag.AsString()
		case 7:
			a.Style = tag.AsString()
		case 70:
			a.Flags = tag.AsInt()
		case 72:
			a.HAlign = tag.AsInt()
		case 74:
			a.VAlign = tag.AsInt()
		default:
			a.parseCommon(tag)
		}
		if !scanner.Next() || scanner.LastTag.Code == 0 {
			break
		}
	}
	return nil
}

// Anchor 与 TEXT 相同的定位规则
func (a *Attrib) Anchor() core.Point {
	if a.HasAlign && (a.HAlign != 0 || a.VAlign != 0) {
		return a.AlignPoint
	}
	return a.Location
}

func (a *Attrib) BBox() core.BBox {
	// 简化处理：属性文字暂时以位置点作为包围盒
	return core.BBox{Min: a.Location, Max: a.Location}
}
