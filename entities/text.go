package entities

import (
	"github.com/zooyer/dxf2elmt/core"
)

// Text 单行文字
type Text struct {
	BaseEntity
	Location    core.Point // 组码 10，基线左下角
	AlignPoint  core.Point // 组码 11，对齐方式不是左对齐时生效
	HasAlign    bool
	Height      float64 // 组码 40
	Value       string  // 组码 1
	Rotation    float64 // 组码 50，度
	WidthFactor float64 // 组码 41
	Style       string  // 组码 7
	HAlign      int     // 组码 72：0 左，1 中，2 右，3 对齐，4 中间，5 布满
	VAlign      int     // 组码 73：0 基线，1 底，2 中，3 顶
}

func init() {
	Register("TEXT", func() Entity {
		return &Text{BaseEntity: BaseEntity{TypeName: "TEXT"}, WidthFactor: 1, Style: "STANDARD"}
	})
}

func (tx *Text) Kind() Kind { return KindText }

func (tx *Text) Parse(s *core.Scanner) error {
	for {
		t := s.LastTag
		switch t.Code {
		case 10:
			tx.Location.X = t.AsFloat()
		case 20:
			tx.Location.Y = t.AsFloat()
		case 30:
			tx.Location.Z = t.AsFloat()
		case 11:
			tx.AlignPoint.X = t.AsFloat()
			tx.HasAlign = true
		case 21:
			tx.AlignPoint.Y = t.AsFloat()
		case 40:
			tx.Height = t.AsFloat()
		case 41:
			tx.WidthFactor = t.AsFloat()
		case 1:
			tx.Value = t.Value
		case 7:
			tx.Style = t.AsString()
		case 50:
			tx.Rotation = t.AsFloat()
		case 72:
			tx.HAlign = t.AsInt()
		case 73:
			tx.VAlign = t.AsInt()
		default:
			tx.parseCommon(t)
		}
		if !s.Next() || s.LastTag.Code == 0 {
			break
		}
	}
	return nil
}

// Anchor 返回文字的定位点：左对齐基线用 10，否则用 11
func (tx *Text) Anchor() core.Point {
	if tx.HasAlign && (tx.HAlign != 0 || tx.VAlign != 0) {
		return tx.AlignPoint
	}
	return tx.Location
}

func (tx *Text) BBox() core.BBox {
	return pointsBBox(tx.Location, tx.Location.Add(core.Point{Y: tx.Height}))
}
