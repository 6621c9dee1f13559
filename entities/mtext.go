package entities

import (
	"math"
	"strings"

	"github.com/zooyer/dxf2elmt/core"
)

// MText 多行文字，Value 保留原始格式代码
type MText struct {
	BaseEntity
	Location   core.Point // 组码 10
	Height     float64    // 组码 40
	RefWidth   float64    // 组码 41，参考矩形宽度
	Attachment int        // 组码 71：1 左上 … 9 右下
	Rotation   float64    // 组码 50，度
	Style      string     // 组码 7
	Value      string     // 组码 3（250 字符一段）+ 组码 1

	direction    core.Point
	hasDirection bool
	hasRotation  bool
	chunks       strings.Builder
}

func init() {
	Register("MTEXT", func() Entity {
		return &MText{BaseEntity: BaseEntity{TypeName: "MTEXT"}, Attachment: 1, Style: "STANDARD"}
	})
}

func (m *MText) Kind() Kind { return KindMText }

func (m *MText) Parse(s *core.Scanner) error {
	var last string
	for {
		t := s.LastTag
		switch t.Code {
		case 10:
			m.Location.X = t.AsFloat()
		case 20:
			m.Location.Y = t.AsFloat()
		case 30:
			m.Location.Z = t.AsFloat()
		case 11:
			m.direction.X = t.AsFloat()
			m.hasDirection = true
		case 21:
			m.direction.Y = t.AsFloat()
		case 40:
			m.Height = t.AsFloat()
		case 41:
			m.RefWidth = t.AsFloat()
		case 71:
			m.Attachment = t.AsInt()
		case 50:
			m.Rotation = t.AsFloat()
			m.hasRotation = true
		case 7:
			m.Style = t.AsString()
		case 3:
			m.chunks.WriteString(t.Value)
		case 1:
			last = t.Value
		default:
			m.parseCommon(t)
		}
		if !s.Next() || s.LastTag.Code == 0 {
			break
		}
	}

	m.Value = m.chunks.String() + last
	m.chunks.Reset()

	// 方向向量优先级低于显式旋转角
	if !m.hasRotation && m.hasDirection && (m.direction.X != 0 || m.direction.Y != 0) {
		m.Rotation = math.Atan2(m.direction.Y, m.direction.X) * 180 / math.Pi
	}
	return nil
}

func (m *MText) BBox() core.BBox {
	return pointsBBox(m.Location, m.Location.Add(core.Point{X: m.RefWidth, Y: -m.Height}))
}
