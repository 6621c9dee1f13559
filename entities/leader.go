package entities

import (
	"github.com/zooyer/dxf2elmt/core"
)

// Leader 引线：折线路径，第一个顶点处可带箭头
type Leader struct {
	BaseEntity
	Vertices  []core.Point // 组码 10/20/30
	ArrowHead bool         // 组码 71
	Style     string       // 组码 3，标注样式名（不解析样式表）
}

func init() {
	Register("LEADER", func() Entity {
		return &Leader{BaseEntity: BaseEntity{TypeName: "LEADER"}, ArrowHead: true}
	})
}

func (l *Leader) Kind() Kind { return KindLeader }

func (l *Leader) Parse(s *core.Scanner) error {
	var x float64
	for {
		t := s.LastTag
		switch t.Code {
		case 10:
			x = t.AsFloat()
		case 20:
			l.Vertices = append(l.Vertices, core.Point{X: x, Y: t.AsFloat()})
		case 30:
			if n := len(l.Vertices); n > 0 {
				l.Vertices[n-1].Z = t.AsFloat()
			}
		case 71:
			l.ArrowHead = t.AsInt() == 1
		case 3:
			l.Style = t.AsString()
		default:
			l.parseCommon(t)
		}
		if !s.Next() || s.LastTag.Code == 0 {
			break
		}
	}
	return nil
}

func (l *Leader) BBox() core.BBox {
	return pointsBBox(l.Vertices...)
}
