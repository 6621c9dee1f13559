package entities

import (
	"strings"

	"github.com/zooyer/dxf2elmt/core"
)

// Kind 是受支持实体的封闭枚举，转换器按它做穷举分派
type Kind int

const (
	KindUnsupported Kind = iota
	KindLine
	KindCircle
	KindArc
	KindEllipse
	KindPolyline
	KindLwPolyline
	KindSolid
	KindSpline
	KindText
	KindMText
	KindLeader
	KindInsert
	KindAttrib
)

var kindNames = [...]string{
	KindUnsupported: "UNSUPPORTED",
	KindLine:        "LINE",
	KindCircle:      "CIRCLE",
	KindArc:         "ARC",
	KindEllipse:     "ELLIPSE",
	KindPolyline:    "POLYLINE",
	KindLwPolyline:  "LWPOLYLINE",
	KindSolid:       "SOLID",
	KindSpline:      "SPLINE",
	KindText:        "TEXT",
	KindMText:       "MTEXT",
	KindLeader:      "LEADER",
	KindInsert:      "INSERT",
	KindAttrib:      "ATTRIB",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return kindNames[KindUnsupported]
	}
	return kindNames[k]
}

// Entity 是一切几何实体的接口
type Entity interface {
	Parse(scanner *core.Scanner) error
	Kind() Kind
	Type() string
	Layer() string
	BBox() core.BBox
}

// BaseEntity 存放所有实体通用的属性（如 Layer, Color, Handle）
type BaseEntity struct {
	TypeName  string
	LayerName string
	Handle    string
	Color     int    // 组码 62，ACI 颜色索引，0 = ByBlock，256 = ByLayer
	LineType  string // 组码 6
}

func (b *BaseEntity) Type() string { return b.TypeName }

func (b *BaseEntity) Layer() string { return b.LayerName }

// parseCommon 处理所有实体共有的组码，返回是否已处理
func (b *BaseEntity) parseCommon(t core.Tag) bool {
	switch t.Code {
	case 5:
		b.Handle = t.AsString()
	case 6:
		b.LineType = strings.ToUpper(t.AsString())
	case 8:
		b.LayerName = t.AsString()
	case 62:
		b.Color = t.AsInt()
	default:
		return false
	}
	return true
}

// EntityFactory 定义了如何从标签流中创建一个实体
type EntityFactory func() Entity

var registry = map[string]EntityFactory{}

// Register 允许以后动态扩展新的实体类型
func Register(typeName string, factory EntityFactory) {
	registry[typeName] = factory
}

// CreateEntity 根据实体名称生产对应的结构体，未注册的类型返回 *Unsupported
func CreateEntity(typeName string) Entity {
	name := strings.ToUpper(strings.TrimSpace(typeName))
	if factory, ok := registry[name]; ok {
		return factory()
	}
	return &Unsupported{BaseEntity: BaseEntity{TypeName: name}}
}

// Unsupported 承载未建模的实体类型，只消费标签以便统计
type Unsupported struct {
	BaseEntity
}

func (u *Unsupported) Kind() Kind { return KindUnsupported }

func (u *Unsupported) Parse(s *core.Scanner) error {
	for {
		u.parseCommon(s.LastTag)
		if !s.Next() || s.LastTag.Code == 0 {
			break
		}
	}
	return nil
}

func (u *Unsupported) BBox() core.BBox {
	return core.EmptyBBox()
}

// pointsBBox 计算一组点的包围盒
func pointsBBox(points ...core.Point) core.BBox {
	box := core.EmptyBBox()
	for _, p := range points {
		box = box.Extend(p)
	}
	return box
}
