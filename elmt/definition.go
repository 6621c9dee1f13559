package elmt

import (
	"io"
	"math"
	"strconv"

	"github.com/beevik/etree"
	"github.com/google/uuid"

	"github.com/zooyer/dxf2elmt/core"
)

const (
	// Version 写入 definition 的 QET 格式版本
	Version = "0.80"
	// gridStep 元件尺寸需为网格的整数倍
	gridStep = 10
)

func itoa(i int) string {
	return strconv.Itoa(i)
}

// Information 元件信息字段，写入 elementInformations
type Information struct {
	Name  string
	Value string
	Show  bool
}

// Definition 一个 .elmt 元件文档，图元按加入顺序绘制（后加入的在上层）
type Definition struct {
	Name         string
	UUID         uuid.UUID
	Informations []Information
	Comment      string
	Primitives   []Primitive
}

func NewDefinition(name string) *Definition {
	return &Definition{Name: name, UUID: uuid.New()}
}

func (d *Definition) Add(primitives ...Primitive) {
	d.Primitives = append(d.Primitives, primitives...)
}

// Bounds 所有图元的最小包围盒
func (d *Definition) Bounds() core.BBox {
	box := core.EmptyBBox()
	for _, p := range d.Primitives {
		box = box.Union(p.Bounds())
	}
	return box
}

// Geometry 根元素需要的尺寸与热点
type Geometry struct {
	Width, Height      int
	HotspotX, HotspotY int
}

func roundUp(v, step int) int {
	if v <= 0 {
		return step
	}
	return (v + step - 1) / step * step
}

// Geometry 宽高向上取整到网格，热点为原点在包围盒中的位置
func (d *Definition) Geometry() Geometry {
	box := d.Bounds()
	if box.IsEmpty() {
		return Geometry{Width: gridStep, Height: gridStep}
	}

	x0, y0 := math.Floor(box.Min.X), math.Floor(box.Min.Y)
	x1, y1 := math.Ceil(box.Max.X), math.Ceil(box.Max.Y)
	return Geometry{
		Width:    roundUp(int(x1-x0), gridStep),
		Height:   roundUp(int(y1-y0), gridStep),
		HotspotX: int(-x0),
		HotspotY: int(-y0),
	}
}

// Counts 按标签统计图元数量
func (d *Definition) Counts() map[string]int {
	counts := make(map[string]int)
	for _, p := range d.Primitives {
		counts[p.Tag()]++
	}
	return counts
}

// Element 构建 definition 根元素
func (d *Definition) Element() *etree.Element {
	g := d.Geometry()

	root := etree.NewElement("definition")
	root.CreateAttr("height", itoa(g.Height))
	root.CreateAttr("width", itoa(g.Width))
	root.CreateAttr("hotspot_x", itoa(g.HotspotX))
	root.CreateAttr("hotspot_y", itoa(g.HotspotY))
	root.CreateAttr("version", Version)
	root.CreateAttr("link_type", "simple")
	root.CreateAttr("type", "element")

	root.CreateElement("uuid").CreateAttr("uuid", "{"+d.UUID.String()+"}")

	name := root.CreateElement("names").CreateElement("name")
	name.CreateAttr("lang", "en")
	name.SetText(d.Name)

	infos := root.CreateElement("elementInformations")
	for _, info := range d.Informations {
		el := infos.CreateElement("elementInformation")
		el.CreateAttr("name", info.Name)
		el.CreateAttr("show", boolToBit(info.Show))
		el.SetText(info.Value)
	}

	root.CreateElement("informations").SetText(d.Comment)

	description := root.CreateElement("description")
	for _, p := range d.Primitives {
		description.AddChild(p.Element())
	}
	return root
}

func boolToBit(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// Document 带 XML 声明的完整文档
func (d *Definition) Document() *etree.Document {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	doc.SetRoot(d.Element())
	doc.Indent(2)
	return doc
}

func (d *Definition) WriteTo(w io.Writer) (int64, error) {
	return d.Document().WriteTo(w)
}

func (d *Definition) String() string {
	s, _ := d.Document().WriteToString()
	return s
}
