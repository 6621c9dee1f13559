package elmt

import (
	"fmt"
	"strings"

	"github.com/beevik/etree"
	"golang.org/x/text/unicode/norm"

	"github.com/zooyer/dxf2elmt/core"
)

// Font 对应 Qt 的 QFont::toString 格式
type Font struct {
	Family    string
	PointSize float64
	Bold      bool
	Italic    bool
}

func DefaultFont(size float64) Font {
	return Font{Family: "Sans Serif", PointSize: size}
}

// Weight Qt5 字重：50 正常，75 粗体
func (f Font) Weight() int {
	if f.Bold {
		return 75
	}
	return 50
}

func (f Font) String() string {
	italic := 0
	if f.Italic {
		italic = 1
	}
	return fmt.Sprintf("%s,%s,-1,5,%d,%d,0,0,0,0", f.Family, num(f.PointSize), f.Weight(), italic)
}

// CharCount 按 NFC 组合字符序列计数，近似用户可见的字符数
func CharCount(s string) int {
	var (
		it norm.Iter
		n  int
	)
	it.InitString(norm.NFC, s)
	for !it.Done() {
		it.Next()
		n++
	}
	return n
}

// EstimateWidth 没有字体度量时按字符数估算宽度（取最长的一行）
func EstimateWidth(value string, size float64) float64 {
	longest := 0
	for _, line := range strings.Split(value, "\n") {
		longest = max(longest, CharCount(line))
	}
	return float64(longest) * size * 0.75
}

// Text 静态文字，Position 为基线左端
type Text struct {
	Position core.Point
	Rotation float64 // 度，顺时针为正（Qt）
	Value    string
	Font     Font
	Color    string // #RRGGBB
	Width    float64
}

func (t *Text) Tag() string { return "text" }

func (t *Text) Bounds() core.BBox {
	return core.EmptyBBox().
		Extend(core.Point{X: t.Position.X, Y: t.Position.Y - t.Font.PointSize}).
		Extend(core.Point{X: t.Position.X + t.Width, Y: t.Position.Y})
}

func (t *Text) Element() *etree.Element {
	el := etree.NewElement(t.Tag())
	el.CreateAttr("x", num(t.Position.X))
	el.CreateAttr("y", num(t.Position.Y))
	el.CreateAttr("rotation", num(t.Rotation))
	el.CreateAttr("text", t.Value)
	el.CreateAttr("font", t.Font.String())
	el.CreateAttr("color", t.Color)
	return el
}
