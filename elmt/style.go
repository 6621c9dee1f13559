package elmt

import (
	"fmt"
	"strings"
)

// Style 对应 QElectroTech 图元的 style 属性
type Style struct {
	LineStyle  string // normal, dashed, dotted, dashdotted
	LineWeight string // none, thin, normal, hight, eleve
	Filling    string // none, black, white, ...
	Color      string
}

// DefaultStyle 细实线、无填充、黑色
func DefaultStyle() Style {
	return Style{LineStyle: "normal", LineWeight: "normal", Filling: "none", Color: "black"}
}

// Filled 返回用描边颜色填充的样式
func (s Style) Filled() Style {
	s.Filling = s.Color
	return s
}

func (s Style) String() string {
	return fmt.Sprintf("line-style:%s;line-weight:%s;filling:%s;color:%s",
		s.LineStyle, s.LineWeight, s.Filling, s.Color)
}

type aciColor struct {
	name string
	hex  string
}

// ACI 基础色到 QET 颜色名。7 号在 CAD 黑底上是白色，打印/原理图中按黑色处理
var aciColors = map[int]aciColor{
	1:   {"red", "#FF0000"},
	2:   {"yellow", "#FFFF00"},
	3:   {"green", "#00FF00"},
	4:   {"cyan", "#00FFFF"},
	5:   {"blue", "#0000FF"},
	6:   {"magenta", "#FF00FF"},
	7:   {"black", "#000000"},
	8:   {"gray", "#808080"},
	9:   {"lightgray", "#C0C0C0"},
	30:  {"orange", "#FF7F00"},
	40:  {"brun", "#A52A2A"},
	200: {"purple", "#800080"},
}

// ColorName ACI 颜色索引 -> QET 颜色名，ByBlock/ByLayer/未映射的颜色为黑色
func ColorName(aci int) string {
	if c, ok := aciColors[aci]; ok {
		return c.name
	}
	return "black"
}

// ColorHex ACI 颜色索引 -> #RRGGBB
func ColorHex(aci int) string {
	if c, ok := aciColors[aci]; ok {
		return c.hex
	}
	return "#000000"
}

// LineStyleName DXF 线型名 -> QET line-style
func LineStyleName(lineType string) string {
	lt := strings.ToUpper(lineType)
	switch {
	case strings.HasPrefix(lt, "DASHDOT"), strings.HasPrefix(lt, "CENTER"), strings.HasPrefix(lt, "PHANTOM"):
		return "dashdotted"
	case strings.HasPrefix(lt, "DASH"), strings.HasPrefix(lt, "HIDDEN"):
		return "dashed"
	case strings.HasPrefix(lt, "DOT"):
		return "dotted"
	default:
		return "normal"
	}
}

// StyleFor 由实体的颜色与线型生成样式
func StyleFor(aci int, lineType string) Style {
	s := DefaultStyle()
	s.Color = ColorName(aci)
	s.LineStyle = LineStyleName(lineType)
	return s
}
