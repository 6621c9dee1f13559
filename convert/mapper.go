package convert

import "github.com/zooyer/dxf2elmt/core"

// Map DXF 坐标（Y 向上）-> ELMT 像素坐标（Y 向下）
func Map(p core.Point, scale float64) core.Point {
	return core.Point{X: p.X * scale, Y: -(p.Y * scale)}
}
