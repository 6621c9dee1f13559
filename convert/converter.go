package convert

import (
	"math"
	"strings"

	"github.com/zooyer/dxf2elmt/core"
	"github.com/zooyer/dxf2elmt/elmt"
	"github.com/zooyer/dxf2elmt/entities"
	"github.com/zooyer/dxf2elmt/utils"
)

const (
	defaultTextHeight = 2.5
	// 行距为字高的 5/3（AutoCAD 默认）
	lineSpacing = 5.0 / 3.0
	// 引线箭头长度（图纸单位），宽度为长度的 1/3
	leaderArrowSize = 2.5
)

// converter 把展开后的叶子实体翻译为 ELMT 图元
type converter struct {
	opts  Options
	scale float64
	stats *Stats
}

func newConverter(opts Options, scale float64, stats *Stats) *converter {
	return &converter{opts: opts, scale: scale, stats: stats}
}

// point 局部坐标 -> 世界坐标 -> 像素坐标
func (c *converter) point(p core.Point, t utils.Transform) core.Point {
	return Map(t.Apply(p), c.scale)
}

func (c *converter) points(points []core.Point, t utils.Transform) []core.Point {
	out := make([]core.Point, len(points))
	for i, p := range points {
		out[i] = c.point(p, t)
	}
	return out
}

func finite(points ...core.Point) bool {
	for _, p := range points {
		if !p.IsFinite() {
			return false
		}
	}
	return true
}

// segments 按弧度跨度估算折线段数，整圆为 4 倍采样步数
func (c *converter) segments(sweep float64) int {
	n := int(math.Ceil(math.Abs(sweep) / (2 * math.Pi) * float64(c.opts.SplineStep*4)))
	return max(n, 2)
}

func style(b *entities.BaseEntity) elmt.Style {
	return elmt.StyleFor(b.Color, b.LineType)
}

// Convert 一个叶子实体对应零个或多个图元
func (c *converter) Convert(leaf Leaf) []elmt.Primitive {
	var (
		t   = leaf.Transform
		out []elmt.Primitive
	)

	switch leaf.Entity.Kind() {
	case entities.KindLine:
		out = c.line(leaf.Entity.(*entities.Line), t)
	case entities.KindCircle:
		out = c.circle(leaf.Entity.(*entities.Circle), t)
	case entities.KindArc:
		out = c.arc(leaf.Entity.(*entities.Arc), t)
	case entities.KindEllipse:
		out = c.ellipse(leaf.Entity.(*entities.Ellipse), t)
	case entities.KindLwPolyline:
		pl := leaf.Entity.(*entities.LWPolyline)
		out = c.polyline(pl.Vertices, pl.Closed, &pl.BaseEntity, t)
	case entities.KindPolyline:
		pl := leaf.Entity.(*entities.Polyline)
		if pl.IsMesh() {
			c.stats.skip()
			return nil
		}
		out = c.polyline(pl.Vertices, pl.Closed(), &pl.BaseEntity, t)
	case entities.KindSolid:
		out = c.solid(leaf.Entity.(*entities.Solid), t)
	case entities.KindSpline:
		out = c.spline(leaf.Entity.(*entities.Spline), t)
	case entities.KindText:
		out = c.text(leaf.Entity.(*entities.Text), t)
	case entities.KindMText:
		out = c.mtext(leaf.Entity.(*entities.MText), t)
	case entities.KindAttrib:
		a := leaf.Entity.(*entities.Attrib)
		if a.Invisible() {
			return nil
		}
		out = c.attrib(a, t)
	case entities.KindLeader:
		out = c.leader(leaf.Entity.(*entities.Leader), t)
	default:
		// INSERT 已由 Resolver 展开，这里只剩不支持的类型
		c.stats.skip()
		return nil
	}

	if out == nil {
		// 坐标非法或顶点不足
		c.stats.skip()
	}
	return out
}

func (c *converter) line(l *entities.Line, t utils.Transform) []elmt.Primitive {
	p1, p2 := c.point(l.Start, t), c.point(l.End, t)
	if !finite(p1, p2) {
		return nil
	}
	return []elmt.Primitive{&elmt.Line{P1: p1, P2: p2, Style: style(&l.BaseEntity)}}
}

func (c *converter) circle(ci *entities.Circle, t utils.Transform) []elmt.Primitive {
	center := c.point(ci.Center, t)
	s := style(&ci.BaseEntity)
	switch {
	case t.IsSimilarity():
		r := ci.Radius * t.ScaleFactor() * c.scale
		if !finite(center) || math.IsNaN(r) {
			return nil
		}
		return []elmt.Primitive{&elmt.Ellipse{Center: center, RX: r, RY: r, Style: s}}
	case t.IsAxisAligned():
		rx, ry := ci.Radius*math.Abs(t.A)*c.scale, ci.Radius*math.Abs(t.D)*c.scale
		if !finite(center) {
			return nil
		}
		return []elmt.Primitive{&elmt.Ellipse{Center: center, RX: rx, RY: ry, Style: s}}
	}
	return c.sampled(ci.Center, ci.Radius, 0, 2*math.Pi, true, s, t)
}

// sampled 在局部坐标中采样圆/圆弧，再整体变换
func (c *converter) sampled(center core.Point, r, start, sweep float64, closed bool, s elmt.Style, t utils.Transform) []elmt.Primitive {
	n := c.segments(sweep)
	count := n + 1
	if closed {
		count = n
	}
	local := make([]core.Point, 0, count)
	for k := 0; k < count; k++ {
		a := start + sweep*float64(k)/float64(n)
		local = append(local, core.Point{X: center.X + r*math.Cos(a), Y: center.Y + r*math.Sin(a)})
	}
	pts := c.points(local, t)
	if !finite(pts...) {
		return nil
	}
	return []elmt.Primitive{&elmt.Polygon{Points: pts, Closed: closed, Style: s}}
}

func (c *converter) arc(a *entities.Arc, t utils.Transform) []elmt.Primitive {
	s := style(&a.BaseEntity)
	start := a.StartAngle * math.Pi / 180
	sweep := a.Sweep() * math.Pi / 180
	if !t.IsSimilarity() {
		return c.sampled(a.Center, a.Radius, start, sweep, false, s, t)
	}

	// 世界坐标系中的起始角；镜像时扫掠方向反转
	wc := t.Apply(a.Center)
	ws := t.Apply(core.Point{X: a.Center.X + math.Cos(start), Y: a.Center.Y + math.Sin(start)})
	worldStart := math.Atan2(ws.Y-wc.Y, ws.X-wc.X) * 180 / math.Pi
	worldSweep := a.Sweep()
	if t.Mirrored() {
		worldSweep = -worldSweep
	}

	center := c.point(a.Center, t)
	r := a.Radius * t.ScaleFactor() * c.scale
	if !finite(center) || math.IsNaN(r) || math.IsNaN(worldStart) {
		return nil
	}
	// Y 轴翻转：角度取反
	return []elmt.Primitive{&elmt.Arc{
		Center: center,
		RX:     r,
		RY:     r,
		Start:  -worldStart,
		Sweep:  -worldSweep,
		Style:  s,
	}}
}

func (c *converter) ellipse(e *entities.Ellipse, t utils.Transform) []elmt.Primitive {
	s := style(&e.BaseEntity)
	major := t.ApplyVector(e.MajorAxis)
	minor := t.ApplyVector(e.MinorAxis())

	if e.IsFull() {
		dot := major.X*minor.X + major.Y*minor.Y
		tol := 1e-9 * math.Max(1, math.Hypot(major.X, major.Y)*math.Hypot(minor.X, minor.Y))
		aligned := math.Abs(major.X) < tol || math.Abs(major.Y) < tol
		if math.Abs(dot) < tol && aligned {
			center := c.point(e.Center, t)
			rx := (math.Abs(major.X) + math.Abs(minor.X)) * c.scale
			ry := (math.Abs(major.Y) + math.Abs(minor.Y)) * c.scale
			if !finite(center) {
				return nil
			}
			return []elmt.Primitive{&elmt.Ellipse{Center: center, RX: rx, RY: ry, Style: s}}
		}
	}

	full := e.IsFull()
	span := e.Span()
	n := c.segments(span)
	count := n + 1
	if full {
		count = n
	}
	local := make([]core.Point, 0, count)
	for k := 0; k < count; k++ {
		local = append(local, e.PointAt(e.StartParam+span*float64(k)/float64(n)))
	}
	pts := c.points(local, t)
	if !finite(pts...) {
		return nil
	}
	return []elmt.Primitive{&elmt.Polygon{Points: pts, Closed: full, Style: s}}
}

// bulgePoints 凸度弧段的中间点（不含两端）。bulge = tan(θ/4)，正值逆时针
func (c *converter) bulgePoints(a, b core.Point, bulge float64) []core.Point {
	chord := a.Dist(b)
	if bulge == 0 || chord == 0 {
		return nil
	}
	theta := 4 * math.Atan(bulge)
	mid := core.Point{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2}
	// 弦的左法向
	nx, ny := -(b.Y-a.Y)/chord, (b.X-a.X)/chord
	d := chord / 2 / math.Tan(theta/2)
	center := core.Point{X: mid.X + nx*d, Y: mid.Y + ny*d}
	r := a.Dist(center)
	start := math.Atan2(a.Y-center.Y, a.X-center.X)

	n := c.segments(theta)
	points := make([]core.Point, 0, n-1)
	for k := 1; k < n; k++ {
		angle := start + theta*float64(k)/float64(n)
		points = append(points, core.Point{X: center.X + r*math.Cos(angle), Y: center.Y + r*math.Sin(angle)})
	}
	return points
}

func (c *converter) polyline(vertices []entities.Vertex, closed bool, base *entities.BaseEntity, t utils.Transform) []elmt.Primitive {
	if len(vertices) < 2 {
		return nil
	}
	s := style(base)

	if len(vertices) == 2 && !closed && vertices[0].Bulge == 0 {
		p1, p2 := c.point(vertices[0].Point, t), c.point(vertices[1].Point, t)
		if !finite(p1, p2) {
			return nil
		}
		return []elmt.Primitive{&elmt.Line{P1: p1, P2: p2, Style: s}}
	}

	var local []core.Point
	for i, v := range vertices {
		local = append(local, v.Point)
		next := i + 1
		if next == len(vertices) {
			if !closed {
				break
			}
			next = 0
		}
		local = append(local, c.bulgePoints(v.Point, vertices[next].Point, v.Bulge)...)
	}

	pts := c.points(local, t)
	if !finite(pts...) {
		return nil
	}
	return []elmt.Primitive{&elmt.Polygon{Points: pts, Closed: closed, Style: s}}
}

func (c *converter) solid(so *entities.Solid, t utils.Transform) []elmt.Primitive {
	outline := so.Outline()
	// 第三、四角点重合时为三角形
	if outline[2].Dist(outline[3]) < 1e-9 {
		outline = outline[:3]
	}
	pts := c.points(outline, t)
	if !finite(pts...) {
		return nil
	}
	return []elmt.Primitive{&elmt.Polygon{Points: pts, Closed: true, Style: style(&so.BaseEntity).Filled()}}
}

func (c *converter) spline(sp *entities.Spline, t utils.Transform) []elmt.Primitive {
	local, reduced := Tessellate(SplineInputFrom(sp), c.opts.SplineStep, c.opts.tessellator())
	if reduced {
		c.stats.reduced()
	}
	if len(local) < 2 {
		if reduced {
			return []elmt.Primitive{}
		}
		return nil
	}
	pts := c.points(local, t)
	if !finite(pts...) {
		return nil
	}
	return []elmt.Primitive{&elmt.Polygon{Points: pts, Closed: sp.Closed(), Style: style(&sp.BaseEntity)}}
}

// textPlacement 文字在像素坐标中的字号与旋转
type textPlacement struct {
	size     float64
	rotation float64
}

// placement 局部旋转角 rot（度）经过变换后的字号与 Qt 旋转角（顺时针）
func (c *converter) placement(height, rot float64, t utils.Transform) textPlacement {
	if height <= 0 {
		height = defaultTextHeight
	}
	rad := rot * math.Pi / 180
	dir := t.ApplyVector(core.Point{X: math.Cos(rad), Y: math.Sin(rad)})
	world := math.Atan2(dir.Y, dir.X) * 180 / math.Pi
	return textPlacement{
		size:     height * t.ScaleFactor() * c.scale,
		rotation: normalizeDegrees(-world),
	}
}

func normalizeDegrees(d float64) float64 {
	d = math.Mod(d, 360)
	if d < 0 {
		d += 360
	}
	if d == 0 {
		return 0
	}
	return d
}

// baseline 对齐点 -> 基线左端（局部坐标）
func baseline(anchor core.Point, rot, width, height float64, dx, dy float64) core.Point {
	rad := rot * math.Pi / 180
	cos, sin := math.Cos(rad), math.Sin(rad)
	ox, oy := -width*dx, -height*dy
	return core.Point{
		X: anchor.X + ox*cos - oy*sin,
		Y: anchor.Y + ox*sin + oy*cos,
	}
}

// alignFactors DXF 对齐码 -> 宽度与高度方向的偏移比例
func alignFactors(h, v int) (dx, dy float64) {
	switch h {
	case 1:
		dx = 0.5
	case 2:
		dx = 1
	case 4:
		dx, dy = 0.5, 0.5
	}
	switch v {
	case 2:
		dy = 0.5
	case 3:
		dy = 1
	}
	return dx, dy
}

func alignments(h, v int) (elmt.HAlignment, elmt.VAlignment) {
	ha, va := elmt.AlignLeft, elmt.AlignBottom
	switch h {
	case 1, 4:
		ha = elmt.AlignHCenter
	case 2:
		ha = elmt.AlignRight
	}
	switch {
	case h == 4 || v == 2:
		va = elmt.AlignVCenter
	case v == 3:
		va = elmt.AlignTop
	}
	return ha, va
}

// singleLine TEXT 与 ATTRIB 共用
type singleLine struct {
	value    string
	anchor   core.Point
	aligned  bool
	height   float64
	rotation float64
	width    float64 // 宽度因子
	hAlign   int
	vAlign   int
	infoName string
	color    int
}

func (c *converter) singleLine(sl singleLine, t utils.Transform) []elmt.Primitive {
	value := normalizeText(sl.value)
	if strings.TrimSpace(value) == "" {
		return []elmt.Primitive{}
	}
	pl := c.placement(sl.height, sl.rotation, t)
	font := elmt.DefaultFont(pl.size)
	color := elmt.ColorHex(sl.color)

	anchor, aligned := sl.anchor, sl.aligned
	if c.opts.DynamicText {
		ha, va := elmt.AlignLeft, elmt.AlignBottom
		if aligned {
			ha, va = alignments(sl.hAlign, sl.vAlign)
		}
		pos := c.point(anchor, t)
		if !finite(pos) {
			return nil
		}
		dt := elmt.NewDynamicText(value, pos, font)
		dt.Rotation = pl.rotation
		dt.HAlign, dt.VAlign = ha, va
		dt.InfoName = sl.infoName
		dt.Color = color
		return []elmt.Primitive{dt}
	}

	height := sl.height
	if height <= 0 {
		height = defaultTextHeight
	}
	factor := sl.width
	if factor <= 0 {
		factor = 1
	}
	var dx, dy float64
	if aligned {
		dx, dy = alignFactors(sl.hAlign, sl.vAlign)
	}
	width := elmt.EstimateWidth(value, height) * factor
	pos := c.point(baseline(anchor, sl.rotation, width, height, dx, dy), t)
	if !finite(pos) {
		return nil
	}
	return []elmt.Primitive{&elmt.Text{
		Position: pos,
		Rotation: pl.rotation,
		Value:    value,
		Font:     font,
		Color:    color,
		Width:    elmt.EstimateWidth(value, pl.size) * factor,
	}}
}

// anchorOf 3 对齐、5 布满：文字从 10 点延伸到 11 点，按左对齐处理
func anchorOf(anchor, location core.Point, hasAlign bool, hAlign, vAlign int) (core.Point, bool) {
	if !hasAlign || (hAlign == 0 && vAlign == 0) || hAlign == 3 || hAlign == 5 {
		return location, false
	}
	return anchor, true
}

func (c *converter) text(tx *entities.Text, t utils.Transform) []elmt.Primitive {
	anchor, aligned := anchorOf(tx.Anchor(), tx.Location, tx.HasAlign, tx.HAlign, tx.VAlign)
	return c.singleLine(singleLine{
		value:    tx.Value,
		anchor:   anchor,
		aligned:  aligned,
		height:   tx.Height,
		rotation: tx.Rotation,
		width:    tx.WidthFactor,
		hAlign:   tx.HAlign,
		vAlign:   tx.VAlign,
		color:    tx.Color,
	}, t)
}

func (c *converter) attrib(a *entities.Attrib, t utils.Transform) []elmt.Primitive {
	anchor, aligned := anchorOf(a.Anchor(), a.Location, a.HasAlign, a.HAlign, a.VAlign)
	return c.singleLine(singleLine{
		value:    a.Text,
		anchor:   anchor,
		aligned:  aligned,
		height:   a.Height,
		rotation: a.Rotation,
		hAlign:   a.HAlign,
		vAlign:   a.VAlign,
		infoName: strings.ToLower(strings.TrimSpace(a.Tag)),
		color:    a.Color,
	}, t)
}

// mtextAlign 附着点 1..9 -> 对齐方式
func mtextAlign(attachment int) (elmt.HAlignment, elmt.VAlignment, float64, float64) {
	if attachment < 1 || attachment > 9 {
		attachment = 1
	}
	col, row := (attachment-1)%3, (attachment-1)/3
	hs := []elmt.HAlignment{elmt.AlignLeft, elmt.AlignHCenter, elmt.AlignRight}
	vs := []elmt.VAlignment{elmt.AlignTop, elmt.AlignVCenter, elmt.AlignBottom}
	return hs[col], vs[row], float64(col) / 2, float64(row) / 2
}

func (c *converter) mtext(m *entities.MText, t utils.Transform) []elmt.Primitive {
	value, format := parseMText(m.Value)
	value = strings.TrimRight(value, "\n")
	if strings.TrimSpace(value) == "" {
		return []elmt.Primitive{}
	}

	pl := c.placement(m.Height, m.Rotation, t)
	font := elmt.DefaultFont(pl.size)
	if format.Family != "" {
		font.Family = format.Family
	}
	font.Bold, font.Italic = format.Bold, format.Italic
	color := elmt.ColorHex(m.Color)
	ha, va, fx, fy := mtextAlign(m.Attachment)

	if c.opts.DynamicText {
		pos := c.point(m.Location, t)
		if !finite(pos) {
			return nil
		}
		dt := elmt.NewDynamicText(value, pos, font)
		dt.Rotation = pl.rotation
		dt.HAlign, dt.VAlign = ha, va
		dt.RefWidth = m.RefWidth * t.ScaleFactor() * c.scale
		dt.Color = color
		return []elmt.Primitive{dt}
	}

	height := m.Height
	if height <= 0 {
		height = defaultTextHeight
	}
	lines := strings.Split(value, "\n")
	step := height * lineSpacing
	total := height + float64(len(lines)-1)*step
	rad := m.Rotation * math.Pi / 180
	cos, sin := math.Cos(rad), math.Sin(rad)

	out := make([]elmt.Primitive, 0, len(lines))
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		width := elmt.EstimateWidth(line, height)
		// 附着点在文字块的上/中/下，首行基线在块顶部下方一个字高
		ox := -width * fx
		oy := -height - float64(i)*step + total*fy
		local := core.Point{
			X: m.Location.X + ox*cos - oy*sin,
			Y: m.Location.Y + ox*sin + oy*cos,
		}
		pos := c.point(local, t)
		if !finite(pos) {
			return nil
		}
		out = append(out, &elmt.Text{
			Position: pos,
			Rotation: pl.rotation,
			Value:    line,
			Font:     font,
			Color:    color,
			Width:    elmt.EstimateWidth(line, pl.size),
		})
	}
	return out
}

func (c *converter) leader(l *entities.Leader, t utils.Transform) []elmt.Primitive {
	if len(l.Vertices) < 2 {
		return nil
	}
	s := style(&l.BaseEntity)
	pts := c.points(l.Vertices, t)
	if !finite(pts...) {
		return nil
	}
	out := []elmt.Primitive{&elmt.Polygon{Points: pts, Closed: false, Style: s}}

	tip, next := l.Vertices[0], l.Vertices[1]
	length := tip.Dist(next)
	if !l.ArrowHead || length == 0 {
		return out
	}
	ux, uy := (next.X-tip.X)/length, (next.Y-tip.Y)/length
	size := math.Min(leaderArrowSize, length)
	half := size / 6
	back := core.Point{X: tip.X + ux*size, Y: tip.Y + uy*size}
	arrow := []core.Point{
		tip,
		{X: back.X - uy*half, Y: back.Y + ux*half},
		{X: back.X + uy*half, Y: back.Y - ux*half},
	}
	return append(out, &elmt.Polygon{Points: c.points(arrow, t), Closed: true, Style: s.Filled()})
}
