package convert

import (
	"math"
	"slices"

	"github.com/zooyer/dxf2elmt/core"
	"github.com/zooyer/dxf2elmt/entities"
)

// SplineInput 样条的参数化描述（DXF 原生单位）
type SplineInput struct {
	Degree  int
	Control []core.Point
	Knots   []float64
	Weights []float64
	Fit     []core.Point
	Closed  bool
}

func SplineInputFrom(sp *entities.Spline) SplineInput {
	return SplineInput{
		Degree:  sp.Degree,
		Control: sp.ControlPoints,
		Knots:   sp.Knots,
		Weights: sp.Weights,
		Fit:     sp.FitPoints,
		Closed:  sp.Closed(),
	}
}

// Tessellator 把参数曲线离散为有序点列。
// 第二个返回值表示输入退化、只能降级为折线（reduced fidelity）。
type Tessellator interface {
	Tessellate(in SplineInput, steps int) ([]core.Point, bool)
}

// Tessellate 有控制点时使用 policy，只有拟合点时用 Catmull-Rom 穿过拟合点
func Tessellate(in SplineInput, steps int, policy Tessellator) ([]core.Point, bool) {
	if len(in.Control) == 0 && len(in.Fit) > 0 {
		return CatmullRom{}.Tessellate(in, steps)
	}
	if policy == nil {
		policy = BSpline{}
	}
	return policy.Tessellate(in, steps)
}

// degenerate 控制点不足时直接连接已有的点
func degenerate(points []core.Point) ([]core.Point, bool) {
	return slices.Clone(points), true
}

// samples 在 [a, b] 上均匀取 count 个参数，count >= 2 时包含两个端点
func samples(a, b float64, count int) []float64 {
	if count < 1 {
		return nil
	}
	if count == 1 {
		return []float64{a}
	}
	params := make([]float64, count)
	for j := range params {
		params[j] = a + (b-a)*float64(j)/float64(count-1)
	}
	params[count-1] = b
	return params
}

// BSpline 非均匀有理 B 样条，de Boor 算法求值
type BSpline struct{}

func (BSpline) Tessellate(in SplineInput, steps int) ([]core.Point, bool) {
	p := max(in.Degree, 1)
	n := len(in.Control)
	if n <= 1 || n < p+1 {
		return degenerate(in.Control)
	}

	knots := in.Knots
	if !validKnots(knots, n, p) {
		knots = clampedKnots(n, p)
	}
	weights := in.Weights
	if !validWeights(weights, n) {
		weights = nil
	}

	segments := 0
	for i := p; i < n; i++ {
		if knots[i+1] > knots[i] {
			segments++
		}
	}
	if segments == 0 {
		return degenerate(in.Control)
	}

	params := samples(knots[p], knots[n], steps*segments)
	points := make([]core.Point, 0, len(params))
	for _, t := range params {
		points = append(points, deBoor(t, p, knots, in.Control, weights))
	}
	return points, false
}

func validKnots(knots []float64, n, p int) bool {
	if len(knots) != n+p+1 {
		return false
	}
	for i := 1; i < len(knots); i++ {
		if knots[i] < knots[i-1] || math.IsNaN(knots[i]) {
			return false
		}
	}
	return knots[n] > knots[p]
}

func validWeights(weights []float64, n int) bool {
	if len(weights) != n {
		return false
	}
	for _, w := range weights {
		if !(w > 0) {
			return false
		}
	}
	return true
}

// clampedKnots 两端重复 p+1 次的均匀节点向量，曲线经过首尾控制点
func clampedKnots(n, p int) []float64 {
	knots := make([]float64, n+p+1)
	last := float64(n - p)
	for i := range knots {
		switch {
		case i <= p:
			knots[i] = 0
		case i >= n:
			knots[i] = last
		default:
			knots[i] = float64(i - p)
		}
	}
	return knots
}

// span 找到 t 所在的节点区间 k：knots[k] <= t < knots[k+1]
func span(t float64, p, n int, knots []float64) int {
	if t >= knots[n] {
		for k := n - 1; k >= p; k-- {
			if knots[k+1] > knots[k] {
				return k
			}
		}
		return n - 1
	}
	k := p
	for k < n-1 && knots[k+1] <= t {
		k++
	}
	return k
}

func deBoor(t float64, p int, knots []float64, ctrl []core.Point, weights []float64) core.Point {
	k := span(t, p, len(ctrl), knots)

	// 齐次坐标 (w*x, w*y, w)
	type hp struct{ x, y, w float64 }
	d := make([]hp, p+1)
	for j := 0; j <= p; j++ {
		c := ctrl[j+k-p]
		w := 1.0
		if weights != nil {
			w = weights[j+k-p]
		}
		d[j] = hp{c.X * w, c.Y * w, w}
	}

	for r := 1; r <= p; r++ {
		for j := p; j >= r; j-- {
			lo, hi := knots[j+k-p], knots[j+1+k-r]
			alpha := 0.0
			if hi > lo {
				alpha = (t - lo) / (hi - lo)
			}
			d[j] = hp{
				x: (1-alpha)*d[j-1].x + alpha*d[j].x,
				y: (1-alpha)*d[j-1].y + alpha*d[j].y,
				w: (1-alpha)*d[j-1].w + alpha*d[j].w,
			}
		}
	}

	if d[p].w == 0 {
		return core.Point{X: d[p].x, Y: d[p].y}
	}
	return core.Point{X: d[p].x / d[p].w, Y: d[p].y / d[p].w}
}

// CatmullRom 均匀 Catmull-Rom 插值，曲线穿过每个拟合点
type CatmullRom struct{}

func (CatmullRom) Tessellate(in SplineInput, steps int) ([]core.Point, bool) {
	pts := in.Fit
	if len(pts) == 0 {
		pts = in.Control
	}
	if len(pts) < 2 {
		return degenerate(pts)
	}

	ring := slices.Clone(pts)
	if in.Closed && ring[0] != ring[len(ring)-1] {
		ring = append(ring, ring[0])
	}
	segments := len(ring) - 1

	at := func(i int) core.Point {
		switch {
		case i < 0:
			if in.Closed {
				return ring[len(ring)-2]
			}
			return ring[0].Mul(2).Sub(ring[1])
		case i > segments:
			if in.Closed {
				return ring[1]
			}
			return ring[segments].Mul(2).Sub(ring[segments-1])
		default:
			return ring[i]
		}
	}

	params := samples(0, float64(segments), steps*segments)
	points := make([]core.Point, 0, len(params))
	for _, u := range params {
		i := min(int(u), segments-1)
		t := u - float64(i)
		points = append(points, catmullRom(at(i-1), at(i), at(i+1), at(i+2), t))
	}
	return points, false
}

func catmullRom(p0, p1, p2, p3 core.Point, t float64) core.Point {
	t2, t3 := t*t, t*t*t
	f := func(a, b, c, d float64) float64 {
		return 0.5 * (2*b + (c-a)*t + (2*a-5*b+4*c-d)*t2 + (3*b-a-3*c+d)*t3)
	}
	return core.Point{X: f(p0.X, p1.X, p2.X, p3.X), Y: f(p0.Y, p1.Y, p2.Y, p3.Y)}
}
