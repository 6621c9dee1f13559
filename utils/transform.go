package utils

import (
	"math"

	"github.com/zooyer/dxf2elmt/core"
	"github.com/zooyer/dxf2elmt/entities"
	"github.com/zooyer/golib/xmath"
)

const epsilon = 1e-9

// Transform 二维仿射变换：
//
//	x' = A*x + C*y + E
//	y' = B*x + D*y + F
type Transform struct {
	A, B, C, D, E, F float64
}

// Identity 单位变换
func Identity() Transform {
	return Transform{A: 1, D: 1}
}

func Translate(dx, dy float64) Transform {
	return Transform{A: 1, D: 1, E: dx, F: dy}
}

func Scale(sx, sy float64) Transform {
	return Transform{A: sx, D: sy}
}

// Rotate 绕原点逆时针旋转，角度为度数
func Rotate(degrees float64) Transform {
	rad := degrees * math.Pi / 180.0
	cos, sin := math.Cos(rad), math.Sin(rad)
	return Transform{A: cos, B: sin, C: -sin, D: cos}
}

// Then 组合变换：先应用 t，再应用 o
func (t Transform) Then(o Transform) Transform {
	return Transform{
		A: o.A*t.A + o.C*t.B,
		B: o.B*t.A + o.D*t.B,
		C: o.A*t.C + o.C*t.D,
		D: o.B*t.C + o.D*t.D,
		E: o.A*t.E + o.C*t.F + o.E,
		F: o.B*t.E + o.D*t.F + o.F,
	}
}

// Apply 将局部坐标点变换到父级/世界坐标
func (t Transform) Apply(p core.Point) core.Point {
	return core.Point{
		X: t.A*p.X + t.C*p.Y + t.E,
		Y: t.B*p.X + t.D*p.Y + t.F,
		Z: p.Z,
	}
}

// ApplyVector 只做线性部分，不平移
func (t Transform) ApplyVector(v core.Point) core.Point {
	return core.Point{
		X: t.A*v.X + t.C*v.Y,
		Y: t.B*v.X + t.D*v.Y,
		Z: v.Z,
	}
}

func (t Transform) Det() float64 {
	return t.A*t.D - t.B*t.C
}

// Mirrored 镜像变换会反转角度方向
func (t Transform) Mirrored() bool {
	return t.Det() < 0
}

// IsSimilarity 等比缩放 + 旋转（可带镜像）：圆仍然是圆
func (t Transform) IsSimilarity() bool {
	c1 := math.Hypot(t.A, t.B)
	c2 := math.Hypot(t.C, t.D)
	dot := t.A*t.C + t.B*t.D
	tol := epsilon * math.Max(1, math.Max(c1, c2))
	return xmath.Equal(c1, c2, tol) && xmath.Equal(dot, 0, tol*math.Max(1, c1*c2))
}

// IsAxisAligned 没有旋转分量（可带非等比缩放）
func (t Transform) IsAxisAligned() bool {
	tol := epsilon * math.Max(1, math.Max(math.Abs(t.A), math.Abs(t.D)))
	return xmath.Equal(t.B, 0, tol) && xmath.Equal(t.C, 0, tol)
}

// ScaleFactor 面积缩放的平方根，等比变换时即为缩放比例
func (t Transform) ScaleFactor() float64 {
	return math.Sqrt(math.Abs(t.Det()))
}

// Rotation 变换后 X 轴的方向角（度）
func (t Transform) Rotation() float64 {
	return math.Atan2(t.B, t.A) * 180.0 / math.Pi
}

// InsertTransform 块内坐标 -> 插入点所在坐标：
// 减去块基点 -> 缩放 -> 旋转 -> 平移
func InsertTransform(ins *entities.Insert, base core.Point) Transform {
	return cellTransform(ins, base, 0, 0)
}

// MaxArrayCells 单个阵列插入最多展开的单元数
const MaxArrayCells = 1 << 16

// ArrayCells 阵列的行列数与单元总数，总数超过 MaxArrayCells 时 ok 为 false
func ArrayCells(ins *entities.Insert) (cols, rows int, ok bool) {
	cols, rows = max(ins.Columns, 1), max(ins.Rows, 1)
	// 先除后比较，避免乘法溢出
	if cols > MaxArrayCells || rows > MaxArrayCells/cols {
		return cols, rows, false
	}
	return cols, rows, true
}

// InsertTransforms 展开阵列插入，每个单元一个变换（行优先）。
// 单元数超过 MaxArrayCells 时返回 nil
func InsertTransforms(ins *entities.Insert, base core.Point) []Transform {
	cols, rows, ok := ArrayCells(ins)
	if !ok {
		return nil
	}
	transforms := make([]Transform, 0, cols*rows)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			transforms = append(transforms, cellTransform(ins, base,
				float64(c)*ins.ColumnSpacing, float64(r)*ins.RowSpacing))
		}
	}
	return transforms
}

// cellTransform 阵列间距在旋转后的插入坐标系中度量，不受块缩放影响
func cellTransform(ins *entities.Insert, base core.Point, dx, dy float64) Transform {
	sx, sy := ins.Scale.X, ins.Scale.Y
	if sx == 0 {
		sx = 1
	}
	if sy == 0 {
		sy = 1
	}
	return Translate(-base.X, -base.Y).
		Then(Scale(sx, sy)).
		Then(Translate(dx, dy)).
		Then(Rotate(ins.Rotation)).
		Then(Translate(ins.InsertionPoint.X, ins.InsertionPoint.Y))
}
