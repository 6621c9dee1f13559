package utils

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/zooyer/dxf2elmt/core"
	"github.com/zooyer/dxf2elmt/entities"
)

func assertPoint(t *testing.T, want, got core.Point) {
	t.Helper()
	assert.InDelta(t, want.X, got.X, 1e-9, "X")
	assert.InDelta(t, want.Y, got.Y, 1e-9, "Y")
}

func newInsert(x, y, sx, sy, rot float64) *entities.Insert {
	ins := entities.CreateEntity("INSERT").(*entities.Insert)
	ins.InsertionPoint = core.Point{X: x, Y: y}
	ins.Scale = core.Point{X: sx, Y: sy, Z: 1}
	ins.Rotation = rot
	return ins
}

func TestTransform_ScaleRotateTranslate(t *testing.T) {
	tr := Scale(2, 2).Then(Rotate(90)).Then(Translate(10, 0))
	// (1,0) -> 缩放 (2,0) -> 旋转 (0,2) -> 平移 (10,2)
	assertPoint(t, core.Point{X: 10, Y: 2}, tr.Apply(core.Point{X: 1, Y: 0}))
	assert.True(t, tr.IsSimilarity())
	assert.False(t, tr.Mirrored())
	assert.InDelta(t, 2, tr.ScaleFactor(), 1e-9)
	assert.InDelta(t, 90, tr.Rotation(), 1e-9)
}

func TestTransform_ThenOrder(t *testing.T) {
	a := Translate(5, 0)
	b := Rotate(90)
	p := core.Point{X: 1, Y: 0}

	// 先平移再旋转
	assertPoint(t, b.Apply(a.Apply(p)), a.Then(b).Apply(p))
	// 先旋转再平移
	assertPoint(t, a.Apply(b.Apply(p)), b.Then(a).Apply(p))
	assertPoint(t, core.Point{X: 0, Y: 6}, a.Then(b).Apply(p))
	assertPoint(t, core.Point{X: 5, Y: 1}, b.Then(a).Apply(p))
}

func TestTransform_Classification(t *testing.T) {
	assert.True(t, Identity().IsSimilarity())
	assert.True(t, Identity().IsAxisAligned())

	mirror := Scale(-1, 1)
	assert.True(t, mirror.Mirrored())
	assert.True(t, mirror.IsSimilarity())

	stretch := Scale(2, 1)
	assert.False(t, stretch.IsSimilarity())
	assert.True(t, stretch.IsAxisAligned())

	skew := Scale(2, 1).Then(Rotate(30))
	assert.False(t, skew.IsSimilarity())
	assert.False(t, skew.IsAxisAligned())
}

func TestTransform_ApplyVectorIgnoresTranslation(t *testing.T) {
	tr := Rotate(180).Then(Translate(100, 100))
	assertPoint(t, core.Point{X: -1, Y: 0}, tr.ApplyVector(core.Point{X: 1, Y: 0}))
}

func TestInsertTransform_BasePoint(t *testing.T) {
	ins := newInsert(100, 0, 1, 1, 0)
	tr := InsertTransform(ins, core.Point{X: 1, Y: 1})
	assertPoint(t, core.Point{X: 100, Y: 0}, tr.Apply(core.Point{X: 1, Y: 1}))
	assertPoint(t, core.Point{X: 101, Y: -1}, tr.Apply(core.Point{X: 2, Y: 0}))
}

func TestInsertTransform_ZeroScaleDefaultsToOne(t *testing.T) {
	ins := newInsert(0, 0, 0, 0, 0)
	tr := InsertTransform(ins, core.Point{})
	assertPoint(t, core.Point{X: 3, Y: 4}, tr.Apply(core.Point{X: 3, Y: 4}))
}

func TestInsertTransforms_Array(t *testing.T) {
	ins := newInsert(0, 0, 2, 2, 90)
	ins.Columns, ins.Rows = 2, 3
	ins.ColumnSpacing, ins.RowSpacing = 10, 5

	cells := InsertTransforms(ins, core.Point{})
	assert.Len(t, cells, 6)

	// 间距不受缩放影响，但随插入旋转
	assertPoint(t, core.Point{X: 0, Y: 0}, cells[0].Apply(core.Point{}))
	assertPoint(t, core.Point{X: 0, Y: 10}, cells[1].Apply(core.Point{}))
	assertPoint(t, core.Point{X: -5, Y: 0}, cells[2].Apply(core.Point{}))
	assertPoint(t, core.Point{X: -10, Y: 10}, cells[5].Apply(core.Point{}))
}

func TestTransformBBox_Rotated(t *testing.T) {
	local := core.BBox{Min: core.Point{X: 0, Y: 0}, Max: core.Point{X: 2, Y: 1}}
	box := TransformBBox(local, Rotate(90))
	assert.InDelta(t, -1, box.Min.X, 1e-9)
	assert.InDelta(t, 0, box.Max.X, 1e-9)
	assert.InDelta(t, 0, box.Min.Y, 1e-9)
	assert.InDelta(t, 2, box.Max.Y, 1e-9)

	assert.True(t, TransformBBox(core.EmptyBBox(), Rotate(45)).IsEmpty())
	assert.False(t, math.IsInf(box.Width(), 0))
}
