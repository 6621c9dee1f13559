package convert

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dxf "github.com/zooyer/dxf2elmt"
	"github.com/zooyer/dxf2elmt/core"
	"github.com/zooyer/dxf2elmt/elmt"
	"github.com/zooyer/dxf2elmt/entities"
	"github.com/zooyer/dxf2elmt/utils"
)

// tags 组码/值交替拼成 DXF 文本
func tags(pairs ...string) string {
	return strings.Join(pairs, "\n") + "\n"
}

func header(units int) string {
	return tags("0", "SECTION", "2", "HEADER", "9", "$INSUNITS", "70", fmt.Sprint(units), "0", "ENDSEC")
}

func section(name string, body string) string {
	return tags("0", "SECTION", "2", name) + body + tags("0", "ENDSEC")
}

func load(t *testing.T, src string) *dxf.Document {
	t.Helper()
	doc, err := dxf.Load(strings.NewReader(src + tags("0", "EOF")))
	require.NoError(t, err)
	return doc
}

func options(pxPerMM float64) Options {
	opts := DefaultOptions()
	opts.PixelsPerMM = pxPerMM
	return opts
}

func assertPoint(t *testing.T, want, got core.Point) {
	t.Helper()
	assert.InDelta(t, want.X, got.X, 1e-9, "X")
	assert.InDelta(t, want.Y, got.Y, 1e-9, "Y")
}

func line(x1, y1, x2, y2 float64) *entities.Line {
	l := entities.CreateEntity("LINE").(*entities.Line)
	l.Start = core.Point{X: x1, Y: y1}
	l.End = core.Point{X: x2, Y: y2}
	return l
}

func insert(name string, x, y float64) *entities.Insert {
	ins := entities.CreateEntity("INSERT").(*entities.Insert)
	ins.BlockName = name
	ins.InsertionPoint = core.Point{X: x, Y: y}
	return ins
}

func document(top []entities.Entity, blocks ...*dxf.Block) *dxf.Document {
	doc := &dxf.Document{Units: UnitMillimeters, Blocks: map[string]*dxf.Block{}, Entities: top}
	for _, b := range blocks {
		doc.Blocks[strings.ToUpper(b.Name)] = b
	}
	return doc
}

func TestResolveScale(t *testing.T) {
	scale, err := ResolveScale(UnitInches, 2)
	require.NoError(t, err)
	assert.InDelta(t, 50.8, scale, 1e-12)

	scale, err = ResolveScale(UnitMillimeters, 2)
	require.NoError(t, err)
	assert.Equal(t, 2.0, scale)

	// 无单位和未知代码按毫米处理
	for _, units := range []int{UnitUnitless, 99, -1} {
		scale, err = ResolveScale(units, 3)
		require.NoError(t, err)
		assert.Equal(t, 3.0, scale)
	}

	for _, ratio := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		_, err = ResolveScale(UnitMillimeters, ratio)
		assert.ErrorIs(t, err, ErrInvalidConfiguration, "ratio %v", ratio)
	}
}

func TestResolveScale_AlwaysPositive(t *testing.T) {
	for units := UnitUnitless; units <= UnitParsecs; units++ {
		scale, err := ResolveScale(units, 0.5)
		require.NoError(t, err)
		assert.Greater(t, scale, 0.0, unitName(units))
	}
}

func TestMap(t *testing.T) {
	assert.Equal(t, core.Point{X: 20, Y: -10}, Map(core.Point{X: 10, Y: 5}, 2))
	assert.Equal(t, core.Point{X: -3, Y: 4}, Map(core.Point{X: -1.5, Y: -2}, 2))
}

func TestOptionsValidate(t *testing.T) {
	assert.NoError(t, DefaultOptions().Validate())

	opts := DefaultOptions()
	opts.SplineStep = 0
	assert.ErrorIs(t, opts.Validate(), ErrInvalidConfiguration)

	opts = DefaultOptions()
	opts.PixelsPerMM = -2
	assert.ErrorIs(t, opts.Validate(), ErrInvalidConfiguration)

	_, err := Convert(document([]entities.Entity{line(0, 0, 1, 0)}), opts)
	assert.ErrorIs(t, err, ErrInvalidConfiguration)
}

func TestConvert_Line(t *testing.T) {
	doc := load(t, header(UnitMillimeters)+section("ENTITIES",
		tags("0", "LINE", "8", "0", "10", "0", "20", "0", "11", "10", "21", "0")))

	res, err := Convert(doc, DefaultOptions())
	require.NoError(t, err)
	require.Len(t, res.Definition.Primitives, 1)

	l, ok := res.Definition.Primitives[0].(*elmt.Line)
	require.True(t, ok)
	assertPoint(t, core.Point{X: 0, Y: 0}, l.P1)
	assertPoint(t, core.Point{X: 20, Y: 0}, l.P2)

	assert.Equal(t, 1, res.Stats.Entities["LINE"])
	assert.Equal(t, 1, res.Stats.Output["line"])
	assert.Zero(t, res.Stats.Skipped)
}

func TestConvert_Circle(t *testing.T) {
	doc := load(t, header(UnitMillimeters)+section("ENTITIES",
		tags("0", "CIRCLE", "10", "5", "20", "5", "40", "3")))

	res, err := Convert(doc, DefaultOptions())
	require.NoError(t, err)
	require.Len(t, res.Definition.Primitives, 1)

	e, ok := res.Definition.Primitives[0].(*elmt.Ellipse)
	require.True(t, ok)
	assertPoint(t, core.Point{X: 10, Y: -10}, e.Center)
	assert.InDelta(t, 6, e.RX, 1e-9)
	assert.InDelta(t, 6, e.RY, 1e-9)

	xml := res.Definition.String()
	// 12x12 向上取整到网格
	assert.Contains(t, xml, `width="20"`)
	assert.Contains(t, xml, `height="20"`)
	assert.Contains(t, xml, `hotspot_x="-4"`)
}

func TestConvert_BlockInsert(t *testing.T) {
	doc := load(t, header(UnitMillimeters)+
		section("BLOCKS", tags(
			"0", "BLOCK", "2", "B", "10", "0", "20", "0", "70", "0",
			"0", "LINE", "10", "0", "20", "0", "11", "1", "21", "0",
			"0", "ENDBLK",
		))+
		section("ENTITIES", tags("0", "INSERT", "2", "B", "10", "100", "20", "0")))

	res, err := Convert(doc, options(1))
	require.NoError(t, err)
	require.Len(t, res.Definition.Primitives, 1)

	l := res.Definition.Primitives[0].(*elmt.Line)
	assertPoint(t, core.Point{X: 100, Y: 0}, l.P1)
	assertPoint(t, core.Point{X: 101, Y: 0}, l.P2)
	assert.Equal(t, 1, res.Stats.Entities["INSERT"])
	assert.Equal(t, 1, res.Stats.Entities["LINE"])
}

func TestConvert_ArrayInsert(t *testing.T) {
	ins := insert("B", 0, 0)
	ins.Columns, ins.Rows = 3, 2
	ins.ColumnSpacing, ins.RowSpacing = 10, 20
	doc := document([]entities.Entity{ins},
		&dxf.Block{Name: "B", Entities: []entities.Entity{line(0, 0, 1, 0)}})

	res, err := Convert(doc, options(1))
	require.NoError(t, err)
	require.Len(t, res.Definition.Primitives, 6)
	assert.Equal(t, 6, res.Stats.Entities["LINE"])

	last := res.Definition.Primitives[5].(*elmt.Line)
	assertPoint(t, core.Point{X: 20, Y: -20}, last.P1)
}

func TestResolver_CycleCountedOnce(t *testing.T) {
	a := &dxf.Block{Name: "A", Entities: []entities.Entity{line(0, 0, 1, 0), insert("B", 0, 0)}}
	b := &dxf.Block{Name: "B", Entities: []entities.Entity{insert("A", 0, 0)}}
	doc := document([]entities.Entity{insert("A", 0, 0)}, a, b)

	stats := NewStats()
	leaves, errs := NewResolver(doc, stats).Resolve(doc.Entities[0], utils.Identity())

	require.Len(t, leaves, 1)
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], ErrCyclicBlockReference)

	var cyc *CyclicReferenceError
	require.True(t, errors.As(errs[0], &cyc))
	assert.Equal(t, "A", cyc.Name)
	assert.Equal(t, []string{"A", "B"}, cyc.Chain)
	assert.False(t, cyc.Depth)

	assert.Equal(t, 1, stats.Cyclic)
	assert.Equal(t, 1, stats.Skipped)
	assert.Equal(t, 3, stats.Entities["INSERT"])
	assert.Equal(t, 1, stats.Entities["LINE"])
}

func TestConvert_CycleIsRecovered(t *testing.T) {
	a := &dxf.Block{Name: "A", Entities: []entities.Entity{line(0, 0, 1, 0), insert("B", 0, 0)}}
	b := &dxf.Block{Name: "B", Entities: []entities.Entity{insert("A", 0, 0)}}
	doc := document([]entities.Entity{insert("A", 0, 0), line(5, 5, 6, 6)}, a, b)

	res, err := Convert(doc, options(1))
	require.NoError(t, err)
	assert.Len(t, res.Definition.Primitives, 2)
	assert.Equal(t, 1, res.Stats.Cyclic)
	require.Len(t, res.Warnings, 1)
}

func TestResolver_SelfReference(t *testing.T) {
	a := &dxf.Block{Name: "A", Entities: []entities.Entity{insert("a", 0, 0)}}
	doc := document([]entities.Entity{insert("A", 0, 0)}, a)

	stats := NewStats()
	leaves, errs := NewResolver(doc, stats).Resolve(doc.Entities[0], utils.Identity())
	assert.Empty(t, leaves)
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], ErrCyclicBlockReference)
	assert.Equal(t, 1, stats.Cyclic)
}

func TestResolver_MaxDepth(t *testing.T) {
	var blocks []*dxf.Block
	for i := 0; i < 40; i++ {
		blocks = append(blocks, &dxf.Block{
			Name:     fmt.Sprintf("B%d", i),
			Entities: []entities.Entity{insert(fmt.Sprintf("B%d", i+1), 0, 0)},
		})
	}
	blocks = append(blocks, &dxf.Block{Name: "B40", Entities: []entities.Entity{line(0, 0, 1, 0)}})
	doc := document([]entities.Entity{insert("B0", 0, 0)}, blocks...)

	stats := NewStats()
	leaves, errs := NewResolver(doc, stats).Resolve(doc.Entities[0], utils.Identity())
	assert.Empty(t, leaves)
	require.Len(t, errs, 1)

	var cyc *CyclicReferenceError
	require.True(t, errors.As(errs[0], &cyc))
	assert.True(t, cyc.Depth)
	assert.Len(t, cyc.Chain, MaxBlockDepth)
	assert.Equal(t, 1, stats.Cyclic)
}

func TestResolver_SiblingsAfterCycleStillExpand(t *testing.T) {
	// 同一个块被兄弟实体重复引用不是循环
	b := &dxf.Block{Name: "B", Entities: []entities.Entity{line(0, 0, 1, 0)}}
	a := &dxf.Block{Name: "A", Entities: []entities.Entity{insert("B", 0, 0), insert("B", 10, 0), insert("A", 0, 0)}}
	doc := document([]entities.Entity{insert("A", 0, 0)}, a, b)

	stats := NewStats()
	leaves, errs := NewResolver(doc, stats).Resolve(doc.Entities[0], utils.Identity())
	assert.Len(t, leaves, 2)
	assert.Len(t, errs, 1)
	assert.Equal(t, 1, stats.Cyclic)
}

func TestConvert_DoubleSelfInsertTerminates(t *testing.T) {
	a := &dxf.Block{Name: "A", Entities: []entities.Entity{line(0, 0, 1, 0), insert("A", 0, 0), insert("A", 5, 0)}}
	doc := document([]entities.Entity{insert("A", 0, 0)}, a)

	res, err := Convert(doc, options(1))
	require.NoError(t, err)
	assert.Len(t, res.Definition.Primitives, 1)
	assert.Equal(t, 2, res.Stats.Cyclic)
	require.Len(t, res.Warnings, 2)
	assertPoint(t, core.Point{X: 0, Y: 0}, res.Extents.Min)
	assertPoint(t, core.Point{X: 5, Y: 0}, res.Extents.Max)
}

func TestResolver_ArrayTooLarge(t *testing.T) {
	b := &dxf.Block{Name: "B", Entities: []entities.Entity{line(0, 0, 1, 0)}}
	huge := insert("B", 0, 0)
	huge.Columns, huge.Rows = 2000000000, 2000000000
	doc := document([]entities.Entity{huge, line(3, 3, 4, 4)}, b)

	res, err := Convert(doc, options(1))
	require.NoError(t, err)
	assert.Len(t, res.Definition.Primitives, 1)
	assert.Equal(t, 1, res.Stats.Skipped)
	require.Len(t, res.Warnings, 1)
	assert.ErrorIs(t, res.Warnings[0], ErrArrayTooLarge)

	var arr *ArrayTooLargeError
	require.True(t, errors.As(res.Warnings[0], &arr))
	assert.Equal(t, "B", arr.Name)
	assert.Equal(t, 2000000000, arr.Columns)

	// 上限以内的阵列照常展开
	ok := insert("B", 0, 0)
	ok.Columns, ok.Rows = 256, 256
	leaves, errs := NewResolver(doc, NewStats()).Resolve(ok, utils.Identity())
	assert.Empty(t, errs)
	assert.Len(t, leaves, utils.MaxArrayCells)
}

func TestResolver_MissingBlock(t *testing.T) {
	doc := document([]entities.Entity{insert("NOPE", 0, 0), line(0, 0, 1, 1)})

	res, err := Convert(doc, options(1))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Stats.Missing)
	assert.Equal(t, 1, res.Stats.Skipped)
	require.Len(t, res.Warnings, 1)
	assert.ErrorIs(t, res.Warnings[0], ErrUnresolvableBlockName)
}

func TestResolver_AttributesInheritTransform(t *testing.T) {
	ins := insert("MISSING", 50, 0)
	attr := entities.CreateEntity("ATTRIB").(*entities.Attrib)
	attr.Tag, attr.Text = "LABEL", "K1"
	ins.Attributes = append(ins.Attributes, attr)

	stats := NewStats()
	leaves, _ := NewResolver(document(nil), stats).Resolve(ins, utils.Translate(1, 2))
	require.Len(t, leaves, 1)
	assert.Same(t, attr, leaves[0].Entity)
	assert.Equal(t, utils.Translate(1, 2), leaves[0].Transform)
	assert.Equal(t, 1, stats.Entities["ATTRIB"])
}

func TestConvert_Empty(t *testing.T) {
	_, err := Convert(document(nil), DefaultOptions())
	assert.ErrorIs(t, err, ErrEmptyDrawing)

	_, err = Convert(nil, DefaultOptions())
	assert.ErrorIs(t, err, ErrEmptyDrawing)

	// 只有不支持的实体
	doc := load(t, section("ENTITIES", tags("0", "HATCH", "8", "0", "0", "3DFACE", "8", "0")))
	_, err = Convert(doc, DefaultOptions())
	assert.ErrorIs(t, err, ErrEmptyDrawing)
}

func TestConvert_UnsupportedCounted(t *testing.T) {
	doc := load(t, section("ENTITIES", tags(
		"0", "HATCH", "8", "0",
		"0", "LINE", "10", "0", "20", "0", "11", "1", "21", "1",
	)))
	res, err := Convert(doc, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Stats.Skipped)
	assert.Equal(t, 1, res.Stats.Entities["HATCH"])
	assert.Equal(t, 2, res.Stats.Visited())
	assert.Equal(t, []string{"HATCH", "LINE"}, res.Stats.Kinds())
}

func TestConvert_Informations(t *testing.T) {
	ins := insert("B", 0, 0)
	for _, kv := range [][2]string{{"LABEL", "K1"}, {"comment", "relay"}} {
		a := entities.CreateEntity("ATTRIB").(*entities.Attrib)
		a.Tag, a.Text, a.Height = kv[0], kv[1], 2.5
		ins.Attributes = append(ins.Attributes, a)
	}
	doc := document([]entities.Entity{ins}, &dxf.Block{Name: "B", Entities: []entities.Entity{line(0, 0, 1, 0)}})

	res, err := Convert(doc, options(1))
	require.NoError(t, err)
	assert.Equal(t, []elmt.Information{
		{Name: "comment", Value: "relay", Show: true},
		{Name: "label", Value: "K1", Show: true},
	}, res.Definition.Informations)
	assert.Equal(t, 2, res.Stats.Output["text"])
	assert.Contains(t, res.Definition.String(), `<elementInformation name="label" show="1">K1</elementInformation>`)
}

func TestConvert_NameAndComment(t *testing.T) {
	opts := options(1)
	opts.Name = "relay"
	res, err := Convert(document([]entities.Entity{line(0, 0, 1, 0)}), opts)
	require.NoError(t, err)
	assert.Equal(t, "relay", res.Definition.Name)
	assert.Contains(t, res.Definition.Comment, "millimeters")
}

func TestConvertReader(t *testing.T) {
	src := header(UnitCentimeters) + section("ENTITIES",
		tags("0", "LINE", "10", "0", "20", "0", "11", "1", "21", "0")) + tags("0", "EOF")

	res, err := ConvertReader(strings.NewReader(src), DefaultOptions())
	require.NoError(t, err)
	l := res.Definition.Primitives[0].(*elmt.Line)
	// 1 cm = 10 mm = 20 px
	assertPoint(t, core.Point{X: 20}, l.P2)

	_, err = ConvertReader(strings.NewReader("AutoCAD Binary DXF\r\n\x1a\x00"), DefaultOptions())
	assert.ErrorIs(t, err, dxf.ErrBinaryDXF)

	_, err = ConvertReader(strings.NewReader(tags("0", "EOF")), DefaultOptions())
	assert.ErrorIs(t, err, ErrEmptyDrawing)
}

func TestConvert_Extents(t *testing.T) {
	doc := document([]entities.Entity{line(-1, 2, 3, 4)})
	res, err := Convert(doc, options(1))
	require.NoError(t, err)
	assertPoint(t, core.Point{X: -1, Y: 2}, res.Extents.Min)
	assertPoint(t, core.Point{X: 3, Y: 4}, res.Extents.Max)
}

func TestResolver_XRefIsMissing(t *testing.T) {
	doc := document([]entities.Entity{insert("EXT", 0, 0)}, &dxf.Block{Name: "EXT", Flags: 4})

	stats := NewStats()
	_, errs := NewResolver(doc, stats).Resolve(doc.Entities[0], utils.Identity())
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], ErrUnresolvableBlockName)
	assert.Equal(t, 1, stats.Missing)
}
