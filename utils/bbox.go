package utils

import (
	dxf "github.com/zooyer/dxf2elmt"
	"github.com/zooyer/dxf2elmt/core"
	"github.com/zooyer/dxf2elmt/entities"
)

// maxExtentDepth 计算范围时的嵌套上限，防止循环引用
const maxExtentDepth = 32

// TransformBBox 执行矩阵变换：将局部包围盒的四个角变换到父级坐标后重新求包围盒
func TransformBBox(local core.BBox, t Transform) core.BBox {
	if local.IsEmpty() {
		return local
	}

	corners := []core.Point{
		{X: local.Min.X, Y: local.Min.Y},
		{X: local.Max.X, Y: local.Min.Y},
		{X: local.Max.X, Y: local.Max.Y},
		{X: local.Min.X, Y: local.Max.Y},
	}

	box := core.EmptyBBox()
	for _, p := range corners {
		box = box.Extend(t.Apply(p))
	}
	return box
}

// GetEntityBBoxWCS 实体在世界坐标下的包围盒，插入块会递归展开
func GetEntityBBoxWCS(d *dxf.Document, entity entities.Entity) core.BBox {
	return entityBBox(d, entity, Identity(), make(map[*dxf.Block]bool))
}

// DrawingExtents 整张图纸的范围（DXF 单位）
func DrawingExtents(d *dxf.Document) core.BBox {
	box := core.EmptyBBox()
	for _, e := range d.Entities {
		box = box.Union(GetEntityBBoxWCS(d, e))
	}
	return box
}

// entityBBox onPath 为当前展开路径上的块：再次引用、嵌套过深、
// 块不存在或阵列过大时只计入插入点
func entityBBox(d *dxf.Document, entity entities.Entity, t Transform, onPath map[*dxf.Block]bool) core.BBox {
	ins, ok := entity.(*entities.Insert)
	if !ok {
		return TransformBBox(entity.BBox(), t)
	}

	block, exists := d.Block(ins.BlockName)
	_, _, small := ArrayCells(ins)
	if !exists || onPath[block] || len(onPath) >= maxExtentDepth || !small {
		return core.EmptyBBox().Extend(t.Apply(ins.InsertionPoint))
	}

	onPath[block] = true
	defer delete(onPath, block)

	box := core.EmptyBBox()
	for _, cell := range InsertTransforms(ins, block.Base) {
		world := cell.Then(t)
		for _, sub := range block.Entities {
			box = box.Union(entityBBox(d, sub, world, onPath))
		}
	}
	return box
}
