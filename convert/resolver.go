package convert

import (
	"strings"

	dxf "github.com/zooyer/dxf2elmt"
	"github.com/zooyer/dxf2elmt/entities"
	"github.com/zooyer/dxf2elmt/utils"
)

// MaxBlockDepth 块嵌套的最大深度，超过按循环引用处理
const MaxBlockDepth = 32

// Leaf 展开后的叶子实体及其累计变换
type Leaf struct {
	Entity    entities.Entity
	Transform utils.Transform
}

// blockArena 按下标引用块定义，展开路径只记录下标
type blockArena struct {
	blocks []*dxf.Block
	index  map[string]int
}

func newBlockArena(doc *dxf.Document) blockArena {
	arena := blockArena{index: make(map[string]int, len(doc.Blocks))}
	for name, block := range doc.Blocks {
		arena.index[strings.ToUpper(name)] = len(arena.blocks)
		arena.blocks = append(arena.blocks, block)
	}
	return arena
}

func (a blockArena) lookup(name string) (int, bool) {
	i, ok := a.index[strings.ToUpper(strings.TrimSpace(name))]
	return i, ok
}

// frame 深度优先展开的一层：一个块（阵列时逐个单元）的实体列表
type frame struct {
	block    int // -1 表示顶层
	entities []entities.Entity
	pos      int
	cells    []utils.Transform
	cell     int
	parent   utils.Transform
}

func (f *frame) transform() utils.Transform {
	if f.block < 0 {
		return f.parent
	}
	return f.cells[f.cell].Then(f.parent)
}

// Resolver 把块引用展开为叶子实体流
type Resolver struct {
	arena blockArena
	stats *Stats
}

func NewResolver(doc *dxf.Document, stats *Stats) *Resolver {
	return &Resolver{arena: newBlockArena(doc), stats: stats}
}

// Resolve 展开一个实体。循环引用、缺失的块、过大的阵列在本地恢复：跳过该引用、计入统计，
// 并作为错误返回，兄弟实体照常展开。
func (r *Resolver) Resolve(e entities.Entity, t utils.Transform) ([]Leaf, []error) {
	var (
		leaves   []Leaf
		errs     []error
		visiting = make([]bool, len(r.arena.blocks))
		stack    = []frame{{block: -1, entities: []entities.Entity{e}, parent: t}}
	)

	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.pos >= len(top.entities) {
			// 阵列的下一个单元
			if top.block >= 0 && top.cell+1 < len(top.cells) {
				top.cell++
				top.pos = 0
				continue
			}
			if top.block >= 0 {
				visiting[top.block] = false
			}
			stack = stack[:len(stack)-1]
			continue
		}

		ent := top.entities[top.pos]
		top.pos++
		r.stats.visit(ent)

		current := top.transform()
		ins, ok := ent.(*entities.Insert)
		if !ok {
			leaves = append(leaves, Leaf{Entity: ent, Transform: current})
			continue
		}

		// 属性已经在插入所在的坐标系中
		for _, attr := range ins.Attributes {
			r.stats.visit(attr)
			leaves = append(leaves, Leaf{Entity: attr, Transform: current})
		}

		// 外部参照没有本地实体，按缺失处理
		idx, found := r.arena.lookup(ins.BlockName)
		if !found || r.arena.blocks[idx].IsXRef() {
			r.stats.missing()
			errs = append(errs, &UnresolvableBlockError{Name: ins.BlockName})
			continue
		}

		depth := len(stack) - 1
		if visiting[idx] || depth >= MaxBlockDepth {
			r.stats.cyclic()
			errs = append(errs, &CyclicReferenceError{
				Name:  r.arena.blocks[idx].Name,
				Chain: r.chain(stack),
				Depth: !visiting[idx],
			})
			continue
		}

		block := r.arena.blocks[idx]
		cols, rows, ok := utils.ArrayCells(ins)
		if !ok {
			r.stats.skip()
			errs = append(errs, &ArrayTooLargeError{Name: block.Name, Columns: cols, Rows: rows})
			continue
		}

		visiting[idx] = true
		stack = append(stack, frame{
			block:    idx,
			entities: block.Entities,
			cells:    utils.InsertTransforms(ins, block.Base),
			parent:   current,
		})
	}

	return leaves, errs
}

// chain 当前展开路径上的块名
func (r *Resolver) chain(stack []frame) []string {
	names := make([]string, 0, len(stack))
	for _, f := range stack {
		if f.block >= 0 {
			names = append(names, r.arena.blocks[f.block].Name)
		}
	}
	return names
}
