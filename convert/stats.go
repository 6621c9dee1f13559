package convert

import (
	"maps"
	"slices"
	"time"

	"github.com/zooyer/dxf2elmt/entities"
)

// Stats 一次转换的统计，只在转换结束后读取
type Stats struct {
	Entities        map[string]int `json:"entities" yaml:"entities"` // 按 DXF 类型统计访问过的实体
	Skipped         int            `json:"skipped" yaml:"skipped"`   // 未支持或被跳过的实体
	Cyclic          int            `json:"cyclic" yaml:"cyclic"`     // 循环/过深的块引用
	Missing         int            `json:"missing" yaml:"missing"`   // 引用了不存在的块
	ReducedFidelity int            `json:"reduced_fidelity" yaml:"reduced_fidelity"`
	Output          map[string]int `json:"output" yaml:"output"` // 按 ELMT 标签统计输出图元
	Elapsed         time.Duration  `json:"elapsed" yaml:"elapsed"`
}

func NewStats() *Stats {
	return &Stats{
		Entities: make(map[string]int),
		Output:   make(map[string]int),
	}
}

func (s *Stats) visit(e entities.Entity) {
	s.Entities[e.Type()]++
}

func (s *Stats) skip() {
	s.Skipped++
}

func (s *Stats) cyclic() {
	s.Cyclic++
	s.Skipped++
}

func (s *Stats) missing() {
	s.Missing++
	s.Skipped++
}

func (s *Stats) reduced() {
	s.ReducedFidelity++
}

// Visited 访问过的实体总数（顶层 + 嵌套）
func (s *Stats) Visited() int {
	total := 0
	for _, n := range s.Entities {
		total += n
	}
	return total
}

// Kinds 按名称排序的实体类型
func (s *Stats) Kinds() []string {
	return slices.Sorted(maps.Keys(s.Entities))
}

// Snapshot 深拷贝，调用方可以随意修改
func (s *Stats) Snapshot() Stats {
	c := *s
	c.Entities = maps.Clone(s.Entities)
	c.Output = maps.Clone(s.Output)
	return c
}
