// Package convert 把解析后的 DXF 文档转换为 QElectroTech 元件定义。
//
// 流程：单位换算 -> 块展开（Resolver）-> 逐实体转换（converter）
// -> 组装 elmt.Definition，统计信息随结果一起返回。
package convert

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
	"time"

	dxf "github.com/zooyer/dxf2elmt"
	"github.com/zooyer/dxf2elmt/core"
	"github.com/zooyer/dxf2elmt/elmt"
	"github.com/zooyer/dxf2elmt/entities"
	"github.com/zooyer/dxf2elmt/utils"
)

const defaultName = "dxf2elmt"

// Result 一次成功转换的输出
type Result struct {
	Definition *elmt.Definition
	Stats      Stats
	// Warnings 已恢复的块引用问题（循环、缺失），已计入 Stats
	Warnings []error
	// Extents 图纸范围（DXF 单位，块已展开）
	Extents core.BBox
}

// Convert 同步转换整个文档。配置错误在开始工作前返回，
// 单个实体的问题在本地恢复并计入统计。
func Convert(doc *dxf.Document, opts Options) (*Result, error) {
	start := time.Now()

	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if doc == nil || len(doc.Entities) == 0 {
		return nil, ErrEmptyDrawing
	}
	scale, err := ResolveScale(doc.Units, opts.PixelsPerMM)
	if err != nil {
		return nil, err
	}

	var (
		stats    = NewStats()
		resolver = NewResolver(doc, stats)
		conv     = newConverter(opts, scale, stats)
		name     = opts.Name
		warnings []error
	)
	if name == "" {
		name = defaultName
	}
	def := elmt.NewDefinition(name)

	for _, e := range doc.Entities {
		leaves, errs := resolver.Resolve(e, utils.Identity())
		warnings = append(warnings, errs...)
		for _, leaf := range leaves {
			def.Add(conv.Convert(leaf)...)
		}
	}

	if len(def.Primitives) == 0 {
		return nil, fmt.Errorf("%w: %d entities, none produced output", ErrEmptyDrawing, stats.Visited())
	}

	def.Informations = informations(doc)
	def.Comment = fmt.Sprintf("Converted by %s (%s, %s px/unit)",
		defaultName, unitName(doc.Units), formatScale(scale))

	stats.Output = def.Counts()
	stats.Elapsed = time.Since(start)

	return &Result{
		Definition: def,
		Stats:      stats.Snapshot(),
		Warnings:   warnings,
		Extents:    utils.DrawingExtents(doc),
	}, nil
}

// ConvertReader 解析 DXF 流并转换，耗时包含解析
func ConvertReader(r io.Reader, opts Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	start := time.Now()
	doc, err := dxf.Load(r)
	if err != nil {
		return nil, fmt.Errorf("load dxf: %w", err)
	}
	res, err := Convert(doc, opts)
	if err != nil {
		return nil, err
	}
	res.Stats.Elapsed = time.Since(start)
	return res, nil
}

// ConvertFile 转换磁盘上的 DXF 文件
func ConvertFile(path string, opts Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	start := time.Now()
	doc, err := dxf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	res, err := Convert(doc, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	res.Stats.Elapsed = time.Since(start)
	return res, nil
}

// informations 顶层块引用的属性作为元件信息字段（同名只保留第一个）
func informations(doc *dxf.Document) []elmt.Information {
	var (
		infos []elmt.Information
		seen  = make(map[string]bool)
	)
	for _, e := range doc.Entities {
		ins, ok := e.(*entities.Insert)
		if !ok {
			continue
		}
		values := make(map[string]string)
		for tag, value := range utils.GetAttrs(ins) {
			if key := strings.ToLower(strings.TrimSpace(tag)); key != "" {
				values[key] = value
			}
		}
		for _, key := range slices.Sorted(maps.Keys(values)) {
			if seen[key] {
				continue
			}
			seen[key] = true
			infos = append(infos, elmt.Information{Name: key, Value: values[key], Show: true})
		}
	}
	return infos
}

func formatScale(scale float64) string {
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.6f", scale), "0"), ".")
}
