package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/zooyer/golib/xos"

	"github.com/zooyer/dxf2elmt/convert"
	"github.com/zooyer/dxf2elmt/elmt"
)

// summary 统计报告，同时输出到终端和 .log
func summary(input string, res *convert.Result) string {
	var (
		b     strings.Builder
		stats = res.Stats
		geo   = res.Definition.Geometry()
	)

	fmt.Fprintf(&b, "[%s] 耗时 %s | %dx%d 热点 %d,%d\n",
		input, stats.Elapsed, geo.Width, geo.Height, geo.HotspotX, geo.HotspotY)

	if ext := res.Extents; !ext.IsEmpty() {
		fmt.Fprintf(&b, "    图纸范围: RECTANG %.2f,%.2f %.2f,%.2f\n", ext.Min.X, ext.Min.Y, ext.Max.X, ext.Max.Y)
	}
	fmt.Fprintf(&b, "    DXF 实体: %d\n", stats.Visited())
	for _, kind := range stats.Kinds() {
		fmt.Fprintf(&b, "       |-- %-12s %d\n", kind, stats.Entities[kind])
	}
	fmt.Fprintf(&b, "    跳过: %d (循环引用 %d, 缺失块 %d), 降级样条: %d\n",
		stats.Skipped, stats.Cyclic, stats.Missing, stats.ReducedFidelity)

	fmt.Fprintf(&b, "    ELMT 图元: %d\n", len(res.Definition.Primitives))
	for _, tag := range []string{"line", "arc", "ellipse", "polygon", "text", "dynamic_text"} {
		if n := stats.Output[tag]; n > 0 {
			fmt.Fprintf(&b, "       |-- %-12s %d\n", tag, n)
		}
	}

	for _, w := range res.Warnings {
		fmt.Fprintf(&b, "    [警告] %v\n", w)
	}
	return b.String()
}

// textLine 日志中一条文字的记录：内容、位置、字号、字体
func textLine(p elmt.Primitive) (string, bool) {
	switch t := p.(type) {
	case *elmt.Text:
		return fmt.Sprintf("text,%q,%.2f,%.2f,%.2f,%s\n",
			t.Value, t.Position.X, t.Position.Y, t.Font.PointSize, t.Font), true
	case *elmt.DynamicText:
		return fmt.Sprintf("dynamic_text,%q,%.2f,%.2f,%.2f,%s\n",
			t.Text, t.Position.X, t.Position.Y, t.Font.PointSize, t.Font), true
	}
	return "", false
}

// writeLog 先写报告，再逐条追加文字
func writeLog(filename, report string, res *convert.Result) error {
	if err := os.WriteFile(filename, []byte(report), 0644); err != nil {
		return err
	}

	var header = "\ntype,content,x,y,size,font\n"
	if err := xos.AppendFile(filename, []byte(header), 0644); err != nil {
		return err
	}

	for _, p := range res.Definition.Primitives {
		line, ok := textLine(p)
		if !ok {
			continue
		}
		if err := xos.AppendFile(filename, []byte(line), 0644); err != nil {
			return err
		}
	}
	return nil
}
