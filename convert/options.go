package convert

import (
	"math"
)

const (
	DefaultSplineStep  = 20
	DefaultPixelsPerMM = 2.0
	// MaxSplineStep 图形界面允许的上限，命令行不限制
	MaxSplineStep = 200
)

// Options 一次转换的只读配置
type Options struct {
	Name        string  // 元件名称，通常为文件名
	SplineStep  int     // 每段曲线的采样数
	PixelsPerMM float64 // 像素/毫米
	DynamicText bool    // 文字输出为 dynamic_text
	Verbose     bool    // 输出到标准输出而不是写文件（调用方处理）
	Info        bool    // 输出统计报告（调用方处理）

	// Tessellator 控制点样条的离散化策略，为空时使用 BSpline
	Tessellator Tessellator
}

func DefaultOptions() Options {
	return Options{
		SplineStep:  DefaultSplineStep,
		PixelsPerMM: DefaultPixelsPerMM,
	}
}

func (o Options) Validate() error {
	if o.SplineStep < 1 {
		return invalidConfig("spline step must be > 0, got %d", o.SplineStep)
	}
	if o.PixelsPerMM <= 0 || math.IsNaN(o.PixelsPerMM) || math.IsInf(o.PixelsPerMM, 0) {
		return invalidConfig("pixels per mm must be a positive number, got %v", o.PixelsPerMM)
	}
	return nil
}

func (o Options) tessellator() Tessellator {
	if o.Tessellator != nil {
		return o.Tessellator
	}
	return BSpline{}
}
