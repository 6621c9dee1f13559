// Package config 读取 YAML 配置文件。命令行显式设置的参数优先于配置文件。
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/zooyer/dxf2elmt/convert"
)

// 与命令行参数同名
const (
	FlagSplineStep  = "spline-step"
	FlagPixelsPerMM = "px-per-mm"
	FlagDynamicText = "dynamic-text"
	FlagVerbose     = "verbose"
	FlagInfo        = "info"
)

// File 配置文件内容，未出现的字段为 nil
type File struct {
	SplineStep  *int     `yaml:"spline_step"`
	PixelsPerMM *float64 `yaml:"px_per_mm"`
	DynamicText *bool    `yaml:"dynamic_text"`
	Verbose     *bool    `yaml:"verbose"`
	Info        *bool    `yaml:"info"`
	Serve       Serve    `yaml:"serve"`
}

// Serve HTTP 服务配置
type Serve struct {
	Addr           string `yaml:"addr"`
	RequestLogging *bool  `yaml:"request_logging"`
	MaxFiles       int    `yaml:"max_files"`
}

const (
	DefaultAddr     = ":8080"
	DefaultMaxFiles = 32
)

// Parse 解析 YAML，拒绝未知字段
func Parse(r io.Reader) (*File, error) {
	var (
		file    File
		decoder = yaml.NewDecoder(r)
	)
	decoder.KnownFields(true)
	if err := decoder.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %v", convert.ErrInvalidConfiguration, err)
	}
	return &file, nil
}

func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	file, err := Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return file, nil
}

// Apply 把配置写入 opts。changed 报告命令行是否显式设置了某个参数，为 nil 时全部覆盖
func (f *File) Apply(opts *convert.Options, changed func(name string) bool) {
	if f == nil {
		return
	}
	set := func(name string) bool {
		return changed == nil || !changed(name)
	}
	if f.SplineStep != nil && set(FlagSplineStep) {
		opts.SplineStep = *f.SplineStep
	}
	if f.PixelsPerMM != nil && set(FlagPixelsPerMM) {
		opts.PixelsPerMM = *f.PixelsPerMM
	}
	if f.DynamicText != nil && set(FlagDynamicText) {
		opts.DynamicText = *f.DynamicText
	}
	if f.Verbose != nil && set(FlagVerbose) {
		opts.Verbose = *f.Verbose
	}
	if f.Info != nil && set(FlagInfo) {
		opts.Info = *f.Info
	}
}

// ServeAddr 监听地址，未配置时为 :8080
func (f *File) ServeAddr() string {
	if f == nil || f.Serve.Addr == "" {
		return DefaultAddr
	}
	return f.Serve.Addr
}

// RequestLogging 默认开启请求日志
func (f *File) RequestLogging() bool {
	if f == nil || f.Serve.RequestLogging == nil {
		return true
	}
	return *f.Serve.RequestLogging
}

// MaxFiles 单次请求最多转换的文件数
func (f *File) MaxFiles() int {
	if f == nil || f.Serve.MaxFiles <= 0 {
		return DefaultMaxFiles
	}
	return f.Serve.MaxFiles
}
