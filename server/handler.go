// Package server 提供批量转换的 HTTP 接口
package server

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/zooyer/dxf2elmt/convert"
)

// 请求体上限，超过时返回 413。批量请求为 base64，约为原文的 4/3
const (
	defaultRawLimit   = "64M"
	defaultBatchLimit = "256M"
)

// File 一个待转换文件，Data 为 base64 编码的 DXF 文本
type File struct {
	Name string `json:"name"`
	Data string `json:"data"`
}

// ConvertRequest 批量转换请求，可选参数覆盖服务端默认配置
type ConvertRequest struct {
	Files       []File   `json:"files"`
	SplineStep  *int     `json:"spline_step,omitempty"`
	PixelsPerMM *float64 `json:"px_per_mm,omitempty"`
	DynamicText *bool    `json:"dynamic_text,omitempty"`
}

// ConversionResult 单个文件的转换结果
type ConversionResult struct {
	Name       string         `json:"name"`
	Success    bool           `json:"success"`
	Message    string         `json:"message"`
	Stats      *convert.Stats `json:"stats,omitempty"`
	Warnings   []string       `json:"warnings,omitempty"`
	XMLContent string         `json:"xml_content,omitempty"`
}

type ConvertResponse struct {
	Results   []ConversionResult `json:"results"`
	Succeeded int                `json:"succeeded"`
	Failed    int                `json:"failed"`
}

// Handler 只持有只读配置，请求之间互不影响
type Handler struct {
	opts       convert.Options
	maxFiles   int
	rawLimit   string
	batchLimit string
}

func NewHandler(opts convert.Options, maxFiles int) *Handler {
	return &Handler{
		opts:       opts,
		maxFiles:   maxFiles,
		rawLimit:   defaultRawLimit,
		batchLimit: defaultBatchLimit,
	}
}

// New 创建配置好中间件与路由的 echo 实例
func New(h *Handler, requestLogging bool) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = ErrorHandler

	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Skipper: func(c echo.Context) bool {
			return !requestLogging || c.Request().URL.Path == "/api/health"
		},
	}))
	e.Use(middleware.Recover())

	h.Register(e)
	return e
}

func (h *Handler) Register(e *echo.Echo) {
	api := e.Group("/api")
	api.GET("/health", h.HandleHealth)
	api.POST("/convert", h.HandleConvert, middleware.BodyLimit(h.batchLimit))
	api.POST("/convert/raw", h.HandleConvertRaw, middleware.BodyLimit(h.rawLimit))
}

func (h *Handler) HandleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// options 请求参数覆盖默认配置，并在转换前校验
func (h *Handler) options(req *ConvertRequest) (convert.Options, error) {
	opts := h.opts
	if req.SplineStep != nil {
		if step := *req.SplineStep; step < 1 || step > convert.MaxSplineStep {
			return opts, fmt.Errorf("spline_step must be in [1, %d], got %d", convert.MaxSplineStep, step)
		}
		opts.SplineStep = *req.SplineStep
	}
	if req.PixelsPerMM != nil {
		opts.PixelsPerMM = *req.PixelsPerMM
	}
	if req.DynamicText != nil {
		opts.DynamicText = *req.DynamicText
	}
	return opts, opts.Validate()
}

// HandleConvert 批量转换：单个文件失败不影响其它文件
func (h *Handler) HandleConvert(c echo.Context) error {
	var req ConvertRequest
	if err := c.Bind(&req); err != nil {
		// 分块传输时超限在读取过程中才发现
		if errors.Is(err, echo.ErrStatusRequestEntityTooLarge) {
			return echo.ErrStatusRequestEntityTooLarge
		}
		return NewBadRequestError("invalid request body", err)
	}
	if len(req.Files) == 0 {
		return NewValidationError("files", nil)
	}
	if h.maxFiles > 0 && len(req.Files) > h.maxFiles {
		return NewValidationError("files", fmt.Errorf("at most %d files per request", h.maxFiles))
	}

	opts, err := h.options(&req)
	if err != nil {
		return NewValidationError("options", err)
	}

	resp := ConvertResponse{Results: make([]ConversionResult, 0, len(req.Files))}
	for _, file := range req.Files {
		result := h.convertFile(file, opts)
		if result.Success {
			resp.Succeeded++
		} else {
			resp.Failed++
		}
		resp.Results = append(resp.Results, result)
	}

	return c.JSON(http.StatusOK, resp)
}

func (h *Handler) convertFile(file File, opts convert.Options) ConversionResult {
	result := ConversionResult{Name: file.Name}

	data, err := base64.StdEncoding.DecodeString(file.Data)
	if err != nil {
		result.Message = fmt.Sprintf("invalid base64: %v", err)
		return result
	}

	opts.Name = elementName(file.Name)
	res, err := convert.ConvertReader(bytes.NewReader(data), opts)
	if err != nil {
		result.Message = err.Error()
		return result
	}

	stats := res.Stats
	result.Success = true
	result.Message = fmt.Sprintf("%d primitives", len(res.Definition.Primitives))
	result.Stats = &stats
	result.XMLContent = res.Definition.String()
	for _, w := range res.Warnings {
		result.Warnings = append(result.Warnings, w.Error())
	}
	return result
}

// HandleConvertRaw 请求体为 DXF 文本，直接返回 .elmt
func (h *Handler) HandleConvertRaw(c echo.Context) error {
	opts := h.opts
	opts.Name = elementName(c.QueryParam("name"))

	res, err := convert.ConvertReader(c.Request().Body, opts)
	switch {
	case errors.Is(err, echo.ErrStatusRequestEntityTooLarge):
		return echo.ErrStatusRequestEntityTooLarge
	case errors.Is(err, convert.ErrInvalidConfiguration):
		return NewValidationError("options", err)
	case err != nil:
		return NewUnprocessableError("conversion failed", err)
	}

	c.Response().Header().Set("X-Primitives", fmt.Sprint(len(res.Definition.Primitives)))
	return c.Blob(http.StatusOK, "application/xml; charset=utf-8", []byte(res.Definition.String()))
}

// elementName 去掉目录与扩展名
func elementName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.TrimSuffix(name, filepath.Ext(name))
	if name == "." || name == "/" {
		return ""
	}
	return name
}
