package server

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zooyer/dxf2elmt/convert"
)

const lineDXF = "0\nSECTION\n2\nENTITIES\n0\nLINE\n10\n0\n20\n0\n11\n10\n21\n0\n0\nENDSEC\n0\nEOF\n"

func encode(s string) string {
	return base64.StdEncoding.EncodeToString([]byte(s))
}

func newServer() *echo.Echo {
	return New(NewHandler(convert.DefaultOptions(), 2), false)
}

func post(t *testing.T, e *echo.Echo, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestHandleHealth(t *testing.T) {
	rec := httptest.NewRecorder()
	newServer().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestHandleConvert(t *testing.T) {
	rec := post(t, newServer(), "/api/convert", ConvertRequest{Files: []File{
		{Name: `C:\drawings\relay.dxf`, Data: encode(lineDXF)},
		{Name: "broken.dxf", Data: "not-valid-base64!!!"},
	}})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ConvertResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Succeeded)
	assert.Equal(t, 1, resp.Failed)
	require.Len(t, resp.Results, 2)

	ok := resp.Results[0]
	assert.True(t, ok.Success)
	require.NotNil(t, ok.Stats)
	assert.Equal(t, 1, ok.Stats.Entities["LINE"])
	assert.Contains(t, ok.XMLContent, `<name lang="en">relay</name>`)
	assert.Contains(t, ok.XMLContent, `<line `)

	failed := resp.Results[1]
	assert.False(t, failed.Success)
	assert.Contains(t, failed.Message, "base64")
	assert.Empty(t, failed.XMLContent)
}

func TestHandleConvert_EmptyDrawingReported(t *testing.T) {
	rec := post(t, newServer(), "/api/convert", ConvertRequest{Files: []File{
		{Name: "empty.dxf", Data: encode("0\nEOF\n")},
	}})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ConvertResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Failed)
	assert.Contains(t, resp.Results[0].Message, convert.ErrEmptyDrawing.Error())
}

func TestHandleConvert_Validation(t *testing.T) {
	zero, tooFine := 0, convert.MaxSplineStep+1
	tests := []struct {
		name string
		body ConvertRequest
		code string
	}{
		{name: "no files", body: ConvertRequest{}, code: "VALIDATION_ERROR"},
		{name: "too many files", body: ConvertRequest{Files: make([]File, 3)}, code: "VALIDATION_ERROR"},
		{name: "bad spline step", body: ConvertRequest{
			Files:      []File{{Name: "a.dxf", Data: encode(lineDXF)}},
			SplineStep: &zero,
		}, code: "VALIDATION_ERROR"},
		{name: "spline step above limit", body: ConvertRequest{
			Files:      []File{{Name: "a.dxf", Data: encode(lineDXF)}},
			SplineStep: &tooFine,
		}, code: "VALIDATION_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(t, newServer(), "/api/convert", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)

			var apiErr APIError
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &apiErr))
			assert.Equal(t, tt.code, apiErr.Code)
		})
	}
}

func TestHandleConvert_BadJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/convert", strings.NewReader("{"))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	newServer().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleConvertRaw(t *testing.T) {
	e := newServer()

	req := httptest.NewRequest(http.MethodPost, "/api/convert/raw?name=relay.dxf", strings.NewReader(lineDXF))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get(echo.HeaderContentType), "application/xml")
	assert.Equal(t, "1", rec.Header().Get("X-Primitives"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), `<?xml version="1.0" encoding="UTF-8"?>`))

	req = httptest.NewRequest(http.MethodPost, "/api/convert/raw", strings.NewReader("0\nEOF\n"))
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

// twoLines 两条直线，中间用注释组码填充到超过 size 字节
func twoLines(size int) string {
	first := "0\nSECTION\n2\nENTITIES\n0\nLINE\n10\n0\n20\n0\n11\n10\n21\n0\n"
	second := "0\nLINE\n10\n0\n20\n5\n11\n10\n21\n5\n0\nENDSEC\n0\nEOF\n"
	var padding strings.Builder
	for padding.Len() <= size {
		padding.WriteString("999\npadding\n")
	}
	return first + padding.String() + second
}

func TestBodyLimit(t *testing.T) {
	h := NewHandler(convert.DefaultOptions(), 2)
	h.rawLimit, h.batchLimit = "1K", "1K"
	e := New(h, false)
	body := twoLines(1024)

	t.Run("raw with content length", func(t *testing.T) {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/convert/raw", strings.NewReader(body)))
		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
		assert.Empty(t, rec.Header().Get("X-Primitives"))
	})

	t.Run("raw chunked", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/convert/raw", strings.NewReader(body))
		req.ContentLength = -1
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	})

	t.Run("batch", func(t *testing.T) {
		rec := post(t, e, "/api/convert", ConvertRequest{Files: []File{{Name: "a.dxf", Data: encode(body)}}})
		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	})

	t.Run("under the limit", func(t *testing.T) {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/convert/raw", strings.NewReader(twoLines(0))))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "2", rec.Header().Get("X-Primitives"))
	})
}

func TestElementName(t *testing.T) {
	assert.Equal(t, "relay", elementName("relay.dxf"))
	assert.Equal(t, "relay", elementName(`C:\a\relay.DXF`))
	assert.Equal(t, "", elementName(""))
}
