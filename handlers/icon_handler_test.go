package handlers

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"hash/crc32"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ico-convert/config"
	"ico-convert/ico"
	"ico-convert/models"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	return newTestRouterWith(t, config.Default())
}

func newTestRouterWith(t *testing.T, cfg config.Config) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	h, err := NewIconHandler(cfg)
	require.NoError(t, err)
	return NewRouter(h, []string{"http://localhost:3000"})
}

func pngBytes(t *testing.T, size int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x), G: 64, B: uint8(y), A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func multipartRequest(t *testing.T, path, field string, file []byte, fields map[string]string) *http.Request {
	t.Helper()
	body := new(bytes.Buffer)
	w := multipart.NewWriter(body)
	if file != nil {
		part, err := w.CreateFormFile(field, "upload.png")
		require.NoError(t, err)
		_, err = part.Write(file)
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func serve(router *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHealthAndSizes(t *testing.T) {
	router := newTestRouter(t)

	rec := serve(router, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")

	rec = serve(router, httptest.NewRequest(http.MethodGet, "/api/v1/sizes", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var sizes models.SizesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sizes))
	assert.Equal(t, []int{16, 32, 48}, sizes.Default)
	assert.Equal(t, ico.AllSizes, sizes.Available)
	assert.Contains(t, sizes.Filters, "box")
}

func TestConvertICO(t *testing.T) {
	router := newTestRouter(t)
	req := multipartRequest(t, "/api/v1/ico", "image", pngBytes(t, 64), map[string]string{
		"sizes":  "256,16,32",
		"filter": "catmullrom",
	})
	rec := serve(router, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "image/x-icon", rec.Header().Get("Content-Type"))
	assert.Equal(t, "attachment; filename=favicon.ico", rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "3", rec.Header().Get("X-Ico-Frames"))
	assert.Equal(t, "16,32,256", rec.Header().Get("X-Ico-Sizes"))

	d, err := ico.ParseDirectory(rec.Body.Bytes())
	require.NoError(t, err)
	require.Len(t, d.Entries, 3)
	assert.Equal(t, 16, d.Entries[0].Size())
	assert.Equal(t, uint8(0), d.Entries[2].Width)
}

func TestConvertICODefaultSizes(t *testing.T) {
	router := newTestRouter(t)
	rec := serve(router, multipartRequest(t, "/api/v1/ico", "image", pngBytes(t, 32), nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "16,32,48", rec.Header().Get("X-Ico-Sizes"))
}

func TestConvertICOErrors(t *testing.T) {
	router := newTestRouter(t)
	cases := []struct {
		name   string
		file   []byte
		fields map[string]string
		size   int
	}{
		{name: "missing file"},
		{name: "out of range", file: pngBytes(t, 8), fields: map[string]string{"sizes": "16,300"}, size: 300},
		{name: "not a number", file: pngBytes(t, 8), fields: map[string]string{"sizes": "16,x"}},
		{name: "bad filter", file: pngBytes(t, 8), fields: map[string]string{"filter": "bicubic"}},
		{name: "not an image", file: []byte("hello world")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := serve(router, multipartRequest(t, "/api/v1/ico", "image", tc.file, tc.fields))
			assert.Equal(t, http.StatusBadRequest, rec.Code)

			var resp models.IconResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.False(t, resp.Success)
			assert.NotEmpty(t, resp.Message)
			assert.Equal(t, tc.size, resp.Size)
		})
	}
}

func TestConvertICORejectsOversizedBody(t *testing.T) {
	cfg := config.Default()
	cfg.Server.MaxUploadMB = 1
	router := newTestRouterWith(t, cfg)

	upload := append(pngBytes(t, 8), bytes.Repeat([]byte{0}, 2<<20)...)
	rec := serve(router, multipartRequest(t, "/api/v1/ico", "image", upload, nil))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)

	var resp models.IconResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
}

func TestConvertICORejectsHugeDeclaredImage(t *testing.T) {
	data := pngBytes(t, 4)
	binary.BigEndian.PutUint32(data[16:], 50000)
	binary.BigEndian.PutUint32(data[20:], 50000)
	binary.BigEndian.PutUint32(data[29:], crc32.ChecksumIEEE(data[12:29]))

	router := newTestRouter(t)
	rec := serve(router, multipartRequest(t, "/api/v1/ico", "image", data, nil))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)

	var resp models.IconResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Message, "too large")
}

func TestNewIconHandlerRejectsInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Icon.Sizes = []int{16, 1000}
	_, err := NewIconHandler(cfg)
	assert.ErrorIs(t, err, ico.ErrSizeOutOfRange)
}

func TestConvertICNS(t *testing.T) {
	router := newTestRouter(t)
	rec := serve(router, multipartRequest(t, "/api/v1/icns", "image", pngBytes(t, 256), nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "image/icns", rec.Header().Get("Content-Type"))
	assert.Equal(t, "icns", rec.Body.String()[:4])
}

func TestInspect(t *testing.T) {
	icon, err := ico.Assemble([]ico.Frame{
		{Size: 16, Data: pngBytes(t, 16)},
		{Size: 256, Data: []byte("BM not really")},
	})
	require.NoError(t, err)

	router := newTestRouter(t)
	rec := serve(router, multipartRequest(t, "/api/v1/inspect", "icon", icon, nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp models.InspectResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, 2, resp.Count)
	assert.Equal(t, len(icon), resp.Bytes)
	require.Len(t, resp.Frames, 2)
	assert.Equal(t, "png", resp.Frames[0].Format)
	assert.Equal(t, 256, resp.Frames[1].Width)
	assert.Equal(t, 256, resp.Frames[1].Height)
	assert.Equal(t, "bmp", resp.Frames[1].Format)

	rec = serve(router, multipartRequest(t, "/api/v1/inspect", "icon", []byte("nope"), nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
