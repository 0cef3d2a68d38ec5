// Package handlers serves the icon conversion API
package handlers

import (
	"errors"
	"fmt"
	"image"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"ico-convert/config"
	"ico-convert/export"
	"ico-convert/ico"
	"ico-convert/models"
	"ico-convert/raster"
	"ico-convert/source"
)

type IconHandler struct {
	sizes     ico.SizeSet
	filter    raster.Filter
	svgSize   int
	maxPixels int
	maxUpload int64
}

func NewIconHandler(cfg config.Config) (*IconHandler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	filter, err := raster.ParseFilter(cfg.Icon.Filter)
	if err != nil {
		return nil, err
	}
	sizes, err := cfg.SizeSet()
	if err != nil {
		return nil, err
	}
	return &IconHandler{
		sizes:     sizes,
		filter:    filter,
		svgSize:   cfg.Icon.SVGSize,
		maxPixels: cfg.Icon.MaxPixels,
		maxUpload: cfg.Server.MaxUploadMB << 20,
	}, nil
}

func (h *IconHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"message": "Icon API is running",
		"version": "1.0.0",
	})
}

func (h *IconHandler) Sizes(c *gin.Context) {
	c.JSON(http.StatusOK, models.SizesResponse{
		Default:   h.sizes,
		Available: ico.AllSizes,
		Filters:   raster.FilterNames(),
	})
}

func (h *IconHandler) ConvertICO(c *gin.Context) {
	if !h.parseForm(c) {
		return
	}

	sizes := h.sizes
	if raw := c.PostForm("sizes"); raw != "" {
		var err error
		if sizes, err = ico.ParseSizes(raw); err != nil {
			fail(c, http.StatusBadRequest, err)
			return
		}
	}
	filter := h.filter
	if name := c.PostForm("filter"); name != "" {
		var err error
		if filter, err = raster.ParseFilter(name); err != nil {
			fail(c, http.StatusBadRequest, err)
			return
		}
	}

	img, ok := h.readImage(c)
	if !ok {
		return
	}

	data, err := ico.NewEncoder(raster.New(filter)).Encode(c.Request.Context(), img, sizes)
	if err != nil {
		fail(c, statusFor(err), err)
		return
	}

	c.Header("X-Ico-Frames", fmt.Sprintf("%d", len(sizes)))
	c.Header("X-Ico-Sizes", sizes.String())
	download(c, "favicon.ico", "image/x-icon", data)
}

func (h *IconHandler) ConvertICNS(c *gin.Context) {
	if !h.parseForm(c) {
		return
	}
	img, ok := h.readImage(c)
	if !ok {
		return
	}

	data, err := export.ICNS(img)
	if err != nil {
		fail(c, http.StatusInternalServerError, err)
		return
	}
	download(c, "AppIcon.icns", "image/icns", data)
}

func (h *IconHandler) Inspect(c *gin.Context) {
	if !h.parseForm(c) {
		return
	}
	file, _, err := c.Request.FormFile("icon")
	if err != nil {
		fail(c, http.StatusBadRequest, errors.New("icon file is required"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		fail(c, http.StatusInternalServerError, fmt.Errorf("failed to read icon file: %w", err))
		return
	}
	dir, err := ico.ParseDirectory(data)
	if err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}

	resp := models.InspectResponse{Success: true, Count: len(dir.Entries), Bytes: len(data)}
	for i, e := range dir.Entries {
		format := "bmp"
		if ico.IsPNG(dir.Frame(data, i)) {
			format = "png"
		}
		width, height := e.Dims()
		resp.Frames = append(resp.Frames, models.FrameInfo{
			Width:        width,
			Height:       height,
			BitsPerPixel: int(e.BitsPerPixel),
			Length:       e.Length,
			Offset:       e.Offset,
			Format:       format,
		})
	}
	c.JSON(http.StatusOK, resp)
}

// parseForm caps the request body at maxUpload bytes before parsing the
// multipart form, writing the error response itself when it returns false.
func (h *IconHandler) parseForm(c *gin.Context) bool {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload)
	if err := c.Request.ParseMultipartForm(h.maxUpload); err != nil {
		status := http.StatusBadRequest
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		fail(c, status, fmt.Errorf("failed to parse form: %w", err))
		return false
	}
	return true
}

// readImage loads the "image" form file, writing the error response
// itself when it returns false.
func (h *IconHandler) readImage(c *gin.Context) (image.Image, bool) {
	file, _, err := c.Request.FormFile("image")
	if err != nil {
		fail(c, http.StatusBadRequest, errors.New("image file is required"))
		return nil, false
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		fail(c, http.StatusInternalServerError, fmt.Errorf("failed to read image file: %w", err))
		return nil, false
	}
	img, _, err := source.Load(data, source.Options{SVGSize: h.svgSize, MaxPixels: h.maxPixels})
	if err != nil {
		fail(c, statusFor(err), err)
		return nil, false
	}
	return img, true
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, source.ErrImageTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, ico.ErrInvalidSizeSet),
		errors.Is(err, ico.ErrSizeOutOfRange),
		errors.Is(err, source.ErrUnsupportedFormat),
		errors.Is(err, source.ErrEmptyImage),
		errors.Is(err, source.ErrDecode):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func fail(c *gin.Context, status int, err error) {
	resp := models.IconResponse{Success: false, Message: err.Error()}
	var se *ico.SizeError
	var ee *ico.EncodingError
	switch {
	case errors.As(err, &se):
		resp.Size = se.Size
	case errors.As(err, &ee):
		resp.Size = ee.Size
	}
	c.JSON(status, resp)
}

func download(c *gin.Context, filename, contentType string, data []byte) {
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Transfer-Encoding", "binary")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Data(http.StatusOK, contentType, data)
}
