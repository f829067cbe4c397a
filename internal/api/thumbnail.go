package api

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/nfnt/resize"
	"go.uber.org/zap"
)

// ThumbnailWidth is the display width of result images.
const ThumbnailWidth = 240

// Thumbnail serves a resized copy of a recipe image, caching it on disk.
func (h *Handler) Thumbnail(c *gin.Context) {
	src := c.Query("src")
	if !h.allowedImageURL(src) {
		c.String(http.StatusBadRequest, "Invalid image source.")
		return
	}

	hash := GenerateURLHash(src)
	for _, ext := range []string{".jpg", ".png"} {
		path := filepath.Join(h.ImageDir, hash+ext)
		if _, err := os.Stat(path); err == nil {
			c.File(path)
			return
		}
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), thumbnailTimeout)
	defer cancel()

	imageData, err := h.Searcher.FetchImage(ctx, src)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			c.String(http.StatusRequestTimeout, "Image download timed out after 20 seconds")
			return
		}
		h.Log.Warn("failed to fetch image", zap.String("src", src), zap.Error(err))
		c.String(http.StatusBadGateway, "Image unavailable.")
		return
	}

	path, err := saveThumbnail(h.ImageDir, imageData, hash)
	if err != nil {
		h.Log.Warn("failed to save thumbnail", zap.String("src", src), zap.Error(err))
		c.String(http.StatusBadGateway, "Image unavailable.")
		return
	}

	c.File(path)
}

// GenerateURLHash calculates the SHA256 hash of an image URL.
func GenerateURLHash(u string) string {
	hash := sha256.Sum256([]byte(u))
	return hex.EncodeToString(hash[:])
}

func (h *Handler) allowedImageURL(src string) bool {
	if src == "" {
		return false
	}
	u, err := url.Parse(src)
	if err != nil || (u.Scheme != "https" && u.Scheme != "http") {
		return false
	}
	host := strings.ToLower(u.Hostname())
	for _, allowed := range h.ImageHosts {
		allowed = strings.ToLower(allowed)
		if host == allowed || strings.HasSuffix(host, "."+allowed) {
			return true
		}
	}
	return false
}

func saveThumbnail(dir string, imageData []byte, hash string) (string, error) {
	img, format, err := image.Decode(bytes.NewReader(imageData))
	if err != nil {
		return "", fmt.Errorf("failed to decode image: %w", err)
	}

	img = resize.Resize(ThumbnailWidth, 0, img, resize.Lanczos3)

	// Create the images directory if it doesn't exist
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create images directory: %w", err)
	}

	ext := ".jpg"
	if format == "png" {
		ext = ".png"
	}

	// imagePath only ever holds a complete image.
	tmp, err := os.CreateTemp(dir, hash+"-*"+ext+".tmp")
	if err != nil {
		return "", fmt.Errorf("failed to create image file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if ext == ".png" {
		err = png.Encode(tmp, img)
	} else {
		err = jpeg.Encode(tmp, img, &jpeg.Options{Quality: 85})
	}
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return "", fmt.Errorf("failed to encode image: %w", err)
	}

	imagePath := filepath.Join(dir, hash+ext)
	if err := os.Rename(tmp.Name(), imagePath); err != nil {
		return "", fmt.Errorf("failed to store image: %w", err)
	}
	return imagePath, nil
}
