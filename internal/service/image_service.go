package service

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"agora/internal/models"
	"agora/internal/observability"

	"github.com/chai2010/webp"
	"github.com/google/uuid"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // register WebP decoder
)

const (
	DefaultImageMaxUploadBytes = 10 << 20
	ImageMaxEdge               = 1080
	WebPQuality                = 75
	MediaURLPrefix             = "/media/"
)

// UploadImageInput is one uploaded file as received from the client.
type UploadImageInput struct {
	UserID      uint
	Filename    string
	ContentType string
	Content     []byte
}

// StoredImage describes a file written under the upload directory.
type StoredImage struct {
	Name   string `json:"name"`
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Bytes  int    `json:"bytes"`
}

// ImageService normalizes uploads to WebP and stores them on local disk.
type ImageService struct {
	uploadDir string
	maxBytes  int64
}

// NewImageService returns an ImageService writing to uploadDir. maxBytes
// <= 0 selects DefaultImageMaxUploadBytes.
func NewImageService(uploadDir string, maxBytes int64) *ImageService {
	if maxBytes <= 0 {
		maxBytes = DefaultImageMaxUploadBytes
	}
	return &ImageService{uploadDir: uploadDir, maxBytes: maxBytes}
}

// UploadDir is where images are written.
func (s *ImageService) UploadDir() string { return s.uploadDir }

// Upload validates and decodes the image, scales it so the longer edge is
// at most ImageMaxEdge, and writes it as <uuid>.webp.
func (s *ImageService) Upload(ctx context.Context, in UploadImageInput) (*StoredImage, error) {
	_, span := observability.StartSpan(ctx, "ImageService", "Upload")
	img, err := s.upload(in)
	observability.EndSpan(span, err)
	return img, err
}

func (s *ImageService) upload(in UploadImageInput) (*StoredImage, error) {
	if in.UserID == 0 {
		return nil, models.NewUnauthorizedError("Authorization required")
	}
	if len(in.Content) == 0 {
		return nil, models.NewValidationError("No file uploaded")
	}
	if int64(len(in.Content)) > s.maxBytes {
		return nil, models.NewValidationError(fmt.Sprintf("File too large (max %dMB)", s.maxBytes>>20))
	}

	detected := http.DetectContentType(in.Content)
	if !isAllowedImageMIME(detected) {
		return nil, models.NewValidationError("Invalid image type")
	}
	decoded, format, err := image.Decode(bytes.NewReader(in.Content))
	if err != nil {
		return nil, models.NewValidationError("Invalid image file")
	}
	if provided := normalizeContentType(in.ContentType); strings.HasPrefix(provided, "image/") &&
		!isMatchingContentType(provided, "image/"+format) {
		return nil, models.NewValidationError("Image content type mismatch")
	}

	scaled := resizeToFit(decoded, ImageMaxEdge)
	var buf bytes.Buffer
	if err := webp.Encode(&buf, scaled, &webp.Options{Quality: WebPQuality}); err != nil {
		return nil, models.NewInternalError(err)
	}

	name := uuid.NewString() + ".webp"
	if err := writeBytesToFile(filepath.Join(s.uploadDir, name), buf.Bytes()); err != nil {
		return nil, models.NewInternalError(err)
	}

	b := scaled.Bounds()
	return &StoredImage{
		Name:   name,
		URL:    MediaURLPrefix + name,
		Width:  b.Dx(),
		Height: b.Dy(),
		Bytes:  buf.Len(),
	}, nil
}

func resizeToFit(src image.Image, maxEdge int) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= maxEdge && h <= maxEdge {
		return src
	}
	var newW, newH int
	if w >= h {
		newW, newH = maxEdge, max(1, h*maxEdge/w)
	} else {
		newW, newH = max(1, w*maxEdge/h), maxEdge
	}
	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, b, xdraw.Over, nil)
	return dst
}

func isAllowedImageMIME(contentType string) bool {
	switch normalizeContentType(contentType) {
	case "image/jpeg", "image/png", "image/gif", "image/webp":
		return true
	default:
		return false
	}
}

func normalizeContentType(contentType string) string {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType))
	}
	return strings.ToLower(mediaType)
}

func isMatchingContentType(provided, detected string) bool {
	if provided == "image/jpg" {
		provided = "image/jpeg"
	}
	return provided == detected
}

func writeBytesToFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
