package service

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/png"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"

	"storefront/apperrors"
	"storefront/logging"
)

// Rendition sizes served for item images
const (
	SizeOriginal = "original"
	SizeThumb    = "thumb"
	SizeMedium   = "medium"
)

const (
	// Quality settings
	qualityOriginal = 90
	qualityThumb    = 60
	qualityMedium   = 75
	// Size settings (max dimension)
	maxSizeThumb  = 300
	maxSizeMedium = 800
	// maxUploadBytes bounds the accepted upload
	maxUploadBytes = 10 << 20
)

// ImageOptimizer stores uploaded item images as JPEG and produces resized
// renditions in a cache directory.
type ImageOptimizer struct {
	dir string
}

// NewImageOptimizer creates an optimizer rooted at dir
func NewImageOptimizer(dir string) *ImageOptimizer {
	return &ImageOptimizer{dir: dir}
}

// EnsureCacheDir ensures the cache directory exists, creates it if it doesn't
func (o *ImageOptimizer) EnsureCacheDir() error {
	if err := os.MkdirAll(o.dir, 0755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}
	return nil
}

// CachePath returns the file path for an item image at a size
func (o *ImageOptimizer) CachePath(itemID, size string) string {
	return filepath.Join(o.dir, fmt.Sprintf("item_%s_%s.jpg", itemID, size))
}

// Store validates and saves an uploaded image, then writes its renditions.
// It returns the path of the stored original.
func (o *ImageOptimizer) Store(itemID string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", apperrors.InvalidField("image", "image is empty")
	}
	if len(data) > maxUploadBytes {
		return "", apperrors.InvalidField("image", "image exceeds 10MB")
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return "", apperrors.InvalidField("image", "unsupported image format")
	}
	logging.Sugar.Infof("📸 Image decoded: item=%s, bounds=%v", itemID, img.Bounds())

	if err := o.EnsureCacheDir(); err != nil {
		return "", err
	}

	original := o.CachePath(itemID, SizeOriginal)
	if err := o.write(original, img, qualityOriginal); err != nil {
		return "", err
	}

	for _, size := range []string{SizeThumb, SizeMedium} {
		out, err := OptimizeImage(img, size)
		if err != nil {
			return "", err
		}
		if err := os.WriteFile(o.CachePath(itemID, size), out, 0644); err != nil {
			return "", fmt.Errorf("failed to write to cache: %w", err)
		}
	}

	logging.Sugar.Infof("✓ Image stored: %s", original)
	return original, nil
}

// Read returns the JPEG bytes of a rendition, regenerating it from the
// original when the cached file is missing.
func (o *ImageOptimizer) Read(itemID, size string) ([]byte, error) {
	switch size {
	case SizeOriginal, SizeThumb, SizeMedium:
	default:
		return nil, apperrors.InvalidField("size", "size must be original, thumb or medium")
	}

	path := o.CachePath(itemID, size)
	data, err := os.ReadFile(path)
	if err == nil {
		return data, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read from cache: %w", err)
	}
	if size == SizeOriginal {
		return nil, apperrors.NotFound("item image", itemID)
	}

	img, err := imaging.Open(o.CachePath(itemID, SizeOriginal))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperrors.NotFound("item image", itemID)
		}
		return nil, fmt.Errorf("failed to open original image: %w", err)
	}
	out, err := OptimizeImage(img, size)
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(path, out, 0644); err != nil {
		logging.Sugar.Warnf("⚠️  failed to cache rendition %s: %v", path, err)
	}
	return out, nil
}

// Remove deletes every stored file of an item
func (o *ImageOptimizer) Remove(itemID string) error {
	for _, size := range []string{SizeOriginal, SizeThumb, SizeMedium} {
		if err := os.Remove(o.CachePath(itemID, size)); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to remove image: %w", err)
		}
	}
	return nil
}

func (o *ImageOptimizer) write(path string, img image.Image, quality int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create image file: %w", err)
	}
	defer f.Close()
	if err := imaging.Encode(f, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return fmt.Errorf("failed to encode to JPEG: %w", err)
	}
	return nil
}

// OptimizeImage resizes img to fit the size's max dimension and encodes it
// as JPEG. size is "thumb" or "medium".
func OptimizeImage(img image.Image, size string) ([]byte, error) {
	var maxDim, quality int
	switch size {
	case SizeThumb:
		maxDim, quality = maxSizeThumb, qualityThumb
	case SizeMedium:
		maxDim, quality = maxSizeMedium, qualityMedium
	default:
		maxDim, quality = maxSizeMedium, qualityMedium
		logging.Sugar.Warnf("⚠️  Unknown size '%s', defaulting to medium", size)
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	resized := img
	if width > maxDim || height > maxDim {
		logging.Sugar.Debugf("🔄 Resizing image: %dx%d to fit %d", width, height, maxDim)
		resized = imaging.Fit(img, maxDim, maxDim, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return nil, fmt.Errorf("failed to encode to JPEG: %w", err)
	}
	logging.Sugar.Debugf("✓ Image optimized: size=%s, quality=%d, output_size=%d bytes", size, quality, buf.Len())
	return buf.Bytes(), nil
}
