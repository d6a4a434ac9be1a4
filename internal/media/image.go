package media

import (
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"math"
	"net/http"
	"os"

	_ "image/gif"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"go-media-backend/internal/model"
	"go-media-backend/pkg/apierror"
)

const jpegQuality = 90

// ImageNormalizer re-encodes uploaded images as JPEG no larger than
// MaxDimension on either side. Avatars, covers and thumbnails all pass
// through it so the object store only ever holds one image format.
type ImageNormalizer struct {
	maxDimension int
	tempDir      string
}

func NewImageNormalizer(maxDimension int, tempDir string) *ImageNormalizer {
	if maxDimension <= 0 {
		maxDimension = 1920
	}
	return &ImageNormalizer{maxDimension: maxDimension, tempDir: tempDir}
}

// Normalize decodes file and writes the scaled JPEG to a new temporary file.
// The caller removes the returned file.
func (n *ImageNormalizer) Normalize(ctx context.Context, file model.LocalFile) (model.LocalFile, error) {
	if err := ctx.Err(); err != nil {
		return model.LocalFile{}, err
	}

	in, err := os.Open(file.Path)
	if err != nil {
		return model.LocalFile{}, fmt.Errorf("open image: %w", err)
	}
	defer in.Close()

	src, _, err := image.Decode(in)
	if err != nil {
		return model.LocalFile{}, apierror.New(apierror.CodeBadRequest, "cannot decode image", err.Error(), http.StatusBadRequest)
	}

	bounds := src.Bounds()
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return model.LocalFile{}, apierror.InvalidArgument("invalid image dimensions", "image")
	}

	width, height := fitWithin(bounds.Dx(), bounds.Dy(), n.maxDimension)

	// JPEG has no alpha; flatten onto white instead of the zero value black.
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(dst, dst.Bounds(), image.White, image.Point{}, draw.Src)
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)

	out, err := os.CreateTemp(n.tempDir, "image-*.jpg")
	if err != nil {
		return model.LocalFile{}, fmt.Errorf("create normalized image: %w", err)
	}

	encodeErr := jpeg.Encode(out, dst, &jpeg.Options{Quality: jpegQuality})
	closeErr := out.Close()
	if encodeErr != nil || closeErr != nil {
		_ = os.Remove(out.Name())
		if encodeErr != nil {
			return model.LocalFile{}, fmt.Errorf("encode normalized image: %w", encodeErr)
		}
		return model.LocalFile{}, fmt.Errorf("close normalized image: %w", closeErr)
	}

	info, err := os.Stat(out.Name())
	if err != nil {
		_ = os.Remove(out.Name())
		return model.LocalFile{}, fmt.Errorf("stat normalized image: %w", err)
	}

	return model.LocalFile{
		Path:        out.Name(),
		Name:        file.Name,
		ContentType: "image/jpeg",
		Size:        info.Size(),
	}, nil
}

// fitWithin scales width and height down, never up, so neither exceeds limit.
func fitWithin(width int, height int, limit int) (int, int) {
	longest := max(width, height)

	scale := float64(limit) / float64(longest)
	if scale > 1 {
		scale = 1
	}

	targetWidth := max(int(math.Round(float64(width)*scale)), 1)
	targetHeight := max(int(math.Round(float64(height)*scale)), 1)
	return targetWidth, targetHeight
}
