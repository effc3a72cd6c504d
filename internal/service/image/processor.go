package image

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"
)

const (
	defaultMaxWidth     = 1280
	defaultMaxSizeBytes = 4 * 1024 * 1024
)

// ProcessedImage картинка, подготовленная к отправке в модель: PNG-байты и метаданные.
type ProcessedImage struct {
	Data      []byte
	Width     int
	Height    int
	SizeBytes int
	MimeType  string
}

// Processor валидирует загруженную картинку и перекодирует её в PNG
// с ограничением по ширине и размеру.
type Processor struct {
	maxWidth    int
	maxSizeByte int
}

func NewProcessor() *Processor {
	return &Processor{
		maxWidth:    defaultMaxWidth,
		maxSizeByte: defaultMaxSizeBytes,
	}
}

// Process декодирует данные загрузки (png/jpeg/gif) и возвращает PNG для экстрактора.
// Слишком большие картинки последовательно уменьшаются; совсем не-картинки — ошибка.
func (p *Processor) Process(data []byte) (ProcessedImage, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return ProcessedImage{}, fmt.Errorf("decode uploaded image: %w", err)
	}

	origBounds := img.Bounds()
	origWidth := origBounds.Dx()
	origHeight := origBounds.Dy()
	if origWidth == 0 || origHeight == 0 {
		return ProcessedImage{}, fmt.Errorf("invalid image size: %dx%d (%s)", origWidth, origHeight, format)
	}

	resizedWidth := min(origWidth, p.maxWidth)
	resizedHeight := origHeight * resizedWidth / origWidth

	var encoded []byte
	for {
		resized := img
		if resizedWidth != origWidth {
			resized = resizeNearest(img, resizedWidth, resizedHeight)
		}
		encoded, err = encodePNG(resized)
		if err != nil {
			return ProcessedImage{}, err
		}

		if len(encoded) <= p.maxSizeByte {
			break
		}

		if resizedWidth <= 320 {
			return ProcessedImage{}, fmt.Errorf("image exceeds max size %d bytes even after downscale", p.maxSizeByte)
		}

		resizedWidth = max(1, int(float64(resizedWidth)*0.9))
		resizedHeight = max(1, origHeight*resizedWidth/origWidth)
	}

	return ProcessedImage{
		Data:      encoded,
		Width:     resizedWidth,
		Height:    resizedHeight,
		SizeBytes: len(encoded),
		MimeType:  "image/png",
	}, nil
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func resizeNearest(src image.Image, width int, height int) *image.RGBA {
	if width <= 0 || height <= 0 {
		return image.NewRGBA(image.Rect(0, 0, 1, 1))
	}

	srcBounds := src.Bounds()
	srcWidth := srcBounds.Dx()
	srcHeight := srcBounds.Dy()
	if srcWidth == 0 || srcHeight == 0 {
		return image.NewRGBA(image.Rect(0, 0, width, height))
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := range height {
		srcY := srcBounds.Min.Y + y*srcHeight/height
		for x := range width {
			srcX := srcBounds.Min.X + x*srcWidth/width
			dst.Set(x, y, src.At(srcX, srcY))
		}
	}

	return dst
}

var _ = jpeg.Decode
