// Package ocr recognises text inside overlay regions, used to suggest
// overlay labels.
package ocr

import (
	"errors"
	"fmt"
	"image"
	"strings"

	"github.com/otiai10/gosseract/v2"
	"gocv.io/x/gocv"

	"overlay-annotator/pkg/geometry"
)

// ErrEmptyRegion is returned when a region covers no pixels of the image.
var ErrEmptyRegion = errors.New("ocr: region does not cover the image")

// minTextHeight is the smallest region side passed to Tesseract; smaller
// regions are upscaled first.
const minTextHeight = 150

// Engine provides OCR functionality using Tesseract.
type Engine struct {
	client    *gosseract.Client
	whitelist string
	binarize  bool
}

// NewEngine creates an OCR engine for the given Tesseract language
// ("eng", "deu+eng", ...).
func NewEngine(language string) (*Engine, error) {
	client := gosseract.NewClient()

	if err := client.SetLanguage(strings.Split(language, "+")...); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to set OCR language: %w", err)
	}

	// Labels are often codes rather than dictionary words.
	_ = client.SetVariable("load_system_dawg", "false")
	_ = client.SetVariable("load_freq_dawg", "false")

	return &Engine{
		client:   client,
		binarize: true,
	}, nil
}

// Close releases OCR resources.
func (e *Engine) Close() error {
	if e.client != nil {
		return e.client.Close()
	}
	return nil
}

// SetWhitelist restricts recognition to the given characters. An empty
// string allows everything.
func (e *Engine) SetWhitelist(chars string) {
	e.whitelist = chars
}

// SetBinarize enables/disables contrast enhancement and thresholding before
// recognition.
func (e *Engine) SetBinarize(enabled bool) {
	e.binarize = enabled
}

// RecognizeRegion performs OCR on the part of img under r. r is in image
// coordinates, relative to the image's Min corner.
func (e *Engine) RecognizeRegion(img image.Image, r geometry.Rect) (string, error) {
	area, err := regionBounds(r, img.Bounds())
	if err != nil {
		return "", err
	}

	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return "", fmt.Errorf("failed to convert image: %w", err)
	}
	defer mat.Close()

	region := mat.Region(area.Sub(img.Bounds().Min))
	defer region.Close()

	processed := preprocessForOCR(region, e.binarize)
	defer processed.Close()

	buf, err := gocv.IMEncode(gocv.PNGFileExt, processed)
	if err != nil {
		return "", fmt.Errorf("failed to encode image: %w", err)
	}
	defer buf.Close()

	// PSM 6 = Assume a single uniform block of text
	if err := e.client.SetPageSegMode(gosseract.PSM_SINGLE_BLOCK); err != nil {
		return "", fmt.Errorf("failed to set PSM: %w", err)
	}
	// Some Tesseract versions reject an empty whitelist; that just means
	// no restriction.
	_ = e.client.SetWhitelist(e.whitelist)

	if err := e.client.SetImageFromBytes(buf.GetBytes()); err != nil {
		return "", fmt.Errorf("failed to set image: %w", err)
	}

	text, err := e.client.Text()
	if err != nil {
		return "", fmt.Errorf("OCR failed: %w", err)
	}
	return cleanText(text), nil
}

// RecognizeRegions runs RecognizeRegion for each rectangle. Regions outside
// the image yield an empty string; other failures abort.
func (e *Engine) RecognizeRegions(img image.Image, rects []geometry.Rect) ([]string, error) {
	texts := make([]string, len(rects))
	for i, r := range rects {
		text, err := e.RecognizeRegion(img, r)
		if errors.Is(err, ErrEmptyRegion) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("region %v: %w", r, err)
		}
		texts[i] = text
	}
	return texts, nil
}

// regionBounds converts r to pixel bounds clipped to the image.
func regionBounds(r geometry.Rect, bounds image.Rectangle) (image.Rectangle, error) {
	if r.IsNaN() {
		return image.Rectangle{}, ErrEmptyRegion
	}
	area := r.Bounds().Add(bounds.Min).Intersect(bounds)
	if area.Empty() {
		return image.Rectangle{}, ErrEmptyRegion
	}
	return area, nil
}

// upscaleFactor returns the resize factor that brings the shorter side of a
// w×h region up to minTextHeight, or 1 when it is already large enough.
func upscaleFactor(w, h int) float64 {
	minDim := min(w, h)
	if minDim <= 0 || minDim >= minTextHeight {
		return 1
	}
	return float64(minTextHeight) / float64(minDim)
}

// cleanText collapses whitespace in Tesseract output.
func cleanText(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// preprocessForOCR prepares an image region for OCR.
func preprocessForOCR(region gocv.Mat, binarize bool) gocv.Mat {
	var scaled gocv.Mat
	if f := upscaleFactor(region.Cols(), region.Rows()); f > 1 {
		scaled = gocv.NewMat()
		gocv.Resize(region, &scaled, image.Point{}, f, f, gocv.InterpolationCubic)
	} else {
		scaled = region.Clone()
	}

	if !binarize {
		result := gocv.NewMat()
		gocv.CvtColor(scaled, &result, gocv.ColorBGRToRGB)
		scaled.Close()
		return result
	}

	gray := gocv.NewMat()
	gocv.CvtColor(scaled, &gray, gocv.ColorBGRToGray)
	scaled.Close()

	clahe := gocv.NewCLAHEWithParams(2.0, image.Point{8, 8})
	defer clahe.Close()

	enhanced := gocv.NewMat()
	clahe.Apply(gray, &enhanced)
	gray.Close()

	binary := gocv.NewMat()
	gocv.Threshold(enhanced, &binary, 0, 255, gocv.ThresholdBinary|gocv.ThresholdOtsu)
	enhanced.Close()

	// Tesseract expects dark text on a light background.
	whiteRatio := float64(gocv.CountNonZero(binary)) / float64(binary.Rows()*binary.Cols())
	if whiteRatio < 0.5 {
		gocv.BitwiseNot(binary, &binary)
	}

	result := gocv.NewMat()
	gocv.CvtColor(binary, &result, gocv.ColorGrayToBGR)
	binary.Close()

	return result
}
