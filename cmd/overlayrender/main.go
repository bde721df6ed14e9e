// Command overlayrender draws an annotation file's overlays on top of its
// image and writes the result, optionally recognising missing labels first.
//
// Usage: overlayrender -annotations <file.annotations.json> -out <out.png> [options]
package main

import (
	"flag"
	"fmt"
	"image"
	"image/color"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"

	"overlay-annotator/internal/annotation"
	annimage "overlay-annotator/internal/image"
	"overlay-annotator/internal/ocr"
	"overlay-annotator/internal/overlay"
	"overlay-annotator/pkg/geometry"
)

var (
	flagImage       = flag.String("image", "", "Image to draw on (default: the one named in the annotation file)")
	flagAnnotations = flag.String("annotations", "", "Annotation file")
	flagOut         = flag.String("out", "", "Output image; the format follows the extension")
	flagScale       = flag.Float64("scale", 1, "Output scale")
	flagSelect      = flag.String("select", "", "Comma separated overlay IDs drawn as selected")
	flagLabels      = flag.Bool("labels", true, "Draw overlay labels")
	flagOCR         = flag.Bool("ocr", false, "Recognise labels of unlabelled overlays")
	flagOCRLang     = flag.String("lang", "eng", "OCR language")
	flagSave        = flag.Bool("save", false, "Write recognised labels back to the annotation file")
	flagVerbose     = flag.Bool("v", false, "Verbose output")
)

func main() {
	flag.Parse()
	if *flagAnnotations == "" && *flagImage == "" {
		fmt.Fprintln(os.Stderr, "usage: overlayrender -annotations <file> -out <image> [options]")
		flag.PrintDefaults()
		os.Exit(2)
	}
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	annotationsPath := *flagAnnotations
	if annotationsPath == "" {
		annotationsPath = annotation.DefaultPath(*flagImage)
	}
	doc, err := annotation.LoadOrNew(annotationsPath)
	if err != nil {
		return err
	}

	imgPath := *flagImage
	if imgPath == "" {
		imgPath = doc.ImagePath()
	}
	if imgPath == "" {
		return fmt.Errorf("no image given and %s names none", *flagAnnotations)
	}
	layer, err := annimage.Load(imgPath)
	if err != nil {
		return err
	}
	if *flagVerbose {
		log.Printf("image %s: %dx%d, %d overlays", imgPath, layer.Width(), layer.Height(), doc.Len())
	}

	if *flagOCR {
		if err := recognize(doc, layer); err != nil {
			return err
		}
		if *flagSave {
			if err := doc.Save(); err != nil {
				return err
			}
		}
	}

	if *flagOut == "" {
		if !*flagOCR {
			return fmt.Errorf("-out is required")
		}
		return nil
	}

	view := overlay.NewView()
	view.SetDataSource(doc)
	view.SetDelegate(doc)
	if ids, err := parseIDs(*flagSelect); err != nil {
		return err
	} else if len(ids) > 0 {
		view.SetPermission(overlay.AllowsMultipleSelection, true)
		view.SelectIndexes(indexesOf(doc, ids), false)
	}

	out := render(layer, view, doc, *flagScale, *flagLabels)
	if err := imaging.Save(out, *flagOut); err != nil {
		return fmt.Errorf("writing %s: %w", *flagOut, err)
	}
	log.Printf("wrote %s (%dx%d)", *flagOut, out.Bounds().Dx(), out.Bounds().Dy())
	return nil
}

func recognize(doc *annotation.Document, layer *annimage.Layer) error {
	engine, err := ocr.NewEngine(*flagOCRLang)
	if err != nil {
		return err
	}
	defer engine.Close()

	for _, o := range doc.Overlays() {
		if o.Label != "" {
			continue
		}
		text, err := engine.RecognizeRegion(layer.Image, o.Rect)
		if err != nil {
			log.Printf("overlay #%d: %v", o.ID, err)
			continue
		}
		if *flagVerbose {
			log.Printf("overlay #%d: %q", o.ID, text)
		}
		if text != "" {
			doc.SetLabel(o.ID, text)
		}
	}
	return nil
}

var (
	labelText       = color.NRGBA{A: 0xFF}
	labelBackground = color.NRGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xC0}
)

func render(layer *annimage.Layer, view *overlay.View, doc *annotation.Document, scale float64, labels bool) *image.RGBA {
	if scale <= 0 {
		scale = 1
	}
	w := int(float64(layer.Width())*scale + 0.5)
	h := int(float64(layer.Height())*scale + 0.5)
	xf := geometry.Scale(scale, scale)

	out := annimage.NewComposite(w, h).Render(layer, xf)
	view.Render(out, xf)
	if !labels {
		return out
	}
	textScale := int(scale * 2)
	pad := textScale + 3
	for i, o := range doc.Overlays() {
		if o.Label == "" {
			continue
		}
		r, _ := view.OverlayRect(i)
		tl := xf.Apply(r.TopLeft())
		annimage.DrawLabel(out, o.Label, image.Pt(int(tl.X)+pad, int(tl.Y)+pad), labelText, labelBackground, textScale)
	}
	return out
}

func parseIDs(s string) ([]int, error) {
	var ids []int
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f == "" {
			continue
		}
		id, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("invalid overlay ID %q", f)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func indexesOf(doc *annotation.Document, ids []int) []int {
	var indexes []int
	for _, id := range ids {
		if i := doc.IndexOf(id); i >= 0 {
			indexes = append(indexes, i)
		} else {
			log.Printf("no overlay #%d", id)
		}
	}
	return indexes
}
