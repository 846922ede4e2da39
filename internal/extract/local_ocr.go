package extract

import (
	"context"
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/gen2brain/go-fitz"
	"github.com/google/uuid"
	"github.com/otiai10/gosseract/v2"

	"pulsechain-backend/internal/shared/telemetry"
)

// LocalOCR recognizes text with a local Tesseract engine. Scanned PDFs are
// rasterized page-by-page first; raw images are fed to the engine directly.
// Rasterized intermediates are temporary artifacts and are always deleted.
type LocalOCR struct {
	// Language passed to Tesseract, defaults to "eng".
	Language string
	// MaxPages bounds how many PDF pages are rasterized, defaults to 1.
	MaxPages int
}

// Tesseract is CPU-bound; bound concurrent engines so one batch of
// scanned uploads cannot stall every other request.
var ocrSlots = make(chan struct{}, 2)

func (LocalOCR) Name() string { return "local-ocr" }

func (o LocalOCR) Extract(ctx context.Context, path, mimeType string) (string, *Failure) {
	select {
	case ocrSlots <- struct{}{}:
		defer func() { <-ocrSlots }()
	case <-ctx.Done():
		return "", fail(FailureParse, ctx.Err())
	}

	if normalizeMime(mimeType) == mimePDF {
		return o.extractPDF(ctx, path)
	}
	return o.recognize(path)
}

func (o LocalOCR) extractPDF(ctx context.Context, path string) (string, *Failure) {
	doc, err := fitz.New(path)
	if err != nil {
		return "", fail(FailureParse, err)
	}
	defer doc.Close()

	pages := doc.NumPage()
	if max := o.maxPages(); pages > max {
		pages = max
	}

	var out strings.Builder
	for page := 0; page < pages; page++ {
		if err := ctx.Err(); err != nil {
			return "", fail(FailureParse, err)
		}
		text, failure := o.recognizePage(doc, page)
		if failure != nil {
			return "", failure
		}
		out.WriteString(text)
		out.WriteString("\n")
	}
	if strings.TrimSpace(out.String()) == "" {
		return "", fail(FailureNoText, nil)
	}
	return out.String(), nil
}

// recognizePage renders one page to a temporary PNG, recognizes it, and
// removes the intermediate regardless of the outcome.
func (o LocalOCR) recognizePage(doc *fitz.Document, page int) (string, *Failure) {
	img, err := doc.Image(page)
	if err != nil {
		return "", fail(FailureParse, fmt.Errorf("rasterize page %d: %w", page, err))
	}

	imagePath := filepath.Join(os.TempDir(), "ocr-"+uuid.NewString()+".png")
	f, err := os.Create(imagePath)
	if err != nil {
		return "", fail(FailureParse, err)
	}
	defer func() {
		if err := os.Remove(imagePath); err != nil {
			telemetry.Error("extract.temp_cleanup", map[string]any{"path": imagePath, "error": err.Error()})
		}
	}()

	encodeErr := png.Encode(f, img)
	if cerr := f.Close(); encodeErr == nil {
		encodeErr = cerr
	}
	if encodeErr != nil {
		return "", fail(FailureParse, encodeErr)
	}

	return o.runTesseract(imagePath)
}

func (o LocalOCR) recognize(imagePath string) (string, *Failure) {
	text, failure := o.runTesseract(imagePath)
	if failure != nil {
		return "", failure
	}
	if strings.TrimSpace(text) == "" {
		return "", fail(FailureNoText, nil)
	}
	return text, nil
}

func (o LocalOCR) runTesseract(imagePath string) (string, *Failure) {
	client := gosseract.NewClient()
	defer client.Close()

	lang := o.Language
	if lang == "" {
		lang = "eng"
	}
	if err := client.SetLanguage(lang); err != nil {
		return "", fail(FailureParse, err)
	}
	if err := client.SetImage(imagePath); err != nil {
		return "", fail(FailureParse, err)
	}
	text, err := client.Text()
	if err != nil {
		return "", fail(FailureParse, err)
	}
	return text, nil
}

func (o LocalOCR) maxPages() int {
	if o.MaxPages > 0 {
		return o.MaxPages
	}
	return 1
}
