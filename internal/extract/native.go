package extract

import (
	"bytes"
	"context"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

const mimePDF = "application/pdf"

// NativeText reads the embedded text layer of a PDF. It is the cheap,
// fully local first rung of the chain and never applies to raster images.
type NativeText struct{}

func (NativeText) Name() string { return "native-text" }

// Extract pulls the text layer via github.com/ledongthuc/pdf.
func (NativeText) Extract(ctx context.Context, path, mimeType string) (string, *Failure) {
	if err := ctx.Err(); err != nil {
		return "", fail(FailureParse, err)
	}
	if normalizeMime(mimeType) != mimePDF {
		// Images have no text layer to read.
		return "", fail(FailureNoText, nil)
	}

	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", fail(FailureParse, err)
	}
	defer f.Close()

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fail(FailureParse, err)
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", fail(FailureParse, err)
	}
	if strings.TrimSpace(buf.String()) == "" {
		return "", fail(FailureNoText, nil)
	}
	return buf.String(), nil
}

func normalizeMime(mimeType string) string {
	return strings.ToLower(strings.TrimSpace(strings.Split(mimeType, ";")[0]))
}
