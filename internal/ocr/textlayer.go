package ocr

import (
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// TextLayer decodes the embedded text of a PDF.
type TextLayer interface {
	ExtractText(path string) (text string, pages int, err error)
}

type pdfTextLayer struct{}

func (pdfTextLayer) ExtractText(path string) (string, int, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", 0, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	var b strings.Builder
	totalPage := r.NumPage()
	for i := 1; i <= totalPage; i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		txt, err := p.GetPlainText(nil)
		if err != nil {
			return "", totalPage, fmt.Errorf("page %d: %w", i, err)
		}
		if b.Len() > 0 {
			b.WriteString("\n\f\n")
		}
		b.WriteString(txt)
	}
	return b.String(), totalPage, nil
}
