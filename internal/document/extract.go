package document

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gen2brain/go-fitz"
)

// ErrExtraction indicates the uploaded bytes could not be parsed as a PDF.
var ErrExtraction = errors.New("document extraction failed")

// ExtractText returns the plain text of every page, concatenated in page
// order with no page boundary markers.
func ExtractText(contents []byte) (string, error) {
	doc, err := fitz.NewFromMemory(contents)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrExtraction, err)
	}
	defer doc.Close()

	return readPages(doc)
}

// ExtractTextFile is ExtractText for a document staged on disk.
func ExtractTextFile(path string) (string, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrExtraction, err)
	}
	defer doc.Close()

	return readPages(doc)
}

func readPages(doc *fitz.Document) (string, error) {
	var text strings.Builder
	for i := 0; i < doc.NumPage(); i++ {
		pageText, err := doc.Text(i)
		if err != nil {
			return "", fmt.Errorf("%w: page %d: %v", ErrExtraction, i, err)
		}
		text.WriteString(pageText)
	}
	return text.String(), nil
}
