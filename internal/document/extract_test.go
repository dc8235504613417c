package document_test

import (
	"os"
	"path/filepath"
	"testing"

	"tuneforge-backend/internal/document"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// minimalPdf is a single page PDF with one line of text. MuPDF repairs the
// missing xref table when opening it.
const minimalPdf = `%PDF-1.4
1 0 obj<</Type/Catalog/Pages 2 0 R>>endobj
2 0 obj<</Type/Pages/Kids[3 0 R]/Count 1>>endobj
3 0 obj<</Type/Page/Parent 2 0 R/MediaBox[0 0 612 792]/Contents 4 0 R/Resources<</Font<</F1 5 0 R>>>>>>endobj
4 0 obj<</Length 42>>stream
BT /F1 24 Tf 72 720 Td (Hello World) Tj ET
endstream
endobj
5 0 obj<</Type/Font/Subtype/Type1/BaseFont/Helvetica>>endobj
trailer<</Root 1 0 R/Size 6>>
`

func TestExtractText(t *testing.T) {
	text, err := document.ExtractText([]byte(minimalPdf))
	require.NoError(t, err)
	assert.Contains(t, text, "Hello World")
}

func TestExtractTextInvalidDocument(t *testing.T) {
	_, err := document.ExtractText([]byte("this is not a pdf"))
	require.Error(t, err)
	assert.ErrorIs(t, err, document.ErrExtraction)
}

func TestExtractTextFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.pdf")
	require.NoError(t, os.WriteFile(path, []byte(minimalPdf), 0o600))

	text, err := document.ExtractTextFile(path)
	require.NoError(t, err)
	assert.Contains(t, text, "Hello World")
}

func TestExtractTextFileMissing(t *testing.T) {
	_, err := document.ExtractTextFile(filepath.Join(t.TempDir(), "missing.pdf"))
	require.Error(t, err)
	assert.ErrorIs(t, err, document.ErrExtraction)
}
