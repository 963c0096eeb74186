package document

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"golang.org/x/net/html"

	"github.com/Ilan9903/Juris-IA/internal"
)

const (
	MimeText = "text/plain"
	MimePDF  = "application/pdf"
	MimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MimeDOC  = "application/msword"

	docxBody = "word/document.xml"
)

var extensionTypes = map[string]string{
	".txt":  MimeText,
	".pdf":  MimePDF,
	".docx": MimeDOCX,
	".doc":  MimeDOC,
}

// ResolveContentType trusts the declared type unless it is generic, then falls back to the file extension.
func ResolveContentType(declared, filename string) string {
	if declared != "" && declared != "application/octet-stream" {
		return declared
	}
	if byExt, ok := extensionTypes[strings.ToLower(filepath.Ext(filename))]; ok {
		return byExt
	}
	return declared
}

// Extractor turns supported uploads into plain text.
type Extractor struct{}

func (Extractor) Extract(path, contentType string) (string, error) {
	var (
		text string
		err  error
	)
	switch contentType {
	case MimeText:
		text, err = readText(path)
	case MimePDF:
		text, err = readPDF(path)
	case MimeDOCX:
		text, err = readDOCX(path)
	case MimeDOC:
		// Only .doc files that are really OOXML inside can be read.
		text, err = readDOCX(path)
		if err != nil || strings.TrimSpace(text) == "" {
			return "", internal.NewValidationError(
				"The .doc format could not be read. Convert the file to .docx or .pdf.",
				internal.ErrCodeUnsupportedFile,
			).WithCause(err)
		}
	default:
		return "", internal.NewValidationError(
			fmt.Sprintf("Unsupported file format: %s. Use TXT, PDF or DOCX.", contentType),
			internal.ErrCodeUnsupportedFile,
		)
	}
	if err != nil {
		return "", internal.NewValidationError("The document could not be read", internal.ErrCodeUnsupportedFile).WithCause(err)
	}
	return normalizeText(text), nil
}

func readText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read file: %w", err)
	}
	return string(data), nil
}

func readPDF(path string) (string, error) {
	file, reader, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	defer file.Close()

	var b strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		b.WriteString(text)
		b.WriteString("\n")
	}
	return b.String(), nil
}

func readDOCX(path string) (string, error) {
	reader, err := zip.OpenReader(path)
	if err != nil {
		return "", fmt.Errorf("open docx: %w", err)
	}
	defer reader.Close()

	for _, f := range reader.File {
		if f.Name != docxBody {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", fmt.Errorf("open %s: %w", docxBody, err)
		}
		defer rc.Close()
		return wordText(rc)
	}
	return "", errors.New("docx has no " + docxBody)
}

// wordText collects the runs of a WordprocessingML body, one line per paragraph.
func wordText(r io.Reader) (string, error) {
	var (
		b      strings.Builder
		inText bool
	)
	z := html.NewTokenizer(r)
	for {
		switch z.Next() {
		case html.ErrorToken:
			if errors.Is(z.Err(), io.EOF) {
				return b.String(), nil
			}
			return "", z.Err()
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			switch string(name) {
			case "w:t":
				inText = true
			case "w:tab":
				b.WriteString("\t")
			case "w:br", "w:cr":
				b.WriteString("\n")
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			switch string(name) {
			case "w:t":
				inText = false
			case "w:p":
				b.WriteString("\n")
			}
		case html.TextToken:
			if inText {
				b.Write(z.Text())
			}
		}
	}
}

func normalizeText(text string) string {
	text = strings.ReplaceAll(text, "\x00", " ")
	text = strings.ToValidUTF8(text, "")
	return strings.TrimSpace(text)
}
