// Package resume extracts plain text from uploaded resume files and
// pulls out contact details for pre-filling the candidate profile.
package resume

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Parsed is the result of reading one resume file.
type Parsed struct {
	RawText string
	Name    string
	Email   string
	Phone   string
}

var (
	emailRegex = regexp.MustCompile(`(?i)[A-Z0-9._%+-]+@[A-Z0-9.-]+\.[A-Z]{2,}`)
	phoneRegex = regexp.MustCompile(`\+?\d?[\s.-]?(\(\d{3}\)|\d{3})[\s.-]?\d{3}[\s.-]?\d{4}`)
	// A candidate name line: 2-4 capitalized words, nothing else.
	nameRegex = regexp.MustCompile(`^[A-Z][A-Za-z]+(\s+[A-Z][A-Za-z.'-]+){1,3}$`)
)

// ParseFile reads and parses the resume at path, dispatching on the
// file extension. Only .pdf and .docx are supported.
func ParseFile(path string) (*Parsed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read resume: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return ParsePDF(data)
	case ".docx":
		return ParseDOCX(data)
	default:
		return nil, fmt.Errorf("unsupported resume format: %s (expected .pdf or .docx)", filepath.Ext(path))
	}
}

// ParsePDF extracts text and entities from a PDF payload.
func ParsePDF(data []byte) (*Parsed, error) {
	reader := bytes.NewReader(data)
	pdfReader, err := pdf.NewReader(reader, int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}

	plain, err := pdfReader.GetPlainText()
	if err != nil {
		return nil, fmt.Errorf("extract pdf text: %w", err)
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return nil, fmt.Errorf("read pdf text: %w", err)
	}

	return parseText(buf.String()), nil
}

// ParseDOCX extracts text and entities from a DOCX payload. A DOCX is
// a zip archive; the body lives in word/document.xml.
func ParseDOCX(data []byte) (*Parsed, error) {
	if len(data) == 0 {
		return nil, errors.New("empty docx data")
	}

	readerAt := bytes.NewReader(data)
	zr, err := zip.NewReader(readerAt, int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open docx: %w", err)
	}

	var docFile *zip.File
	for _, f := range zr.File {
		name := strings.ReplaceAll(f.Name, "\\", "/")
		if name == "word/document.xml" {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return nil, errors.New("document.xml not found in docx")
	}

	rc, err := docFile.Open()
	if err != nil {
		return nil, fmt.Errorf("open document.xml: %w", err)
	}
	defer rc.Close()

	raw, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read document.xml: %w", err)
	}

	return parseText(stripDocxXML(string(raw))), nil
}

// parseText runs entity extraction over the raw text.
func parseText(text string) *Parsed {
	p := &Parsed{RawText: text}

	p.Email = emailRegex.FindString(text)
	p.Phone = strings.TrimSpace(phoneRegex.FindString(text))

	// Name heuristic: the first short line of capitalized words.
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if len(line) < 60 && nameRegex.MatchString(line) {
			p.Name = line
			break
		}
	}

	return p
}

// stripDocxXML flattens document.xml to plain text, inserting newlines
// at paragraph and break boundaries.
func stripDocxXML(raw string) string {
	decoder := xml.NewDecoder(strings.NewReader(raw))
	var buf strings.Builder
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return raw
		}
		switch t := tok.(type) {
		case xml.CharData:
			buf.WriteString(string(t))
		case xml.EndElement:
			if t.Name.Local == "p" || t.Name.Local == "br" {
				if buf.Len() > 0 {
					buf.WriteString("\n")
				}
			}
		}
	}
	return strings.TrimSpace(buf.String())
}
