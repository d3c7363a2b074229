package loader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Document is raw text pulled from one source. Source is the URL or file
// path it came from.
type Document struct {
	Source string
	Title  string
	Text   string
}

// FileLoader reads local files: PDFs through text extraction, anything else
// as plain UTF-8 text.
type FileLoader struct {
	MaxBytes int64
}

func NewFileLoader() *FileLoader {
	return &FileLoader{MaxBytes: 20 << 20}
}

func (l *FileLoader) Load(_ context.Context, path string) (Document, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Document{}, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.IsDir() {
		return Document{}, fmt.Errorf("%s is a directory", path)
	}
	if l.MaxBytes > 0 && info.Size() > l.MaxBytes {
		return Document{}, fmt.Errorf("%s exceeds %d bytes", path, l.MaxBytes)
	}

	var text string
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		text, err = readPDF(path)
	} else {
		var raw []byte
		raw, err = os.ReadFile(path)
		text = string(raw)
	}
	if err != nil {
		return Document{}, fmt.Errorf("failed to read %s: %w", path, err)
	}

	return Document{
		Source: path,
		Title:  filepath.Base(path),
		Text:   text,
	}, nil
}
