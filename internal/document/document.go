// Package document provides (filename, bytes) pairs to the pipeline and
// normalizes them into something the vision oracle accepts.
package document

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joseph-ayodele/invoice-insights/constants"
)

// Document is one input to the extraction pipeline.
type Document struct {
	Filename string
	Data     []byte
}

// Ext returns the document's normalized filename extension.
func (d Document) Ext() string {
	return constants.NormalizeExt(filepath.Ext(d.Filename))
}

// Supported reports whether the document's extension is in the allow-list.
// The check runs before any oracle call; unsupported documents are reported,
// not processed.
func (d Document) Supported() bool {
	return constants.IsAllowedExt(filepath.Ext(d.Filename))
}

// ListDirectory returns allow-listed documents from dir, sorted by filename.
// limit <= 0 means no limit.
func ListDirectory(dir string, limit int) ([]Document, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir %s: %w", dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if !constants.IsAllowedExt(filepath.Ext(e.Name())) {
			continue
		}
		if strings.HasPrefix(e.Name(), ".") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	if limit > 0 && len(names) > limit {
		names = names[:limit]
	}

	docs := make([]Document, 0, len(names))
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		docs = append(docs, Document{Filename: name, Data: data})
	}
	return docs, nil
}
