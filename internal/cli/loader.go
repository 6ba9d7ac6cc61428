package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/radsafe/doserisk/internal/params"
	"github.com/radsafe/doserisk/internal/pipeline"
)

// ReadDocument loads one simulation output file as a pipeline.Document.
//
// The simulation tool writes plain ASCII on most systems but legacy
// single-byte text (Windows-1252) on some Windows installs, where degree
// signs and the micro prefix land outside UTF-8. Content that is not valid
// UTF-8 is re-decoded through Windows-1252 rather than rejected.
func ReadDocument(path string) (pipeline.Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return pipeline.Document{}, fmt.Errorf("reading %s: %w", path, err)
	}

	content := string(raw)
	if !utf8.ValidString(content) {
		decoded, decErr := charmap.Windows1252.NewDecoder().Bytes(raw)
		if decErr != nil {
			return pipeline.Document{}, fmt.Errorf("decoding %s: %w", path, decErr)
		}
		content = string(decoded)
	}

	return pipeline.Document{
		Name:    filepath.Base(path),
		Content: content,
	}, nil
}

// ReadDocuments loads every path. A single unreadable file fails the command;
// unreadable input is a caller mistake, not a document-level parse failure.
func ReadDocuments(paths []string) ([]pipeline.Document, error) {
	docs := make([]pipeline.Document, 0, len(paths))
	for _, p := range paths {
		doc, err := ReadDocument(p)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// loadParams resolves the coefficient table from the global flag: the
// embedded table by default, an external YAML file when --params is set.
func loadParams(opts *RootOptions) (*params.Set, error) {
	if opts.ParamsFile == "" {
		return params.Default(), nil
	}
	set, err := params.LoadFile(opts.ParamsFile)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "loading parameter table", err)
	}
	return set, nil
}
