// Package export writes analysis contexts to compressed bundle files so they
// can be attached to tickets or shared between machines.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"

	"stacklens/internal/analysis"
)

// Bundle wraps an analysis context with the diagnostics of the build that
// produced it.
type Bundle struct {
	FormatVersion int                       `json:"formatVersion"`
	Context       *analysis.AnalysisContext `json:"context"`
	Diagnostics   analysis.Diagnostics      `json:"diagnostics"`
}

// FormatVersion is the current bundle schema version.
const FormatVersion = 1

// Write encodes the bundle as zstd-compressed JSON onto w.
func Write(w io.Writer, b *Bundle) error {
	if b.FormatVersion == 0 {
		b.FormatVersion = FormatVersion
	}

	enc, err := zstd.NewWriter(w)
	if err != nil {
		return fmt.Errorf("failed to create compressor: %w", err)
	}

	if err := json.NewEncoder(enc).Encode(b); err != nil {
		_ = enc.Close()
		return fmt.Errorf("failed to encode bundle: %w", err)
	}
	return enc.Close()
}

// Read decodes a bundle from zstd-compressed JSON.
func Read(r io.Reader) (*Bundle, error) {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to create decompressor: %w", err)
	}
	defer dec.Close()

	var b Bundle
	if err := json.NewDecoder(dec.IOReadCloser()).Decode(&b); err != nil {
		return nil, fmt.Errorf("failed to decode bundle: %w", err)
	}
	if b.FormatVersion != FormatVersion {
		return nil, fmt.Errorf("unsupported bundle format version %d", b.FormatVersion)
	}
	return &b, nil
}

// WriteFile writes a bundle to path.
func WriteFile(path string, b *Bundle) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create bundle file: %w", err)
	}
	defer f.Close()

	return Write(f, b)
}

// ReadFile reads a bundle from path.
func ReadFile(path string) (*Bundle, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open bundle file: %w", err)
	}
	defer f.Close()

	return Read(f)
}
