package sitemap

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/gzip"
	"github.com/spf13/afero"
)

// Writer stores generated files below the output root.
type Writer struct {
	fs afero.Fs
}

func NewWriter(fs afero.Fs) *Writer {
	return &Writer{fs: fs}
}

// NewOutputFs returns a filesystem rooted at dir, creating dir if needed.
func NewOutputFs(dir string) (afero.Fs, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	return afero.NewBasePathFs(afero.NewOsFs(), dir), nil
}

// Write replaces filename with data. With compress set a gzip companion
// "<filename>.gz" is written as well.
func (w *Writer) Write(filename string, data []byte, compress bool) error {
	if dir := filepath.Dir(filename); dir != "." && dir != "/" {
		if err := w.fs.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	if err := w.writeFile(filename, data); err != nil {
		return err
	}

	if compress {
		if err := w.writeGzip(filename+".gz", data); err != nil {
			return err
		}
	}

	return nil
}

func (w *Writer) writeFile(filename string, data []byte) error {
	f, err := w.fs.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", filename, err)
	}

	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", filename, err)
	}

	return closeFile(f, filename)
}

func (w *Writer) writeGzip(filename string, data []byte) error {
	f, err := w.fs.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", filename, err)
	}

	zw := gzip.NewWriter(f)
	if _, err := zw.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("failed to compress %s: %w", filename, err)
	}
	if err := zw.Close(); err != nil {
		f.Close()
		return fmt.Errorf("failed to flush %s: %w", filename, err)
	}

	return closeFile(f, filename)
}

func closeFile(f afero.File, filename string) error {
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", filename, err)
	}
	return nil
}
