// Package file stores turn records, map snapshots and narratives as JSON
// files in flat directories, one file per turn, named by turn identifier.
package file

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"

	"github.com/freeeve/polite-betrayal/replay/internal/repository"
)

const (
	jsonExt = ".json"
	zstdExt = ".zst"
)

// writeJSON writes v as indented JSON, zstd-compressed when compress is set.
func writeJSON(path string, v any, compress bool) error {
	data, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", filepath.Base(path), err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	if !compress {
		if _, err := f.Write(data); err != nil {
			return err
		}
		return f.Close()
	}

	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	bw := bufio.NewWriterSize(enc, 256*1024)
	if _, err := bw.Write(data); err != nil {
		enc.Close()
		return err
	}
	if err := bw.Flush(); err != nil {
		enc.Close()
		return err
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("zstd close: %w", err)
	}
	return f.Close()
}

// readFile returns the contents of path, decompressing .zst files.
// A missing file maps to repository.ErrNotFound.
func readFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), repository.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if !strings.HasSuffix(path, zstdExt) {
		return io.ReadAll(f)
	}
	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	data, err := io.ReadAll(bufio.NewReaderSize(dec, 256*1024))
	if err != nil {
		return nil, fmt.Errorf("zstd decode %s: %w", filepath.Base(path), err)
	}
	return data, nil
}

// readFirst reads the first existing candidate.
func readFirst(dir string, candidates ...string) ([]byte, string, error) {
	for _, name := range candidates {
		path := filepath.Join(dir, name)
		data, err := readFile(path)
		if errors.Is(err, repository.ErrNotFound) {
			continue
		}
		return data, path, err
	}
	return nil, "", fmt.Errorf("%s: %w", candidates[0], repository.ErrNotFound)
}

// listFiles returns the names of the regular files in dir.
func listFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir %s: %w", dir, err)
	}
	var names []string
	for _, e := range entries {
		if e.Type().IsRegular() {
			names = append(names, e.Name())
		}
	}
	return names, nil
}
