package scaffold

import (
	"archive/tar"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zip"
	"github.com/klauspost/compress/zstd"
)

// Format is an archive format.
type Format string

const (
	FormatZip    Format = "zip"
	FormatTarGz  Format = "tar.gz"
	FormatTarZst Format = "tar.zst"
)

// Formats lists the supported archive formats.
var Formats = []Format{FormatZip, FormatTarGz, FormatTarZst}

// ParseFormat accepts "zip", "tar.gz"/"tgz" and "tar.zst"/"tzst".
func ParseFormat(s string) (Format, error) {
	switch s {
	case "zip":
		return FormatZip, nil
	case "tar.gz", "tgz":
		return FormatTarGz, nil
	case "tar.zst", "tzst":
		return FormatTarZst, nil
	}
	return "", fmt.Errorf("unsupported archive format %q (supported: %v)", s, Formats)
}

func (f Format) ContentType() string {
	switch f {
	case FormatTarGz:
		return "application/gzip"
	case FormatTarZst:
		return "application/zstd"
	}
	return "application/zip"
}

// Ext is the file name extension, with the dot.
func (f Format) Ext() string { return "." + string(f) }

// archiveTime is the modification time of every archive entry, so equal files give
// byte-identical archives.
var archiveTime = time.Date(1980, time.January, 1, 0, 0, 0, 0, time.UTC)

// WriteArchive writes files to w in format f.
func WriteArchive(w io.Writer, f Format, files []File) error {
	switch f {
	case FormatZip:
		return WriteZip(w, files)
	case FormatTarGz:
		return WriteTarGz(w, files)
	case FormatTarZst:
		return WriteTarZst(w, files)
	}
	return fmt.Errorf("unsupported archive format %q", f)
}

func WriteZip(w io.Writer, files []File) error {
	zw := zip.NewWriter(w)
	for _, f := range files {
		hdr := &zip.FileHeader{Name: f.Path, Method: zip.Deflate, Modified: archiveTime}
		hdr.SetMode(0o644)
		fw, err := zw.CreateHeader(hdr)
		if err != nil {
			return fmt.Errorf("zip %s: %w", f.Path, err)
		}
		if _, err := fw.Write(f.Content); err != nil {
			return fmt.Errorf("zip %s: %w", f.Path, err)
		}
	}
	return zw.Close()
}

func WriteTarGz(w io.Writer, files []File) error {
	gw := gzip.NewWriter(w)
	if err := writeTar(gw, files); err != nil {
		return err
	}
	return gw.Close()
}

func WriteTarZst(w io.Writer, files []File) error {
	zw, err := zstd.NewWriter(w)
	if err != nil {
		return fmt.Errorf("zstd: %w", err)
	}
	if err := writeTar(zw, files); err != nil {
		zw.Close()
		return err
	}
	return zw.Close()
}

func writeTar(w io.Writer, files []File) error {
	tw := tar.NewWriter(w)
	for _, f := range files {
		hdr := &tar.Header{
			Typeflag: tar.TypeReg,
			Name:     f.Path,
			Mode:     0o644,
			Size:     int64(len(f.Content)),
			ModTime:  archiveTime,
		}
		if err := tw.WriteHeader(hdr); err != nil {
			return fmt.Errorf("tar %s: %w", f.Path, err)
		}
		if _, err := tw.Write(f.Content); err != nil {
			return fmt.Errorf("tar %s: %w", f.Path, err)
		}
	}
	return tw.Close()
}

// WriteStats counts what WriteDir did.
type WriteStats struct {
	Written   int
	Unchanged int
}

// WriteDir writes files below dir. A file whose current content has the same digest
// is left untouched.
func WriteDir(dir string, files []File) (WriteStats, error) {
	var st WriteStats
	for _, f := range files {
		target := filepath.Join(dir, filepath.FromSlash(f.Path))
		old, err := os.ReadFile(target)
		switch {
		case err == nil && Digest(old) == f.Digest:
			st.Unchanged++
			continue
		case err != nil && !errors.Is(err, os.ErrNotExist):
			return st, fmt.Errorf("read %s: %w", target, err)
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return st, fmt.Errorf("create directory for %s: %w", f.Path, err)
		}
		if err := os.WriteFile(target, f.Content, 0o644); err != nil {
			return st, fmt.Errorf("write %s: %w", f.Path, err)
		}
		st.Written++
	}
	return st, nil
}

// Archive renders files into memory in format f.
func Archive(f Format, files []File) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteArchive(&buf, f, files); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
