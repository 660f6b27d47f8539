package archive

import (
	"archive/tar"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zip"
	"github.com/klauspost/compress/zstd"
)

// ErrCorruptArchive is returned when a submission archive cannot be opened or read.
var ErrCorruptArchive = errors.New("corrupt archive")

// Extensions lists the archive suffixes recognised by Extract, longest first.
var Extensions = []string{".zip.zst", ".tar.zst", ".tzst", ".zip"}

// macOS archivers add resource forks under this folder; they are never part of a submission.
const macosxDir = "__MACOSX"

// TrimExt removes a recognised archive extension from name.
func TrimExt(name string) (string, bool) {
	lower := strings.ToLower(name)
	for _, ext := range Extensions {
		if strings.HasSuffix(lower, ext) {
			return name[:len(name)-len(ext)], true
		}
	}
	return name, false
}

// Extract unpacks the archive at path into dst. Errors caused by the archive
// itself wrap ErrCorruptArchive; dst may then hold a partial extraction.
func Extract(path string, dst string) error {
	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, ".zip.zst"):
		return extractZstdZip(path, dst)
	case strings.HasSuffix(lower, ".tar.zst"), strings.HasSuffix(lower, ".tzst"):
		return extractTarZst(path, dst)
	default:
		return extractZip(path, dst)
	}
}

// ResolveRoot returns the effective submission root inside dir: the single
// top-level directory when it is the only entry, otherwise dir itself.
func ResolveRoot(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("failed to read extraction dir: %w", err)
	}
	if len(entries) == 1 && entries[0].IsDir() {
		return filepath.Join(dir, entries[0].Name()), nil
	}
	return dir, nil
}

func extractZip(path string, dst string) error {
	r, err := zip.OpenReader(path)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrCorruptArchive, filepath.Base(path), err)
	}
	defer r.Close()
	return extractZipFiles(r.File, dst)
}

func extractZstdZip(path string, dst string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open archive: %w", err)
	}
	defer f.Close()

	d, err := zstd.NewReader(f)
	if err != nil {
		return fmt.Errorf("%w: failed to create zstd reader: %v", ErrCorruptArchive, err)
	}
	defer d.Close()

	// zip needs random access, so the decompressed container is spooled to disk first
	tmp, err := os.CreateTemp(dst, ".archive-*.zip")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
	}()

	size, err := io.Copy(tmp, d)
	if err != nil {
		return fmt.Errorf("%w: failed to decompress: %v", ErrCorruptArchive, err)
	}
	r, err := zip.NewReader(tmp, size)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrCorruptArchive, filepath.Base(path), err)
	}
	return extractZipFiles(r.File, dst)
}

func extractZipFiles(files []*zip.File, dst string) error {
	for _, f := range files {
		target, skip, err := entryTarget(dst, f.Name)
		if err != nil {
			return err
		}
		if skip {
			continue
		}
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0755); err != nil {
				return fmt.Errorf("failed to create dir: %w", err)
			}
			continue
		}
		if !f.Mode().IsRegular() {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return fmt.Errorf("%w: failed to open entry %s: %v", ErrCorruptArchive, f.Name, err)
		}
		err = writeFile(target, rc, f.Mode().Perm())
		_ = rc.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

func extractTarZst(path string, dst string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open archive: %w", err)
	}
	defer f.Close()

	d, err := zstd.NewReader(f)
	if err != nil {
		return fmt.Errorf("%w: failed to create zstd reader: %v", ErrCorruptArchive, err)
	}
	defer d.Close()

	tr := tar.NewReader(d)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%w: failed to read tar entry: %v", ErrCorruptArchive, err)
		}
		target, skip, err := entryTarget(dst, hdr.Name)
		if err != nil {
			return err
		}
		if skip {
			continue
		}
		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0755); err != nil {
				return fmt.Errorf("failed to create dir: %w", err)
			}
		case tar.TypeReg:
			if err := writeFile(target, tr, fs.FileMode(hdr.Mode).Perm()); err != nil {
				return err
			}
		default:
			// links and devices are not needed to build a submission
		}
	}
}

// entryTarget maps an archive entry name to a path below dst.
func entryTarget(dst string, name string) (target string, skip bool, err error) {
	name = strings.ReplaceAll(name, "\\", "/")
	if name == "" {
		return "", true, nil
	}
	cleanName := filepath.Clean(filepath.FromSlash(name))
	if cleanName == "." {
		return "", true, nil
	}
	if cleanName == ".." || strings.HasPrefix(cleanName, ".."+string(filepath.Separator)) || filepath.IsAbs(cleanName) {
		return "", false, fmt.Errorf("%w: invalid entry path %q", ErrCorruptArchive, name)
	}
	first := strings.SplitN(filepath.ToSlash(cleanName), "/", 2)[0]
	if first == macosxDir {
		return "", true, nil
	}
	target = filepath.Join(dst, cleanName)
	if !strings.HasPrefix(target, filepath.Clean(dst)+string(filepath.Separator)) {
		return "", false, fmt.Errorf("%w: entry %q escapes extraction dir", ErrCorruptArchive, name)
	}
	return target, false, nil
}

func writeFile(target string, r io.Reader, perm fs.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("failed to create parent dir: %w", err)
	}
	// owner must always be able to read and write what the build produces
	perm |= 0600
	file, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, perm)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	if _, err := io.Copy(file, r); err != nil {
		_ = file.Close()
		return fmt.Errorf("%w: failed to write %s: %v", ErrCorruptArchive, filepath.Base(target), err)
	}
	return file.Close()
}
