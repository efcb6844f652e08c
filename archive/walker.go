// Package archive builds Walk abstraction on top of "archive/zip" to process
// zipped site content.
package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"path"
	"strings"
)

// WalkFunc is the type of the function called for each file in archive
// visited by Walk. The archive argument contains path to archive passed to
// Walk, the file argument is the zip.File structure for the visited entry.
// If an error is returned, processing stops.
type WalkFunc func(archive string, file *zip.File) error

// Walk walks all files in the archive located under prefix calling walkFn for
// each of them. Prefix is either a name of a single file in archive or a
// directory, matching respects path boundaries so "site/page" does not select
// "site/pages/a.html". Empty prefix selects everything. Archives with entries
// which could escape extraction directory are rejected.
func Walk(archive, prefix string, walkFn WalkFunc) error {
	r, err := zip.OpenReader(archive)
	if err != nil {
		return err
	}
	defer r.Close()

	prefix = strings.Trim(strings.ReplaceAll(prefix, `\`, "/"), "/")

	for _, f := range r.File {
		name := f.FileHeader.Name
		if !isSafePath(name) {
			return fmt.Errorf("zip entry %q: unsafe path (absolute or contains path traversal)", name)
		}
		if f.FileInfo().IsDir() || !underPrefix(name, prefix) {
			continue
		}
		if err := walkFn(archive, f); err != nil {
			return err
		}
	}
	return nil
}

// ReadFile reads complete archive entry refusing entries larger than limit
// bytes, limit <= 0 means no limit.
func ReadFile(f *zip.File, limit int64) ([]byte, error) {
	if limit > 0 && f.UncompressedSize64 > uint64(limit) {
		return nil, fmt.Errorf("zip entry %q is too large: %d bytes", f.Name, f.UncompressedSize64)
	}
	r, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer r.Close()

	// header could lie
	var src io.Reader = r
	if limit > 0 {
		src = io.LimitReader(r, limit+1)
	}
	data, err := io.ReadAll(src)
	if err != nil {
		return nil, err
	}
	if limit > 0 && int64(len(data)) > limit {
		return nil, fmt.Errorf("zip entry %q is too large", f.Name)
	}
	return data, nil
}

func underPrefix(name, prefix string) bool {
	if len(prefix) == 0 || name == prefix {
		return true
	}
	return strings.HasPrefix(name, prefix+"/")
}

// isSafePath returns false for paths that could escape the extraction
// directory: absolute paths and those containing ".." components.
func isSafePath(name string) bool {
	if path.IsAbs(name) || strings.HasPrefix(name, `\`) || (len(name) > 1 && name[1] == ':') {
		return false
	}
	for _, part := range strings.Split(strings.ReplaceAll(name, `\`, "/"), "/") {
		if part == ".." {
			return false
		}
	}
	return true
}
