package fileutil

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// TempPrefix marks files that are still being produced. Names carrying it are
// never treated as finished artifacts.
const TempPrefix = ".part-"

// StepPrefix marks the scratch output of a single in-place transformation.
const StepPrefix = ".step-"

// IsTemporary reports whether name is an in-progress artifact.
func IsTemporary(name string) bool {
	return strings.HasPrefix(name, TempPrefix) || strings.HasPrefix(name, StepPrefix)
}

// TempPath returns the in-progress path used while producing final.
func TempPath(final string) string {
	return filepath.Join(filepath.Dir(final), TempPrefix+filepath.Base(final))
}

// CopyFile streams src to dst using io.Copy with default permissions (0o644).
func CopyFile(src, dst string) error {
	return CopyFileMode(src, dst, 0o644)
}

// CopyFileMode streams src to dst, setting the given file mode on dst.
func CopyFileMode(src, dst string, mode os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}

// CopyFileVerified streams src to dst with SHA256 + size integrity verification.
// Removes dst on mismatch.
func CopyFileVerified(src, dst string) error {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer func() {
		_ = out.Close()
	}()

	srcHasher := sha256.New()
	dstHasher := sha256.New()
	written, err := io.Copy(io.MultiWriter(out, dstHasher), io.TeeReader(in, srcHasher))
	if err != nil {
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}

	if written != srcInfo.Size() {
		_ = os.Remove(dst)
		return fmt.Errorf("copy size mismatch: source %d bytes, copied %d bytes", srcInfo.Size(), written)
	}
	if !bytes.Equal(srcHasher.Sum(nil), dstHasher.Sum(nil)) {
		_ = os.Remove(dst)
		return fmt.Errorf("copy hash mismatch: file corrupted during copy")
	}
	return nil
}

// CopyAtomic copies src to dst through a temporary sibling so dst is never
// observed half-written.
func CopyAtomic(src, dst string) error {
	tmp := TempPath(dst)
	if err := CopyFile(src, tmp); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, dst); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}

// WriteFileAtomic replaces path with data through a temporary sibling.
func WriteFileAtomic(path string, data []byte, mode os.FileMode) error {
	tmp := TempPath(path)
	if err := os.WriteFile(tmp, data, mode); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}

// Exists reports whether path names an existing entry of any kind.
func Exists(path string) (bool, error) {
	_, err := os.Lstat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// EnsureDir makes path a directory. An entry of another kind at path is
// removed first. It reports whether anything was replaced.
func EnsureDir(path string) (bool, error) {
	info, err := os.Lstat(path)
	switch {
	case err == nil && info.IsDir():
		return false, nil
	case err == nil:
		if err := os.RemoveAll(path); err != nil {
			return false, err
		}
		return true, os.MkdirAll(path, 0o755)
	case errors.Is(err, fs.ErrNotExist):
		return false, os.MkdirAll(path, 0o755)
	default:
		return false, err
	}
}

// ListFiles returns the sorted names of regular files in dir whose extension
// matches ext (case-insensitive; empty matches all). In-progress artifacts are
// excluded. A missing directory yields an empty list.
func ListFiles(dir, ext string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		name := entry.Name()
		if IsTemporary(name) {
			continue
		}
		if ext != "" && !strings.EqualFold(filepath.Ext(name), ext) {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// NameSet returns the names from ListFiles as a set.
func NameSet(dir, ext string) (map[string]struct{}, error) {
	names, err := ListFiles(dir, ext)
	if err != nil {
		return nil, err
	}
	set := make(map[string]struct{}, len(names))
	for _, name := range names {
		set[name] = struct{}{}
	}
	return set, nil
}

// ReplaceExt returns name with its extension swapped for ext.
func ReplaceExt(name, ext string) string {
	return strings.TrimSuffix(name, filepath.Ext(name)) + ext
}
