package cmd

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// copyFS copies every file of fsys into dst, overwriting existing files.
// Both the theme's embedded assets and the site's static/ go through here.
func copyFS(fsys fs.FS, dst string) error {
	return fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		dstPath := filepath.Join(dst, filepath.FromSlash(p))

		if d.IsDir() {
			if err := os.MkdirAll(dstPath, os.ModePerm); err != nil {
				return fmt.Errorf("failed to create directory %s: %w", dstPath, err)
			}
			return nil
		}
		if err := copyFile(fsys, p, dstPath); err != nil {
			return fmt.Errorf("failed to copy file from %s to %s: %w", p, dstPath, err)
		}
		return nil
	})
}

func copyFile(fsys fs.FS, srcFile, dstFile string) error {
	srcF, err := fsys.Open(srcFile)
	if err != nil {
		return fmt.Errorf("failed to open source file %s: %w", srcFile, err)
	}
	defer srcF.Close()

	if err := os.MkdirAll(filepath.Dir(dstFile), os.ModePerm); err != nil {
		return fmt.Errorf("failed to create destination directory %s: %w", filepath.Dir(dstFile), err)
	}

	// Keep the source permissions but stay owner-writable; embedded files
	// report 0444 and the site's static/ is copied over them.
	mode := os.FileMode(0o644)
	if info, err := srcF.Stat(); err == nil && info.Mode().Perm() != 0 {
		mode = info.Mode().Perm() | 0o200
	}

	dstF, err := os.OpenFile(dstFile, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, mode)
	if err != nil {
		return fmt.Errorf("failed to create destination file %s: %w", dstFile, err)
	}
	defer dstF.Close()

	if _, err := io.Copy(dstF, srcF); err != nil {
		return fmt.Errorf("failed to copy data from %s to %s: %w", srcFile, dstFile, err)
	}
	return dstF.Close()
}

func isDir(path string) bool {
	fileInfo, err := os.Stat(path)
	if err != nil {
		return false
	}
	return fileInfo.IsDir()
}
