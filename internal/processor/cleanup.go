package processor

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

var slideExtensions = []string{".pdf", ".pptx", ".PDF", ".PPTX"}

// pairedSlides returns the slides file sitting next to audioPath with the
// same basename, or "" when there is none.
func pairedSlides(audioPath string) string {
	base := strings.TrimSuffix(audioPath, filepath.Ext(audioPath))
	for _, ext := range slideExtensions {
		candidate := base + ext
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
	}
	return ""
}

// moveAll moves each non-empty path into dir. The returned slice lines up
// with paths; empty inputs stay empty.
func (p *implProcessor) moveAll(ctx context.Context, dir string, paths ...string) ([]string, error) {
	out := make([]string, len(paths))
	for i, path := range paths {
		if path == "" {
			continue
		}
		dest, err := p.moveTo(ctx, path, dir)
		if err != nil {
			p.restore(ctx, paths[:i], out[:i])
			return nil, err
		}
		out[i] = dest
	}
	return out, nil
}

// moveTo moves a file into dir, creating dir when needed. A file already
// in dir under the same name is kept and the new one gets a numeric suffix.
func (p *implProcessor) moveTo(ctx context.Context, path, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create %s: %w", dir, err)
	}

	destPath := freePath(dir, filepath.Base(path))
	p.logger.Debug(ctx, "Moving %s -> %s", path, destPath)

	if err := os.Rename(path, destPath); err != nil {
		return "", fmt.Errorf("move %s: %w", filepath.Base(path), err)
	}

	return destPath, nil
}

// freePath returns dir/name, or dir/name-N.ext for the first N that is
// not taken.
func freePath(dir, name string) string {
	candidate := filepath.Join(dir, name)
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for i := 1; ; i++ {
		if _, err := os.Lstat(candidate); errors.Is(err, fs.ErrNotExist) {
			return candidate
		}
		candidate = filepath.Join(dir, fmt.Sprintf("%s-%d%s", stem, i, ext))
	}
}

// archive moves staged files to the archive folder, or its failed/
// subfolder. Failures are logged.
func (p *implProcessor) archive(ctx context.Context, failed bool, paths ...string) {
	dir := p.cfg.Paths.Archived
	if failed {
		dir = filepath.Join(dir, "failed")
	}

	for _, path := range paths {
		if path == "" {
			continue
		}
		if _, err := p.moveTo(ctx, path, dir); err != nil {
			p.logger.Warn(ctx, "Failed to archive %s: %v", path, err)
		}
	}
}

// restore moves already staged files back to where they came from.
func (p *implProcessor) restore(ctx context.Context, originals, staged []string) {
	for i, path := range staged {
		if path == "" {
			continue
		}
		if err := os.Rename(path, originals[i]); err != nil {
			p.logger.Warn(ctx, "Failed to restore %s: %v", originals[i], err)
		}
	}
}
