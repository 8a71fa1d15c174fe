package probe

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

var ErrFFprobeMissing = errors.New("ffprobe not found on PATH")

// Duration asks ffprobe for the container duration.
func (p *implProber) Duration(ctx context.Context, path string) (float64, error) {
	if !p.executor.Available("ffprobe") {
		return 0, ErrFFprobeMissing
	}

	// -v error: only print errors
	// -show_entries format=duration: only the container duration
	// -of default=noprint_wrappers=1:nokey=1: bare value
	args := []string{
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	}

	out, err := p.executor.Execute(ctx, "ffprobe", args...)
	if err != nil {
		return 0, fmt.Errorf("ffprobe duration: %w", err)
	}

	value := strings.TrimSpace(out)
	if value == "" || value == "N/A" {
		return 0, fmt.Errorf("ffprobe reported no duration for %s", path)
	}

	seconds, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", value, err)
	}

	p.logger.Debug(ctx, "Probed %s: %.1fs", path, seconds)
	return seconds, nil
}

func (p *implProber) PageCount(path string) (int, error) {
	n, err := api.PageCountFile(path)
	if err != nil {
		return 0, fmt.Errorf("count pdf pages: %w", err)
	}
	return n, nil
}
