package upload

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	DefaultMaxAudioBytes  int64 = 500 * 1024 * 1024
	DefaultMaxSlidesBytes int64 = 50 * 1024 * 1024
)

var (
	ErrMissingFile = errors.New("missing file")
	ErrInvalidType = errors.New("invalid file type")
	ErrTooLarge    = errors.New("file too large")
	ErrMissingName = errors.New("lecture name is required")
)

// File is one locally selected file.
type File struct {
	Path string
	Name string
	Size int64
}

// Selection is the audio file (required) plus optional slides chosen for a
// single submission.
type Selection struct {
	Audio  *File
	Slides *File
}

type Limits struct {
	MaxAudioBytes  int64
	MaxSlidesBytes int64
}

// DefaultLimits returns the standard audio and slides size limits.
func DefaultLimits() Limits {
	return Limits{
		MaxAudioBytes:  DefaultMaxAudioBytes,
		MaxSlidesBytes: DefaultMaxSlidesBytes,
	}
}

// Open stats path and returns a File for it. An empty path yields nil.
func Open(path string) (*File, error) {
	if path == "" {
		return nil, nil
	}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrMissingFile, path)
		}
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrInvalidType, path)
	}

	return &File{
		Path: path,
		Name: filepath.Base(path),
		Size: info.Size(),
	}, nil
}

// NewSelection opens the audio and optional slides paths.
func NewSelection(audioPath, slidesPath string) (Selection, error) {
	if audioPath == "" {
		return Selection{}, fmt.Errorf("%w: audio file is required", ErrMissingFile)
	}

	audio, err := Open(audioPath)
	if err != nil {
		return Selection{}, err
	}

	slides, err := Open(slidesPath)
	if err != nil {
		return Selection{}, err
	}

	return Selection{Audio: audio, Slides: slides}, nil
}

// HasSlides reports whether a slides file was selected.
func (s Selection) HasSlides() bool {
	return s.Slides != nil
}

// Validate checks both files against the allowed types and limits.
// It never touches the network.
func (s Selection) Validate(limits Limits) error {
	if s.Audio == nil {
		return fmt.Errorf("%w: audio file is required", ErrMissingFile)
	}
	if err := ValidateAudio(s.Audio, limits.MaxAudioBytes); err != nil {
		return err
	}
	if s.Slides != nil {
		if err := ValidateSlides(s.Slides, limits.MaxSlidesBytes); err != nil {
			return err
		}
	}
	return nil
}

// ValidateName rejects blank lecture names.
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrMissingName
	}
	return nil
}
