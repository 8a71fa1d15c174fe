package upload

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// Accepted content types per extension. A detected type matches when it,
// or one of its aliases, is in the list.
var audioTypes = map[string][]string{
	".mp3":  {"audio/mpeg"},
	".wav":  {"audio/wav"},
	".m4a":  {"audio/x-m4a", "audio/mp4", "video/mp4"},
	".aac":  {"audio/aac"},
	".ogg":  {"audio/ogg", "application/ogg"},
	".flac": {"audio/flac"},
	".webm": {"video/webm", "audio/webm"},
}

var slidesTypes = map[string][]string{
	".pdf":  {"application/pdf"},
	".pptx": {"application/vnd.openxmlformats-officedocument.presentationml.presentation"},
}

// IsAudioName reports whether name has an accepted audio extension.
func IsAudioName(name string) bool {
	_, ok := audioTypes[strings.ToLower(filepath.Ext(name))]
	return ok
}

// IsSlidesName reports whether name has an accepted slides extension.
func IsSlidesName(name string) bool {
	_, ok := slidesTypes[strings.ToLower(filepath.Ext(name))]
	return ok
}

func ValidateAudio(f *File, maxBytes int64) error {
	return validate(f, maxBytes, audioTypes, "audio")
}

func ValidateSlides(f *File, maxBytes int64) error {
	return validate(f, maxBytes, slidesTypes, "slides")
}

func validate(f *File, maxBytes int64, types map[string][]string, kind string) error {
	ext := strings.ToLower(filepath.Ext(f.Name))
	accepted, ok := types[ext]
	if !ok {
		return fmt.Errorf("%w: %s must be one of %s", ErrInvalidType, f.Name, extList(types))
	}

	if maxBytes > 0 && f.Size > maxBytes {
		return fmt.Errorf("%w: %s is %d MB, %s limit is %d MB",
			ErrTooLarge, f.Name, f.Size/(1024*1024), kind, maxBytes/(1024*1024))
	}

	detected, err := mimetype.DetectFile(f.Path)
	if err != nil {
		return fmt.Errorf("read %s: %w", f.Name, err)
	}
	if !matchesAny(detected, accepted) {
		return fmt.Errorf("%w: %s content is %s, not %s",
			ErrInvalidType, f.Name, detected.String(), strings.TrimPrefix(ext, "."))
	}

	return nil
}

func matchesAny(m *mimetype.MIME, types []string) bool {
	for _, t := range types {
		if m.Is(t) {
			return true
		}
	}
	return false
}

func extList(types map[string][]string) string {
	exts := make([]string, 0, len(types))
	for ext := range types {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return strings.Join(exts, ", ")
}
