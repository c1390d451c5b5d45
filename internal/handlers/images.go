package handlers

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var dataURIPattern = regexp.MustCompile(`^data:image/([a-zA-Z0-9.+-]+);base64,(.+)$`)

// storeRecipeImage resolves the image field of a recipe payload. A
// data-URI string is decoded and written under the media root with a
// generated filename; any other non-empty value is treated as an
// already-stored path and returned unchanged. Returns the stored
// relative path.
func storeRecipeImage(value string) (string, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", nil
	}
	if !strings.HasPrefix(trimmed, "data:") {
		return trimmed, nil
	}

	match := dataURIPattern.FindStringSubmatch(trimmed)
	if match == nil {
		return "", &validationError{Field: "image", Message: "invalid image payload"}
	}

	raw, err := base64.StdEncoding.DecodeString(match[2])
	if err != nil {
		return "", &validationError{Field: "image", Message: "invalid image payload"}
	}

	relative := filepath.Join("recipes", "images", uuid.NewString()+"."+match[1])
	full := filepath.Join(mediaRoot, relative)

	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(full, raw, 0o644); err != nil {
		return "", err
	}

	return relative, nil
}
