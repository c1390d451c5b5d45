package handlers

import (
	"errors"
	"net/http"

	"gorm.io/gorm"

	"convivio/models"
)

type tagView struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
	Slug  string `json:"slug"`
}

func projectTag(tag models.Tag) tagView {
	return tagView{ID: tag.ID, Name: tag.Name, Color: tag.Color, Slug: tag.Slug}
}

// ListTags returns all tags, unpaginated. Reference data stays small.
func ListTags(w http.ResponseWriter, r *http.Request) {
	var tags []models.Tag
	if err := database.WithContext(r.Context()).Order("id asc").Find(&tags).Error; err != nil {
		writeError(w, r, err)
		return
	}

	views := make([]tagView, 0, len(tags))
	for _, tag := range tags {
		views = append(views, projectTag(tag))
	}
	writeJSON(w, http.StatusOK, views)
}

// GetTag returns a single tag. GET /api/tags/{id}.
func GetTag(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, r, &notFoundError{Message: "tag not found"})
		return
	}

	var tag models.Tag
	if err := database.WithContext(r.Context()).First(&tag, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeError(w, r, &notFoundError{Message: "tag not found"})
			return
		}
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, projectTag(tag))
}
