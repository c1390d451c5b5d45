package handlers

import (
	"errors"
	"net/http"
	"strings"

	"gorm.io/gorm"

	"convivio/models"
)

type ingredientView struct {
	ID              uint   `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
}

func projectIngredient(ingredient models.Ingredient) ingredientView {
	return ingredientView{
		ID:              ingredient.ID,
		Name:            ingredient.Name,
		MeasurementUnit: ingredient.MeasurementUnit,
	}
}

// ListIngredients returns reference ingredients, optionally filtered by a
// case-insensitive name prefix. GET /api/ingredients?name=.
func ListIngredients(w http.ResponseWriter, r *http.Request) {
	query := database.WithContext(r.Context()).Model(&models.Ingredient{}).Order("name asc, id asc")

	if name := strings.TrimSpace(r.URL.Query().Get("name")); name != "" {
		query = query.Where("lower(name) LIKE ?", strings.ToLower(name)+"%")
	}

	var ingredients []models.Ingredient
	if err := query.Find(&ingredients).Error; err != nil {
		writeError(w, r, err)
		return
	}

	views := make([]ingredientView, 0, len(ingredients))
	for _, ingredient := range ingredients {
		views = append(views, projectIngredient(ingredient))
	}
	writeJSON(w, http.StatusOK, views)
}

// GetIngredient returns a single ingredient. GET /api/ingredients/{id}.
func GetIngredient(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, r, &notFoundError{Message: "ingredient not found"})
		return
	}

	var ingredient models.Ingredient
	if err := database.WithContext(r.Context()).First(&ingredient, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeError(w, r, &notFoundError{Message: "ingredient not found"})
			return
		}
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, projectIngredient(ingredient))
}
