package handlers

import (
	"errors"
	"net/http"

	"gorm.io/gorm"

	applog "convivio/internal/log"
	"convivio/models"
)

// recipeRelation describes one of the two recipe membership markers. Both
// toggles share the exact same state machine; only the table and the
// messages differ.
type recipeRelation struct {
	name         string
	duplicateMsg string
	missingMsg   string
	newRow       func(userID, recipeID uint) any
	model        func() any
}

var favoriteRelation = recipeRelation{
	name:         "favorite",
	duplicateMsg: "recipe is already in favorites",
	missingMsg:   "recipe is not in favorites",
	newRow: func(userID, recipeID uint) any {
		return &models.Favorite{UserID: userID, RecipeID: recipeID}
	},
	model: func() any { return &models.Favorite{} },
}

var cartRelation = recipeRelation{
	name:         "shopping cart",
	duplicateMsg: "recipe is already in shopping cart",
	missingMsg:   "recipe is not in shopping cart",
	newRow: func(userID, recipeID uint) any {
		return &models.CartItem{UserID: userID, RecipeID: recipeID}
	},
	model: func() any { return &models.CartItem{} },
}

// FavoriteToggle adds or removes the viewer's favorite marker on a
// recipe. POST|DELETE /api/recipes/{id}/favorite.
func FavoriteToggle(w http.ResponseWriter, r *http.Request) {
	toggleRecipeRelation(w, r, favoriteRelation)
}

// ShoppingCartToggle adds or removes the viewer's cart marker on a
// recipe. POST|DELETE /api/recipes/{id}/shopping_cart.
func ShoppingCartToggle(w http.ResponseWriter, r *http.Request) {
	toggleRecipeRelation(w, r, cartRelation)
}

func toggleRecipeRelation(w http.ResponseWriter, r *http.Request, relation recipeRelation) {
	ctx := r.Context()
	userID, ok := currentUserID(r)
	if !ok {
		writeErrors(w, http.StatusUnauthorized, "authentication required")
		return
	}

	recipeID, err := parseIDParam(r)
	if err != nil {
		writeError(w, r, &notFoundError{Message: "recipe not found"})
		return
	}

	var recipe models.Recipe
	if err := database.WithContext(ctx).First(&recipe, recipeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeError(w, r, &notFoundError{Message: "recipe not found"})
			return
		}
		writeError(w, r, err)
		return
	}

	switch r.Method {
	case http.MethodPost:
		var count int64
		err := database.WithContext(ctx).
			Model(relation.model()).
			Where("user_id = ? AND recipe_id = ?", userID, recipe.ID).
			Count(&count).Error
		if err != nil {
			writeError(w, r, err)
			return
		}
		if count > 0 {
			writeError(w, r, &duplicateRelationError{Message: relation.duplicateMsg})
			return
		}

		if err := database.WithContext(ctx).Create(relation.newRow(userID, recipe.ID)).Error; err != nil {
			if isUniqueViolation(err) {
				writeError(w, r, &duplicateRelationError{Message: relation.duplicateMsg})
				return
			}
			writeError(w, r, err)
			return
		}

		applog.Debug(ctx, "relation added", "relation", relation.name, "user", userID, "recipe", recipe.ID)
		writeJSON(w, http.StatusCreated, projectShortRecipe(recipe))

	case http.MethodDelete:
		result := database.WithContext(ctx).
			Where("user_id = ? AND recipe_id = ?", userID, recipe.ID).
			Delete(relation.model())
		if result.Error != nil {
			writeError(w, r, result.Error)
			return
		}
		if result.RowsAffected == 0 {
			writeError(w, r, &relationNotFoundError{Message: relation.missingMsg})
			return
		}

		applog.Debug(ctx, "relation removed", "relation", relation.name, "user", userID, "recipe", recipe.ID)
		w.WriteHeader(http.StatusNoContent)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}
