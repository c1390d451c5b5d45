package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	applog "convivio/internal/log"
	"convivio/models"
)

type shoppingListItem struct {
	Name            string
	MeasurementUnit string
	Amount          uint
}

// buildShoppingList consolidates every recipe in the user's cart into a
// deduplicated ingredient list with summed quantities. One aggregate
// query does the work: the grouping key is (name, measurement unit), not
// the ingredient id, so distinct ingredient rows sharing both merge.
func buildShoppingList(ctx context.Context, userID uint) ([]shoppingListItem, error) {
	var cartCount int64
	err := database.WithContext(ctx).
		Model(&models.CartItem{}).
		Where("user_id = ?", userID).
		Count(&cartCount).Error
	if err != nil {
		return nil, err
	}
	if cartCount == 0 {
		return nil, &emptyCartError{}
	}

	var items []shoppingListItem
	err = database.WithContext(ctx).
		Model(&models.RecipeIngredient{}).
		Select("ingredients.name AS name, ingredients.measurement_unit AS measurement_unit, SUM(recipe_ingredients.amount) AS amount").
		Joins("JOIN ingredients ON ingredients.id = recipe_ingredients.ingredient_id").
		Joins("JOIN cart_items ON cart_items.recipe_id = recipe_ingredients.recipe_id").
		Where("cart_items.user_id = ?", userID).
		Group("ingredients.name, ingredients.measurement_unit").
		Scan(&items).Error
	if err != nil {
		return nil, err
	}

	return items, nil
}

func renderShoppingList(items []shoppingListItem) string {
	var builder strings.Builder
	for _, item := range items {
		fmt.Fprintf(&builder, "* %s (%s) -- %d\n\n", item.Name, item.MeasurementUnit, item.Amount)
	}
	return builder.String()
}

// DownloadShoppingCart exports the consolidated shopping list as plain
// text. GET /api/recipes/download_shopping_cart.
func DownloadShoppingCart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := currentUserID(r)
	if !ok {
		writeErrors(w, http.StatusUnauthorized, "authentication required")
		return
	}

	items, err := buildShoppingList(ctx, userID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	applog.Debug(ctx, "shopping list built", "user", userID, "items", len(items))

	w.Header().Set("Content-Type", "text/plain; charset=UTF-8")
	w.Header().Set("Content-Disposition", `attachment; filename="shopping_list.txt"`)
	if _, err := w.Write([]byte(renderShoppingList(items))); err != nil {
		applog.Error(ctx, "failed to write shopping list response", "error", err)
	}
}
