package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"gorm.io/gorm"

	applog "convivio/internal/log"
	"convivio/models"
)

type recipeIngredientInput struct {
	ID     uint `json:"id"`
	Amount int  `json:"amount"`
}

type recipePayload struct {
	Name        string                  `json:"name"`
	Text        string                  `json:"text"`
	Image       string                  `json:"image"`
	CookingTime int                     `json:"cooking_time"`
	Tags        []uint                  `json:"tags"`
	Ingredients []recipeIngredientInput `json:"ingredients"`
}

type recipeIngredientView struct {
	ID              uint   `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
	Amount          uint   `json:"amount"`
}

type recipeView struct {
	ID               uint                   `json:"id"`
	Tags             []tagView              `json:"tags"`
	Author           userProfile            `json:"author"`
	Ingredients      []recipeIngredientView `json:"ingredients"`
	IsFavorited      bool                   `json:"is_favorited"`
	IsInShoppingCart bool                   `json:"is_in_shopping_cart"`
	Name             string                 `json:"name"`
	Image            string                 `json:"image"`
	Text             string                 `json:"text"`
	CookingTime      uint                   `json:"cooking_time"`
}

// shortRecipeView is the minimal projection returned by the favorite and
// shopping-cart toggles and embedded in follow listings. It depends on
// nothing above it; profile projections build on top of it, never the
// other way around.
type shortRecipeView struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Image       string `json:"image"`
	CookingTime uint   `json:"cooking_time"`
}

func projectShortRecipe(recipe models.Recipe) shortRecipeView {
	return shortRecipeView{
		ID:          recipe.ID,
		Name:        recipe.Name,
		Image:       recipe.Image,
		CookingTime: recipe.CookingTime,
	}
}

// annotatedRecipeQuery builds the base listing query: recipe rows plus
// viewer-relative favorite/cart membership computed as EXISTS subqueries
// inside the same SELECT. Anonymous viewers get constant false without
// the store ever testing membership against a missing user.
func annotatedRecipeQuery(ctx context.Context, viewerID uint) *gorm.DB {
	query := database.WithContext(ctx).
		Model(&models.Recipe{}).
		Preload("Author").
		Preload("Tags.Tag").
		Preload("Ingredients.Ingredient")

	if viewerID == 0 {
		return query.Select("recipes.*, ? AS is_favorited, ? AS is_in_shopping_cart", false, false)
	}

	return query.Select(
		"recipes.*, "+
			"EXISTS(SELECT 1 FROM favorites WHERE favorites.user_id = ? AND favorites.recipe_id = recipes.id) AS is_favorited, "+
			"EXISTS(SELECT 1 FROM cart_items WHERE cart_items.user_id = ? AND cart_items.recipe_id = recipes.id) AS is_in_shopping_cart",
		viewerID, viewerID,
	)
}

// applyRecipeFilters narrows a recipe query by the supported query-string
// parameters. The membership flags match nothing for anonymous viewers.
func applyRecipeFilters(query *gorm.DB, r *http.Request, viewerID uint) *gorm.DB {
	if author := strings.TrimSpace(r.URL.Query().Get("author")); author != "" {
		if id, err := strconv.ParseUint(author, 10, 64); err == nil {
			query = query.Where("recipes.author_id = ?", uint(id))
		}
	}

	if slugs := r.URL.Query()["tags"]; len(slugs) > 0 {
		query = query.Where(
			"recipes.id IN (SELECT recipe_tags.recipe_id FROM recipe_tags JOIN tags ON tags.id = recipe_tags.tag_id WHERE tags.slug IN ?)",
			slugs,
		)
	}

	if isParamSet(r, "is_favorited") {
		if viewerID == 0 {
			query = query.Where("1 = 0")
		} else {
			query = query.Where(
				"EXISTS(SELECT 1 FROM favorites WHERE favorites.user_id = ? AND favorites.recipe_id = recipes.id)",
				viewerID,
			)
		}
	}

	if isParamSet(r, "is_in_shopping_cart") {
		if viewerID == 0 {
			query = query.Where("1 = 0")
		} else {
			query = query.Where(
				"EXISTS(SELECT 1 FROM cart_items WHERE cart_items.user_id = ? AND cart_items.recipe_id = recipes.id)",
				viewerID,
			)
		}
	}

	return query
}

func isParamSet(r *http.Request, name string) bool {
	switch strings.ToLower(strings.TrimSpace(r.URL.Query().Get(name))) {
	case "1", "true":
		return true
	}
	return false
}

func projectRecipe(recipe models.Recipe, authorSubscribed bool) recipeView {
	view := recipeView{
		ID:               recipe.ID,
		Tags:             make([]tagView, 0, len(recipe.Tags)),
		Ingredients:      make([]recipeIngredientView, 0, len(recipe.Ingredients)),
		IsFavorited:      recipe.IsFavorited,
		IsInShoppingCart: recipe.IsInShoppingCart,
		Name:             recipe.Name,
		Image:            recipe.Image,
		Text:             recipe.Text,
		CookingTime:      recipe.CookingTime,
	}

	if recipe.Author != nil {
		view.Author = projectUserProfile(*recipe.Author, authorSubscribed)
	}

	for _, recipeTag := range recipe.Tags {
		if recipeTag.Tag != nil {
			view.Tags = append(view.Tags, projectTag(*recipeTag.Tag))
		}
	}

	for _, row := range recipe.Ingredients {
		if row.Ingredient == nil {
			continue
		}
		view.Ingredients = append(view.Ingredients, recipeIngredientView{
			ID:              row.Ingredient.ID,
			Name:            row.Ingredient.Name,
			MeasurementUnit: row.Ingredient.MeasurementUnit,
			Amount:          row.Amount,
		})
	}

	return view
}

// projectRecipes projects a page of recipes, resolving the viewer's
// subscriptions to the page's authors in a single membership query.
func projectRecipes(ctx context.Context, recipes []models.Recipe, viewerID uint) ([]recipeView, error) {
	authorIDs := make([]uint, 0, len(recipes))
	seen := make(map[uint]struct{}, len(recipes))
	for _, recipe := range recipes {
		if _, ok := seen[recipe.AuthorID]; !ok {
			seen[recipe.AuthorID] = struct{}{}
			authorIDs = append(authorIDs, recipe.AuthorID)
		}
	}

	followed, err := subscribedAuthorSet(ctx, viewerID, authorIDs)
	if err != nil {
		return nil, err
	}

	views := make([]recipeView, 0, len(recipes))
	for _, recipe := range recipes {
		_, subscribed := followed[recipe.AuthorID]
		views = append(views, projectRecipe(recipe, subscribed))
	}
	return views, nil
}

func loadRecipeView(ctx context.Context, recipeID, viewerID uint) (recipeView, error) {
	var recipe models.Recipe
	err := annotatedRecipeQuery(ctx, viewerID).
		Where("recipes.id = ?", recipeID).
		First(&recipe).Error
	if err != nil {
		return recipeView{}, err
	}

	subscribed, err := isSubscribed(ctx, viewerID, recipe.AuthorID)
	if err != nil {
		return recipeView{}, err
	}
	return projectRecipe(recipe, subscribed), nil
}

// ListRecipes returns the annotated, filtered, paginated recipe listing.
// GET /api/recipes.
func ListRecipes(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	viewerID, _ := currentUserID(r)
	params := pagination(r)

	countQuery := applyRecipeFilters(database.WithContext(ctx).Model(&models.Recipe{}), r, viewerID)
	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		logQueryError(ctx, "failed to count recipes", err)
		writeError(w, r, err)
		return
	}

	var recipes []models.Recipe
	err := applyRecipeFilters(annotatedRecipeQuery(ctx, viewerID), r, viewerID).
		Order("recipes.created_at desc, recipes.id desc").
		Offset(params.offset).
		Limit(params.limit).
		Find(&recipes).Error
	if err != nil {
		logQueryError(ctx, "failed to list recipes", err)
		writeError(w, r, err)
		return
	}

	views, err := projectRecipes(ctx, recipes, viewerID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, paginate(r, params, total, views))
}

// GetRecipe returns a single annotated recipe. GET /api/recipes/{id}.
func GetRecipe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, r, &notFoundError{Message: "recipe not found"})
		return
	}

	viewerID, _ := currentUserID(r)
	view, err := loadRecipeView(ctx, id, viewerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeError(w, r, &notFoundError{Message: "recipe not found"})
			return
		}
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

// validateRecipePayload enforces the composer rules, in order: at least
// one ingredient, no repeated ingredient, positive amounts, at least one
// tag, no repeated tag, then the scalar fields.
func validateRecipePayload(payload recipePayload) error {
	if len(payload.Ingredients) == 0 {
		return &validationError{Field: "ingredients", Message: "recipe must contain at least one ingredient"}
	}

	seen := make(map[uint]struct{}, len(payload.Ingredients))
	for _, ingredient := range payload.Ingredients {
		if _, dup := seen[ingredient.ID]; dup {
			return &validationError{Field: "ingredients", Message: "ingredients must not repeat"}
		}
		seen[ingredient.ID] = struct{}{}
		if ingredient.Amount < 1 {
			return &validationError{Field: "ingredients", Message: "ingredient amount must be greater than zero"}
		}
	}

	if len(payload.Tags) == 0 {
		return &validationError{Field: "tags", Message: "recipe must have at least one tag"}
	}
	tagSet := make(map[uint]struct{}, len(payload.Tags))
	for _, id := range payload.Tags {
		tagSet[id] = struct{}{}
	}
	if len(tagSet) != len(payload.Tags) {
		return &validationError{Field: "tags", Message: "tags must not repeat"}
	}

	if strings.TrimSpace(payload.Name) == "" {
		return &validationError{Field: "name", Message: "name is required"}
	}
	if payload.CookingTime < 1 {
		return &validationError{Field: "cooking_time", Message: "cooking time must be at least one minute"}
	}

	return nil
}

// verifyRecipeReferences checks that every referenced tag and ingredient
// id exists before any row is written.
func verifyRecipeReferences(ctx context.Context, payload recipePayload) error {
	var tagCount int64
	if err := database.WithContext(ctx).Model(&models.Tag{}).Where("id IN ?", payload.Tags).Count(&tagCount).Error; err != nil {
		return err
	}
	if tagCount != int64(len(payload.Tags)) {
		return &validationError{Field: "tags", Message: "unknown tag"}
	}

	ingredientIDs := make([]uint, 0, len(payload.Ingredients))
	for _, ingredient := range payload.Ingredients {
		ingredientIDs = append(ingredientIDs, ingredient.ID)
	}
	var ingredientCount int64
	if err := database.WithContext(ctx).Model(&models.Ingredient{}).Where("id IN ?", ingredientIDs).Count(&ingredientCount).Error; err != nil {
		return err
	}
	if ingredientCount != int64(len(ingredientIDs)) {
		return &validationError{Field: "ingredients", Message: "unknown ingredient"}
	}

	return nil
}

func recipeJoinRows(recipeID uint, payload recipePayload) ([]models.RecipeTag, []models.RecipeIngredient) {
	tagRows := make([]models.RecipeTag, 0, len(payload.Tags))
	for _, tagID := range payload.Tags {
		tagRows = append(tagRows, models.RecipeTag{RecipeID: recipeID, TagID: tagID})
	}

	ingredientRows := make([]models.RecipeIngredient, 0, len(payload.Ingredients))
	for _, ingredient := range payload.Ingredients {
		ingredientRows = append(ingredientRows, models.RecipeIngredient{
			RecipeID:     recipeID,
			IngredientID: ingredient.ID,
			Amount:       uint(ingredient.Amount),
		})
	}

	return tagRows, ingredientRows
}

// CreateRecipe builds a recipe and its full tag/ingredient graph as one
// transaction; a failed join-row write leaves nothing behind.
// POST /api/recipes.
func CreateRecipe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := currentUserID(r)
	if !ok {
		writeErrors(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var payload recipePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		applog.Debug(ctx, "invalid recipe create payload", "error", err)
		writeErrors(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	if err := validateRecipePayload(payload); err != nil {
		writeError(w, r, err)
		return
	}
	if err := verifyRecipeReferences(ctx, payload); err != nil {
		writeError(w, r, err)
		return
	}
	if strings.TrimSpace(payload.Image) == "" {
		writeError(w, r, &validationError{Field: "image", Message: "image is required"})
		return
	}

	imagePath, err := storeRecipeImage(payload.Image)
	if err != nil {
		writeError(w, r, err)
		return
	}

	recipe := models.Recipe{
		AuthorID:    userID,
		Name:        strings.TrimSpace(payload.Name),
		Image:       imagePath,
		Text:        payload.Text,
		CookingTime: uint(payload.CookingTime),
	}

	err = database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&recipe).Error; err != nil {
			return err
		}
		tagRows, ingredientRows := recipeJoinRows(recipe.ID, payload)
		if err := tx.Create(&tagRows).Error; err != nil {
			return err
		}
		return tx.Create(&ingredientRows).Error
	})
	if err != nil {
		logQueryError(ctx, "failed to create recipe", err)
		writeError(w, r, err)
		return
	}

	view, err := loadRecipeView(ctx, recipe.ID, userID)
	if err != nil {
		logQueryError(ctx, "failed to reload created recipe", err, "recipe", recipe.ID)
		writeError(w, r, err)
		return
	}

	applog.Info(ctx, "recipe created", "recipe", recipe.ID, "author", userID)
	writeJSON(w, http.StatusCreated, view)
}

// UpdateRecipe replaces a recipe's scalar fields and its entire tag and
// ingredient sets in one transaction. The join rows are deleted and
// rewritten rather than diffed; row identity is not preserved across
// updates. PATCH|PUT /api/recipes/{id}.
func UpdateRecipe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, _ := currentUserID(r)

	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, r, &notFoundError{Message: "recipe not found"})
		return
	}

	var recipe models.Recipe
	if err := database.WithContext(ctx).First(&recipe, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeError(w, r, &notFoundError{Message: "recipe not found"})
			return
		}
		writeError(w, r, err)
		return
	}

	if recipe.AuthorID != userID {
		writeError(w, r, &permissionError{Message: "only the author may modify this recipe"})
		return
	}

	var payload recipePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		applog.Debug(ctx, "invalid recipe update payload", "error", err)
		writeErrors(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	if err := validateRecipePayload(payload); err != nil {
		writeError(w, r, err)
		return
	}
	if err := verifyRecipeReferences(ctx, payload); err != nil {
		writeError(w, r, err)
		return
	}

	imagePath := recipe.Image
	if strings.TrimSpace(payload.Image) != "" {
		imagePath, err = storeRecipeImage(payload.Image)
		if err != nil {
			writeError(w, r, err)
			return
		}
	}

	err = database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]any{
			"name":         strings.TrimSpace(payload.Name),
			"text":         payload.Text,
			"image":        imagePath,
			"cooking_time": uint(payload.CookingTime),
		}
		if err := tx.Model(&recipe).Updates(updates).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.RecipeTag{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return err
		}
		tagRows, ingredientRows := recipeJoinRows(recipe.ID, payload)
		if err := tx.Create(&tagRows).Error; err != nil {
			return err
		}
		return tx.Create(&ingredientRows).Error
	})
	if err != nil {
		logQueryError(ctx, "failed to update recipe", err, "recipe", recipe.ID)
		writeError(w, r, err)
		return
	}

	view, err := loadRecipeView(ctx, recipe.ID, userID)
	if err != nil {
		logQueryError(ctx, "failed to reload updated recipe", err, "recipe", recipe.ID)
		writeError(w, r, err)
		return
	}

	applog.Info(ctx, "recipe updated", "recipe", recipe.ID, "author", userID)
	writeJSON(w, http.StatusOK, view)
}

// DeleteRecipe removes a recipe and every row referencing it: join rows,
// favorites and cart entries go in the same transaction.
// DELETE /api/recipes/{id}.
func DeleteRecipe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, _ := currentUserID(r)

	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, r, &notFoundError{Message: "recipe not found"})
		return
	}

	var recipe models.Recipe
	if err := database.WithContext(ctx).First(&recipe, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeError(w, r, &notFoundError{Message: "recipe not found"})
			return
		}
		writeError(w, r, err)
		return
	}

	if recipe.AuthorID != userID {
		writeError(w, r, &permissionError{Message: "only the author may delete this recipe"})
		return
	}

	err = database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.RecipeTag{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.Favorite{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&recipe).Error
	})
	if err != nil {
		logQueryError(ctx, "failed to delete recipe", err, "recipe", recipe.ID)
		writeError(w, r, err)
		return
	}

	applog.Info(ctx, "recipe deleted", "recipe", recipe.ID, "author", userID)
	w.WriteHeader(http.StatusNoContent)
}
