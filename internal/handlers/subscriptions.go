package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"gorm.io/gorm"

	applog "convivio/internal/log"
	"convivio/models"
)

type followView struct {
	ID           uint              `json:"id"`
	Email        string            `json:"email"`
	Username     string            `json:"username"`
	FirstName    string            `json:"first_name"`
	LastName     string            `json:"last_name"`
	IsSubscribed bool              `json:"is_subscribed"`
	Recipes      []shortRecipeView `json:"recipes"`
	RecipesCount int64             `json:"recipes_count"`
}

// projectFollow builds the author-with-recipes projection returned by the
// subscription endpoints. recipesLimit caps the embedded recipe list when
// positive; the count always reflects the full set.
func projectFollow(ctx context.Context, author models.User, subscribed bool, recipesLimit int) (followView, error) {
	view := followView{
		ID:           author.ID,
		Email:        author.Email,
		Username:     author.Username,
		FirstName:    author.FirstName,
		LastName:     author.LastName,
		IsSubscribed: subscribed,
	}

	err := database.WithContext(ctx).
		Model(&models.Recipe{}).
		Where("author_id = ?", author.ID).
		Count(&view.RecipesCount).Error
	if err != nil {
		return followView{}, err
	}

	query := database.WithContext(ctx).
		Where("author_id = ?", author.ID).
		Order("created_at desc, id desc")
	if recipesLimit > 0 {
		query = query.Limit(recipesLimit)
	}

	var recipes []models.Recipe
	if err := query.Find(&recipes).Error; err != nil {
		return followView{}, err
	}

	view.Recipes = make([]shortRecipeView, 0, len(recipes))
	for _, recipe := range recipes {
		view.Recipes = append(view.Recipes, projectShortRecipe(recipe))
	}

	return view, nil
}

func recipesLimitParam(r *http.Request) int {
	raw := strings.TrimSpace(r.URL.Query().Get("recipes_limit"))
	if raw == "" {
		return 0
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		return 0
	}
	return limit
}

// SubscribeToggle follows or unfollows an author.
// POST|DELETE /api/users/{id}/subscribe.
func SubscribeToggle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := currentUserID(r)
	if !ok {
		writeErrors(w, http.StatusUnauthorized, "authentication required")
		return
	}

	authorID, err := parseIDParam(r)
	if err != nil {
		writeError(w, r, &notFoundError{Message: "user not found"})
		return
	}

	var author models.User
	if err := database.WithContext(ctx).First(&author, authorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeError(w, r, &notFoundError{Message: "user not found"})
			return
		}
		writeError(w, r, err)
		return
	}

	switch r.Method {
	case http.MethodPost:
		if author.ID == userID {
			writeError(w, r, &selfSubscriptionError{})
			return
		}

		subscribed, err := isSubscribed(ctx, userID, author.ID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if subscribed {
			writeError(w, r, &duplicateRelationError{Message: "already subscribed to this author"})
			return
		}

		subscription := models.Subscription{UserID: userID, AuthorID: author.ID}
		if err := database.WithContext(ctx).Create(&subscription).Error; err != nil {
			if isUniqueViolation(err) {
				writeError(w, r, &duplicateRelationError{Message: "already subscribed to this author"})
				return
			}
			writeError(w, r, err)
			return
		}

		view, err := projectFollow(ctx, author, true, recipesLimitParam(r))
		if err != nil {
			writeError(w, r, err)
			return
		}

		applog.Debug(ctx, "subscription added", "follower", userID, "author", author.ID)
		writeJSON(w, http.StatusCreated, view)

	case http.MethodDelete:
		result := database.WithContext(ctx).
			Where("user_id = ? AND author_id = ?", userID, author.ID).
			Delete(&models.Subscription{})
		if result.Error != nil {
			writeError(w, r, result.Error)
			return
		}
		if result.RowsAffected == 0 {
			writeError(w, r, &relationNotFoundError{Message: "subscription does not exist"})
			return
		}

		applog.Debug(ctx, "subscription removed", "follower", userID, "author", author.ID)
		w.WriteHeader(http.StatusNoContent)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// ListSubscriptions returns every author the viewer follows, paginated,
// each with their recipes. GET /api/users/subscriptions.
func ListSubscriptions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := currentUserID(r)
	if !ok {
		writeErrors(w, http.StatusUnauthorized, "authentication required")
		return
	}

	params := pagination(r)

	base := database.WithContext(ctx).
		Model(&models.User{}).
		Joins("JOIN subscriptions ON subscriptions.author_id = users.id").
		Where("subscriptions.user_id = ?", userID)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		writeError(w, r, err)
		return
	}

	var authors []models.User
	err := base.
		Order("subscriptions.id asc").
		Offset(params.offset).
		Limit(params.limit).
		Find(&authors).Error
	if err != nil {
		writeError(w, r, err)
		return
	}

	recipesLimit := recipesLimitParam(r)
	views := make([]followView, 0, len(authors))
	for _, author := range authors {
		view, err := projectFollow(ctx, author, true, recipesLimit)
		if err != nil {
			writeError(w, r, err)
			return
		}
		views = append(views, view)
	}

	writeJSON(w, http.StatusOK, paginate(r, params, total, views))
}
