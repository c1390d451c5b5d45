package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	applog "convivio/internal/log"
	"convivio/models"
)

var usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)

type userProfile struct {
	ID           uint   `json:"id"`
	Email        string `json:"email"`
	Username     string `json:"username"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	IsSubscribed bool   `json:"is_subscribed"`
}

func projectUserProfile(user models.User, subscribed bool) userProfile {
	return userProfile{
		ID:           user.ID,
		Email:        user.Email,
		Username:     user.Username,
		FirstName:    user.FirstName,
		LastName:     user.LastName,
		IsSubscribed: subscribed,
	}
}

// subscribedAuthorSet returns the ids among authorIDs that the viewer
// follows, as one membership query. Anonymous viewers get an empty set.
func subscribedAuthorSet(ctx context.Context, viewerID uint, authorIDs []uint) (map[uint]struct{}, error) {
	set := make(map[uint]struct{})
	if viewerID == 0 || len(authorIDs) == 0 {
		return set, nil
	}

	var followed []uint
	err := database.WithContext(ctx).
		Model(&models.Subscription{}).
		Where("user_id = ? AND author_id IN ?", viewerID, authorIDs).
		Pluck("author_id", &followed).Error
	if err != nil {
		return nil, err
	}

	for _, id := range followed {
		set[id] = struct{}{}
	}
	return set, nil
}

func isSubscribed(ctx context.Context, viewerID, authorID uint) (bool, error) {
	if viewerID == 0 {
		return false, nil
	}
	var count int64
	err := database.WithContext(ctx).
		Model(&models.Subscription{}).
		Where("user_id = ? AND author_id = ?", viewerID, authorID).
		Count(&count).Error
	return count > 0, err
}

type registerRequest struct {
	Email     string `json:"email"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Password  string `json:"password"`
}

func validateRegisterPayload(payload registerRequest) error {
	if strings.TrimSpace(payload.Email) == "" {
		return &validationError{Field: "email", Message: "email is required"}
	}
	username := strings.TrimSpace(payload.Username)
	if username == "" {
		return &validationError{Field: "username", Message: "username is required"}
	}
	if !usernamePattern.MatchString(username) {
		return &validationError{Field: "username", Message: "username may only contain letters, digits and .@+-_"}
	}
	if payload.Password == "" {
		return &validationError{Field: "password", Message: "password is required"}
	}
	return nil
}

// Register creates a new account. POST /api/users.
func Register(w http.ResponseWriter, r *http.Request) {
	var payload registerRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		applog.Debug(r.Context(), "invalid register payload", "error", err)
		writeErrors(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	if err := validateRegisterPayload(payload); err != nil {
		writeError(w, r, err)
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(payload.Password), bcrypt.DefaultCost)
	if err != nil {
		writeError(w, r, err)
		return
	}

	user := models.User{
		Email:        strings.ToLower(strings.TrimSpace(payload.Email)),
		Username:     strings.TrimSpace(payload.Username),
		FirstName:    strings.TrimSpace(payload.FirstName),
		LastName:     strings.TrimSpace(payload.LastName),
		PasswordHash: string(hashed),
	}

	if err := database.WithContext(r.Context()).Create(&user).Error; err != nil {
		if isUniqueViolation(err) {
			writeErrors(w, http.StatusBadRequest, "a user with this email or username already exists")
			return
		}
		writeError(w, r, err)
		return
	}

	applog.Info(r.Context(), "user registered", "user", user.ID)
	writeJSON(w, http.StatusCreated, projectUserProfile(user, false))
}

// ListUsers returns a paginated listing of profiles. GET /api/users.
func ListUsers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	viewerID, _ := currentUserID(r)
	params := pagination(r)

	var total int64
	if err := database.WithContext(ctx).Model(&models.User{}).Count(&total).Error; err != nil {
		writeError(w, r, err)
		return
	}

	var users []models.User
	err := database.WithContext(ctx).
		Order("id asc").
		Offset(params.offset).
		Limit(params.limit).
		Find(&users).Error
	if err != nil {
		writeError(w, r, err)
		return
	}

	ids := make([]uint, 0, len(users))
	for _, user := range users {
		ids = append(ids, user.ID)
	}
	followed, err := subscribedAuthorSet(ctx, viewerID, ids)
	if err != nil {
		writeError(w, r, err)
		return
	}

	profiles := make([]userProfile, 0, len(users))
	for _, user := range users {
		_, subscribed := followed[user.ID]
		profiles = append(profiles, projectUserProfile(user, subscribed))
	}

	writeJSON(w, http.StatusOK, paginate(r, params, total, profiles))
}

// GetUser returns a single profile. GET /api/users/{id}.
func GetUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, r, &notFoundError{Message: "user not found"})
		return
	}

	var user models.User
	if err := database.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeError(w, r, &notFoundError{Message: "user not found"})
			return
		}
		writeError(w, r, err)
		return
	}

	viewerID, _ := currentUserID(r)
	subscribed, err := isSubscribed(ctx, viewerID, user.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, projectUserProfile(user, subscribed))
}

// Me returns the signed-in user's own profile. GET /api/users/me.
func Me(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		writeErrors(w, http.StatusUnauthorized, "authentication required")
		return
	}
	writeJSON(w, http.StatusOK, projectUserProfile(*user, false))
}

func parseIDParam(r *http.Request) (uint, error) {
	raw := chi.URLParam(r, "id")
	value, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || value == 0 {
		return 0, errors.New("invalid identifier")
	}
	return uint(value), nil
}
