package models

import "time"

// Favorite marks a recipe as favorited by a user. The row's existence is
// the whole fact; there is no payload. The composite unique index is the
// source of truth for "already favorited", so rows are hard-deleted.
type Favorite struct {
	ID        uint `gorm:"primarykey" json:"id"`
	UserID    uint `gorm:"not null;uniqueIndex:idx_favorite_user_recipe" json:"user_id"`
	RecipeID  uint `gorm:"not null;uniqueIndex:idx_favorite_user_recipe" json:"recipe_id"`
	CreatedAt time.Time
}

// CartItem marks a recipe as present in a user's shopping cart. Same
// membership-marker shape as Favorite, distinct relation.
type CartItem struct {
	ID        uint `gorm:"primarykey" json:"id"`
	UserID    uint `gorm:"not null;uniqueIndex:idx_cart_user_recipe" json:"user_id"`
	RecipeID  uint `gorm:"not null;uniqueIndex:idx_cart_user_recipe" json:"recipe_id"`
	CreatedAt time.Time
}
