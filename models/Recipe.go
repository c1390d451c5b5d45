package models

import "gorm.io/gorm"

// Recipe is the central aggregate: a dish authored by a user, composed
// of tagged ingredients with quantities via the join rows below.
type Recipe struct {
	gorm.Model
	AuthorID    uint   `gorm:"not null;index" json:"author_id"`
	Author      *User  `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Name        string `gorm:"not null" json:"name"`
	Image       string `json:"image"`
	Text        string `gorm:"type:text" json:"text"`
	CookingTime uint   `gorm:"not null" json:"cooking_time"`

	Ingredients []RecipeIngredient `gorm:"foreignKey:RecipeID" json:"ingredients"`
	Tags        []RecipeTag        `gorm:"foreignKey:RecipeID" json:"tags"`

	// Viewer-relative annotations computed by the listing query, never
	// stored.
	IsFavorited      bool `gorm:"->;-:migration" json:"is_favorited"`
	IsInShoppingCart bool `gorm:"->;-:migration" json:"is_in_shopping_cart"`
}

// RecipeIngredient links a recipe to an ingredient with a quantity. An
// ingredient appears at most once per recipe. Join rows are hard-deleted
// so the composite unique index frees up when a recipe is rewritten.
type RecipeIngredient struct {
	ID           uint        `gorm:"primarykey" json:"id"`
	RecipeID     uint        `gorm:"not null;uniqueIndex:idx_recipe_ingredient" json:"recipe_id"`
	IngredientID uint        `gorm:"not null;uniqueIndex:idx_recipe_ingredient" json:"ingredient_id"`
	Amount       uint        `gorm:"not null" json:"amount"`
	Ingredient   *Ingredient `gorm:"foreignKey:IngredientID" json:"ingredient,omitempty"`
}

// RecipeTag links a recipe to a tag, at most once per pair.
type RecipeTag struct {
	ID       uint `gorm:"primarykey" json:"id"`
	RecipeID uint `gorm:"not null;uniqueIndex:idx_recipe_tag" json:"recipe_id"`
	TagID    uint `gorm:"not null;uniqueIndex:idx_recipe_tag" json:"tag_id"`
	Tag      *Tag `gorm:"foreignKey:TagID" json:"tag,omitempty"`
}
