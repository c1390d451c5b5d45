package mock

import (
	"context"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	applog "convivio/internal/log"
	"convivio/models"
)

// New returns an in-memory sqlite database seeded with representative
// recipe data. It backs local development when no DATABASE_URL is set.
func New(ctx context.Context) (*gorm.DB, error) {
	applog.Debug(ctx, "initialising mock database")

	db, err := gorm.Open(sqlite.Open("file:convivio-mock?mode=memory&cache=shared"), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		PrepareStmt:                              true,
		SkipDefaultTransaction:                   true,
		DisableForeignKeyConstraintWhenMigrating: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Tag{},
		&models.Ingredient{},
		&models.Recipe{},
		&models.RecipeIngredient{},
		&models.RecipeTag{},
		&models.Favorite{},
		&models.CartItem{},
		&models.Subscription{},
	); err != nil {
		return nil, err
	}

	if err := seed(ctx, db); err != nil {
		return nil, err
	}

	applog.Debug(ctx, "mock database ready")
	return db, nil
}

func seed(ctx context.Context, db *gorm.DB) error {
	applog.Debug(ctx, "seeding mock database")

	password, err := bcrypt.GenerateFromPassword([]byte("trattoria"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	chef := &models.User{
		Email:        "nina@example.com",
		Username:     "nina.cucina",
		FirstName:    "Nina",
		LastName:     "Moretti",
		PasswordHash: string(password),
	}
	guest := &models.User{
		Email:        "teo@example.com",
		Username:     "teo",
		FirstName:    "Teo",
		LastName:     "Ferraro",
		PasswordHash: string(password),
	}
	if err := db.WithContext(ctx).Create(chef).Error; err != nil {
		return err
	}
	if err := db.WithContext(ctx).Create(guest).Error; err != nil {
		return err
	}

	tags := []models.Tag{
		{Name: "Breakfast", Color: "#E26C2D", Slug: "breakfast"},
		{Name: "Lunch", Color: "#49B64E", Slug: "lunch"},
		{Name: "Dinner", Color: "#8775D2", Slug: "dinner"},
	}
	if err := db.WithContext(ctx).Create(&tags).Error; err != nil {
		return err
	}

	ingredients := []models.Ingredient{
		{Name: "Spaghetti", MeasurementUnit: "g"},
		{Name: "Egg", MeasurementUnit: "pc"},
		{Name: "Guanciale", MeasurementUnit: "g"},
		{Name: "Pecorino", MeasurementUnit: "g"},
		{Name: "Salt", MeasurementUnit: "g"},
		{Name: "Olive oil", MeasurementUnit: "ml"},
		{Name: "Tomato", MeasurementUnit: "pc"},
	}
	if err := db.WithContext(ctx).Create(&ingredients).Error; err != nil {
		return err
	}

	carbonara := &models.Recipe{
		AuthorID:    chef.ID,
		Name:        "Spaghetti alla Carbonara",
		Text:        "Toss hot spaghetti with guanciale, egg and pecorino off the heat.",
		CookingTime: 25,
	}
	if err := db.WithContext(ctx).Create(carbonara).Error; err != nil {
		return err
	}

	salad := &models.Recipe{
		AuthorID:    chef.ID,
		Name:        "Tomato Salad",
		Text:        "Slice tomatoes, season with salt and olive oil.",
		CookingTime: 10,
	}
	if err := db.WithContext(ctx).Create(salad).Error; err != nil {
		return err
	}

	joinRows := []any{
		&models.RecipeTag{RecipeID: carbonara.ID, TagID: tags[2].ID},
		&models.RecipeTag{RecipeID: salad.ID, TagID: tags[1].ID},
		&models.RecipeIngredient{RecipeID: carbonara.ID, IngredientID: ingredients[0].ID, Amount: 400},
		&models.RecipeIngredient{RecipeID: carbonara.ID, IngredientID: ingredients[1].ID, Amount: 4},
		&models.RecipeIngredient{RecipeID: carbonara.ID, IngredientID: ingredients[2].ID, Amount: 150},
		&models.RecipeIngredient{RecipeID: carbonara.ID, IngredientID: ingredients[3].ID, Amount: 80},
		&models.RecipeIngredient{RecipeID: salad.ID, IngredientID: ingredients[4].ID, Amount: 5},
		&models.RecipeIngredient{RecipeID: salad.ID, IngredientID: ingredients[5].ID, Amount: 30},
		&models.RecipeIngredient{RecipeID: salad.ID, IngredientID: ingredients[6].ID, Amount: 3},
		&models.Favorite{UserID: guest.ID, RecipeID: carbonara.ID},
		&models.CartItem{UserID: guest.ID, RecipeID: carbonara.ID},
		&models.CartItem{UserID: guest.ID, RecipeID: salad.ID},
		&models.Subscription{UserID: guest.ID, AuthorID: chef.ID},
	}
	for _, row := range joinRows {
		if err := db.WithContext(ctx).Create(row).Error; err != nil {
			return err
		}
	}

	return nil
}
