package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gorm.io/gorm"

	"convivio/internal/config"
	"convivio/internal/db"
	"convivio/models"
)

func main() {
	csvPath := "data/ingredients.csv"
	if len(os.Args) > 1 {
		csvPath = os.Args[1]
	}

	if err := run(csvPath); err != nil {
		fmt.Fprintf(os.Stderr, "import failed: %v\n", err)
		os.Exit(1)
	}
}

func run(csvPath string) error {
	if strings.TrimSpace(csvPath) == "" {
		return fmt.Errorf("csv path must not be empty")
	}

	if _, err := os.Stat(csvPath); err != nil {
		return fmt.Errorf("locate csv: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	database, err := db.Initialize(cfg.Database)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}

	if err := db.AutoMigrate(database); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	ingredients, err := readIngredientsCSV(csvPath)
	if err != nil {
		return fmt.Errorf("read csv: %w", err)
	}

	imported, err := importIngredients(database, ingredients)
	if err != nil {
		return err
	}

	if imported == 0 {
		fmt.Fprintf(os.Stdout, "Ingredients already present, nothing imported from %s\n", filepath.Base(csvPath))
		return nil
	}

	fmt.Fprintf(os.Stdout, "Imported %d ingredients from %s\n", imported, filepath.Base(csvPath))
	return nil
}

// importIngredients bulk-loads the reference dataset. The load is a
// one-time bootstrap: when the table already holds rows the import is
// skipped entirely rather than merged.
func importIngredients(database *gorm.DB, ingredients []models.Ingredient) (int, error) {
	if database == nil {
		return 0, fmt.Errorf("database handle is nil")
	}

	var existing int64
	if err := database.Model(&models.Ingredient{}).Count(&existing).Error; err != nil {
		return 0, fmt.Errorf("count ingredients: %w", err)
	}
	if existing > 0 {
		return 0, nil
	}

	err := database.Transaction(func(tx *gorm.DB) error {
		for idx := range ingredients {
			if err := tx.Create(&ingredients[idx]).Error; err != nil {
				return fmt.Errorf("create ingredient %q: %w", ingredients[idx].Name, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return len(ingredients), nil
}

func readIngredientsCSV(path string) ([]models.Ingredient, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}

	if len(rows) == 0 {
		return nil, errors.New("csv is empty")
	}

	ingredients := make([]models.Ingredient, 0, len(rows))
	for _, row := range rows {
		if len(row) < 2 {
			continue
		}
		name := strings.TrimSpace(row[0])
		unit := strings.TrimSpace(row[1])
		if name == "" || unit == "" {
			continue
		}
		ingredients = append(ingredients, models.Ingredient{
			Name:            name,
			MeasurementUnit: unit,
		})
	}

	if len(ingredients) == 0 {
		return nil, errors.New("csv contains no usable rows")
	}

	return ingredients, nil
}
