package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"convivio/models"
)

func TestBuildShoppingListSumsAcrossRecipes(t *testing.T) {
	db, cleanupDB := withTestDatabase(t)
	t.Cleanup(cleanupDB)

	author := seedUser(t, db, "author@example.com", "author")
	shopper := seedUser(t, db, "shopper@example.com", "shopper")
	salt := seedIngredient(t, db, "Salt", "g")
	sugar := seedIngredient(t, db, "Sugar", "g")

	soup := seedRecipe(t, db, author, "Soup", 30)
	cake := seedRecipe(t, db, author, "Cake", 60)
	skipped := seedRecipe(t, db, author, "Skipped", 5)
	seedRecipeIngredient(t, db, soup, salt, 5)
	seedRecipeIngredient(t, db, cake, salt, 10)
	seedRecipeIngredient(t, db, cake, sugar, 3)
	seedRecipeIngredient(t, db, skipped, salt, 99)

	for _, recipe := range []models.Recipe{soup, cake} {
		if err := db.Create(&models.CartItem{UserID: shopper.ID, RecipeID: recipe.ID}).Error; err != nil {
			t.Fatalf("seed cart item: %v", err)
		}
	}

	items, err := buildShoppingList(context.Background(), shopper.ID)
	if err != nil {
		t.Fatalf("build shopping list: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 consolidated items, got %d: %+v", len(items), items)
	}

	byName := map[string]shoppingListItem{}
	for _, item := range items {
		byName[item.Name] = item
	}
	if got := byName["Salt"]; got.Amount != 15 || got.MeasurementUnit != "g" {
		t.Fatalf("expected salt summed to 15 g, got %+v", got)
	}
	if got := byName["Sugar"]; got.Amount != 3 {
		t.Fatalf("expected sugar at 3, got %+v", got)
	}
}

func TestBuildShoppingListMergesByNameAndUnit(t *testing.T) {
	db, cleanupDB := withTestDatabase(t)
	t.Cleanup(cleanupDB)

	author := seedUser(t, db, "author@example.com", "author")
	shopper := seedUser(t, db, "shopper@example.com", "shopper")

	// Two distinct ingredient rows sharing name and unit collapse into
	// one line; a same-named ingredient in another unit stays separate.
	flourA := seedIngredient(t, db, "Flour", "g")
	flourB := models.Ingredient{Name: "Flour", MeasurementUnit: "g"}
	if err := db.Create(&flourB).Error; err != nil {
		t.Fatalf("seed duplicate-named ingredient: %v", err)
	}
	flourCups := models.Ingredient{Name: "Flour", MeasurementUnit: "cup"}
	if err := db.Create(&flourCups).Error; err != nil {
		t.Fatalf("seed cup flour: %v", err)
	}

	bread := seedRecipe(t, db, author, "Bread", 120)
	seedRecipeIngredient(t, db, bread, flourA, 200)
	seedRecipeIngredient(t, db, bread, flourB, 100)
	seedRecipeIngredient(t, db, bread, flourCups, 2)
	if err := db.Create(&models.CartItem{UserID: shopper.ID, RecipeID: bread.ID}).Error; err != nil {
		t.Fatalf("seed cart item: %v", err)
	}

	items, err := buildShoppingList(context.Background(), shopper.ID)
	if err != nil {
		t.Fatalf("build shopping list: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected grams merged and cups separate, got %+v", items)
	}
	for _, item := range items {
		switch item.MeasurementUnit {
		case "g":
			if item.Amount != 300 {
				t.Fatalf("expected 300 g of flour, got %+v", item)
			}
		case "cup":
			if item.Amount != 2 {
				t.Fatalf("expected 2 cups of flour, got %+v", item)
			}
		default:
			t.Fatalf("unexpected unit %q", item.MeasurementUnit)
		}
	}
}

func TestRenderShoppingList(t *testing.T) {
	text := renderShoppingList([]shoppingListItem{
		{Name: "Salt", MeasurementUnit: "g", Amount: 15},
		{Name: "Sugar", MeasurementUnit: "g", Amount: 3},
	})
	want := "* Salt (g) -- 15\n\n* Sugar (g) -- 3\n\n"
	if text != want {
		t.Fatalf("rendered list mismatch:\n got %q\nwant %q", text, want)
	}
}

func TestDownloadShoppingCart(t *testing.T) {
	db, cleanupDB := withTestDatabase(t)
	t.Cleanup(cleanupDB)
	sm, cleanupSession := withTestSessionManager(t)
	t.Cleanup(cleanupSession)

	author := seedUser(t, db, "author@example.com", "author")
	shopper := seedUser(t, db, "shopper@example.com", "shopper")
	salt := seedIngredient(t, db, "Salt", "g")
	soup := seedRecipe(t, db, author, "Soup", 30)
	seedRecipeIngredient(t, db, soup, salt, 5)
	if err := db.Create(&models.CartItem{UserID: shopper.ID, RecipeID: soup.ID}).Error; err != nil {
		t.Fatalf("seed cart item: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/recipes/download_shopping_cart", nil)
	req = authenticateRequest(t, sm, req, shopper.ID)
	w := httptest.NewRecorder()
	DownloadShoppingCart(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	if got := w.Header().Get("Content-Type"); got != "text/plain; charset=UTF-8" {
		t.Fatalf("unexpected content type %q", got)
	}
	if got := w.Header().Get("Content-Disposition"); !strings.Contains(got, "shopping_list.txt") {
		t.Fatalf("unexpected disposition %q", got)
	}
	if body := w.Body.String(); body != "* Salt (g) -- 5\n\n" {
		t.Fatalf("unexpected body %q", body)
	}
}

func TestDownloadShoppingCartEmpty(t *testing.T) {
	db, cleanupDB := withTestDatabase(t)
	t.Cleanup(cleanupDB)
	sm, cleanupSession := withTestSessionManager(t)
	t.Cleanup(cleanupSession)

	shopper := seedUser(t, db, "shopper@example.com", "shopper")

	req := httptest.NewRequest(http.MethodGet, "/api/recipes/download_shopping_cart", nil)
	req = authenticateRequest(t, sm, req, shopper.ID)
	w := httptest.NewRecorder()
	DownloadShoppingCart(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 for empty cart, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "cart is empty") {
		t.Fatalf("expected empty-cart message, got %s", w.Body.String())
	}
}
