package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"convivio/internal/handlers"
)

func newRouter() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", handlers.Health)

	r.Route("/api", func(api chi.Router) {
		api.Get("/tags", handlers.ListTags)
		api.Get("/tags/{id}", handlers.GetTag)
		api.Get("/ingredients", handlers.ListIngredients)
		api.Get("/ingredients/{id}", handlers.GetIngredient)

		api.Post("/auth/login", handlers.Login)
		api.Post("/auth/logout", handlers.Logout)

		api.Post("/users", handlers.Register)
		api.Get("/users", handlers.ListUsers)
		api.Get("/users/{id}", handlers.GetUser)

		api.Group(func(authed chi.Router) {
			authed.Use(handlers.RequireAuthentication)
			authed.Get("/users/me", handlers.Me)
			authed.Get("/users/subscriptions", handlers.ListSubscriptions)
			authed.Post("/users/{id}/subscribe", handlers.SubscribeToggle)
			authed.Delete("/users/{id}/subscribe", handlers.SubscribeToggle)
		})

		api.Get("/recipes", handlers.ListRecipes)
		api.Get("/recipes/{id}", handlers.GetRecipe)

		api.Group(func(authed chi.Router) {
			authed.Use(handlers.RequireAuthentication)
			authed.Post("/recipes", handlers.CreateRecipe)
			authed.Get("/recipes/download_shopping_cart", handlers.DownloadShoppingCart)
			authed.Put("/recipes/{id}", handlers.UpdateRecipe)
			authed.Patch("/recipes/{id}", handlers.UpdateRecipe)
			authed.Delete("/recipes/{id}", handlers.DeleteRecipe)
			authed.Post("/recipes/{id}/favorite", handlers.FavoriteToggle)
			authed.Delete("/recipes/{id}/favorite", handlers.FavoriteToggle)
			authed.Post("/recipes/{id}/shopping_cart", handlers.ShoppingCartToggle)
			authed.Delete("/recipes/{id}/shopping_cart", handlers.ShoppingCartToggle)
		})
	})

	return r
}
