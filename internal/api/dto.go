package api

import "github.com/starford/opskrifter/internal/models"

// RecipeSummary is a list item (aliased from the domain layer).
type RecipeSummary = models.RecipeSummary

// RecipeDetail is the single-recipe response (aliased from the domain layer).
type RecipeDetail = models.RecipeDetail
