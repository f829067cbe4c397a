package api

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes installs the templates and every route served by h.
func RegisterRoutes(r *gin.Engine, h *Handler) {
	r.SetHTMLTemplate(Templates())

	r.GET("/", h.Index)
	r.GET("/search", h.Search)
	r.GET("/recipes/:id/panel", h.Panel)
	r.GET("/thumbnails", h.Thumbnail)
	r.GET("/healthz", h.Healthz)

	v1 := r.Group("/api")
	v1.GET("/recipes", h.SearchRecipes)
	v1.GET("/recipes/:id", h.GetRecipe)
	v1.GET("/searches", h.GetSearches)
	v1.GET("/moods", h.GetMoods)
}
