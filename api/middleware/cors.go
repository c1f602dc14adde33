package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// CORS returns middleware that applies the API's allowed origin policy.
// The frontend origin comes from configuration so staging and prod can
// differ without a rebuild.
func CORS(frontendOrigin string) func(http.Handler) http.Handler {
	origins := []string{"http://localhost:3000"}
	if frontendOrigin != "" {
		origins = append(origins, frontendOrigin)
	}

	return cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler
}
