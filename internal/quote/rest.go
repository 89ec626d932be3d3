package quote

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"main/internal/web"
	"main/pkg/exception"
)

// NewRouter exposes the cache's synchronous read path: a single quote when
// the name query parameter is set, the whole map otherwise.
func NewRouter(cache *Cache) chi.Router {
	r := chi.NewRouter()
	r.Use(web.RequestLogger)

	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		name := req.URL.Query().Get("name")
		if name == "" {
			web.WriteJSON(w, http.StatusOK, cache.All())
			return
		}
		q, err := cache.Get(name)
		if errors.Is(err, exception.ErrQuoteNotFound) {
			web.WriteJSON(w, http.StatusNotFound, map[string]string{"message": "unknown company " + name})
			return
		}
		web.WriteJSON(w, http.StatusOK, q)
	})

	return r
}
