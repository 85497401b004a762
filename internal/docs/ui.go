package docs

import (
	_ "embed"
	"net/http"

	"github.com/rs/zerolog/log"
)

//go:embed ui.html
var uiPage []byte

// UIHandler serves the Swagger UI page. Scripts load from a CDN and read DocumentPath.
func UIHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	if _, err := w.Write(uiPage); err != nil {
		log.Error().Err(err).Msg("Failed to write docs UI page")
	}
}
