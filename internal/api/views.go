package api

import (
	"embed"
	"net/http"
	"net/url"
	"strings"

	"github.com/damniamgood/backstabbr-bot/internal/config"
	"go.uber.org/zap"
)

//go:embed templates/*.html
var viewsFS embed.FS

//go:embed static/authc.js
var authScriptJS []byte

type indexView struct {
	AuthorizeURL string
}

// authorizeURL is the platform's OAuth consent page for this client.
func authorizeURL(cfg *config.Config) string {
	base := cfg.SparkAPIURL
	if base == "" {
		base = config.DefaultSparkURL
	}
	q := url.Values{}
	q.Set("client_id", cfg.SparkClientId)
	q.Set("response_type", "code")
	q.Set("redirect_uri", cfg.SparkRedirectURI)
	q.Set("scope", "spark:all")
	return strings.TrimRight(base, "/") + "/authorize?" + q.Encode()
}

func (s *App) index(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.views.ExecuteTemplate(w, "index.html", indexView{AuthorizeURL: s.authorizeURL}); err != nil {
		s.log.Error("render index", zap.Error(err))
	}
}

func (s *App) authScript(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
	w.Write(authScriptJS)
}
