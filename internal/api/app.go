package api

import (
	"context"
	"fmt"
	"html/template"
	"net/http"
	"sync"
	"time"

	"github.com/damniamgood/backstabbr-bot/internal/config"
	"github.com/damniamgood/backstabbr-bot/internal/database"
	"github.com/damniamgood/backstabbr-bot/internal/relay"
	"github.com/damniamgood/backstabbr-bot/internal/spark"
	"github.com/damniamgood/backstabbr-bot/internal/topology"
	"github.com/gorilla/handlers"
	"github.com/teris-io/shortid"
	"go.uber.org/zap"
)

// Platform is the chat platform as seen by one authenticated caller.
type Platform interface {
	topology.Platform
	Me(ctx context.Context) (spark.Person, error)
	ExchangeCode(ctx context.Context, params spark.ExchangeCodeParams) (spark.Authorization, error)
}

// PlatformFactory binds the platform client to an access token.
type PlatformFactory func(accessToken string) Platform

type App struct {
	log        *zap.Logger
	db         database.GameRepository
	platform   PlatformFactory
	bot        Platform
	engine     *topology.Engine
	dispatcher *relay.Dispatcher
	srv        *http.Server
	views      *template.Template

	signingKey    []byte
	oauth         spark.ExchangeCodeParams
	authorizeURL  string
	webhookSecret string
	echoTimeout   time.Duration

	generateShortId func() (string, error)
	background      sync.WaitGroup
}

// NewApp wires the routes onto mux. db may be nil, in which case the game
// and player endpoints answer 503. bot must be the identity dispatcher reads
// and posts with: matchup rooms and their webhooks are created as bot so
// that it is a member of every room it relays between.
func NewApp(mux *http.ServeMux, logger *zap.Logger, db database.GameRepository, platform PlatformFactory, bot Platform, engine *topology.Engine, dispatcher *relay.Dispatcher, cfg *config.Config) *App {
	s := &App{
		log:        logger,
		db:         db,
		platform:   platform,
		bot:        bot,
		engine:     engine,
		dispatcher: dispatcher,
		views:      template.Must(template.ParseFS(viewsFS, "templates/*.html")),
		signingKey: cfg.SigningKey,
		oauth: spark.ExchangeCodeParams{
			ClientId:     cfg.SparkClientId,
			ClientSecret: cfg.SparkClientSecret,
			RedirectURI:  cfg.SparkRedirectURI,
		},
		authorizeURL:    authorizeURL(cfg),
		webhookSecret:   cfg.SparkWebhookSecret,
		echoTimeout:     3 * cfg.RemoteTimeout,
		generateShortId: shortid.Generate,
	}
	if s.echoTimeout <= 0 {
		s.echoTimeout = 30 * time.Second
	}

	mux.HandleFunc("GET /{$}", s.index)
	mux.HandleFunc("GET /authc.js", s.authScript)
	mux.HandleFunc("GET /healthz", s.healthCheck)
	mux.HandleFunc("GET /auth", s.auth)
	mux.HandleFunc("POST /auth", s.auth)

	mux.HandleFunc("POST /webhook/{targetRoomId}", s.relayWebhook)
	mux.HandleFunc("POST /webhook", s.echoWebhook)

	mux.Handle("GET /restricted", s.authMiddleware(s.restricted))
	mux.Handle("GET /me", s.authMiddleware(s.me))
	mux.Handle("GET /rooms", s.authMiddleware(s.listRooms))
	mux.Handle("POST /room", s.authMiddleware(s.createRoom))
	mux.Handle("DELETE /room/{id}", s.authMiddleware(s.deleteRoom))
	mux.Handle("GET /webhooks", s.authMiddleware(s.listWebhooks))

	mux.Handle("POST /rooms/{gameId}/{matchup}", s.authMiddleware(s.provisionMatchup))
	mux.Handle("DELETE /rooms/{gameId}/{matchup}", s.authMiddleware(s.teardownMatchup))
	mux.Handle("POST /games/{gameId}/rooms", s.authMiddleware(s.provisionGame))
	mux.Handle("GET /games/{gameId}/rooms", s.authMiddleware(s.gameRooms))
	mux.Handle("DELETE /games/{gameId}/rooms", s.authMiddleware(s.teardownGame))

	mux.Handle("POST /games", s.authMiddleware(s.requireDB(s.createGame)))
	mux.Handle("GET /games", s.authMiddleware(s.requireDB(s.listGames)))
	mux.Handle("GET /games/{gameId}", s.authMiddleware(s.requireDB(s.getGame)))
	mux.Handle("DELETE /games/{gameId}", s.authMiddleware(s.requireDB(s.deleteGame)))
	mux.Handle("POST /player", s.authMiddleware(s.requireDB(s.createPlayer)))
	mux.Handle("GET /players", s.authMiddleware(s.requireDB(s.listPlayers)))
	mux.Handle("POST /game/{gameId}/player", s.authMiddleware(s.requireDB(s.addPlayerToGame)))

	h := handlers.CORS(
		handlers.MaxAge(3600),
		handlers.AllowedOrigins(cfg.AllowedOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Origin", "Content-Type", "Accept", "Authorization"}),
		handlers.AllowCredentials(),
	)(mux)

	h = handlers.CombinedLoggingHandler(zap.NewStdLog(logger.Named("access")).Writer(), h)
	h = s.errorHandler(h)

	s.srv = &http.Server{
		Addr:              cfg.ServerAddr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s
}

func (s *App) Handler() http.Handler {
	return s.srv.Handler
}

func (s *App) Start() error {
	s.log.Info("starting server", zap.String("addr", s.srv.Addr))
	return s.srv.ListenAndServe()
}

// Shutdown stops accepting requests and waits for in-flight background
// replies until ctx is done.
func (s *App) Shutdown(ctx context.Context) error {
	s.log.Info("shutting down HTTP server")
	if err := s.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	done := make(chan struct{})
	go func() {
		s.background.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("background replies: %w", ctx.Err())
	}
}
