package server

import (
	"database/sql"
	"net/http"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/songbook/internal/repositories"
	"github.com/desertthunder/songbook/internal/shared"
)

// NewAPI builds the JSON API router over db with logging and panic recovery.
func NewAPI(db *sql.DB, display shared.DisplayConfig, logger *log.Logger) *BasicRouter {
	router := NewBasicRouter()
	router.Use(Logging(logger), Recover(logger))

	router.Handle(http.MethodGet, "/healthz", Health())
	router.Handler(NewSongHandler(repositories.NewSongRepository(db), display, logger))
	router.Handler(NewSongbookHandler(
		repositories.NewSongbookRepository(db),
		repositories.NewSongEntryRepository(db),
		logger,
	))

	return router
}
