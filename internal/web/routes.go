package web

import (
	"net/http"

	"github.com/kozaktomas/starmatch/internal/gallery"
	"github.com/kozaktomas/starmatch/internal/web/handlers"
	"github.com/kozaktomas/starmatch/internal/web/static"
)

func (s *Server) setupRoutes(matcher handlers.Matcher, commenter handlers.Commentator, labels *gallery.Labels) {
	matchHandler := handlers.NewMatchHandler(matcher, commenter, labels, s.config.Gallery.Dir, s.config.Roast.Enabled)

	// Health check
	s.router.Get("/api/v1/health", handlers.HealthCheck)

	// The one endpoint that matters
	s.router.Post("/find-match", matchHandler.FindMatch)

	// Landing page
	s.router.Get("/", static.Index)

	// Gallery images referenced by matched_image_url
	galleryServer := http.StripPrefix("/gallery/", http.FileServer(http.Dir(s.config.Gallery.Dir)))
	s.router.Get("/gallery/*", galleryServer.ServeHTTP)

	// Bundled frontend assets
	fileServer := http.StripPrefix("/static/", http.FileServer(http.Dir("static")))
	s.router.Get("/static/*", fileServer.ServeHTTP)
}
