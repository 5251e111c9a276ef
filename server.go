package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Horse-MA00/portfolio/internal/layout"
	"github.com/Horse-MA00/portfolio/internal/rotation"
)

// maxCards bounds both the content file and the layout API.
const maxCards = 24

type server struct {
	content   Content
	generator *layout.Generator
	rotator   *rotation.Rotator
	store     *Store
	admin     *admin
	logger    *log.Logger
}

// cardView pairs a card with the position it was given for one view.
type cardView struct {
	Card
	Pos layout.Placement
}

func newServer(cfg Config, content Content, store *Store, logger *log.Logger) (*server, error) {
	gen, err := layout.NewGenerator(layout.DefaultConfig(), nil)
	if err != nil {
		return nil, err
	}

	rot, err := rotation.New(content.Texts,
		rotation.WithPeriod(cfg.RotationPeriod),
		rotation.WithDelay(cfg.RotationDelay),
	)
	if err != nil {
		return nil, fmt.Errorf("invalid rotation settings: %w", err)
	}

	adm, err := newAdmin(cfg, store, logger)
	if err != nil {
		return nil, err
	}

	return &server{
		content:   content,
		generator: gen,
		rotator:   rot,
		store:     store,
		admin:     adm,
		logger:    logger,
	}, nil
}

func (s *server) engine() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(s.logger))
	r.LoadHTMLGlob("templates/*")

	r.Static("/static", "./static")

	r.GET("/", s.handleIndex)
	r.GET("/api/layout", s.handleLayout)
	r.GET("/api/rotation", s.handleRotation)
	r.GET("/rotation/stream", s.handleRotationStream)

	s.admin.routes(r)
	return r
}

// Each page view is a new view of the page and gets its own layout.
func (s *server) handleIndex(c *gin.Context) {
	id := uuid.NewString()
	result := s.generator.Place(len(s.content.Cards))

	if fb := result.Fallbacks(); fb > 0 {
		s.logger.Debug("Layout used fallback positions", "layout", id, "fallbacks", fb)
	}
	if trackable(c) {
		s.recordLayout(c, id, result)
	}

	cards := make([]cardView, len(s.content.Cards))
	for i, card := range s.content.Cards {
		cards[i] = cardView{Card: card, Pos: result.Placements[i]}
	}

	c.HTML(http.StatusOK, "index.html", gin.H{
		"content":  s.content,
		"rotation": s.rotator.State(),
		"cards":    cards,
		"layoutID": id,
	})
}

func (s *server) recordLayout(c *gin.Context, id string, result layout.Result) {
	rec := LayoutRecord{
		ID:        id,
		Visitor:   s.admin.hashIP(c.ClientIP()),
		Path:      c.Request.URL.Path,
		UserAgent: c.GetHeader("User-Agent"),
		CreatedAt: time.Now(),
		Result:    result,
	}
	if err := s.store.RecordLayout(c.Request.Context(), rec); err != nil {
		s.logger.Error("Error recording layout", "layout", id, "err", err)
	}
}

func (s *server) handleLayout(c *gin.Context) {
	n := len(s.content.Cards)
	if v := c.Query("cards"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "cards must be a non-negative integer"})
			return
		}
		n = min(parsed, maxCards)
	}

	result := s.generator.Place(n)
	cfg := s.generator.Config()
	c.JSON(http.StatusOK, gin.H{
		"id":         uuid.NewString(),
		"zone":       cfg.Zone,
		"placements": result.Placements,
		"fallbacks":  result.Fallbacks(),
	})
}

func (s *server) handleRotation(c *gin.Context) {
	c.JSON(http.StatusOK, s.rotator.State())
}

// handleRotationStream sends one event per state change until the client
// goes away or the rotator is stopped.
func (s *server) handleRotationStream(c *gin.Context) {
	updates, cancel := s.rotator.Subscribe()
	defer cancel()

	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")

	c.Stream(func(w io.Writer) bool {
		select {
		case st, ok := <-updates:
			if !ok {
				return false
			}
			c.SSEvent("rotation", st)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}

// serve runs until ctx is cancelled, then stops the rotator (ending any
// open streams) before shutting the listener down.
func (s *server) serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.rotator.Start()
	defer s.rotator.Stop()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down")
	s.rotator.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
