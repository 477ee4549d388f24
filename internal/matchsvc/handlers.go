package matchsvc

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"roll-for-your-life/internal/match"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

type Service struct {
	store      Store
	scoreToWin int
	logger     zerolog.Logger
}

var registerIDOnce sync.Once

func NewService(store Store, scoreToWin int, logger zerolog.Logger) *Service {
	registerIDOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			v.RegisterCustomTypeFunc(match.IDValue, match.ID{})
		}
	})
	return &Service{store: store, scoreToWin: scoreToWin, logger: logger}
}

type reportRequest struct {
	MatchID  match.ID `json:"matchId" binding:"required"`
	WinnerID match.ID `json:"winnerId" binding:"required"`
}

type matchURI struct {
	ID string `uri:"id" binding:"required"`
}

type matchResponse struct {
	MatchID    match.ID           `json:"matchId"`
	ScoreToWin int                `json:"scoreToWin"`
	Players    []match.PlayerInfo `json:"players"`
	WinnerID   match.ID           `json:"winnerId,omitzero"`
	DecidedAt  *time.Time         `json:"decidedAt,omitempty"`
}

var reportMessages = bindMessages{
	"MatchID":  {"required": "matchId is required"},
	"WinnerID": {"required": "winnerId is required"},
}

func (s *Service) Handler() http.Handler {
	router := gin.New()
	router.Use(gin.Recovery(), s.requestLogger())
	router.GET(match.GamePath, s.handleFetch)
	router.POST(match.GamePath, s.handleReport)
	router.GET("/api/matches/:id", s.handleGetMatch)
	return router
}

func (s *Service) handleFetch(c *gin.Context) {
	ctx := c.Request.Context()
	roster, err := s.store.Roster(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("load roster")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load roster"})
		return
	}
	m, err := s.store.CreateMatch(ctx, s.scoreToWin, roster)
	if errors.Is(err, ErrEmptyRoster) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no players available"})
		return
	}
	if err != nil {
		s.logger.Error().Err(err).Msg("create match")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create match"})
		return
	}
	s.logger.Info().Str("match_id", m.ID.String()).Int("players", len(m.Players)).Msg("match issued")
	c.JSON(http.StatusOK, newMatchResponse(m))
}

func (s *Service) handleReport(c *gin.Context) {
	var req reportRequest
	if !bindJSON(c, &req, reportMessages, "invalid report") {
		return
	}
	m, err := s.store.RecordWinner(c.Request.Context(), req.MatchID, req.WinnerID)
	switch {
	case errors.Is(err, ErrMatchNotFound):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": err.Error()})
		return
	case errors.Is(err, ErrUnknownPlayer):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"success": false, "error": err.Error()})
		return
	case errors.Is(err, ErrAlreadyDecided):
		s.logger.Warn().Str("match_id", req.MatchID.String()).Str("winner_id", req.WinnerID.String()).
			Str("recorded_winner_id", m.WinnerID.String()).Msg("conflicting winner report")
		c.JSON(http.StatusConflict, gin.H{"success": false, "error": err.Error()})
		return
	case err != nil:
		s.logger.Error().Err(err).Str("match_id", req.MatchID.String()).Msg("record winner")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to record winner"})
		return
	}
	s.logger.Info().Str("match_id", m.ID.String()).Str("winner_id", m.WinnerID.String()).Msg("winner recorded")
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Service) handleGetMatch(c *gin.Context) {
	var uri matchURI
	if !bindURI(c, &uri) {
		return
	}
	m, err := s.store.GetMatch(c.Request.Context(), match.NewID(uri.ID))
	if errors.Is(err, ErrMatchNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load match"})
		return
	}
	c.JSON(http.StatusOK, newMatchResponse(m))
}

func newMatchResponse(m Match) matchResponse {
	resp := matchResponse{
		MatchID:    m.ID,
		ScoreToWin: m.ScoreToWin,
		Players:    m.Players,
		WinnerID:   m.WinnerID,
	}
	if m.Decided() {
		at := m.DecidedAt
		resp.DecidedAt = &at
	}
	return resp
}

func (s *Service) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	}
}

type bindMessages map[string]map[string]string

func bindJSON(c *gin.Context, req any, messages bindMessages, fallback string) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": resolveBindError(err, messages, fallback)})
		return false
	}
	return true
}

func bindURI(c *gin.Context, req any) bool {
	if err := c.ShouldBindUri(req); err != nil {
		c.Status(http.StatusNotFound)
		return false
	}
	return true
}

func resolveBindError(err error, messages bindMessages, fallback string) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, verr := range verrs {
			if fieldMsgs, ok := messages[verr.Field()]; ok {
				if msg, ok := fieldMsgs[verr.Tag()]; ok {
					return msg
				}
			}
		}
	}
	if fallback != "" {
		return fallback
	}
	return "invalid request"
}
