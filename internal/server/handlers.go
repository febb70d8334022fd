package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/abhisek/mathdrill/internal/identity"
	"github.com/abhisek/mathdrill/internal/leaderboard"
	"github.com/abhisek/mathdrill/internal/problemgen"
	"github.com/abhisek/mathdrill/internal/store"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
	Code    string `json:"code,omitempty"`
}

type guestResponse struct {
	Token     string             `json:"token"`
	Principal identity.Principal `json:"principal"`
}

type topicsResponse struct {
	Topics       []string `json:"topics"`
	Difficulties []string `json:"difficulties"`
}

type meResponse struct {
	Principal          identity.Principal `json:"principal"`
	Score              int                `json:"score"`
	CompletedExercises int                `json:"completed_exercises"`
	Rank               int                `json:"rank,omitempty"`
}

// leaderboardParams selects a board. It is shared by the REST query and the
// websocket "leaderboard" message.
type leaderboardParams struct {
	Board string `form:"board" json:"board" validate:"omitempty,oneof=all-time daily weekly topic"`
	Topic string `form:"topic" json:"topic" validate:"required_if=Board topic,omitempty,topic"`
	Limit int    `form:"limit" json:"limit" validate:"omitempty,min=1,max=100"`
}

func (p leaderboardParams) query() leaderboard.Query {
	board, _ := leaderboard.ParseBoard(p.Board)
	return leaderboard.Query{Board: board, Topic: p.Topic, Limit: p.Limit}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "mathdrill",
	})
}

func (s *Server) topics(c *gin.Context) {
	resp := topicsResponse{}
	for _, t := range s.cfg.Generator.Registry().Topics() {
		resp.Topics = append(resp.Topics, string(t))
	}
	for _, d := range problemgen.Difficulties {
		resp.Difficulties = append(resp.Difficulties, d.String())
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) listLessons(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"lessons": s.lessons.Lessons()})
}

func (s *Server) getLesson(c *gin.Context) {
	topic, ok := s.cfg.Generator.Registry().ParseTopic(c.Param("topic"))
	if !ok {
		c.JSON(http.StatusNotFound, ErrorResponse{Message: "Unknown topic"})
		return
	}
	lesson, _ := s.lessons.Lesson(topic)
	c.JSON(http.StatusOK, lesson)
}

func (s *Server) createGuest(c *gin.Context) {
	p := identity.Guest(s.now())
	token, err := s.cfg.Tokens.Issue(p)
	if err != nil {
		logrus.WithError(err).Error("Failed to issue guest token")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "Failed to issue token"})
		return
	}
	c.JSON(http.StatusCreated, guestResponse{Token: token, Principal: p})
}

func (s *Server) leaderboard(c *gin.Context) {
	var params leaderboardParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid query parameters",
			Details: err.Error(),
		})
		return
	}
	if err := s.validate.Struct(params); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: validationDetails(err),
		})
		return
	}

	var uid string
	if p, ok := principalFrom(c); ok {
		uid = p.UID
	}
	view, err := s.cfg.Board.View(c.Request.Context(), params.query(), uid)
	if err != nil {
		logrus.WithError(err).WithField("board", params.Board).Error("Failed to load leaderboard")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "Failed to load leaderboard"})
		return
	}
	c.JSON(http.StatusOK, view)
}

func (s *Server) me(c *gin.Context) {
	p, _ := principalFrom(c)
	resp := meResponse{Principal: p}
	if p.Guest || s.cfg.Users == nil {
		c.JSON(http.StatusOK, resp)
		return
	}

	ctx := c.Request.Context()
	u, err := s.cfg.Users.Totals(ctx, p.UID)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusOK, resp)
		return
	}
	if err == nil {
		resp.Score = u.Score
		resp.CompletedExercises = u.CompletedExercises
		resp.Rank, err = s.cfg.Users.Rank(ctx, p.UID)
	}
	if err != nil {
		logrus.WithError(err).WithField("uid", p.UID).Error("Failed to load user totals")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "Failed to load totals"})
		return
	}
	c.JSON(http.StatusOK, resp)
}
