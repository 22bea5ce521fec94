package server

import (
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/danmuck/d7alp/internal/alp"
	"github.com/danmuck/d7alp/internal/alp/varint"
	"github.com/danmuck/d7alp/internal/auth"
	"github.com/danmuck/d7alp/internal/observability"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

var (
	ErrBadHex          = errors.New("command is not valid hex")
	ErrCommandTooLarge = errors.New("command exceeds max_command_bytes")
)

type DecodeRequest struct {
	Command string `json:"command" binding:"required"`
}

type VarintRequest struct {
	Values []uint64 `json:"values" binding:"required"`
}

type VarintResponse struct {
	Encoded []string `json:"encoded"`
}

func (s *Service) RegisterRoutes() {
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"uptime":  time.Since(s.Appeared).String(),
			"service": s.Name,
			"version": "0.0.1",
		})
	})

	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := s.router.Group("/v1")
	if s.authToken != "" {
		v1.Use(auth.Require(auth.StaticToken{Token: s.authToken}))
	}
	v1.POST("/decode", s.handleDecode)
	v1.POST("/varint", s.handleVarint)
}

func (s *Service) handleDecode(c *gin.Context) {
	// Hex doubles the size; leave room for separators and the JSON envelope.
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, int64(4*s.maxCommandBytes+1024))

	var req DecodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": ErrCommandTooLarge.Error()})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	raw, err := s.ParseCommand(req.Command)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, ErrCommandTooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		observability.RecordCommand(s.Name, observability.OutcomeInvalid, nil)
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.Set(observability.KeyCommandBytes, len(raw))
	report := alp.Inspect(raw)
	c.Set(observability.KeyActions, len(report.Actions))
	ops := make([]string, 0, len(report.Actions))
	for _, v := range report.Actions {
		ops = append(ops, v.Op)
	}

	status := http.StatusOK
	outcome := observability.OutcomeOK
	if report.Error != nil {
		status = http.StatusUnprocessableEntity
		outcome = report.Error.Kind
		log.Warn().
			Str("service", s.Name).
			Str("kind", report.Error.Kind).
			Int("offset", report.Error.Offset).
			Int("decoded", len(report.Actions)).
			Msg("command decode failed")
	}
	observability.RecordCommand(s.Name, outcome, ops)
	render(c, status, report)
}

// ParseCommand accepts hex with optional whitespace and enforces the size
// limit on the decoded bytes.
func (s *Service) ParseCommand(text string) ([]byte, error) {
	clean := strings.Join(strings.Fields(text), "")
	if len(clean)/2 > s.maxCommandBytes {
		return nil, fmt.Errorf("%w: %d > %d", ErrCommandTooLarge, len(clean)/2, s.maxCommandBytes)
	}
	raw, err := hex.DecodeString(clean)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadHex, err)
	}
	return raw, nil
}

func (s *Service) handleVarint(c *gin.Context) {
	var req VarintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp := VarintResponse{Encoded: make([]string, 0, len(req.Values))}
	for i, n := range req.Values {
		if n > uint64(varint.Max) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": fmt.Sprintf("values[%d]=%d exceeds varint max %d", i, n, varint.Max),
			})
			return
		}
		resp.Encoded = append(resp.Encoded, strings.ToUpper(hex.EncodeToString(varint.Append(nil, uint32(n)))))
	}
	render(c, http.StatusOK, resp)
}
