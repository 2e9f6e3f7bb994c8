package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"runtime/debug"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"goldword-tools/internal/vocab"
)

const completionsPath = "/v1/chat/completions"

var (
	corsAllowHeaders = []string{"Content-Type", "Authorization"}
	corsAllowMethods = []string{"POST", "GET", "OPTIONS"}
)

// Config defines server dependencies.
type Config struct {
	// Entry is summarised into every completion. Nil means vocab.DefaultEntry.
	Entry *vocab.Entry
}

// Server serves the canned chat completion.
type Server struct {
	summary string
}

// NewServer constructs the API server. The summary is computed once since the
// response never depends on the request.
func NewServer(cfg Config) *Server {
	entry := vocab.DefaultEntry()
	if cfg.Entry != nil {
		entry = *cfg.Entry
	}
	return &Server{summary: entry.Summary()}
}

// Router configures gin routes.
func (s *Server) Router() (*gin.Engine, error) {
	r := gin.New()
	// Every path other than completionsPath must reach NoRoute and its CORS
	// headers, so gin must not answer with a redirect first.
	r.RedirectTrailingSlash = false
	r.RedirectFixedPath = false

	r.Use(corsHeaders())
	r.Use(requestLogger())
	r.Use(gin.CustomRecoveryWithWriter(io.Discard, s.recoverPanic))

	// corsHeaders owns the allow lists; left empty here, cors does not
	// overwrite them with its own comma-joined form on browser preflights.
	corsCfg := cors.DefaultConfig()
	corsCfg.AllowAllOrigins = true
	corsCfg.AllowHeaders = nil
	corsCfg.AllowMethods = nil
	r.Use(cors.New(corsCfg))

	r.POST(completionsPath, s.handleChatCompletions)
	r.NoRoute(s.handleNoRoute)

	return r, nil
}

func (s *Server) handleChatCompletions(c *gin.Context) {
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		s.renderError(c, http.StatusInternalServerError, fmt.Errorf("read request body: %w", err))
		return
	}

	var req ChatCompletionRequest
	if len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, &req); err != nil {
			logrus.WithError(err).WithField("bytes", len(raw)).Debug("ignoring unparseable completion request")
		}
	}
	logrus.WithFields(logrus.Fields{
		"model":    req.Model,
		"messages": len(req.Messages),
		"stream":   req.Stream,
	}).Debug("chat completion request")

	c.JSON(http.StatusOK, NewChatCompletionResponse(s.summary))
}

// handleNoRoute answers preflight for any path and 404s everything else.
func (s *Server) handleNoRoute(c *gin.Context) {
	if c.Request.Method == http.MethodOptions {
		c.AbortWithStatus(http.StatusNoContent)
		return
	}
	c.AbortWithStatus(http.StatusNotFound)
}

func (s *Server) recoverPanic(c *gin.Context, recovered any) {
	logrus.WithField("stack", string(debug.Stack())).Debug("panic recovered")
	s.renderError(c, http.StatusInternalServerError, fmt.Errorf("%v", recovered))
}

func (s *Server) renderError(c *gin.Context, status int, err error) {
	logrus.WithError(err).WithFields(logrus.Fields{
		"method": c.Request.Method,
		"path":   c.Request.URL.Path,
	}).Error("mock server error")
	c.AbortWithStatusJSON(status, ErrorResponse{
		Error: ErrorDetail{
			Message: "Mock server error: " + err.Error(),
			Type:    serverErrorType,
		},
	})
}
