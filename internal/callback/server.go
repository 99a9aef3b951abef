// Package callback serves the loopback redirect URI. The identity provider puts
// the token in the URL fragment, which browsers never send to a server, so the
// page posts its own address back and then scrubs it with history.replaceState.
package callback

import (
	"context"
	_ "embed"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"dailyattendance/internal/logger"
	"dailyattendance/internal/redirect"
)

//go:embed page.html
var page []byte

// Server is the loopback HTTP server.
type Server struct {
	engine  *gin.Engine
	handler *redirect.Handler
	origin  string
	log     logger.Logger
}

type callbackRequest struct {
	Href string `json:"href" binding:"required"`
}

type callbackResponse struct {
	Captured bool   `json:"captured"`
	Location string `json:"location,omitempty"`
}

// New builds the server around a redirect handler. pageURL is the redirect
// URI the page is served from; only that origin may post a callback.
func New(h *redirect.Handler, pageURL string, log logger.Logger) *Server {
	if log == nil {
		log = logger.Discard()
	}
	s := &Server{handler: h, origin: originOf(pageURL), log: log.WithComponent("callback")}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(noLeakHeaders())
	r.GET("/", s.page)
	r.POST("/callback", s.callback)
	r.NoRoute(func(c *gin.Context) {
		if c.Request.Method == http.MethodGet {
			s.page(c)
			return
		}
		c.JSON(http.StatusNotFound, gin.H{"detail": "not found"})
	})
	s.engine = r
	return s
}

// Handler exposes the router, mostly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run listens on addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		s.log.Infof("login callback listening on %s", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) page(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", page)
}

func (s *Server) callback(c *gin.Context) {
	// A JSON body forces cross-site callers through a CORS preflight, which this server never grants.
	if c.ContentType() != binding.MIMEJSON {
		c.JSON(http.StatusUnsupportedMediaType, gin.H{"detail": "content type must be application/json"})
		return
	}
	if origin := c.GetHeader("Origin"); origin != "" && origin != s.origin {
		s.log.Warnf("rejected callback from origin %q", origin)
		c.JSON(http.StatusForbidden, gin.H{"detail": "cross-origin callback refused"})
		return
	}

	var req callbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "href is required"})
		return
	}

	loc := &pageLocation{href: req.Href}
	resp := callbackResponse{Captured: s.handler.Handle(c.Request.Context(), loc)}
	if loc.replaced != "" {
		resp.Location = visiblePath(loc.replaced)
	}
	c.JSON(http.StatusOK, resp)
}

// pageLocation records the rewrite so the page can apply it.
type pageLocation struct {
	href     string
	replaced string
}

func (l *pageLocation) Current() string  { return l.href }
func (l *pageLocation) Replace(u string) { l.replaced = u }

// originOf reduces a URL to scheme://host[:port], the form browsers send in Origin.
func originOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	return strings.ToLower(u.Scheme) + "://" + strings.ToLower(u.Host)
}

// visiblePath keeps path and query, the part history.replaceState accepts on the same origin.
func visiblePath(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Path == "" {
		return "/"
	}
	u.Fragment = ""
	return u.RequestURI()
}

func noLeakHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Referrer-Policy", "no-referrer")
		c.Header("Cache-Control", "no-store")
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Next()
	}
}
