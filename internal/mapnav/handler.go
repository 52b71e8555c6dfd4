package mapnav

import (
	"embed"
	"errors"
	"io/fs"
	"net/http"

	"github.com/evanhutnik/mapnav/internal/types"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

//go:embed web
var webFiles embed.FS

// HandlerConfig carries the HTTP-only knobs of the service.
type HandlerConfig struct {
	CORSOrigins    []string
	NavigatePerMin int
}

// Handler builds the gin engine serving the page and the /api surface.
func (s *Service) Handler(cfg HandlerConfig) http.Handler {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(RequestLogger(s.Logger))
	r.Use(cors.New(corsConfig(cfg.CORSOrigins)))

	s.RegisterRoutes(r, NewIPRateLimiter(cfg.NavigatePerMin, s.Logger))
	return r
}

// RegisterRoutes registers the page and the API routes on r.
func (s *Service) RegisterRoutes(r *gin.Engine, navigateLimiter *IPRateLimiter) {
	page, err := fs.Sub(webFiles, "web")
	if err != nil {
		panic(err)
	}
	index, err := fs.ReadFile(page, "index.html")
	if err != nil {
		panic(err)
	}
	r.GET("/", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", index)
	})
	r.StaticFileFS("/app.js", "app.js", http.FS(page))
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		api.GET("/random-location", s.RandomLocationHandler)
		api.GET("/maps-credentials", s.CredentialsHandler)
		api.POST("/navigate", navigateLimiter.Limit(), s.NavigateHandler)
		api.GET("/geocode", s.GeocodeHandler)
		api.GET("/autocomplete", s.AutocompleteHandler)
		api.GET("/place-details", s.PlaceDetailsHandler)
	}
}

// RandomLocationHandler handles GET /api/random-location.
func (s *Service) RandomLocationHandler(c *gin.Context) {
	c.JSON(http.StatusOK, s.RandomLocation())
}

// CredentialsHandler handles GET /api/maps-credentials.
func (s *Service) CredentialsHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"scriptUrl": s.ScriptUrl()})
}

// NavigateHandler handles POST /api/navigate.
func (s *Service) NavigateHandler(c *gin.Context) {
	var req NavigateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.String(http.StatusBadRequest, "Invalid request body")
		return
	}

	route, err := s.Navigate(c.Request.Context(), req)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, NavigateResponse{Route: route})
}

// GeocodeHandler handles GET /api/geocode?address=...
func (s *Service) GeocodeHandler(c *gin.Context) {
	coord, err := s.Geocode(c.Request.Context(), c.Query("address"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"location": coord})
}

// AutocompleteHandler handles GET /api/autocomplete?input=...&session_token=...
func (s *Service) AutocompleteHandler(c *gin.Context) {
	token, err := types.ParseSessionToken(c.Query("session_token"))
	if err != nil {
		c.String(http.StatusBadRequest, "Invalid 'session_token' query parameter")
		return
	}

	predictions, err := s.Predictions(c.Request.Context(), c.Query("input"), token)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"predictions": predictions})
}

// PlaceDetailsHandler handles GET /api/place-details?place_id=...&session_token=...
func (s *Service) PlaceDetailsHandler(c *gin.Context) {
	token, err := types.ParseSessionToken(c.Query("session_token"))
	if err != nil {
		c.String(http.StatusBadRequest, "Invalid 'session_token' query parameter")
		return
	}

	coord, err := s.PlaceLocation(c.Request.Context(), c.Query("place_id"), token)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"location": coord})
}

func (s *Service) writeError(c *gin.Context, err error) {
	var codeErr CodeError
	if errors.As(err, &codeErr) {
		c.String(codeErr.code, codeErr.msg)
		return
	}
	s.Logger.Errorw(err.Error(), "path", c.Request.URL.Path)
	c.String(http.StatusInternalServerError, "Internal server error")
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodOptions}
	cfg.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}
