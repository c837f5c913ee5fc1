// Package api is the HTTP request surface. Handlers translate JSON bodies
// into service calls and classified errors into status codes.
package api

import (
	"chat-hub/contract"
	"chat-hub/services"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type Options struct {
	AllowedOrigins []string
	// AuthRateLimit requests per AuthRatePeriod and client IP on signup and login.
	AuthRateLimit  uint
	AuthRatePeriod time.Duration
}

type Server struct {
	log        *slog.Logger
	auth       services.IAuthService
	users      services.IUserService
	membership services.IMembershipService
	chat       services.IChatService
	verifier   contract.IdentityVerifier
	options    Options
}

func NewServer(log *slog.Logger, auth services.IAuthService, users services.IUserService,
	membership services.IMembershipService, chat services.IChatService,
	verifier contract.IdentityVerifier, options Options) *Server {
	return &Server{
		log:        log,
		auth:       auth,
		users:      users,
		membership: membership,
		chat:       chat,
		verifier:   verifier,
		options:    options,
	}
}

// Router builds the engine. mounts receive the root engine to add routes
// living outside /api/v1 (websocket, debug).
func (s *Server) Router(mounts ...func(r *gin.Engine)) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger(s.log))

	corsConfig := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete},
		AllowHeaders:  []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders: []string{"X-Rate-Limit-Limit", "X-Rate-Limit-Remaining", "X-Rate-Limit-Reset"},
		MaxAge:        12 * time.Hour,
	}
	if len(s.options.AllowedOrigins) == 0 {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = s.options.AllowedOrigins
		corsConfig.AllowCredentials = true
	}
	r.Use(cors.New(corsConfig))

	s.defineRoutes(r)
	for _, mount := range mounts {
		mount(r)
	}
	return r
}

func (s *Server) defineRoutes(r *gin.Engine) {
	apiRouter := r.Group("/api/v1")

	limitRate := LimitRate(s.options.AuthRateLimit, s.options.AuthRatePeriod)
	apiRouter.POST("/auth/signup", limitRate, s.handleSignup)
	apiRouter.POST("/auth/login", limitRate, s.handleLogin)

	authorized := apiRouter.Group("/")
	authorized.Use(Authorize(s.verifier))

	authorized.GET("/users", s.handleListUsers)
	authorized.GET("/users/:id", s.handleGetUser)

	chat := authorized.Group("/chat")
	chat.GET("/conversations", s.handleListConversations)
	chat.GET("/conversations/search", s.handleSearchConversations)
	chat.POST("/conversations/direct", s.handleCreateDirect)
	chat.POST("/conversations/group", s.handleCreateGroup)
	chat.GET("/conversations/:id", s.handleGetConversation)
	chat.PATCH("/conversations/:id", s.handleRenameConversation)
	chat.GET("/conversations/:id/messages", s.handleListMessages)
	chat.POST("/conversations/:id/participants", s.handleAddParticipants)
	chat.POST("/conversations/:id/leave", s.handleLeave)
	chat.POST("/messages", s.handleSendMessage)
	chat.PATCH("/messages/:id", s.handleEditMessage)
	chat.DELETE("/messages/:id", s.handleDeleteMessage)
}
