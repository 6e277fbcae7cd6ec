package config

import (
	"bookinghub/middleware"
	"bookinghub/services/logger"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/olahol/melody"
)

// InitApp dựng gin engine với cors, request id, log request và melody cho websocket
func InitApp(cfg *Config, log *logger.DefaultLogger) (*gin.Engine, *melody.Melody) {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(log))
	router.Use(middleware.ErrorHandler(log))

	configCors := cors.DefaultConfig()
	configCors.AddAllowHeaders("Authorization", middleware.HeaderRequestID)
	configCors.AllowCredentials = true
	if len(cfg.Server.AllowedOrigins) > 0 {
		configCors.AllowOrigins = cfg.Server.AllowedOrigins
	} else {
		configCors.AllowOriginFunc = func(origin string) bool {
			return true
		}
	}
	router.Use(cors.New(configCors))

	_ = router.SetTrustedProxies(nil)

	m := melody.New()
	m.HandleConnect(func(s *melody.Session) {
		log.Debug("ws connected: %v", s.Keys["userID"])
	})
	m.HandleError(func(s *melody.Session, err error) {
		log.Warn("ws error: %v", err)
	})

	return router, m
}
