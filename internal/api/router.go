package api

import (
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"equipment-scheduling-backend/config"
	"equipment-scheduling-backend/internal/mw"
	"equipment-scheduling-backend/internal/scheduling"
	"equipment-scheduling-backend/internal/store"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(svc *scheduling.Service, s store.Store, serverCfg config.ServerConfig, webpushOptions *webpush.Options) *gin.Engine {
	r := gin.Default()

	handler := NewHandler(svc, s, webpushOptions)

	rateLimiter := mw.RateLimiter(rate.Limit(serverCfg.RateLimitPerSec), serverCfg.RateLimitBurst, serverCfg.RequestIPHeader)

	cacheTTL := time.Duration(serverCfg.CacheTTLSeconds) * time.Second
	cacheStore := cache.New(cacheTTL, 2*cacheTTL)
	caching := mw.Cache(cacheStore, cacheTTL)

	api := r.Group("/api/v1")
	api.Use(rateLimiter)
	{
		schedules := api.Group("/schedules")
		{
			schedules.POST("", handler.CreateSchedule)
			schedules.GET("", handler.ListSchedules)
			schedules.POST("/conflicts/check", handler.CheckConflicts)
			schedules.POST("/smart-suggest", handler.SmartSuggest)
			schedules.GET("/dashboard/overview", caching, handler.DashboardOverview)
			schedules.GET("/equipment/:id/availability", handler.EquipmentAvailability)
			schedules.GET("/equipment/:id/statistics", handler.EquipmentStatistics)
			schedules.GET("/equipment/:id/schedules", handler.EquipmentSchedules)
			schedules.GET("/:id", handler.GetSchedule)
			schedules.PUT("/:id/status", handler.UpdateScheduleStatus)
			schedules.DELETE("/:id", handler.CancelSchedule)
		}

		api.GET("/equipment", caching, handler.ListEquipment)

		api.GET("/subscriptions", handler.GetSubscription)
		api.PUT("/subscriptions", handler.PutSubscription)
		api.DELETE("/subscriptions", handler.DeleteSubscription)
		api.GET("/vapid_public_key", handler.GetVAPIDPublicKey)
	}

	return r
}
