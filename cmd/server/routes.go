package main

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Nixie-Tech-LLC/nereus/internal/http/api"
	controlapi "github.com/Nixie-Tech-LLC/nereus/internal/http/api/control/endpoints"
	"github.com/Nixie-Tech-LLC/nereus/internal/http/middleware"
	"github.com/Nixie-Tech-LLC/nereus/internal/notify"
	"github.com/Nixie-Tech-LLC/nereus/internal/store"
	"github.com/Nixie-Tech-LLC/nereus/internal/sysinfo"
)

// RegisterRoutes sets up all application routes
func RegisterRoutes(
	r *gin.Engine,
	scheduleStore store.Store,
	scheduler controlapi.Scheduler,
	runLog controlapi.RunHistory,
	notifier *notify.Notifier,
	browser *sysinfo.Browser,
) {
	// CORS
	r.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool { return true },
		AllowMethods: []string{
			"GET",
			"POST",
			"PUT",
			"PATCH",
			"DELETE",
			"OPTIONS",
			"HEAD",
		},
		AllowHeaders: []string{
			"Origin",
			"Content-Type",
			"Authorization",
			"Accept",
		},
		AllowCredentials: false,
	}))
	r.Use(middleware.RequestLogger())

	api.MountGroup(r, api.GroupConfig{
		Prefix: "/api",
	},
		controlapi.ScheduleModule(scheduleStore, scheduler),
		controlapi.RunsModule(runLog),
		controlapi.SystemModule(scheduleStore, scheduler),
		controlapi.NotifyModule(notifier),
		controlapi.FoldersModule(browser),
	)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().Format(time.RFC3339),
		})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}
