package endpoints

import (
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/nereus/internal/http/api"
	"github.com/Nixie-Tech-LLC/nereus/internal/http/api/control/packets"
	"github.com/Nixie-Tech-LLC/nereus/internal/store"
	"github.com/Nixie-Tech-LLC/nereus/internal/sysinfo"
)

type SystemController struct {
	store     store.Store
	scheduler Scheduler
}

func NewSystemController(store store.Store, scheduler Scheduler) *SystemController {
	return &SystemController{store: store, scheduler: scheduler}
}

func SystemModule(store store.Store, scheduler Scheduler) api.Module {
	ctl := NewSystemController(store, scheduler)
	return api.ModuleFunc(func(c *api.Controller) {
		c.GET("/system/status", ctl.status)
		c.GET("/system/timezone", ctl.timezone)
	})
}

func (s *SystemController) status(ctx *gin.Context) (any, *api.APIError) {
	diskUsage, err := sysinfo.DiskUsage("/")
	if err != nil {
		log.Error().Err(err).Msg("status: disk usage read failed")
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not read disk usage"}
	}
	memoryUsage, err := sysinfo.MemoryUsage()
	if err != nil {
		log.Error().Err(err).Msg("status: memory usage read failed")
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not read memory usage"}
	}

	triggers := s.scheduler.Snapshot()
	armed := make([]packets.TriggerResponse, 0, len(triggers))
	for _, tr := range triggers {
		armed = append(armed, packets.TriggerResponse{
			ScheduleID: tr.ScheduleID,
			NextRunAt:  tr.NextFire.Format(time.RFC3339),
		})
	}

	return gin.H{
		"timestamp":       time.Now().Format(time.RFC3339),
		"disk":            diskUsage,
		"memory":          memoryUsage,
		"schedules_total": len(s.store.ListSchedules()),
		"schedules_armed": len(armed),
		"triggers":        armed,
	}, nil
}

func (s *SystemController) timezone(ctx *gin.Context) (any, *api.APIError) {
	now := time.Now()
	zone, _ := now.Zone()

	configured := os.Getenv("TZ")
	if configured == "" {
		configured = "UTC"
	}

	return gin.H{
		"timezone":   configured,
		"system_tz":  zone,
		"utc_offset": now.Format("-0700"),
	}, nil
}
