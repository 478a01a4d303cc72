package endpoints

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/nereus/internal/engine"
	"github.com/Nixie-Tech-LLC/nereus/internal/http/api"
	"github.com/Nixie-Tech-LLC/nereus/internal/http/api/control/packets"
	"github.com/Nixie-Tech-LLC/nereus/internal/model"
	"github.com/Nixie-Tech-LLC/nereus/internal/store"
)

// Scheduler is the slice of the trigger engine the API drives.
type Scheduler interface {
	Reconcile()
	RunNow(id string) error
	NextFireFor(id string) (time.Time, bool)
	Snapshot() []engine.ArmedTrigger
	Armed() int
}

type ScheduleController struct {
	store     store.Store
	scheduler Scheduler
}

func NewScheduleController(store store.Store, scheduler Scheduler) *ScheduleController {
	return &ScheduleController{store: store, scheduler: scheduler}
}

func ScheduleModule(store store.Store, scheduler Scheduler) api.Module {
	ctl := NewScheduleController(store, scheduler)
	return api.ModuleFunc(func(c *api.Controller) {
		c.GET("/schedules", ctl.listSchedules)
		c.POST("/schedules", ctl.createSchedule)
		c.GET("/schedules/:id", ctl.getSchedule)
		c.PUT("/schedules/:id", ctl.updateSchedule)
		c.DELETE("/schedules/:id", ctl.deleteSchedule)

		// out-of-band run; the armed trigger stays where it is
		c.POST("/schedules/:id/run", ctl.runSchedule)
	})
}

func (s *ScheduleController) respond(sched model.Schedule) packets.ScheduleResponse {
	var next *time.Time
	if at, ok := s.scheduler.NextFireFor(sched.ID); ok {
		next = &at
	}
	return packets.NewScheduleResponse(sched, next)
}

func (s *ScheduleController) listSchedules(ctx *gin.Context) (any, *api.APIError) {
	list := s.store.ListSchedules()

	response := make([]packets.ScheduleResponse, 0, len(list))
	for _, it := range list {
		response = append(response, s.respond(it))
	}
	return response, nil
}

func (s *ScheduleController) getSchedule(ctx *gin.Context) (any, *api.APIError) {
	sched, err := s.store.GetSchedule(ctx.Param("id"))
	if err != nil {
		return nil, &api.APIError{Code: http.StatusNotFound, Message: "schedule not found"}
	}
	return s.respond(sched), nil
}

func (s *ScheduleController) createSchedule(ctx *gin.Context) (any, *api.APIError) {
	var request packets.ScheduleRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}
	draft, err := request.Draft()
	if err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	sched, err := s.store.CreateSchedule(draft)
	if err != nil {
		var invalid *model.ValidationError
		if errors.As(err, &invalid) {
			return nil, &api.APIError{Code: http.StatusBadRequest, Message: invalid.Error()}
		}
		log.Error().Err(err).Msg("createSchedule failed")
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not create schedule"}
	}
	s.scheduler.Reconcile()

	return s.respond(sched), nil
}

func (s *ScheduleController) updateSchedule(ctx *gin.Context) (any, *api.APIError) {
	var request packets.ScheduleRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}
	draft, err := request.Draft()
	if err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	sched, err := s.store.UpdateSchedule(ctx.Param("id"), draft)
	if err != nil {
		var invalid *model.ValidationError
		switch {
		case errors.As(err, &invalid):
			return nil, &api.APIError{Code: http.StatusBadRequest, Message: invalid.Error()}
		case errors.Is(err, store.ErrNotFound):
			return nil, &api.APIError{Code: http.StatusNotFound, Message: "schedule not found"}
		default:
			log.Error().Err(err).Str("schedule_id", ctx.Param("id")).Msg("updateSchedule failed")
			return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not update schedule"}
		}
	}
	s.scheduler.Reconcile()

	return s.respond(sched), nil
}

func (s *ScheduleController) deleteSchedule(ctx *gin.Context) (any, *api.APIError) {
	if err := s.store.DeleteSchedule(ctx.Param("id")); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, &api.APIError{Code: http.StatusNotFound, Message: "schedule not found"}
		}
		log.Error().Err(err).Str("schedule_id", ctx.Param("id")).Msg("deleteSchedule failed")
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not delete schedule"}
	}
	s.scheduler.Reconcile()

	return gin.H{"message": "deleted"}, nil
}

func (s *ScheduleController) runSchedule(ctx *gin.Context) (any, *api.APIError) {
	id := ctx.Param("id")
	if err := s.scheduler.RunNow(id); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			return nil, &api.APIError{Code: http.StatusNotFound, Message: "schedule not found"}
		case errors.Is(err, engine.ErrRunInFlight):
			return nil, &api.APIError{Code: http.StatusConflict, Message: "a run for this schedule is already in flight"}
		default:
			log.Error().Err(err).Str("schedule_id", id).Msg("runSchedule failed")
			return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not start run"}
		}
	}

	return gin.H{"message": "run started", "schedule_id": id}, nil
}
