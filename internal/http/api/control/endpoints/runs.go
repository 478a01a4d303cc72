package endpoints

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/nereus/internal/history"
	"github.com/Nixie-Tech-LLC/nereus/internal/http/api"
	"github.com/Nixie-Tech-LLC/nereus/internal/http/api/control/packets"
)

// RunHistory is the read side of the run log.
type RunHistory interface {
	BySchedule(scheduleID string, limit int) ([]history.Record, error)
	Recent(limit int) ([]history.Record, error)
}

type RunsController struct {
	runLog RunHistory
}

func NewRunsController(runLog RunHistory) *RunsController {
	return &RunsController{runLog: runLog}
}

func RunsModule(runLog RunHistory) api.Module {
	ctl := NewRunsController(runLog)
	return api.ModuleFunc(func(c *api.Controller) {
		c.GET("/runs", ctl.recentRuns)
		c.GET("/schedules/:id/runs", ctl.scheduleRuns)
	})
}

func (r *RunsController) recentRuns(ctx *gin.Context) (any, *api.APIError) {
	var query packets.RunsQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	records, err := r.runLog.Recent(query.Limit)
	if err != nil {
		log.Error().Err(err).Msg("recentRuns failed")
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not read run history"}
	}
	return runResponses(records), nil
}

func (r *RunsController) scheduleRuns(ctx *gin.Context) (any, *api.APIError) {
	var query packets.RunsQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	records, err := r.runLog.BySchedule(ctx.Param("id"), query.Limit)
	if err != nil {
		log.Error().Err(err).Str("schedule_id", ctx.Param("id")).Msg("scheduleRuns failed")
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not read run history"}
	}
	return runResponses(records), nil
}

func runResponses(records []history.Record) []packets.RunResponse {
	response := make([]packets.RunResponse, 0, len(records))
	for _, rec := range records {
		response = append(response, packets.NewRunResponse(rec))
	}
	return response
}
