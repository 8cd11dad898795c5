package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ragbench/ragbench/internal/errs"
	"github.com/ragbench/ragbench/internal/logger"
	"github.com/ragbench/ragbench/internal/models"
	"github.com/ragbench/ragbench/internal/scheduler"
)

type scheduleRequest struct {
	Name     string `json:"name"`
	RunID    string `json:"run_id"`
	CronExpr string `json:"cron_expr"`
	Enabled  bool   `json:"enabled"`
}

func (s *Server) validateScheduleRequest(c *gin.Context, req *scheduleRequest) error {
	if req.Name == "" {
		return errs.Validation("name", "must not be empty")
	}
	if err := scheduler.ValidateCronExpr(req.CronExpr); err != nil {
		return errs.Validation("cron_expr", "%q is not a valid cron expression: %v", req.CronExpr, err)
	}
	// the baseline run must exist at schedule time; deleting it later
	// surfaces as a per-tick failure, not a dangling reference here
	if _, err := s.evals.GetRun(c.Request.Context(), req.RunID); err != nil {
		return err
	}
	return nil
}

// reloadScheduler picks up schedule changes in the running scheduler, if any
func (s *Server) reloadScheduler(c *gin.Context) {
	if s.sched == nil {
		return
	}
	if err := s.sched.Reload(c.Request.Context()); err != nil {
		logger.Warning("Failed to reload scheduler: %v", err)
	}
}

func (s *Server) listSchedules(c *gin.Context) {
	schedules, err := s.db.ListSchedules(c.Request.Context(), nil)
	if err != nil {
		s.handleError(c, err)
		return
	}

	s.successResponse(c, schedules)
}

func (s *Server) createSchedule(c *gin.Context) {
	var req scheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.errorResponse(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	if err := s.validateScheduleRequest(c, &req); err != nil {
		s.handleError(c, err)
		return
	}

	now := time.Now().UTC()
	schedule := &models.Schedule{
		ID:        uuid.New().String(),
		Name:      req.Name,
		RunID:     req.RunID,
		CronExpr:  req.CronExpr,
		Enabled:   req.Enabled,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.db.CreateSchedule(c.Request.Context(), schedule); err != nil {
		s.handleError(c, err)
		return
	}

	s.reloadScheduler(c)
	s.successResponse(c, schedule)
}

func (s *Server) getSchedule(c *gin.Context) {
	schedule, err := s.db.GetSchedule(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.handleError(c, err)
		return
	}

	s.successResponse(c, schedule)
}

func (s *Server) updateSchedule(c *gin.Context) {
	var req scheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.errorResponse(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	existing, err := s.db.GetSchedule(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.handleError(c, err)
		return
	}

	if err := s.validateScheduleRequest(c, &req); err != nil {
		s.handleError(c, err)
		return
	}

	existing.Name = req.Name
	existing.RunID = req.RunID
	existing.CronExpr = req.CronExpr
	existing.Enabled = req.Enabled
	existing.UpdatedAt = time.Now().UTC()

	if err := s.db.UpdateSchedule(c.Request.Context(), existing); err != nil {
		s.handleError(c, err)
		return
	}

	s.reloadScheduler(c)
	s.successResponse(c, existing)
}

func (s *Server) deleteSchedule(c *gin.Context) {
	if err := s.db.DeleteSchedule(c.Request.Context(), c.Param("id")); err != nil {
		s.handleError(c, err)
		return
	}

	s.reloadScheduler(c)
	c.JSON(http.StatusOK, APIResponse{
		Success: true,
		Message: "schedule deleted",
	})
}

func (s *Server) executeSchedule(c *gin.Context) {
	if s.sched == nil {
		s.errorResponse(c, http.StatusServiceUnavailable, "scheduler is not running")
		return
	}

	if err := s.sched.ExecuteNow(c.Request.Context(), c.Param("id")); err != nil {
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, APIResponse{
		Success: true,
		Message: "schedule executed",
	})
}
