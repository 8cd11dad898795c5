package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ragbench/ragbench/internal/models"
)

type llmConfigRequest struct {
	Name            string  `json:"name"`
	Provider        string  `json:"provider"`
	ChatEndpoint    string  `json:"chat_endpoint"`
	DeploymentName  string  `json:"deployment_name"`
	APIVersion      string  `json:"api_version"`
	SubscriptionKey string  `json:"subscription_key"`
	Temperature     float64 `json:"temperature"`
	MaxTokens       int     `json:"max_tokens"`
}

func (r *llmConfigRequest) toModel() *models.LLMConfig {
	return &models.LLMConfig{
		Name:            r.Name,
		Provider:        r.Provider,
		ChatEndpoint:    r.ChatEndpoint,
		DeploymentName:  r.DeploymentName,
		APIVersion:      r.APIVersion,
		SubscriptionKey: r.SubscriptionKey,
		Temperature:     r.Temperature,
		MaxTokens:       r.MaxTokens,
	}
}

// maskedLLMConfig copies a config with its subscription key masked for display
func maskedLLMConfig(cfg *models.LLMConfig) *models.LLMConfig {
	masked := *cfg
	masked.SubscriptionKey = maskSecret(cfg.SubscriptionKey)
	return &masked
}

func (s *Server) listLLMConfigs(c *gin.Context) {
	configs, err := s.configs.ListLLMConfigs(c.Request.Context())
	if err != nil {
		s.handleError(c, err)
		return
	}

	masked := make([]*models.LLMConfig, 0, len(configs))
	for _, cfg := range configs {
		masked = append(masked, maskedLLMConfig(cfg))
	}

	s.successResponse(c, masked)
}

func (s *Server) createLLMConfig(c *gin.Context) {
	var req llmConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.errorResponse(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	cfg := req.toModel()
	if err := s.configs.CreateLLMConfig(c.Request.Context(), cfg); err != nil {
		s.handleError(c, err)
		return
	}

	s.successResponse(c, maskedLLMConfig(cfg))
}

func (s *Server) getLLMConfig(c *gin.Context) {
	cfg, err := s.configs.GetLLMConfig(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.handleError(c, err)
		return
	}

	s.successResponse(c, maskedLLMConfig(cfg))
}

func (s *Server) updateLLMConfig(c *gin.Context) {
	var req llmConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.errorResponse(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	cfg := req.toModel()
	if err := s.configs.UpdateLLMConfig(c.Request.Context(), c.Param("id"), cfg); err != nil {
		s.handleError(c, err)
		return
	}

	s.successResponse(c, maskedLLMConfig(cfg))
}

func (s *Server) deleteLLMConfig(c *gin.Context) {
	if err := s.configs.DeleteLLMConfig(c.Request.Context(), c.Param("id")); err != nil {
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, APIResponse{
		Success: true,
		Message: "llm config deleted",
	})
}

func (s *Server) verifyLLMConfig(c *gin.Context) {
	probe, err := s.configs.VerifyLLMConfig(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.handleError(c, err)
		return
	}

	s.successResponse(c, probe)
}
