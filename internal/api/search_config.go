package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ragbench/ragbench/internal/models"
)

type searchConfigRequest struct {
	Name                  string `json:"name"`
	SearchServiceEndpoint string `json:"search_service_endpoint"`
}

func (s *Server) listSearchConfigs(c *gin.Context) {
	configs, err := s.configs.ListSearchConfigs(c.Request.Context())
	if err != nil {
		s.handleError(c, err)
		return
	}

	s.successResponse(c, configs)
}

func (s *Server) createSearchConfig(c *gin.Context) {
	var req searchConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.errorResponse(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	cfg := &models.SearchConfig{
		Name:                  req.Name,
		SearchServiceEndpoint: req.SearchServiceEndpoint,
	}
	if err := s.configs.CreateSearchConfig(c.Request.Context(), cfg); err != nil {
		s.handleError(c, err)
		return
	}

	s.successResponse(c, cfg)
}

func (s *Server) getSearchConfig(c *gin.Context) {
	cfg, err := s.configs.GetSearchConfig(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.handleError(c, err)
		return
	}

	s.successResponse(c, cfg)
}

func (s *Server) updateSearchConfig(c *gin.Context) {
	var req searchConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.errorResponse(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	cfg := &models.SearchConfig{
		Name:                  req.Name,
		SearchServiceEndpoint: req.SearchServiceEndpoint,
	}
	if err := s.configs.UpdateSearchConfig(c.Request.Context(), c.Param("id"), cfg); err != nil {
		s.handleError(c, err)
		return
	}

	s.successResponse(c, cfg)
}

func (s *Server) deleteSearchConfig(c *gin.Context) {
	if err := s.configs.DeleteSearchConfig(c.Request.Context(), c.Param("id")); err != nil {
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, APIResponse{
		Success: true,
		Message: "search config deleted",
	})
}

// listSearchIndexes lists the indexes of the search service a stored config
// points at. The admin key comes from the X-Search-Api-Key header so it is
// never persisted.
func (s *Server) listSearchIndexes(c *gin.Context) {
	cfg, err := s.configs.GetSearchConfig(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.handleError(c, err)
		return
	}

	indexes, err := s.searchMeta.ListIndexes(c.Request.Context(), cfg.SearchServiceEndpoint, c.GetHeader("X-Search-Api-Key"))
	if err != nil {
		s.errorResponse(c, http.StatusBadGateway, err.Error())
		return
	}

	s.successResponse(c, indexes)
}
