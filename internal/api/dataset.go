package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ragbench/ragbench/internal/dataset"
)

// stageDataset validates an uploaded test dataset and stages it for the
// caller's session, replacing whatever the session had staged before.
func (s *Server) stageDataset(c *gin.Context) {
	var records []dataset.RawRecord
	if err := c.ShouldBindJSON(&records); err != nil {
		s.errorResponse(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	cases, err := s.stager.Stage(sessionID(c), records)
	if err != nil {
		s.handleError(c, err)
		return
	}

	s.successResponse(c, gin.H{
		"staged":     len(cases),
		"test_cases": cases,
	})
}

// sampleDataset returns a small example dataset in the upload format
func (s *Server) sampleDataset(c *gin.Context) {
	s.successResponse(c, []dataset.RawRecord{
		{
			ID:          "tc-001",
			Question:    "What is the refund window for online orders?",
			GroundTruth: "Online orders can be refunded within 30 days of delivery.",
		},
		{
			ID:          "tc-002",
			Question:    "Which regions does the premium support plan cover?",
			GroundTruth: "The premium support plan covers Europe, North America and APAC.",
		},
		{
			ID:          "tc-003",
			Question:    "How long are audit logs retained?",
			GroundTruth: "Audit logs are retained for 365 days.",
		},
	})
}
