package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/labelr/labelr/internal/models"
)

// SampleHandler serves sample endpoints.
type SampleHandler struct {
	svc SampleService
	log *logrus.Logger
}

// NewSampleHandler creates a SampleHandler.
func NewSampleHandler(svc SampleService, log *logrus.Logger) *SampleHandler {
	return &SampleHandler{svc: svc, log: log}
}

// List handles GET /datasets/:id/samples?offset&limit&labeled.
func (h *SampleHandler) List(c *gin.Context) {
	ids, ok := pathIDs(c, "id")
	if !ok {
		return
	}

	q, err := parseSampleQuery(c)
	if err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())
		return
	}

	page, err := h.svc.ListSamples(c.Request.Context(), ids[0], q)
	if err != nil {
		respondServiceError(c, h.log, "listing samples", err)
		return
	}

	c.JSON(http.StatusOK, page)
}

// Get handles GET /datasets/:id/samples/:sample_id.
func (h *SampleHandler) Get(c *gin.Context) {
	ids, ok := pathIDs(c, "id", "sample_id")
	if !ok {
		return
	}

	sample, err := h.svc.GetSample(c.Request.Context(), ids[0], ids[1])
	if err != nil {
		respondServiceError(c, h.log, "getting sample", err)
		return
	}

	c.JSON(http.StatusOK, sample)
}

// PutLabels handles PUT /datasets/:id/samples/:sample_id.
func (h *SampleHandler) PutLabels(c *gin.Context) {
	ids, ok := pathIDs(c, "id", "sample_id")
	if !ok {
		return
	}

	var req models.LabelSampleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid request body")
		return
	}

	if err := req.Validate(); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeValidationError, err.Error())
		return
	}

	sample, err := h.svc.WriteLabels(c.Request.Context(), ids[0], ids[1], req.Labels)
	if err != nil {
		respondServiceError(c, h.log, "writing labels", err)
		return
	}

	h.log.WithFields(logrus.Fields{
		"action":     "sample.label",
		"dataset_id": ids[0],
		"sample_id":  ids[1],
	}).Info("audit")

	c.JSON(http.StatusOK, sample)
}

// Add handles POST /datasets/:id/samples.
func (h *SampleHandler) Add(c *gin.Context) {
	ids, ok := pathIDs(c, "id")
	if !ok {
		return
	}

	var req models.CreateSamplesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid request body")
		return
	}

	if err := req.Validate(); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeValidationError, err.Error())
		return
	}

	n, err := h.svc.AddSamples(c.Request.Context(), ids[0], req.Samples)
	if err != nil {
		respondServiceError(c, h.log, "adding samples", err)
		return
	}

	h.log.WithFields(logrus.Fields{"action": "samples.add", "dataset_id": ids[0], "count": n}).Info("audit")

	c.JSON(http.StatusCreated, gin.H{"added": n})
}
