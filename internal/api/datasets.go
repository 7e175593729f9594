package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/labelr/labelr/internal/models"
)

// DatasetHandler serves dataset endpoints.
type DatasetHandler struct {
	svc    DatasetService
	export ExportService
	log    *logrus.Logger
}

// NewDatasetHandler creates a DatasetHandler.
func NewDatasetHandler(svc DatasetService, export ExportService, log *logrus.Logger) *DatasetHandler {
	return &DatasetHandler{svc: svc, export: export, log: log}
}

// List handles GET /datasets.
func (h *DatasetHandler) List(c *gin.Context) {
	datasets, err := h.svc.ListDatasets(c.Request.Context())
	if err != nil {
		respondServiceError(c, h.log, "listing datasets", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"datasets": datasets})
}

// Get handles GET /datasets/:id.
func (h *DatasetHandler) Get(c *gin.Context) {
	ids, ok := pathIDs(c, "id")
	if !ok {
		return
	}

	ds, err := h.svc.GetDataset(c.Request.Context(), ids[0])
	if err != nil {
		respondServiceError(c, h.log, "getting dataset", err)
		return
	}

	c.JSON(http.StatusOK, ds)
}

// Create handles POST /datasets.
func (h *DatasetHandler) Create(c *gin.Context) {
	var req models.CreateDatasetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid request body")
		return
	}

	if err := req.Validate(); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeValidationError, err.Error())
		return
	}

	ds, err := h.svc.CreateDataset(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, h.log, "creating dataset", err)
		return
	}

	h.log.WithFields(logrus.Fields{"action": "dataset.create", "dataset_id": ds.ID}).Info("audit")

	c.JSON(http.StatusCreated, ds)
}

// Delete handles DELETE /datasets/:id.
func (h *DatasetHandler) Delete(c *gin.Context) {
	ids, ok := pathIDs(c, "id")
	if !ok {
		return
	}

	if err := h.svc.DeleteDataset(c.Request.Context(), ids[0]); err != nil {
		respondServiceError(c, h.log, "deleting dataset", err)
		return
	}

	h.log.WithFields(logrus.Fields{"action": "dataset.delete", "dataset_id": ids[0]}).Info("audit")

	c.Status(http.StatusNoContent)
}

// Export handles GET /datasets/:id/export.
func (h *DatasetHandler) Export(c *gin.Context) {
	ids, ok := pathIDs(c, "id")
	if !ok {
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="`+ids[0]+`.csv"`)

	if err := h.export.ExportCSV(c.Request.Context(), ids[0], c.Writer); err != nil {
		if c.Writer.Written() {
			// Headers are gone; the truncated body is all the client gets.
			h.log.WithError(err).WithField("dataset_id", ids[0]).Error("export aborted mid-stream")
			c.Abort()

			return
		}

		c.Header("Content-Disposition", "")
		respondServiceError(c, h.log, "exporting dataset", err)

		return
	}

	h.log.WithFields(logrus.Fields{"action": "dataset.export", "dataset_id": ids[0]}).Info("audit")
}
