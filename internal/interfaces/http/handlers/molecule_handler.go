package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/molscreen/internal/application/search"
	"github.com/turtacn/molscreen/internal/infrastructure/monitoring/logging"
)

// MoleculeHandler serves the molecule resource: ingest, lookup, and removal.
type MoleculeHandler struct {
	svc    search.Service
	logger logging.Logger
}

// NewMoleculeHandler creates a MoleculeHandler.
func NewMoleculeHandler(svc search.Service, logger logging.Logger) *MoleculeHandler {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &MoleculeHandler{svc: svc, logger: logger}
}

// ingestRequest is the body of POST /molecules.
type ingestRequest struct {
	SMILES string `json:"smiles" binding:"required"`
}

// Create stores one molecule.
// POST /api/v1/molecules
func (h *MoleculeHandler) Create(c *gin.Context) {
	var req ingestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Code: "COMMON_002", Message: "smiles is required"})
		return
	}

	res, err := h.svc.Ingest(c.Request.Context(), &search.IngestInput{SMILES: req.SMILES})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

// batchIngestRequest is the body of POST /molecules/batch.
type batchIngestRequest struct {
	SMILES []string `json:"smiles" binding:"required"`
}

// CreateBatch bulk-loads molecules.
// POST /api/v1/molecules/batch
func (h *MoleculeHandler) CreateBatch(c *gin.Context) {
	var req batchIngestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Code: "COMMON_002", Message: "smiles list is required"})
		return
	}

	res, err := h.svc.IngestBatch(c.Request.Context(), req.SMILES)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Get fetches one stored molecule.
// GET /api/v1/molecules/:id
func (h *MoleculeHandler) Get(c *gin.Context) {
	res, err := h.svc.GetMolecule(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Delete removes one stored molecule.
// DELETE /api/v1/molecules/:id
func (h *MoleculeHandler) Delete(c *gin.Context) {
	if err := h.svc.DeleteMolecule(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Stats reports store-level counters.
// GET /api/v1/molecules/stats
func (h *MoleculeHandler) Stats(c *gin.Context) {
	res, err := h.svc.Stats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
