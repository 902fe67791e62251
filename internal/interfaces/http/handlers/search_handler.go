package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/molscreen/internal/application/search"
	"github.com/turtacn/molscreen/internal/infrastructure/monitoring/logging"
)

// SearchHandler serves the screened search operations.
type SearchHandler struct {
	svc    search.Service
	logger logging.Logger
}

// NewSearchHandler creates a SearchHandler.
func NewSearchHandler(svc search.Service, logger logging.Logger) *SearchHandler {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &SearchHandler{svc: svc, logger: logger}
}

// substructureRequest is the body of POST /search/substructure.
type substructureRequest struct {
	SMILES string `json:"smiles" binding:"required"`
	Limit  int    `json:"limit"`
}

// Substructure returns stored molecules containing the query.
// POST /api/v1/search/substructure
func (h *SearchHandler) Substructure(c *gin.Context) {
	var req substructureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Code: "COMMON_002", Message: "smiles is required"})
		return
	}

	res, err := h.svc.SearchSubstructure(c.Request.Context(), &search.SubstructureInput{
		SMILES: req.SMILES,
		Limit:  req.Limit,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// exactRequest is the body of POST /search/exact.
type exactRequest struct {
	SMILES string `json:"smiles" binding:"required"`
}

// Exact reports whether the query molecule is stored.
// POST /api/v1/search/exact
func (h *SearchHandler) Exact(c *gin.Context) {
	var req exactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Code: "COMMON_002", Message: "smiles is required"})
		return
	}

	res, err := h.svc.ExactMatch(c.Request.Context(), &search.ExactInput{SMILES: req.SMILES})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// countRequest is the body of POST /search/count.
type countRequest struct {
	TargetID string `json:"target_id" binding:"required"`
	SMILES   string `json:"smiles" binding:"required"`
}

// Count returns the occurrence count of the query in one stored molecule.
// POST /api/v1/search/count
func (h *SearchHandler) Count(c *gin.Context) {
	var req countRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Code: "COMMON_002", Message: "target_id and smiles are required"})
		return
	}

	res, err := h.svc.CountOccurrences(c.Request.Context(), &search.CountInput{
		TargetID: req.TargetID,
		SMILES:   req.SMILES,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
