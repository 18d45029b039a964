package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pathwise/pathwise-backend/internal/data/repos/learning"
	"github.com/pathwise/pathwise-backend/internal/domain"
	"github.com/pathwise/pathwise-backend/internal/http/response"
	"github.com/pathwise/pathwise-backend/internal/services"
)

type ConceptHandler struct {
	graph services.GraphService
}

func NewConceptHandler(graph services.GraphService) *ConceptHandler {
	return &ConceptHandler{graph: graph}
}

type createConceptRequest struct {
	Slug        string   `json:"slug" binding:"required"`
	Name        string   `json:"name" binding:"required"`
	Category    string   `json:"category"`
	Domain      string   `json:"domain"`
	Difficulty  string   `json:"difficulty"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
}

// POST /api/concepts
func (h *ConceptHandler) CreateConcept(c *gin.Context) {
	var req createConceptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	row := &domain.Concept{
		Slug:        req.Slug,
		Name:        req.Name,
		Category:    req.Category,
		Domain:      req.Domain,
		Difficulty:  domain.Difficulty(req.Difficulty),
		Description: req.Description,
	}
	created, err := h.graph.CreateConcepts(c.Request.Context(), []*domain.Concept{row})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, gin.H{"concept": created[0]})
}

// GET /api/concepts
func (h *ConceptHandler) ListConcepts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("page_size", "50"))
	filter := learning.ConceptFilter{
		Category:   c.Query("category"),
		Domain:     c.Query("domain"),
		Difficulty: domain.Difficulty(c.Query("difficulty")),
		Query:      c.Query("q"),
		Page:       page,
		PageSize:   size,
	}
	rows, total, err := h.graph.ListConcepts(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"concepts": rows, "total": total, "page": page})
}

// GET /api/concepts/:id
func (h *ConceptHandler) GetConcept(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid concept id")
		return
	}
	concept, err := h.graph.GetConcept(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"concept": concept})
}

// GET /api/concepts/:id/prerequisites
func (h *ConceptHandler) GetPrerequisites(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid concept id")
		return
	}
	rows, err := h.graph.PrerequisitesOf(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"concepts": rows})
}

// GET /api/concepts/:id/dependents
func (h *ConceptHandler) GetDependents(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid concept id")
		return
	}
	rows, err := h.graph.DependentsOf(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"concepts": rows})
}

// GET /api/concepts/:id/related
func (h *ConceptHandler) GetRelated(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid concept id")
		return
	}
	rows, err := h.graph.RelatedOf(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"concepts": rows})
}

type createEdgeRequest struct {
	Kind          string  `json:"kind" binding:"required"`
	FromConceptID string  `json:"from_concept_id" binding:"required"`
	ToConceptID   string  `json:"to_concept_id" binding:"required"`
	Strength      float64 `json:"strength"`
}

// POST /api/edges
func (h *ConceptHandler) CreateEdge(c *gin.Context) {
	var req createEdgeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	fromID, err := uuid.Parse(req.FromConceptID)
	if err != nil {
		response.BadRequest(c, "invalid from_concept_id")
		return
	}
	toID, err := uuid.Parse(req.ToConceptID)
	if err != nil {
		response.BadRequest(c, "invalid to_concept_id")
		return
	}
	edge, err := h.graph.AddEdge(c.Request.Context(), domain.EdgeKind(req.Kind), fromID, toID, req.Strength)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, gin.H{"edge": edge})
}

// POST /api/graph/sync
func (h *ConceptHandler) SyncGraph(c *gin.Context) {
	if err := h.graph.SyncAll(c.Request.Context()); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"status": "synced"})
}
