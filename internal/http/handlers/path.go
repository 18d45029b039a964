package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pathwise/pathwise-backend/internal/domain"
	"github.com/pathwise/pathwise-backend/internal/http/middleware"
	"github.com/pathwise/pathwise-backend/internal/http/response"
	"github.com/pathwise/pathwise-backend/internal/services"
)

type PathHandler struct {
	graph    services.GraphService
	composer services.PathComposerService
}

func NewPathHandler(graph services.GraphService, composer services.PathComposerService) *PathHandler {
	return &PathHandler{graph: graph, composer: composer}
}

type createPathRequest struct {
	Name                     string  `json:"name" binding:"required"`
	Category                 string  `json:"category"`
	Difficulty               string  `json:"difficulty"`
	EstimatedDurationMinutes int     `json:"estimated_duration_minutes"`
	IsPublic                 bool    `json:"is_public"`
	IsAdaptive               bool    `json:"is_adaptive"`
	Concepts                 []struct {
		ConceptID                string  `json:"concept_id" binding:"required"`
		SequenceOrder            int     `json:"sequence_order"`
		EstimatedDurationMinutes int     `json:"estimated_duration_minutes"`
		RequiredMastery          float64 `json:"required_mastery"`
	} `json:"concepts" binding:"required"`
}

// POST /api/paths
func (h *PathHandler) CreatePath(c *gin.Context) {
	var req createPathRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	path := &domain.LearningPath{
		Name:                     req.Name,
		Category:                 req.Category,
		Difficulty:               domain.Difficulty(req.Difficulty),
		EstimatedDurationMinutes: req.EstimatedDurationMinutes,
		IsPublic:                 req.IsPublic,
		IsAdaptive:               req.IsAdaptive,
	}
	members := make([]*domain.LearningPathConcept, 0, len(req.Concepts))
	for _, m := range req.Concepts {
		conceptID, err := uuid.Parse(m.ConceptID)
		if err != nil {
			response.BadRequest(c, "invalid concept_id in path")
			return
		}
		members = append(members, &domain.LearningPathConcept{
			ConceptID:                conceptID,
			SequenceOrder:            m.SequenceOrder,
			EstimatedDurationMinutes: m.EstimatedDurationMinutes,
			RequiredMastery:          m.RequiredMastery,
		})
	}
	created, err := h.graph.CreatePath(c.Request.Context(), path, members)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, gin.H{"path": created})
}

// GET /api/paths
func (h *PathHandler) ListPaths(c *gin.Context) {
	views, err := h.composer.ListPathsWithProgress(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"paths": views})
}

// GET /api/paths/:id
func (h *PathHandler) GetPath(c *gin.Context) {
	pathID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid path id")
		return
	}
	view, err := h.composer.ComposeUserPathView(c.Request.Context(), middleware.UserID(c), pathID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"path": view})
}
