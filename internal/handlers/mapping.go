package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/learnfinity/learnfinity-backend/internal/services"
)

type MappingHandler struct {
	mappingService services.MappingService
}

func NewMappingHandler(mappingService services.MappingService) *MappingHandler {
	return &MappingHandler{mappingService: mappingService}
}

func (mh *MappingHandler) Create(c *gin.Context) {
	var req struct {
		OriginalEmail    string `json:"original_email"`
		FallbackEmail    string `json:"fallback_email"`
		FallbackPassword string `json:"fallback_password"`
		Note             string `json:"note"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	mapping, err := mh.mappingService.Create(c.Request.Context(), req.OriginalEmail, req.FallbackEmail, req.FallbackPassword, req.Note)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"mapping": mapping})
}

func (mh *MappingHandler) List(c *gin.Context) {
	mappings, err := mh.mappingService.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"mappings": mappings})
}

func (mh *MappingHandler) Delete(c *gin.Context) {
	mappingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid mapping id"})
		return
	}
	if err := mh.mappingService.Delete(c.Request.Context(), mappingID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": "true"})
}
