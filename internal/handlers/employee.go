package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/learnfinity/learnfinity-backend/internal/services"
)

type EmployeeHandler struct {
	employeeService services.EmployeeService
}

func NewEmployeeHandler(employeeService services.EmployeeService) *EmployeeHandler {
	return &EmployeeHandler{employeeService: employeeService}
}

func (eh *EmployeeHandler) Create(c *gin.Context) {
	var req struct {
		Name           string `json:"name"`
		Role           string `json:"role"`
		Department     string `json:"department"`
		Experience     string `json:"experience"`
		AdditionalInfo string `json:"additional_info"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	employee, err := eh.employeeService.Create(c.Request.Context(), services.EmployeeInput{
		Name:           req.Name,
		Role:           req.Role,
		Department:     req.Department,
		Experience:     req.Experience,
		AdditionalInfo: req.AdditionalInfo,
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"employee": employee})
}

func (eh *EmployeeHandler) List(c *gin.Context) {
	employees, err := eh.employeeService.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"employees": employees})
}

func (eh *EmployeeHandler) Get(c *gin.Context) {
	employeeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid employee id"})
		return
	}
	employee, err := eh.employeeService.Get(c.Request.Context(), employeeID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"employee": employee})
}

func (eh *EmployeeHandler) GetMe(c *gin.Context) {
	employee, err := eh.employeeService.GetCurrent(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"employee": employee})
}

func (eh *EmployeeHandler) Update(c *gin.Context) {
	employeeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid employee id"})
		return
	}
	var req struct {
		Name           string `json:"name"`
		Role           string `json:"role"`
		Department     string `json:"department"`
		Experience     string `json:"experience"`
		AdditionalInfo string `json:"additional_info"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	employee, err := eh.employeeService.Update(c.Request.Context(), employeeID, services.EmployeeInput{
		Name:           req.Name,
		Role:           req.Role,
		Department:     req.Department,
		Experience:     req.Experience,
		AdditionalInfo: req.AdditionalInfo,
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"employee": employee})
}

func (eh *EmployeeHandler) Delete(c *gin.Context) {
	employeeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid employee id"})
		return
	}
	if err := eh.employeeService.Delete(c.Request.Context(), employeeID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": "true"})
}

func (eh *EmployeeHandler) LinkUser(c *gin.Context) {
	employeeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid employee id"})
		return
	}
	var req struct {
		UserID string `json:"user_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}
	employee, err := eh.employeeService.LinkUser(c.Request.Context(), employeeID, userID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"employee": employee})
}

func (eh *EmployeeHandler) GetLearningPath(c *gin.Context) {
	employeeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid employee id"})
		return
	}
	path, err := eh.employeeService.GetLearningPath(c.Request.Context(), employeeID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"learning_path": path})
}
