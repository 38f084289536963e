package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/learnfinity/learnfinity-backend/internal/logger"
	"github.com/learnfinity/learnfinity-backend/internal/repos"
	"github.com/learnfinity/learnfinity-backend/internal/requestdata"
	"github.com/learnfinity/learnfinity-backend/internal/sse"
)

type RealtimeHandler struct {
	log          *logger.Logger
	hub          *sse.SSEHub
	employeeRepo repos.EmployeeRepo
}

func NewRealtimeHandler(log *logger.Logger, hub *sse.SSEHub, employeeRepo repos.EmployeeRepo) *RealtimeHandler {
	return &RealtimeHandler{
		log:          log.With("handler", "RealtimeHandler"),
		hub:          hub,
		employeeRepo: employeeRepo,
	}
}

// SSEStream subscribes the caller to their own generation events. Employees
// get their linked employee channel; HR admins can watch any employee by
// passing ?channel=<employee_id>.
func (h *RealtimeHandler) SSEStream(c *gin.Context) {
	ctx := c.Request.Context()
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	client := h.hub.NewSSEClient(rd.UserID)

	h.hub.AddChannel(client, rd.UserID.String())

	employees, err := h.employeeRepo.GetByUserIDs(ctx, nil, []uuid.UUID{rd.UserID})
	if err != nil {
		h.log.Warn("SSEStream employee lookup failed", "error", err)
	} else if len(employees) > 0 && employees[0] != nil {
		h.hub.AddChannel(client, employees[0].ID.String())
	}

	if watched := c.Query("channel"); watched != "" {
		if !rd.IsHRAdmin() {
			h.hub.CloseClient(client)
			c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		if watchedID, parseErr := uuid.Parse(watched); parseErr == nil {
			h.hub.AddChannel(client, watchedID.String())
		}
	}

	h.hub.ServeHTTP(c.Writer, c.Request, client)
	h.hub.CloseClient(client)
}
