package controller

import (
	"net/http"

	"taskboard/internal/middleware"
	"taskboard/internal/models"
	"taskboard/internal/service"

	"github.com/gin-gonic/gin"
)

// Todos serves the /api/todos routes. Every handler runs behind
// middleware.AuthMiddleware.
type Todos struct {
	svc *service.TodoService
}

func NewTodos(svc *service.TodoService) *Todos {
	return &Todos{svc: svc}
}

// Health returns 200 if the process is alive. Used by load balancers.
func Health(c *gin.Context) {
	c.String(http.StatusOK, "OK")
}

func (h *Todos) List(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.List(c.Request.Context(), middleware.UserID(c)))
}

func (h *Todos) Create(c *gin.Context) {
	var body models.TodoFields
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c)
		return
	}
	todo, err := h.svc.Create(c.Request.Context(), middleware.UserID(c), body)
	if err != nil {
		writeError(c, "CreateTodo", err)
		return
	}
	c.JSON(http.StatusCreated, todo)
}

// Update applies a partial patch; fields left out of the body are untouched.
func (h *Todos) Update(c *gin.Context) {
	var patch models.TodoPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c)
		return
	}
	todo, err := h.svc.Update(c.Request.Context(), middleware.UserID(c), c.Param("id"), &patch)
	if err != nil {
		writeError(c, "UpdateTodo", err)
		return
	}
	c.JSON(http.StatusOK, todo)
}

func (h *Todos) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), middleware.UserID(c), c.Param("id")); err != nil {
		writeError(c, "DeleteTodo", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Todos) Activity(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.ListActivity(c.Request.Context(), middleware.UserID(c)))
}
