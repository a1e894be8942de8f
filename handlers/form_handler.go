package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"quizzit/middleware"
	"quizzit/services"
)

type FormHandler struct {
	formService *services.FormService
	logger      *slog.Logger
}

func NewFormHandler(formService *services.FormService, logger *slog.Logger) *FormHandler {
	return &FormHandler{
		formService: formService,
		logger:      logger,
	}
}

func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return 0, false
	}
	return uint(id), true
}

func (h *FormHandler) CreateForm(c *gin.Context) {
	userID := middleware.UserID(c)
	if !requireUser(c, userID) {
		return
	}

	var req services.CreateFormRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	form, err := h.formService.CreateForm(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, form)
}

func (h *FormHandler) ListForms(c *gin.Context) {
	userID := middleware.UserID(c)
	if !requireUser(c, userID) {
		return
	}

	forms, err := h.formService.ListForms(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, forms)
}

func (h *FormHandler) GetForm(c *gin.Context) {
	userID := middleware.UserID(c)
	if !requireUser(c, userID) {
		return
	}
	formID, ok := parseID(c, "id")
	if !ok {
		return
	}

	form, err := h.formService.GetForm(c.Request.Context(), formID, userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, form)
}

func (h *FormHandler) DeleteForm(c *gin.Context) {
	userID := middleware.UserID(c)
	if !requireUser(c, userID) {
		return
	}
	formID, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.formService.DeleteForm(c.Request.Context(), formID, userID); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Form deleted successfully"})
}
