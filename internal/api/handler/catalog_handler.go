package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"foodgram/internal/api/service"
)

type TagHandler struct {
	svc service.TagService
	log *zap.Logger
}

func NewTagHandler(svc service.TagService, log *zap.Logger) *TagHandler {
	return &TagHandler{svc: svc, log: log}
}

func (h *TagHandler) List(c *gin.Context) {
	tags, err := h.svc.List(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, tags)
}

func (h *TagHandler) Get(c *gin.Context) {
	id, err := parseID(c, "id", service.ErrTagNotFound)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	tag, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, tag)
}

type IngredientHandler struct {
	svc service.IngredientService
	log *zap.Logger
}

func NewIngredientHandler(svc service.IngredientService, log *zap.Logger) *IngredientHandler {
	return &IngredientHandler{svc: svc, log: log}
}

// List handles GET /api/ingredients/?name=<prefix>
func (h *IngredientHandler) List(c *gin.Context) {
	list, err := h.svc.Search(c.Request.Context(), c.Query("name"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *IngredientHandler) Get(c *gin.Context) {
	id, err := parseID(c, "id", service.ErrIngredientNotFound)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	ing, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, ing)
}
