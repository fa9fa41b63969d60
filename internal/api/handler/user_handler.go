package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"foodgram/internal/api/dto"
	"foodgram/internal/api/middleware"
	"foodgram/internal/api/service"
)

type UserHandler struct {
	userService service.UserService
	paging      Paging
	log         *zap.Logger
}

func NewUserHandler(userService service.UserService, paging Paging, log *zap.Logger) *UserHandler {
	return &UserHandler{userService: userService, paging: paging, log: log}
}

// List handles GET /api/users/
func (h *UserHandler) List(c *gin.Context) {
	page := h.paging.parse(c)
	users, total, err := h.userService.List(c.Request.Context(), middleware.CurrentUserID(c), page)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPaginated(users, total, page, requestURL(c)))
}

// Create handles POST /api/users/
func (h *UserHandler) Create(c *gin.Context) {
	var req dto.UserCreateRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, h.log, err)
		return
	}

	user, err := h.userService.Register(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

// Get handles GET /api/users/:id/
func (h *UserHandler) Get(c *gin.Context) {
	id, err := parseID(c, "id", service.ErrUserNotFound)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	h.respondUser(c, id)
}

// Me handles GET /api/users/me/
func (h *UserHandler) Me(c *gin.Context) {
	h.respondUser(c, middleware.CurrentUserID(c))
}

func (h *UserHandler) respondUser(c *gin.Context, id int64) {
	user, err := h.userService.Get(c.Request.Context(), middleware.CurrentUserID(c), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// SetPassword handles POST /api/users/set_password/
func (h *UserHandler) SetPassword(c *gin.Context) {
	var req dto.SetPasswordRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, h.log, err)
		return
	}

	if err := h.userService.SetPassword(c.Request.Context(), middleware.CurrentUserID(c), req); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Subscriptions handles GET /api/users/subscriptions/
func (h *UserHandler) Subscriptions(c *gin.Context) {
	page := h.paging.parse(c)
	subs, total, err := h.userService.Subscriptions(c.Request.Context(), middleware.CurrentUserID(c), page, recipesLimit(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPaginated(subs, total, page, requestURL(c)))
}

// Subscribe handles POST /api/users/:id/subscribe/
func (h *UserHandler) Subscribe(c *gin.Context) {
	authorID, err := parseID(c, "id", service.ErrUserNotFound)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	sub, err := h.userService.Subscribe(c.Request.Context(), middleware.CurrentUserID(c), authorID, recipesLimit(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, sub)
}

// Unsubscribe handles DELETE /api/users/:id/subscribe/
func (h *UserHandler) Unsubscribe(c *gin.Context) {
	authorID, err := parseID(c, "id", service.ErrUserNotFound)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	if err := h.userService.Unsubscribe(c.Request.Context(), middleware.CurrentUserID(c), authorID); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}
