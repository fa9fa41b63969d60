package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RootHandler serves GET /api/, a directory of the collection endpoints.
type RootHandler struct {
	siteHeader string
	resources  map[string]string
}

func NewRootHandler(siteHeader string, resources map[string]string) *RootHandler {
	return &RootHandler{siteHeader: siteHeader, resources: resources}
}

func (h *RootHandler) Index(c *gin.Context) {
	base := requestURL(c)
	base.RawQuery = ""

	links := make(map[string]string, len(h.resources))
	for name, path := range h.resources {
		u := *base
		u.Path = path
		links[name] = u.String()
	}
	c.JSON(http.StatusOK, gin.H{"site_header": h.siteHeader, "resources": links})
}
