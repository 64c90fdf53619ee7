package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mesh-intelligence/orchard/internal/catalog"
	"github.com/mesh-intelligence/orchard/pkg/types"
)

// notificationStatus maps a controller notification to an HTTP status.
func notificationStatus(n catalog.Notification, created bool) int {
	switch {
	case n.OK() && created:
		return http.StatusCreated
	case n.OK():
		return http.StatusOK
	case !catalog.IsWriteFailure(n):
		return http.StatusBadRequest
	case errors.Is(n.Err, types.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusBadGateway
	}
}

// GET /api/catalog?search=straw&season=Summer
//
// Filters are applied to the controller's current items per request and do
// not change the controller's own search and season state.
func (s *Server) catalogView(c *gin.Context) {
	season, err := types.ParseSeasonFilter(c.Query("season"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	search := c.Query("search")
	items := s.ctrl.Items()
	c.JSON(http.StatusOK, gin.H{
		"search":  search,
		"season":  season,
		"total":   len(items),
		"items":   catalog.Filter(items, search, season),
		"seasons": types.Seasons,
	})
}

// POST /api/catalog/reload
func (s *Server) catalogReload(c *gin.Context) {
	outcome := s.ctrl.Reload(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"outcome": outcome, "total": len(s.ctrl.Items())})
}

// POST /api/catalog/items  Fields JSON
func (s *Server) catalogCreate(c *gin.Context) {
	var fields types.Fields
	if err := c.ShouldBindJSON(&fields); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	n := s.ctrl.Create(c.Request.Context(), fields)
	c.JSON(notificationStatus(n, true), n)
}

// GET /api/catalog/items/:id
func (s *Server) catalogDetail(c *gin.Context) {
	item, err := s.ctrl.Find(c.Param("id"))
	if err != nil {
		c.JSON(storeStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"item": item, "emoji": item.DisplayEmoji()})
}

// POST /api/catalog/items/:id/favorite
func (s *Server) catalogToggleFavorite(c *gin.Context) {
	item, err := s.ctrl.Find(c.Param("id"))
	if err != nil {
		c.JSON(storeStatus(err), gin.H{"error": err.Error()})
		return
	}
	n := s.ctrl.ToggleFavorite(c.Request.Context(), item)
	c.JSON(notificationStatus(n, false), n)
}
