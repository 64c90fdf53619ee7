package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mesh-intelligence/orchard/pkg/types"
)

func ok(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{"success": true, "data": data})
}

func fail(c *gin.Context, status int, err error) {
	c.JSON(status, gin.H{"success": false, "error": err.Error()})
}

// storeStatus maps a store error to an HTTP status.
func storeStatus(err error) int {
	switch {
	case errors.Is(err, types.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, types.ErrInvalidID), types.IsValidation(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// GET /api/items
func (s *Server) listItems(c *gin.Context) {
	items, err := s.store.List(c.Request.Context())
	if err != nil {
		fail(c, storeStatus(err), err)
		return
	}
	ok(c, http.StatusOK, items)
}

// POST /api/items  {"name": "...", "color": "...", "taste": "...", ...}
func (s *Server) createItem(c *gin.Context) {
	var fields types.Fields
	if err := c.ShouldBindJSON(&fields); err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}
	item, err := s.store.Create(c.Request.Context(), fields)
	if err != nil {
		fail(c, storeStatus(err), err)
		return
	}
	ok(c, http.StatusCreated, item)
}

// PUT /api/items/:id  full item record
func (s *Server) updateItem(c *gin.Context) {
	var item types.Item
	if err := c.ShouldBindJSON(&item); err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}
	updated, err := s.store.Update(c.Request.Context(), c.Param("id"), item)
	if err != nil {
		fail(c, storeStatus(err), err)
		return
	}
	ok(c, http.StatusOK, updated)
}
