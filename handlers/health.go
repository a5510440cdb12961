package handlers

import (
	"database/sql"
	"net/http"

	"github.com/gin-gonic/gin"
)

func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

type HealthHandler struct {
	db *sql.DB
}

func NewHealthHandler(db *sql.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

// DBPing reports database connectivity plus the catalog size.
func (h *HealthHandler) DBPing(c *gin.Context) {
	if err := h.db.PingContext(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"can_connect": false, "product_count": 0})
		return
	}

	var count int
	if err := h.db.QueryRowContext(c.Request.Context(), "SELECT COUNT(*) FROM products").Scan(&count); err != nil {
		// Table may not exist yet on a fresh database.
		count = 0
	}

	c.JSON(http.StatusOK, gin.H{"can_connect": true, "product_count": count})
}
