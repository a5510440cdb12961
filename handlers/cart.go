package handlers

import (
	"net/http"

	"shop-svc/cart"
	"shop-svc/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const sessionCookie = "session_id"

type CartHandler struct {
	store  cart.Store
	logger *zap.Logger
}

func NewCartHandler(store cart.Store, logger *zap.Logger) *CartHandler {
	return &CartHandler{
		store:  store,
		logger: logger,
	}
}

// sessionID reads the cart session cookie, minting one on first touch.
func sessionID(c *gin.Context) string {
	if id, err := c.Cookie(sessionCookie); err == nil && id != "" {
		return id
	}
	id := uuid.NewString()
	c.SetCookie(sessionCookie, id, 86400, "/", "", false, true)
	return id
}

func (h *CartHandler) AddItem(c *gin.Context) {
	ctx, span := otel.Tracer("shop-svc").Start(c.Request.Context(), "CartAdd")
	defer span.End()

	var req models.AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	span.SetAttributes(
		attribute.Int("product.id", req.ProductID),
		attribute.Int("quantity", req.Quantity),
	)

	sid := sessionID(c)
	item := models.CartItem{
		ProductID:   req.ProductID,
		ProductName: req.ProductName,
		UnitPrice:   req.UnitPrice,
		Quantity:    req.Quantity,
		ImageURL:    req.ImageURL,
		Size:        req.Size,
		Color:       req.Color,
	}

	if err := h.store.Add(ctx, sid, item); err != nil {
		span.RecordError(err)
		h.logger.Error("Failed to add cart item", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	count, err := h.store.Count(ctx, sid)
	if err != nil {
		span.RecordError(err)
		h.logger.Error("Failed to count cart", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "count": count})
}

func (h *CartHandler) UpdateItem(c *gin.Context) {
	ctx, span := otel.Tracer("shop-svc").Start(c.Request.Context(), "CartUpdate")
	defer span.End()

	var req models.UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sid := sessionID(c)
	key := models.CartKey{ProductID: req.ProductID, Size: req.Size, Color: req.Color}

	if err := h.store.Update(ctx, sid, key, req.Quantity); err != nil {
		span.RecordError(err)
		h.logger.Error("Failed to update cart item", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	count, err := h.store.Count(ctx, sid)
	if err != nil {
		span.RecordError(err)
		h.logger.Error("Failed to count cart", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "count": count})
}

func (h *CartHandler) RemoveItem(c *gin.Context) {
	ctx, span := otel.Tracer("shop-svc").Start(c.Request.Context(), "CartRemove")
	defer span.End()

	var req models.RemoveCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sid := sessionID(c)
	key := models.CartKey{ProductID: req.ProductID, Size: req.Size, Color: req.Color}

	if err := h.store.Remove(ctx, sid, key); err != nil {
		span.RecordError(err)
		h.logger.Error("Failed to remove cart item", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	count, err := h.store.Count(ctx, sid)
	if err != nil {
		span.RecordError(err)
		h.logger.Error("Failed to count cart", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "count": count})
}

func (h *CartHandler) Clear(c *gin.Context) {
	ctx, span := otel.Tracer("shop-svc").Start(c.Request.Context(), "CartClear")
	defer span.End()

	if err := h.store.Clear(ctx, sessionID(c)); err != nil {
		span.RecordError(err)
		h.logger.Error("Failed to clear cart", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *CartHandler) List(c *gin.Context) {
	ctx, span := otel.Tracer("shop-svc").Start(c.Request.Context(), "CartList")
	defer span.End()

	items, err := h.store.Items(ctx, sessionID(c))
	if err != nil {
		span.RecordError(err)
		h.logger.Error("Failed to list cart", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	if items == nil {
		items = []models.CartItem{}
	}

	total := 0.0
	for _, it := range items {
		total += it.UnitPrice * float64(it.Quantity)
	}

	span.SetAttributes(attribute.Int("cart.lines", len(items)))
	c.JSON(http.StatusOK, gin.H{"items": items, "total": total})
}

func (h *CartHandler) Count(c *gin.Context) {
	ctx, span := otel.Tracer("shop-svc").Start(c.Request.Context(), "CartCount")
	defer span.End()

	count, err := h.store.Count(ctx, sessionID(c))
	if err != nil {
		span.RecordError(err)
		h.logger.Error("Failed to count cart", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": count})
}
