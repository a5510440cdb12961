package handlers

import (
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"strings"

	"shop-svc/cart"
	"shop-svc/kafka"
	"shop-svc/middleware"
	"shop-svc/models"
	"shop-svc/qr"

	"github.com/IBM/sarama"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

type CheckoutHandler struct {
	db       *sql.DB
	store    cart.Store
	producer sarama.SyncProducer
	logger   *zap.Logger
}

func NewCheckoutHandler(db *sql.DB, store cart.Store, producer sarama.SyncProducer, logger *zap.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		db:       db,
		store:    store,
		producer: producer,
		logger:   logger,
	}
}

// normalizePaymentMethod folds the client's label onto the fixed set the
// status derivation understands. Unknown labels pass through lowercased.
func normalizePaymentMethod(method string) string {
	switch strings.ToLower(strings.TrimSpace(method)) {
	case "cash", "cod", "cash_on_delivery", "cash-on-delivery":
		return "cash"
	case "bank", "bank_transfer", "bank-transfer", "banktransfer":
		return "bank"
	default:
		return strings.ToLower(strings.TrimSpace(method))
	}
}

// initialStatus mirrors the storefront's demo behavior: non-cash methods
// are treated as settled at creation time. This is not a trust boundary.
func initialStatus(method string) models.OrderStatus {
	switch method {
	case "cash":
		return models.OrderStatusUnpaid
	case "bank", "card", "qr", "transfer":
		return models.OrderStatusPaid
	default:
		return models.OrderStatusNew
	}
}

// Checkout converts the session cart into an order plus detail rows in a
// single transaction, then clears the cart and hands back payment
// instructions keyed by the fresh order token.
func (h *CheckoutHandler) Checkout(c *gin.Context) {
	ctx, span := otel.Tracer("shop-svc").Start(c.Request.Context(), "Checkout")
	defer span.End()

	userID := middleware.UserID(c)
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, models.CheckoutResponse{Success: false, Error: "needs_login"})
		return
	}

	var req models.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.CheckoutResponse{Success: false, Error: err.Error()})
		return
	}

	sid := sessionID(c)
	items, err := h.store.Items(ctx, sid)
	if err != nil {
		span.RecordError(err)
		h.logger.Error("Failed to load cart", zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.CheckoutResponse{Success: false, Error: "checkout_failed"})
		return
	}
	if len(items) == 0 {
		c.JSON(http.StatusBadRequest, models.CheckoutResponse{Success: false, Error: "empty_cart"})
		return
	}

	method := normalizePaymentMethod(req.PaymentMethod)
	status := initialStatus(method)
	token := uuid.NewString()

	total := 0.0
	for _, it := range items {
		total += it.UnitPrice * float64(it.Quantity)
	}

	span.SetAttributes(
		attribute.Int("user_id", userID),
		attribute.String("payment_method", method),
		attribute.Float64("total_amount", total),
		attribute.Int("cart.lines", len(items)),
	)

	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		span.RecordError(err)
		h.logger.Error("Failed to begin transaction", zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.CheckoutResponse{Success: false, Error: "checkout_failed"})
		return
	}

	var orderID int
	err = tx.QueryRowContext(ctx,
		"INSERT INTO orders (user_id, total_amount, payment_method, payment_token, status) VALUES ($1, $2, $3, $4, $5) RETURNING id",
		userID, total, method, token, status,
	).Scan(&orderID)
	if err != nil {
		tx.Rollback()
		span.RecordError(err)
		h.logger.Error("Failed to insert order", zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.CheckoutResponse{Success: false, Error: "checkout_failed"})
		return
	}

	for _, it := range items {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO order_details (order_id, product_id, quantity, unit_price) VALUES ($1, $2, $3, $4)",
			orderID, it.ProductID, it.Quantity, it.UnitPrice,
		)
		if err != nil {
			tx.Rollback()
			span.RecordError(err)
			h.logger.Error("Failed to insert order detail", zap.Error(err), zap.Int("product_id", it.ProductID))
			c.JSON(http.StatusInternalServerError, models.CheckoutResponse{Success: false, Error: "checkout_failed"})
			return
		}
	}

	if err := tx.Commit(); err != nil {
		span.RecordError(err)
		h.logger.Error("Failed to commit checkout", zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.CheckoutResponse{Success: false, Error: "checkout_failed"})
		return
	}

	// The order is durable from here on; the cart clear is best effort.
	if err := h.store.Clear(ctx, sid); err != nil {
		h.logger.Error("Failed to clear cart after checkout", zap.Error(err), zap.Int("order_id", orderID))
	}

	middleware.RecordOrderCreated(method, string(status))

	if h.producer != nil {
		event := models.OrderEvent{
			OrderID:       orderID,
			UserID:        userID,
			TotalAmount:   total,
			PaymentMethod: method,
			Status:        status,
			EventType:     "order_created",
		}
		if err := kafka.PublishOrderEvent(ctx, h.producer, "order_events", event, h.logger); err != nil {
			h.logger.Error("Failed to publish order_created event", zap.Error(err))
			// Don't fail the request, but log the error
		}
	}

	span.SetAttributes(attribute.Int("order.id", orderID))
	h.logger.Info("Order created",
		zap.Int("order_id", orderID),
		zap.Int("user_id", userID),
		zap.String("payment_method", method),
		zap.String("status", string(status)),
	)

	c.JSON(http.StatusCreated, models.CheckoutResponse{
		Success:             true,
		OrderID:             orderID,
		OrderToken:          token,
		TotalAmount:         total,
		Status:              status,
		PaymentInstructions: h.buildInstructions(method, token),
	})
}

func (h *CheckoutHandler) buildInstructions(method, token string) *models.PaymentInstructions {
	switch method {
	case "bank", "transfer":
		confirmURL := fmt.Sprintf("%s/payments/confirm?token=%s", baseURL(), token)
		png, err := qr.EncodePNG(confirmURL, 256)
		if err != nil {
			h.logger.Error("Failed to render payment QR code", zap.Error(err))
		}
		return &models.PaymentInstructions{
			Method:     method,
			Message:    "Scan the code or open the confirmation link after completing the transfer.",
			ConfirmURL: confirmURL,
			QRPNG:      png,
		}
	case "cash":
		return &models.PaymentInstructions{
			Method:  method,
			Message: "Pay the courier in cash on delivery.",
		}
	default:
		return nil
	}
}

func baseURL() string {
	if v := os.Getenv("BASE_URL"); v != "" {
		return strings.TrimRight(v, "/")
	}
	return "http://localhost:8080"
}
