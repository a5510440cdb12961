package handlers

import (
	"database/sql"
	"net/http"

	"shop-svc/kafka"
	"shop-svc/middleware"
	"shop-svc/models"

	"github.com/IBM/sarama"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// PaymentHandler tracks out-of-band payment confirmations. Confirmation
// state lives on the order row itself, keyed by the payment token, so a
// restart never loses a pending confirmation.
type PaymentHandler struct {
	db       *sql.DB
	producer sarama.SyncProducer
	logger   *zap.Logger
}

func NewPaymentHandler(db *sql.DB, producer sarama.SyncProducer, logger *zap.Logger) *PaymentHandler {
	return &PaymentHandler{
		db:       db,
		producer: producer,
		logger:   logger,
	}
}

// Confirm marks the order behind the token as paid. The guarded UPDATE
// makes it idempotent and safe under concurrent duplicate callbacks: only
// the call that actually flips the status publishes the event. Unknown
// tokens are a no-op success so the callback can be retried freely.
func (h *PaymentHandler) Confirm(c *gin.Context) {
	ctx, span := otel.Tracer("shop-svc").Start(c.Request.Context(), "ConfirmPayment")
	defer span.End()

	var req models.ConfirmPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	var (
		orderID     int
		userID      int
		totalAmount float64
	)
	err := h.db.QueryRowContext(ctx,
		"UPDATE orders SET status = $1, updated_at = CURRENT_TIMESTAMP WHERE payment_token = $2 AND status <> $1 RETURNING id, user_id, total_amount",
		models.OrderStatusPaid, req.OrderToken,
	).Scan(&orderID, &userID, &totalAmount)

	if err == sql.ErrNoRows {
		// Already confirmed, or the token is unknown. Either way the
		// callback succeeded from the caller's point of view.
		span.SetAttributes(attribute.Bool("payment.transitioned", false))
		c.JSON(http.StatusOK, gin.H{"success": true})
		return
	}
	if err != nil {
		span.RecordError(err)
		h.logger.Error("Failed to confirm payment", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Internal server error"})
		return
	}

	span.SetAttributes(
		attribute.Bool("payment.transitioned", true),
		attribute.Int("order.id", orderID),
	)

	middleware.RecordPaymentConfirmed()

	if h.producer != nil {
		event := models.OrderEvent{
			OrderID:     orderID,
			UserID:      userID,
			TotalAmount: totalAmount,
			Status:      models.OrderStatusPaid,
			EventType:   "payment_confirmed",
		}
		if err := kafka.PublishOrderEvent(ctx, h.producer, "order_events", event, h.logger); err != nil {
			h.logger.Error("Failed to publish payment_confirmed event", zap.Error(err))
		}
	}

	h.logger.Info("Payment confirmed",
		zap.String("trace_id", middleware.GetTraceID(c.Request.Context())),
		zap.Int("order_id", orderID),
	)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Status reports whether the order behind the token has been paid. An
// unknown token reads as unpaid rather than an error: the client may poll
// before checkout finishes registering the order.
func (h *PaymentHandler) Status(c *gin.Context) {
	ctx, span := otel.Tracer("shop-svc").Start(c.Request.Context(), "PaymentStatus")
	defer span.End()

	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing token"})
		return
	}

	var status models.OrderStatus
	err := h.db.QueryRowContext(ctx,
		"SELECT status FROM orders WHERE payment_token = $1",
		token,
	).Scan(&status)

	if err == sql.ErrNoRows {
		c.JSON(http.StatusOK, gin.H{"paid": false})
		return
	}
	if err != nil {
		span.RecordError(err)
		h.logger.Error("Failed to read payment status", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	paid := status == models.OrderStatusPaid
	span.SetAttributes(attribute.Bool("payment.paid", paid))
	c.JSON(http.StatusOK, gin.H{"paid": paid})
}
