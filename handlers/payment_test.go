package handlers

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"shop-svc/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

func setupPaymentTest(t *testing.T) (sqlmock.Sqlmock, *gin.Engine, *sql.DB) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to create mock database: %v", err)
	}

	logger := zaptest.NewLogger(t, zaptest.Level(zap.InfoLevel))
	handler := NewPaymentHandler(db, nil, logger)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/payments/confirm", handler.Confirm)
	router.GET("/payments/status", handler.Status)

	return mock, router, db
}

func confirmRequest(router *gin.Engine, token string) *httptest.ResponseRecorder {
	body, _ := json.Marshal(models.ConfirmPaymentRequest{OrderToken: token})
	req := httptest.NewRequest("POST", "/payments/confirm", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestConfirm_TransitionsOrder(t *testing.T) {
	mock, router, db := setupPaymentTest(t)
	defer db.Close()

	mock.ExpectQuery("UPDATE orders SET status").
		WithArgs(string(models.OrderStatusPaid), "tok-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "total_amount"}).AddRow(42, 7, 130.0))

	w := confirmRequest(router, "tok-1")

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d", http.StatusOK, w.Code)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Database expectations were not met: %v", err)
	}
}

func TestConfirm_IsIdempotent(t *testing.T) {
	mock, router, db := setupPaymentTest(t)
	defer db.Close()

	// First call flips the row, second finds nothing to do. Both succeed.
	mock.ExpectQuery("UPDATE orders SET status").
		WithArgs(string(models.OrderStatusPaid), "tok-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "total_amount"}).AddRow(42, 7, 130.0))
	mock.ExpectQuery("UPDATE orders SET status").
		WithArgs(string(models.OrderStatusPaid), "tok-1").
		WillReturnError(sql.ErrNoRows)

	for i := 0; i < 2; i++ {
		w := confirmRequest(router, "tok-1")
		if w.Code != http.StatusOK {
			t.Fatalf("Call %d: expected status %d, got %d", i+1, http.StatusOK, w.Code)
		}

		var resp map[string]any
		json.Unmarshal(w.Body.Bytes(), &resp)
		if resp["success"] != true {
			t.Errorf("Call %d: expected success", i+1)
		}
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Database expectations were not met: %v", err)
	}
}

func TestConfirm_UnknownTokenIsNoOpSuccess(t *testing.T) {
	mock, router, db := setupPaymentTest(t)
	defer db.Close()

	mock.ExpectQuery("UPDATE orders SET status").
		WithArgs(string(models.OrderStatusPaid), "no-such-token").
		WillReturnError(sql.ErrNoRows)

	w := confirmRequest(router, "no-such-token")

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d", http.StatusOK, w.Code)
	}
}

func TestStatus_PaidOrder(t *testing.T) {
	mock, router, db := setupPaymentTest(t)
	defer db.Close()

	mock.ExpectQuery("SELECT status FROM orders").
		WithArgs("tok-1").
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow(string(models.OrderStatusPaid)))

	req := httptest.NewRequest("GET", "/payments/status?token=tok-1", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d", http.StatusOK, w.Code)
	}

	var resp map[string]bool
	json.Unmarshal(w.Body.Bytes(), &resp)
	if !resp["paid"] {
		t.Error("Expected paid = true")
	}
}

func TestStatus_UnpaidOrder(t *testing.T) {
	mock, router, db := setupPaymentTest(t)
	defer db.Close()

	mock.ExpectQuery("SELECT status FROM orders").
		WithArgs("tok-2").
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow(string(models.OrderStatusUnpaid)))

	req := httptest.NewRequest("GET", "/payments/status?token=tok-2", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var resp map[string]bool
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp["paid"] {
		t.Error("Expected paid = false")
	}
}

func TestStatus_UnknownTokenReadsFalse(t *testing.T) {
	mock, router, db := setupPaymentTest(t)
	defer db.Close()

	mock.ExpectQuery("SELECT status FROM orders").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	req := httptest.NewRequest("GET", "/payments/status?token=missing", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status %d for unknown token, got %d", http.StatusOK, w.Code)
	}

	var resp map[string]bool
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp["paid"] {
		t.Error("Expected paid = false for unknown token")
	}
}

func TestStatus_MissingToken(t *testing.T) {
	_, router, db := setupPaymentTest(t)
	defer db.Close()

	req := httptest.NewRequest("GET", "/payments/status", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status %d, got %d", http.StatusBadRequest, w.Code)
	}
}
