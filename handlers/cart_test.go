package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"shop-svc/cart"
	"shop-svc/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

func setupCartTest(t *testing.T) (*cart.MemoryStore, *gin.Engine) {
	store := cart.NewMemoryStore()
	logger := zaptest.NewLogger(t, zaptest.Level(zap.InfoLevel))
	handler := NewCartHandler(store, logger)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/cart", handler.List)
	router.GET("/cart/count", handler.Count)
	router.POST("/cart/items", handler.AddItem)
	router.PUT("/cart/items", handler.UpdateItem)
	router.DELETE("/cart/items", handler.RemoveItem)
	router.DELETE("/cart", handler.Clear)

	return store, router
}

func cartDo(router *gin.Engine, method, path string, payload any, session string) *httptest.ResponseRecorder {
	var body *bytes.Buffer
	if payload != nil {
		data, _ := json.Marshal(payload)
		body = bytes.NewBuffer(data)
	} else {
		body = bytes.NewBuffer(nil)
	}
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	if session != "" {
		req.AddCookie(&http.Cookie{Name: sessionCookie, Value: session})
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCartAdd_ReturnsRunningCount(t *testing.T) {
	_, router := setupCartTest(t)

	add := models.AddCartItemRequest{
		ProductID:   1,
		ProductName: "Runner",
		UnitPrice:   50,
		Quantity:    2,
		Size:        "42",
		Color:       "black",
	}

	w := cartDo(router, "POST", "/cart/items", add, "s1")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
	}

	add.Quantity = 3
	w = cartDo(router, "POST", "/cart/items", add, "s1")

	var resp map[string]any
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp["count"] != float64(5) {
		t.Errorf("Expected count 5 after merged adds, got %v", resp["count"])
	}
}

func TestCartAdd_MintsSessionCookie(t *testing.T) {
	_, router := setupCartTest(t)

	add := models.AddCartItemRequest{
		ProductID:   1,
		ProductName: "Runner",
		UnitPrice:   50,
		Quantity:    1,
	}

	w := cartDo(router, "POST", "/cart/items", add, "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d", http.StatusOK, w.Code)
	}

	found := false
	for _, c := range w.Result().Cookies() {
		if c.Name == sessionCookie && c.Value != "" {
			found = true
		}
	}
	if !found {
		t.Error("Expected a session cookie to be set")
	}
}

func TestCartAdd_RejectsNonPositiveQuantity(t *testing.T) {
	_, router := setupCartTest(t)

	add := models.AddCartItemRequest{
		ProductID:   1,
		ProductName: "Runner",
		UnitPrice:   50,
		Quantity:    -2,
	}

	w := cartDo(router, "POST", "/cart/items", add, "s1")
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status %d for negative quantity, got %d", http.StatusBadRequest, w.Code)
	}
}

func TestCartUpdate_ZeroRemoves(t *testing.T) {
	_, router := setupCartTest(t)

	add := models.AddCartItemRequest{
		ProductID:   1,
		ProductName: "Runner",
		UnitPrice:   50,
		Quantity:    2,
		Size:        "42",
		Color:       "black",
	}
	cartDo(router, "POST", "/cart/items", add, "s1")

	update := models.UpdateCartItemRequest{ProductID: 1, Size: "42", Color: "black", Quantity: 0}
	w := cartDo(router, "PUT", "/cart/items", update, "s1")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d", http.StatusOK, w.Code)
	}

	w = cartDo(router, "GET", "/cart", nil, "s1")
	var resp struct {
		Items []models.CartItem `json:"items"`
		Total float64           `json:"total"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Items) != 0 {
		t.Errorf("Expected empty cart after update to 0, got %+v", resp.Items)
	}
}

func TestCartList_ComputesTotal(t *testing.T) {
	_, router := setupCartTest(t)

	cartDo(router, "POST", "/cart/items", models.AddCartItemRequest{
		ProductID: 1, ProductName: "Runner", UnitPrice: 50, Quantity: 2,
	}, "s1")
	cartDo(router, "POST", "/cart/items", models.AddCartItemRequest{
		ProductID: 2, ProductName: "Trail", UnitPrice: 30, Quantity: 1,
	}, "s1")

	w := cartDo(router, "GET", "/cart", nil, "s1")

	var resp struct {
		Items []models.CartItem `json:"items"`
		Total float64           `json:"total"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Items) != 2 {
		t.Fatalf("Expected 2 lines, got %d", len(resp.Items))
	}
	if resp.Total != 130 {
		t.Errorf("Expected total 130, got %v", resp.Total)
	}
}

func TestCartRemoveAndClear(t *testing.T) {
	_, router := setupCartTest(t)

	cartDo(router, "POST", "/cart/items", models.AddCartItemRequest{
		ProductID: 1, ProductName: "Runner", UnitPrice: 50, Quantity: 2, Size: "42", Color: "black",
	}, "s1")
	cartDo(router, "POST", "/cart/items", models.AddCartItemRequest{
		ProductID: 2, ProductName: "Trail", UnitPrice: 30, Quantity: 1,
	}, "s1")

	w := cartDo(router, "DELETE", "/cart/items", models.RemoveCartItemRequest{
		ProductID: 1, Size: "42", Color: "black",
	}, "s1")
	var resp map[string]any
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp["count"] != float64(1) {
		t.Errorf("Expected count 1 after remove, got %v", resp["count"])
	}

	w = cartDo(router, "DELETE", "/cart", nil, "s1")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d", http.StatusOK, w.Code)
	}

	w = cartDo(router, "GET", "/cart/count", nil, "s1")
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp["count"] != float64(0) {
		t.Errorf("Expected count 0 after clear, got %v", resp["count"])
	}
}
