package handlers

import (
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"shop-svc/cache"
	"shop-svc/models"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

type AdminHandler struct {
	db          *sql.DB
	redisClient *redis.Client
	logger      *zap.Logger
}

func NewAdminHandler(db *sql.DB, redisClient *redis.Client, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		db:          db,
		redisClient: redisClient,
		logger:      logger,
	}
}

func (h *AdminHandler) CreateProduct(c *gin.Context) {
	ctx, span := otel.Tracer("shop-svc").Start(c.Request.Context(), "AdminCreateProduct")
	defer span.End()

	var req models.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var product models.Product
	err := scanProduct(h.db.QueryRowContext(ctx,
		"INSERT INTO products (name, description, price, discount_price, image_url, brand, category, is_featured) VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING "+productColumns,
		req.Name, req.Description, req.Price, req.DiscountPrice, req.ImageURL, req.Brand, req.Category, req.IsFeatured,
	), &product)
	if err != nil {
		span.RecordError(err)
		h.logger.Error("Failed to create product", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	span.SetAttributes(attribute.Int("product.id", product.ID))
	h.logger.Info("Product created", zap.Int("product_id", product.ID))
	c.JSON(http.StatusCreated, product)
}

func (h *AdminHandler) UpdateProduct(c *gin.Context) {
	ctx, span := otel.Tracer("shop-svc").Start(c.Request.Context(), "AdminUpdateProduct")
	defer span.End()

	id := c.Param("id")
	span.SetAttributes(attribute.String("product.id", id))

	var req models.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var product models.Product
	err := scanProduct(h.db.QueryRowContext(ctx,
		"UPDATE products SET name = $1, description = $2, price = $3, discount_price = $4, image_url = $5, brand = $6, category = $7, is_featured = $8, updated_at = CURRENT_TIMESTAMP WHERE id = $9 RETURNING "+productColumns,
		req.Name, req.Description, req.Price, req.DiscountPrice, req.ImageURL, req.Brand, req.Category, req.IsFeatured, id,
	), &product)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		span.RecordError(err)
		h.logger.Error("Failed to update product", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if h.redisClient != nil {
		cache.DeleteProduct(ctx, h.redisClient, id)
	}

	h.logger.Info("Product updated", zap.Int("product_id", product.ID))
	c.JSON(http.StatusOK, product)
}

func (h *AdminHandler) DeleteProduct(c *gin.Context) {
	ctx, span := otel.Tracer("shop-svc").Start(c.Request.Context(), "AdminDeleteProduct")
	defer span.End()

	id := c.Param("id")
	span.SetAttributes(attribute.String("product.id", id))

	result, err := h.db.ExecContext(ctx, "DELETE FROM products WHERE id = $1", id)
	if err != nil {
		span.RecordError(err)
		h.logger.Error("Failed to delete product", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	if h.redisClient != nil {
		cache.DeleteProduct(ctx, h.redisClient, id)
	}

	h.logger.Info("Product deleted", zap.String("product_id", id))
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *AdminHandler) ListCustomers(c *gin.Context) {
	ctx, span := otel.Tracer("shop-svc").Start(c.Request.Context(), "AdminListCustomers")
	defer span.End()

	rows, err := h.db.QueryContext(ctx,
		"SELECT id, name, email, role, created_at FROM users ORDER BY id")
	if err != nil {
		span.RecordError(err)
		h.logger.Error("Failed to list customers", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.CreatedAt); err != nil {
			span.RecordError(err)
			h.logger.Error("Failed to scan customer", zap.Error(err))
			continue
		}
		users = append(users, u)
	}

	span.SetAttributes(attribute.Int("customers.count", len(users)))
	c.JSON(http.StatusOK, users)
}

func (h *AdminHandler) DeleteCustomer(c *gin.Context) {
	ctx, span := otel.Tracer("shop-svc").Start(c.Request.Context(), "AdminDeleteCustomer")
	defer span.End()

	id := c.Param("id")

	result, err := h.db.ExecContext(ctx, "DELETE FROM users WHERE id = $1 AND role <> 'admin'", id)
	if err != nil {
		span.RecordError(err)
		h.logger.Error("Failed to delete customer", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Customer not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *AdminHandler) ListOrders(c *gin.Context) {
	ctx, span := otel.Tracer("shop-svc").Start(c.Request.Context(), "AdminListOrders")
	defer span.End()

	rows, err := h.db.QueryContext(ctx,
		"SELECT id, user_id, total_amount, payment_method, payment_token, status, created_at, updated_at FROM orders ORDER BY id DESC")
	if err != nil {
		span.RecordError(err)
		h.logger.Error("Failed to list orders", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	defer rows.Close()

	orders := []models.Order{}
	for rows.Next() {
		var o models.Order
		if err := rows.Scan(&o.ID, &o.UserID, &o.TotalAmount, &o.PaymentMethod, &o.PaymentToken, &o.Status, &o.CreatedAt, &o.UpdatedAt); err != nil {
			span.RecordError(err)
			h.logger.Error("Failed to scan order", zap.Error(err))
			continue
		}
		orders = append(orders, o)
	}

	c.JSON(http.StatusOK, orders)
}

// imageNamePattern matches catalog image files named like adidas1.jpg or
// nike20.webp: trailing digits are the 1-based ordinal of the product
// within that brand.
var imageNamePattern = regexp.MustCompile(`^([a-zA-Z]+)(\d+)$`)

// MapImages walks the media directory and assigns each brand-named image
// file to the matching product's image_url.
func (h *AdminHandler) MapImages(c *gin.Context) {
	ctx, span := otel.Tracer("shop-svc").Start(c.Request.Context(), "AdminMapImages")
	defer span.End()

	mediaDir := os.Getenv("MEDIA_DIR")
	if mediaDir == "" {
		mediaDir = "media/images/products"
	}

	if _, err := os.Stat(mediaDir); os.IsNotExist(err) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Image directory not found: " + mediaDir})
		return
	}

	// Products grouped by brand, ordered by id, so "nike3" is the third
	// nike product in catalog order.
	byBrand := map[string][]int{}
	rows, err := h.db.QueryContext(ctx, "SELECT id, LOWER(brand) FROM products ORDER BY id")
	if err != nil {
		span.RecordError(err)
		h.logger.Error("Failed to load products for image mapping", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	for rows.Next() {
		var (
			id    int
			brand string
		)
		if err := rows.Scan(&id, &brand); err != nil {
			continue
		}
		byBrand[brand] = append(byBrand[brand], id)
	}
	rows.Close()

	updated, skipped := 0, 0
	log := []string{}

	walkErr := filepath.Walk(mediaDir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return err
		}

		ext := strings.ToLower(filepath.Ext(path))
		if ext != ".jpg" && ext != ".jpeg" && ext != ".png" && ext != ".webp" {
			return nil
		}

		name := strings.TrimSuffix(info.Name(), filepath.Ext(info.Name()))
		m := imageNamePattern.FindStringSubmatch(name)
		if m == nil {
			skipped++
			log = append(log, "Filename not in brand+N format: "+info.Name())
			return nil
		}

		brand := strings.ToLower(m[1])
		ordinal, _ := strconv.Atoi(m[2])
		ids := byBrand[brand]
		if ordinal < 1 || ordinal > len(ids) {
			skipped++
			log = append(log, fmt.Sprintf("No %s product #%d for %s", brand, ordinal, info.Name()))
			return nil
		}

		productID := ids[ordinal-1]
		rel, err := filepath.Rel(mediaDir, path)
		if err != nil {
			rel = info.Name()
		}
		imageURL := "/media/images/products/" + filepath.ToSlash(rel)

		if _, err := h.db.ExecContext(ctx,
			"UPDATE products SET image_url = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2",
			imageURL, productID,
		); err != nil {
			skipped++
			log = append(log, fmt.Sprintf("Failed to update product %d: %v", productID, err))
			return nil
		}

		if h.redisClient != nil {
			cache.DeleteProduct(ctx, h.redisClient, strconv.Itoa(productID))
		}
		updated++
		return nil
	})

	if walkErr != nil {
		span.RecordError(walkErr)
		h.logger.Error("Failed to walk media directory", zap.Error(walkErr))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	span.SetAttributes(
		attribute.Int("images.updated", updated),
		attribute.Int("images.skipped", skipped),
	)
	h.logger.Info("Image mapping finished", zap.Int("updated", updated), zap.Int("skipped", skipped))
	c.JSON(http.StatusOK, gin.H{"updated": updated, "skipped": skipped, "log": log})
}
