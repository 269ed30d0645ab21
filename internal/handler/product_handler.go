package handler

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/Bronny721/nadu-website/internal/domain"
	"github.com/Bronny721/nadu-website/internal/dto"
	"github.com/Bronny721/nadu-website/internal/service"
	"github.com/Bronny721/nadu-website/pkg/response"
	"github.com/gin-gonic/gin"
)

// maxImportSize bounds uploaded workbooks
const maxImportSize = 10 << 20

// ProductHandler handles catalog requests
type ProductHandler struct {
	productService service.ProductService
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(productService service.ProductService) *ProductHandler {
	return &ProductHandler{productService: productService}
}

// ListProducts lists the catalog, optionally by ?category=
// GET /products, GET /admin/products
func (h *ProductHandler) ListProducts(c *gin.Context) {
	filter := domain.ProductFilter{Category: strings.TrimSpace(c.Query("category"))}

	products, err := h.productService.List(c.Request.Context(), filter)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, dto.NewProductListResponse(products))
}

// GetProduct returns one product
// GET /products/:id, GET /admin/products/:id
func (h *ProductHandler) GetProduct(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	product, err := h.productService.GetByID(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, product)
}

// CreateProduct adds a product
// POST /admin/products
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var req dto.ProductRequest
	if !bindJSON(c, &req) {
		return
	}

	product, err := h.productService.Create(c.Request.Context(), &req)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Created(c, product)
}

// UpdateProduct replaces a product
// PUT /admin/products/:id
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req dto.ProductRequest
	if !bindJSON(c, &req) {
		return
	}

	product, err := h.productService.Update(c.Request.Context(), id, &req)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, product)
}

// DeleteProduct removes a product
// DELETE /admin/products/:id
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.productService.Delete(c.Request.Context(), id); err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, gin.H{"message": "Product deleted"})
}

// ImportProducts bulk-creates products from an uploaded .xlsx file field
// POST /admin/products/import
func (h *ProductHandler) ImportProducts(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxImportSize)

	header, err := c.FormFile("file")
	if err != nil {
		response.FieldError(c, "file", "an .xlsx file is required")
		return
	}
	if !strings.EqualFold(filepath.Ext(header.Filename), ".xlsx") {
		response.FieldError(c, "file", "only .xlsx files are supported")
		return
	}

	file, err := header.Open()
	if err != nil {
		response.InternalError(c, err)
		return
	}
	defer file.Close()

	result, err := h.productService.Import(c.Request.Context(), file)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, result)
}
