package handler

import (
	"github.com/Bronny721/nadu-website/internal/dto"
	"github.com/Bronny721/nadu-website/pkg/response"
	"github.com/gin-gonic/gin"
)

// StoreHandler exposes storefront settings
type StoreHandler struct {
	config dto.StoreConfigResponse
}

// NewStoreHandler creates a new StoreHandler
func NewStoreHandler(shippingFee float64, currency string) *StoreHandler {
	return &StoreHandler{config: dto.StoreConfigResponse{ShippingFee: shippingFee, Currency: currency}}
}

// Config returns the pricing rules used at checkout
// GET /store/config
func (h *StoreHandler) Config(c *gin.Context) {
	response.Success(c, h.config)
}
