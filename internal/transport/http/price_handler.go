package http

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/light-bringer/promo-engine/internal/app/promotion/contracts"
	"github.com/light-bringer/promo-engine/internal/app/promotion/queries/get_product_price"
)

type priceGetter interface {
	Execute(ctx context.Context, req *get_product_price.Request) (*contracts.PriceView, error)
}

// PriceHandler serves storefront price reads.
type PriceHandler struct {
	query priceGetter
}

// NewPriceHandler creates a new price handler.
func NewPriceHandler(query priceGetter) *PriceHandler {
	return &PriceHandler{query: query}
}

// RegisterRoutes mounts GET /products/:id/price on rg.
func (h *PriceHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/products/:id/price", h.Get)
}

// Get handles GET /products/:id/price.
func (h *PriceHandler) Get(c *gin.Context) {
	view, err := h.query.Execute(c.Request.Context(), &get_product_price.Request{ProductID: c.Param("id")})
	if err != nil {
		handleError(c, err)
		return
	}

	ok(c, view)
}
