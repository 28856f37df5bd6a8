package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/storefront/internal/server/http/dto"
	"github.com/polkiloo/storefront/internal/server/http/middleware"
)

// OrderHandler manages order creation, cart editing and claiming.
type OrderHandler struct {
	facade CartFacade
}

// NewOrderHandler constructs OrderHandler.
func NewOrderHandler(facade CartFacade) *OrderHandler {
	return &OrderHandler{facade: facade}
}

// Create handles POST /api/orders.
func (h *OrderHandler) Create(c *gin.Context) {
	created, err := h.facade.CreateOrder(c.Request.Context(), CurrentActor(c))
	if err != nil {
		respondError(c, err, nil)
		return
	}
	if created.GuestToken != "" {
		c.Header(middleware.OrderTokenHeader, created.GuestToken)
	}
	c.JSON(http.StatusCreated, dto.CreateOrderResponse{
		Order:      dto.NewOrderResponse(created.Order),
		GuestToken: created.GuestToken,
	})
}

// Get handles GET /api/orders/:number.
func (h *OrderHandler) Get(c *gin.Context) {
	o, err := h.facade.Order(c.Request.Context(), CurrentActor(c), c.Param("number"))
	if err != nil {
		respondError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, dto.NewOrderResponse(o))
}

// AddLineItem handles POST /api/orders/:number/line_items.
func (h *OrderHandler) AddLineItem(c *gin.Context) {
	var req dto.LineItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	o, err := h.facade.AddLineItem(c.Request.Context(), CurrentActor(c), c.Param("number"), req.VariantID, req.Quantity)
	if err != nil {
		respondError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, dto.NewOrderResponse(o))
}

// SetQuantity handles PUT /api/orders/:number/line_items/:id.
func (h *OrderHandler) SetQuantity(c *gin.Context) {
	var req dto.QuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	o, err := h.facade.SetQuantity(c.Request.Context(), CurrentActor(c), c.Param("number"), c.Param("id"), *req.Quantity)
	if err != nil {
		respondError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, dto.NewOrderResponse(o))
}

// Claim handles POST /api/orders/:number/claim. The caller must be
// authenticated and present the guest token of the order.
func (h *OrderHandler) Claim(c *gin.Context) {
	actor := CurrentActor(c)
	o, err := h.facade.Claim(c.Request.Context(), actor.UserID, c.Param("number"), actor.GuestToken)
	if err != nil {
		respondError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, dto.NewOrderResponse(o))
}
