package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/storefront/internal/server/http/dto"
	"github.com/polkiloo/storefront/internal/usecase"
)

// CheckoutHandler serves the checkout steps of an order.
type CheckoutHandler struct {
	facade StepFacade
}

// NewCheckoutHandler constructs CheckoutHandler.
func NewCheckoutHandler(facade StepFacade) *CheckoutHandler {
	return &CheckoutHandler{facade: facade}
}

// SetAddress handles PUT /api/orders/:number/address.
func (h *CheckoutHandler) SetAddress(c *gin.Context) {
	var req dto.AddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	in := usecase.AddressInput{
		Email:      req.Email,
		Bill:       req.BillAddress,
		Ship:       req.ShipAddress,
		UseBilling: req.UseBilling,
	}
	o, err := h.facade.SetAddress(c.Request.Context(), CurrentActor(c), c.Param("number"), in)
	if err != nil {
		respondError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, dto.NewOrderResponse(o))
}

// SelectShippingMethod handles PUT /api/orders/:number/shipping_method.
func (h *CheckoutHandler) SelectShippingMethod(c *gin.Context) {
	var req dto.ShippingMethodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	o, err := h.facade.SelectShippingMethod(c.Request.Context(), CurrentActor(c), c.Param("number"), req.ShippingMethodID)
	if err != nil {
		respondError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, dto.NewOrderResponse(o))
}

// AddPayment handles POST /api/orders/:number/payments.
func (h *CheckoutHandler) AddPayment(c *gin.Context) {
	var req dto.PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	in := usecase.PaymentInput{MethodID: req.PaymentMethodID, Source: req.Source}
	o, err := h.facade.AddPayment(c.Request.Context(), CurrentActor(c), c.Param("number"), in)
	if err != nil {
		respondError(c, err, nil)
		return
	}
	c.JSON(http.StatusCreated, dto.NewOrderResponse(o))
}

// Advance handles POST /api/orders/:number/advance. A declined payment is
// reported as 402 together with the order, which keeps the failed payment.
func (h *CheckoutHandler) Advance(c *gin.Context) {
	res, err := h.facade.Advance(c.Request.Context(), CurrentActor(c), c.Param("number"))
	if err != nil {
		if res != nil {
			respondError(c, err, res.Order)
			return
		}
		respondError(c, err, nil)
		return
	}

	resp := dto.AdvanceResponse{Order: dto.NewOrderResponse(res.Order)}
	if tr := res.Transition; tr != nil {
		resp.From = string(tr.From)
		resp.To = string(tr.To)
		resp.PaymentProfilesEnabled = tr.PaymentProfilesEnabled
		if tr.PaymentError != nil {
			resp.PaymentError = tr.PaymentError.Error()
		}
	}
	c.JSON(http.StatusOK, resp)
}

// CheckoutAllowed handles GET /api/orders/:number/checkout_allowed.
func (h *CheckoutHandler) CheckoutAllowed(c *gin.Context) {
	allowed, err := h.facade.CheckoutAllowed(c.Request.Context(), CurrentActor(c), c.Param("number"))
	if err != nil {
		respondError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, dto.CheckoutAllowedResponse{Allowed: allowed})
}

// Rates handles GET /api/orders/:number/rates.
func (h *CheckoutHandler) Rates(c *gin.Context) {
	options, err := h.facade.RateHash(c.Request.Context(), CurrentActor(c), c.Param("number"))
	if err != nil {
		respondError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, dto.NewRateResponses(options))
}

// Cancel handles POST /api/orders/:number/cancel.
func (h *CheckoutHandler) Cancel(c *gin.Context) {
	o, err := h.facade.Cancel(c.Request.Context(), CurrentActor(c), c.Param("number"))
	if err != nil {
		respondError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, dto.NewOrderResponse(o))
}
