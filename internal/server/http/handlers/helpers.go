package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/server/http/dto"
	"github.com/polkiloo/storefront/internal/server/http/middleware"
	"github.com/polkiloo/storefront/internal/usecase"
)

// CurrentUserID extracts authenticated user identifier from context.
func CurrentUserID(c *gin.Context) int64 {
	val, ok := c.Get(middleware.UserIDContextKey)
	if !ok {
		return 0
	}
	id, _ := val.(int64)
	return id
}

// CurrentActor combines the identity and the guest token of the request.
func CurrentActor(c *gin.Context) usecase.Actor {
	actor := usecase.Actor{UserID: CurrentUserID(c)}
	if val, ok := c.Get(middleware.GuestTokenContextKey); ok {
		actor.GuestToken, _ = val.(string)
	}
	return actor
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case domainErrors.IsValidation(err),
		errors.Is(err, domainErrors.ErrNoShippingMethods),
		errors.Is(err, domainErrors.ErrCheckoutNotAllowed):
		return http.StatusUnprocessableEntity
	case domainErrors.IsGateway(err):
		return http.StatusPaymentRequired
	case errors.Is(err, domainErrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domainErrors.ErrForbidden), errors.Is(err, domainErrors.ErrInvalidGuestToken):
		return http.StatusForbidden
	case errors.Is(err, domainErrors.ErrInvalidTransition),
		errors.Is(err, domainErrors.ErrCannotCancel),
		errors.Is(err, domainErrors.ErrUserAlreadyAssigned),
		errors.Is(err, domainErrors.ErrAlreadyExists):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes the error body. Internal failures never leak details.
func respondError(c *gin.Context, err error, order *model.Order) {
	status := statusFor(err)
	body := dto.ErrorResponse{Error: err.Error()}
	if status == http.StatusInternalServerError {
		body.Error = http.StatusText(status)
		_ = c.Error(err)
	}
	var verr *domainErrors.ValidationError
	if errors.As(err, &verr) {
		body.Field = verr.Field
	}
	if order != nil {
		resp := dto.NewOrderResponse(order)
		body.Order = &resp
	}
	c.JSON(status, body)
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
}
