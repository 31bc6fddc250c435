package controllers

import (
	"errors"
	"net/http"
	"time"

	"dairyflow-backend/services"
	"dairyflow-backend/store"
	"dairyflow-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Controller serves the HTTP API. Notifier and Links are optional.
type Controller struct {
	Store      *store.Store
	Billing    *services.BillingService
	Deliveries *services.DeliveryService
	Notifier   *services.NotificationService
	Links      *utils.BillLinkSigner
	Location   *time.Location
	Logger     *zap.Logger
	Now        func() time.Time
}

func (h *Controller) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

func (h *Controller) location() *time.Location {
	if h.Location != nil {
		return h.Location
	}
	return time.UTC
}

func (h *Controller) logger() *zap.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return zap.NewNop()
}

// parseID reads a uuid path parameter and responds with 400 when it is malformed.
func parseID(c *gin.Context, param, label string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid "+label+" ID format")
		return uuid.Nil, false
	}
	return id, true
}

// respondServiceError maps billing and delivery errors onto HTTP statuses.
func (h *Controller) respondServiceError(c *gin.Context, err error, fallback string) {
	var be *services.BillingError
	message := fallback
	if errors.As(err, &be) {
		message = be.Message
	}

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrCustomerNotFound), errors.Is(err, services.ErrBillNotFound):
		status = http.StatusNotFound
	case errors.Is(err, services.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, services.ErrInvalidPeriod), errors.Is(err, services.ErrNoBillableItems):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, services.ErrBillingInProgress),
		errors.Is(err, services.ErrDuplicateBill),
		errors.Is(err, services.ErrOverrideBilled):
		status = http.StatusConflict
	}

	if status == http.StatusInternalServerError {
		h.logger().Error(fallback, zap.String("path", c.FullPath()), zap.Error(err))
	}
	utils.RespondWithError(c, status, message)
}

// respondStoreError handles the plain store errors of CRUD endpoints.
func (h *Controller) respondStoreError(c *gin.Context, err error, notFound, fallback string) {
	if errors.Is(err, store.ErrNotFound) {
		utils.RespondWithError(c, http.StatusNotFound, notFound)
		return
	}
	h.logger().Error(fallback, zap.String("path", c.FullPath()), zap.Error(err))
	utils.RespondWithError(c, http.StatusInternalServerError, fallback)
}
