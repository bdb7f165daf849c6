package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mkurbatov/lessonhub-api/internal/dto"
	"github.com/mkurbatov/lessonhub-api/internal/models"
	appErrors "github.com/mkurbatov/lessonhub-api/pkg/errors"
	"github.com/mkurbatov/lessonhub-api/pkg/response"
)

type purchaseService interface {
	BuyClass(ctx context.Context, req dto.BuyClassRequest) (*models.Class, error)
	BuySubscription(ctx context.Context, req dto.BuySubscriptionRequest) (*models.Subscription, []models.Class, error)
	SetSubscriptionActive(ctx context.Context, subscriptionID string, active bool) (*models.Subscription, error)
	BoughtLessonTypes(ctx context.Context, customerID string) ([]models.LessonDescriptor, error)
	CustomerClasses(ctx context.Context, customerID string) ([]models.Class, error)
	CustomerSubscriptions(ctx context.Context, customerID string) ([]models.Subscription, error)
	SubscriptionClasses(ctx context.Context, subscriptionID string) ([]models.Class, error)
}

// PurchaseHandler exposes purchase and subscription endpoints.
type PurchaseHandler struct {
	service purchaseService
}

// NewPurchaseHandler builds a new handler.
func NewPurchaseHandler(service purchaseService) *PurchaseHandler {
	return &PurchaseHandler{service: service}
}

// BuyClass godoc
// @Summary Record a single-lesson purchase
// @Tags Purchases
// @Accept json
// @Produce json
// @Param payload body dto.BuyClassRequest true "Purchase payload"
// @Success 201 {object} response.Envelope
// @Router /purchases/classes [post]
func (h *PurchaseHandler) BuyClass(c *gin.Context) {
	var req dto.BuyClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid purchase payload"))
		return
	}
	class, err := h.service.BuyClass(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, class)
}

// BuySubscription godoc
// @Summary Record a bundle purchase and provision its classes
// @Tags Purchases
// @Accept json
// @Produce json
// @Param payload body dto.BuySubscriptionRequest true "Purchase payload"
// @Success 201 {object} response.Envelope
// @Router /purchases/subscriptions [post]
func (h *PurchaseHandler) BuySubscription(c *gin.Context) {
	var req dto.BuySubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid purchase payload"))
		return
	}
	sub, classes, err := h.service.BuySubscription(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, gin.H{"subscription": sub, "classes": classes})
}

// UpdateSubscription godoc
// @Summary Toggle a subscription's active flag
// @Tags Purchases
// @Accept json
// @Produce json
// @Param id path string true "Subscription ID"
// @Param payload body dto.UpdateSubscriptionRequest true "Update payload"
// @Success 200 {object} response.Envelope
// @Router /subscriptions/{id} [patch]
func (h *PurchaseHandler) UpdateSubscription(c *gin.Context) {
	var req dto.UpdateSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid subscription payload"))
		return
	}
	if req.Active == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "active is required"))
		return
	}
	sub, err := h.service.SetSubscriptionActive(c.Request.Context(), c.Param("id"), *req.Active)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sub, nil)
}

// SubscriptionClasses godoc
// @Summary List the classes a subscription provisioned
// @Tags Purchases
// @Produce json
// @Param id path string true "Subscription ID"
// @Success 200 {object} response.Envelope
// @Router /subscriptions/{id}/classes [get]
func (h *PurchaseHandler) SubscriptionClasses(c *gin.Context) {
	classes, err := h.service.SubscriptionClasses(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, classes, nil)
}

// CustomerClasses godoc
// @Summary List a customer's purchased classes
// @Tags Customers
// @Produce json
// @Param id path string true "Customer ID"
// @Success 200 {object} response.Envelope
// @Router /customers/{id}/classes [get]
func (h *PurchaseHandler) CustomerClasses(c *gin.Context) {
	classes, err := h.service.CustomerClasses(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, classes, nil)
}

// CustomerSubscriptions godoc
// @Summary List a customer's subscriptions
// @Tags Customers
// @Produce json
// @Param id path string true "Customer ID"
// @Success 200 {object} response.Envelope
// @Router /customers/{id}/subscriptions [get]
func (h *PurchaseHandler) CustomerSubscriptions(c *gin.Context) {
	subs, err := h.service.CustomerSubscriptions(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, subs, nil)
}

// CustomerLessonTypes godoc
// @Summary List the lesson kinds a customer can still schedule
// @Tags Customers
// @Produce json
// @Param id path string true "Customer ID"
// @Success 200 {object} response.Envelope
// @Router /customers/{id}/lesson-types [get]
func (h *PurchaseHandler) CustomerLessonTypes(c *gin.Context) {
	descriptors, err := h.service.BoughtLessonTypes(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, descriptors, nil)
}
