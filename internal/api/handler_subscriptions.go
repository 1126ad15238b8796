package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"equipment-scheduling-backend/internal/model"
)

type putSubscriptionRequest struct {
	Endpoint            string  `json:"endpoint" binding:"required"`
	P256DH              string  `json:"p256dh" binding:"required"`
	Auth                string  `json:"auth" binding:"required"`
	SubscribedEquipment []int64 `json:"subscribed_equipment"`
}

// PutSubscription handles the creation or replacement of a push subscription
// and its equipment mapping.
func (h *Handler) PutSubscription(c *gin.Context) {
	var req putSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"kind": "invalid_request", "error": err.Error()})
		return
	}

	subscription := model.PushSubscription{
		Endpoint: req.Endpoint,
		P256DH:   req.P256DH,
		Auth:     req.Auth,
	}

	err := h.store.DB().Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "endpoint"}},
			DoUpdates: clause.AssignmentColumns([]string{"p256dh", "auth"}),
		}).Create(&subscription).Error; err != nil {
			return err
		}

		var equipment []model.Equipment
		if len(req.SubscribedEquipment) > 0 {
			if err := tx.Find(&equipment, req.SubscribedEquipment).Error; err != nil {
				return err
			}
		}
		return tx.Model(&subscription).Association("Equipment").Replace(&equipment)
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"kind": "internal", "error": "internal server error"})
		return
	}
	c.Status(http.StatusCreated)
}

// GetSubscription returns the equipment ids a subscription follows.
func (h *Handler) GetSubscription(c *gin.Context) {
	endpoint := c.Query("endpoint")
	if endpoint == "" {
		c.JSON(http.StatusBadRequest, gin.H{"kind": "invalid_request", "error": "endpoint query parameter is required"})
		return
	}

	var subscription model.PushSubscription
	err := h.store.DB().Preload("Equipment").First(&subscription, "endpoint = ?", endpoint).Error
	if err == gorm.ErrRecordNotFound {
		c.JSON(http.StatusNotFound, gin.H{"kind": "not_found", "error": "subscription not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"kind": "internal", "error": "internal server error"})
		return
	}

	ids := make([]int64, 0, len(subscription.Equipment))
	for _, eq := range subscription.Equipment {
		ids = append(ids, eq.ID)
	}
	c.JSON(http.StatusOK, gin.H{"endpoint": subscription.Endpoint, "subscribed_equipment": ids})
}

type deleteSubscriptionRequest struct {
	Endpoint string `json:"endpoint" binding:"required"`
}

// DeleteSubscription handles the deletion of a push subscription.
func (h *Handler) DeleteSubscription(c *gin.Context) {
	var req deleteSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"kind": "invalid_request", "error": err.Error()})
		return
	}

	if err := h.store.DB().Delete(&model.PushSubscription{Endpoint: req.Endpoint}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"kind": "internal", "error": "internal server error"})
		return
	}
	c.Status(http.StatusNoContent)
}
