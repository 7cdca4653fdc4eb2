package handlers

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/channelmarket/internal/middleware"
	"github.com/example/channelmarket/internal/models"
)

// PaymentHandler manages payment transaction endpoints.
type PaymentHandler struct {
	db *gorm.DB
}

// NewPaymentHandler constructs PaymentHandler.
func NewPaymentHandler(db *gorm.DB) *PaymentHandler {
	return &PaymentHandler{db: db}
}

type initiatePaymentRequest struct {
	Amount        int64  `json:"amount"`
	Currency      string `json:"currency"`
	ChannelID     string `json:"channel_id"`
	PaymentMethod string `json:"payment_method"`
}

// InitiatePayment records a PENDING transaction for a channel purchase
// and returns the identifiers the client hands to the payment provider.
func (h *PaymentHandler) InitiatePayment(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req initiatePaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.Amount <= 0 {
		return fiber.NewError(fiber.StatusBadRequest, "amount must be positive")
	}

	currency := req.Currency
	if currency == "" {
		currency = "INR"
	}

	tx := models.Transaction{
		TransactionID:         "TXN-" + uuid.NewString(),
		MerchantTransactionID: fmt.Sprintf("MT%s", strings.ReplaceAll(uuid.NewString(), "-", "")),
		Amount:                req.Amount,
		Currency:              currency,
		Status:                models.TxStatusPending,
		PaymentMethod:         req.PaymentMethod,
		UserID:                userID,
	}

	if req.ChannelID != "" {
		channelID, err := uuid.Parse(req.ChannelID)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid channel id")
		}
		var channel models.Channel
		if err := h.db.First(&channel, "id = ?", channelID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fiber.NewError(fiber.StatusNotFound, "channel not found")
			}
			return err
		}
		tx.ChannelID = &channelID
	}

	if err := h.db.Create(&tx).Error; err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"transaction_id":          tx.TransactionID,
			"merchant_transaction_id": tx.MerchantTransactionID,
			"status":                  tx.Status,
		},
	})
}

type paymentCallbackRequest struct {
	MerchantTransactionID string          `json:"merchantTransactionId"`
	Status                string          `json:"status"`
	ProviderResponse      json.RawMessage `json:"providerResponse"`
}

// Callback receives the provider's result and finalizes the transaction.
// Status moves PENDING to SUCCESS or FAILED exactly once; replays against
// a terminal row are rejected.
func (h *PaymentHandler) Callback(c *fiber.Ctx) error {
	var req paymentCallbackRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.MerchantTransactionID == "" {
		return fiber.NewError(fiber.StatusBadRequest, "merchantTransactionId is required")
	}

	status := strings.ToUpper(req.Status)
	if status != models.TxStatusSuccess && status != models.TxStatusFailed {
		return fiber.NewError(fiber.StatusBadRequest, "status must be SUCCESS or FAILED")
	}

	var tx models.Transaction
	if err := h.db.Where("merchant_transaction_id = ?", req.MerchantTransactionID).
		First(&tx).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "transaction not found")
		}
		return err
	}

	if models.TerminalTxStatus(tx.Status) {
		return fiber.NewError(fiber.StatusConflict, "transaction already finalized")
	}

	updates := map[string]interface{}{"status": status}
	if len(req.ProviderResponse) > 0 {
		updates["provider_response"] = []byte(req.ProviderResponse)
	}

	if err := h.db.Model(&tx).Updates(updates).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"merchant_transaction_id": tx.MerchantTransactionID,
			"status":                  status,
		},
	})
}

// PaymentStatus returns the current state of the caller's transaction.
func (h *PaymentHandler) PaymentStatus(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	merchantID := c.Params("merchantTransactionId")

	var tx models.Transaction
	if err := h.db.Where("merchant_transaction_id = ?", merchantID).First(&tx).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "transaction not found")
		}
		return err
	}

	role, _ := middleware.GetCurrentRole(c)
	if tx.UserID != userID && role != models.RoleAdmin {
		return fiber.NewError(fiber.StatusForbidden, "not your transaction")
	}

	return c.JSON(fiber.Map{"success": true, "data": tx})
}
