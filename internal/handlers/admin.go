package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/channelmarket/internal/models"
	"github.com/example/channelmarket/internal/utils"
)

// AdminHandler manages moderation endpoints.
type AdminHandler struct {
	db *gorm.DB
}

// NewAdminHandler constructs AdminHandler.
func NewAdminHandler(db *gorm.DB) *AdminHandler {
	return &AdminHandler{db: db}
}

// ListTransactions returns transactions filtered by status, payment
// method, and date range, newest first, each joined with the paying
// user's display fields.
func (h *AdminHandler) ListTransactions(c *fiber.Ctx) error {
	query := h.db.Model(&models.Transaction{})

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	} else {
		query = query.Where("status = ?", models.TxStatusSuccess)
	}

	if method := c.Query("paymentMethod"); method != "" {
		query = query.Where("payment_method = ?", method)
	}

	startDate := c.Query("startDate")
	endDate := c.Query("endDate")
	if startDate != "" && endDate != "" {
		start, err := time.Parse("2006-01-02", startDate)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid startDate")
		}
		end, err := time.Parse("2006-01-02", endDate)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid endDate")
		}
		query = query.Where("created_at BETWEEN ? AND ?", start, end.Add(24*time.Hour))
	}

	var transactions []models.Transaction
	if err := query.Preload("User").Order("created_at desc").Find(&transactions).Error; err != nil {
		return err
	}

	data := make([]fiber.Map, len(transactions))
	for i, tx := range transactions {
		user := fiber.Map{"name": "Unknown User", "email": "N/A", "role": "N/A", "mobile": "N/A"}
		if tx.User != nil {
			email := "N/A"
			if tx.User.Email != nil {
				email = *tx.User.Email
			}
			user = fiber.Map{
				"name":   tx.User.Name,
				"email":  email,
				"role":   tx.User.Role,
				"mobile": tx.User.MobileString(),
			}
		}

		data[i] = fiber.Map{
			"transactionId":         tx.TransactionID,
			"merchantTransactionId": tx.MerchantTransactionID,
			"amount":                tx.Amount,
			"currency":              tx.Currency,
			"status":                tx.Status,
			"paymentMethod":         tx.PaymentMethod,
			"createdAt":             tx.CreatedAt,
			"updatedAt":             tx.UpdatedAt,
			"channelId":             tx.ChannelID,
			"user":                  user,
		}
	}

	return c.JSON(fiber.Map{
		"success": true,
		"count":   len(data),
		"data":    data,
	})
}

// ListChannels returns every listing, newest first.
func (h *AdminHandler) ListChannels(c *fiber.Ctx) error {
	var channels []models.Channel
	if err := h.db.Order("created_at desc").Find(&channels).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": channels})
}

// GetChannel loads one listing for moderation.
func (h *AdminHandler) GetChannel(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var channel models.Channel
	if err := h.db.First(&channel, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "channel not found")
		}
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": channel})
}

// ApproveChannel marks a listing approved.
func (h *AdminHandler) ApproveChannel(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	result := h.db.Model(&models.Channel{}).Where("id = ?", id).
		Update("status", models.ChannelStatusApproved)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fiber.NewError(fiber.StatusNotFound, "channel not found")
	}

	var channel models.Channel
	if err := h.db.First(&channel, "id = ?", id).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "channel approved successfully",
		"data":    channel,
	})
}

type demandingRequest struct {
	MostDemanding bool `json:"most_demanding"`
}

// ToggleDemanding sets the most-demanding flag on a listing.
func (h *AdminHandler) ToggleDemanding(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var req demandingRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	result := h.db.Model(&models.Channel{}).Where("id = ?", id).
		Update("most_demanding", req.MostDemanding)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fiber.NewError(fiber.StatusNotFound, "channel not found")
	}

	var channel models.Channel
	if err := h.db.First(&channel, "id = ?", id).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": channel})
}

// DeleteChannel removes a listing.
func (h *AdminHandler) DeleteChannel(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	result := h.db.Delete(&models.Channel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fiber.NewError(fiber.StatusNotFound, "channel not found")
	}

	return c.JSON(fiber.Map{"success": true, "message": "channel deleted successfully"})
}

// ListUsers returns registered users with pagination and search.
func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)
	query := h.db.Model(&models.User{})

	if search := c.Query("search"); search != "" {
		q := "%" + search + "%"
		query = query.Where("name LIKE ? OR mobile LIKE ? OR email LIKE ?", q, q, q)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var users []models.User
	if err := query.Order("created_at desc").
		Limit(pg.Limit).Offset(pg.Offset).
		Find(&users).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    users,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}

type updateRoleRequest struct {
	Role string `json:"role"`
}

// UpdateUserRole changes a user's role.
func (h *AdminHandler) UpdateUserRole(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var req updateRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if !models.ValidRole(req.Role) {
		return fiber.NewError(fiber.StatusBadRequest, "unrecognized role")
	}

	result := h.db.Model(&models.User{}).Where("id = ?", id).Update("role", req.Role)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fiber.NewError(fiber.StatusNotFound, "user not found")
	}

	return c.JSON(fiber.Map{"success": true, "message": "user role updated successfully"})
}

// DeleteUser removes an account.
func (h *AdminHandler) DeleteUser(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	result := h.db.Delete(&models.User{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fiber.NewError(fiber.StatusNotFound, "user not found")
	}

	return c.JSON(fiber.Map{"success": true, "message": "user deleted successfully"})
}

// DashboardStats returns aggregate statistics for the admin dashboard.
func (h *AdminHandler) DashboardStats(c *fiber.Ctx) error {
	var totalUsers int64
	if err := h.db.Model(&models.User{}).Count(&totalUsers).Error; err != nil {
		return err
	}

	var totalChannels int64
	if err := h.db.Model(&models.Channel{}).Count(&totalChannels).Error; err != nil {
		return err
	}

	type statusCount struct {
		Status string `json:"status"`
		Count  int64  `json:"count"`
	}
	var statusCounts []statusCount
	if err := h.db.Model(&models.Channel{}).
		Select("status, count(*) as count").
		Group("status").
		Scan(&statusCounts).Error; err != nil {
		return err
	}

	channelsByStatus := make(map[string]int64)
	for _, sc := range statusCounts {
		channelsByStatus[sc.Status] = sc.Count
	}

	var totalRevenue int64
	if err := h.db.Model(&models.Transaction{}).
		Where("status = ?", models.TxStatusSuccess).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&totalRevenue).Error; err != nil {
		return err
	}

	var pendingTransactions int64
	if err := h.db.Model(&models.Transaction{}).
		Where("status = ?", models.TxStatusPending).
		Count(&pendingTransactions).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"total_users":          totalUsers,
			"total_channels":       totalChannels,
			"channels_by_status":   channelsByStatus,
			"total_revenue":        totalRevenue,
			"pending_transactions": pendingTransactions,
		},
	})
}
