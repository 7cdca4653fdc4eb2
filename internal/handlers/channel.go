package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/channelmarket/internal/config"
	"github.com/example/channelmarket/internal/middleware"
	"github.com/example/channelmarket/internal/models"
	"github.com/example/channelmarket/internal/uploads"
	"github.com/example/channelmarket/internal/utils"
)

// ChannelHandler manages channel listing CRUD.
type ChannelHandler struct {
	db  *gorm.DB
	cfg *config.Config
}

// NewChannelHandler constructs ChannelHandler.
func NewChannelHandler(db *gorm.DB, cfg *config.Config) *ChannelHandler {
	return &ChannelHandler{db: db, cfg: cfg}
}

// CreateChannel handles a multipart listing submission: one banner file,
// 2-4 gallery images, and the listing fields as form values. Files are
// removed if the store write fails so no orphaned media survives a
// failed submission.
func (h *ChannelHandler) CreateChannel(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	form, err := c.MultipartForm()
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "multipart form required")
	}

	contactEmail := formValue(form.Value, "userEmail")
	contactPhone := formValue(form.Value, "contactNumber")
	if contactEmail == "" {
		return fiber.NewError(fiber.StatusBadRequest, "email address is required")
	}
	if !utils.ValidEmail(contactEmail) {
		return fiber.NewError(fiber.StatusBadRequest, "invalid email format")
	}
	if !utils.ValidContactPhone(contactPhone) {
		return fiber.NewError(fiber.StatusBadRequest, "invalid contact number format")
	}

	name := formValue(form.Value, "name")
	if name == "" {
		return fiber.NewError(fiber.StatusBadRequest, "channel name is required")
	}

	channel := models.Channel{
		Name:         name,
		Category:     formValue(form.Value, "category"),
		Subscribers:  formInt64(form.Value, "subscribers"),
		TotalViews:   formInt64(form.Value, "totalViews"),
		VideoCount:   int(formInt64(form.Value, "videoCount")),
		Monetized:    formValue(form.Value, "monetized") == "true",
		Price:        formFloat(form.Value, "price"),
		Description:  formValue(form.Value, "description"),
		ContactEmail: contactEmail,
		ContactPhone: contactPhone,
		Status:       models.ChannelStatusAvailable,
		SellerID:     userID,
	}

	if v := formValue(form.Value, "originalPrice"); v != "" {
		if price, err := strconv.ParseFloat(v, 64); err == nil {
			channel.OriginalPrice = &price
		}
	}

	media, err := uploads.SaveChannelMedia(form, h.cfg.UploadsDir)
	if err != nil {
		return err
	}
	channel.BannerURL = media.BannerURL
	channel.ImageURLs = media.ImageURLs

	if err := h.db.Create(&channel).Error; err != nil {
		media.Remove()
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "channel created successfully",
		"data":    channel,
	})
}

// ListChannels returns paginated listings with optional filters.
func (h *ChannelHandler) ListChannels(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)
	query := h.db.Model(&models.Channel{})

	if category := c.Query("category"); category != "" {
		query = query.Where("category = ?", category)
	}

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	if v := c.Query("monetized"); v != "" {
		query = query.Where("monetized = ?", v == "true")
	}

	if v := c.Query("most_demanding"); v != "" {
		query = query.Where("most_demanding = ?", v == "true")
	}

	if minPrice := c.Query("min_price"); minPrice != "" {
		if val, err := strconv.ParseFloat(minPrice, 64); err == nil {
			query = query.Where("price >= ?", val)
		}
	}

	if maxPrice := c.Query("max_price"); maxPrice != "" {
		if val, err := strconv.ParseFloat(maxPrice, 64); err == nil {
			query = query.Where("price <= ?", val)
		}
	}

	if search := strings.TrimSpace(c.Query("search")); search != "" {
		q := "%" + search + "%"
		query = query.Where("name LIKE ? OR description LIKE ?", q, q)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var channels []models.Channel
	if err := query.Order("created_at desc").
		Limit(pg.Limit).Offset(pg.Offset).
		Find(&channels).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"channels": channels,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}

// GetChannel loads one listing.
func (h *ChannelHandler) GetChannel(c *fiber.Ctx) error {
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

type updateChannelRequest struct {
	Name          *string  `json:"name"`
	Category      *string  `json:"category"`
	Subscribers   *int64   `json:"subscribers"`
	TotalViews    *int64   `json:"total_views"`
	VideoCount    *int     `json:"video_count"`
	Monetized     *bool    `json:"monetized"`
	Price         *float64 `json:"price"`
	OriginalPrice *float64 `json:"original_price"`
	Description   *string  `json:"description"`
}

// UpdateChannel updates listing fields. Only the owning seller may update.
func (h *ChannelHandler) UpdateChannel(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

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

	if channel.SellerID != userID {
		return fiber.NewError(fiber.StatusForbidden, "not the listing owner")
	}

	var req updateChannelRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Category != nil {
		updates["category"] = *req.Category
	}
	if req.Subscribers != nil {
		updates["subscribers"] = *req.Subscribers
	}
	if req.TotalViews != nil {
		updates["total_views"] = *req.TotalViews
	}
	if req.VideoCount != nil {
		updates["video_count"] = *req.VideoCount
	}
	if req.Monetized != nil {
		updates["monetized"] = *req.Monetized
	}
	if req.Price != nil {
		updates["price"] = *req.Price
	}
	if req.OriginalPrice != nil {
		updates["original_price"] = *req.OriginalPrice
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}

	if len(updates) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "no fields to update")
	}

	if err := h.db.Model(&channel).Updates(updates).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": channel})
}

// DeleteChannel removes a listing. Allowed for the owner or an admin.
func (h *ChannelHandler) DeleteChannel(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

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

	role, _ := middleware.GetCurrentRole(c)
	if channel.SellerID != userID && role != models.RoleAdmin {
		return fiber.NewError(fiber.StatusForbidden, "not the listing owner")
	}

	if err := h.db.Delete(&channel).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "message": "channel deleted successfully"})
}

func formValue(values map[string][]string, key string) string {
	if v, ok := values[key]; ok && len(v) > 0 {
		return strings.TrimSpace(v[0])
	}
	return ""
}

func formInt64(values map[string][]string, key string) int64 {
	if parsed, err := strconv.ParseInt(formValue(values, key), 10, 64); err == nil {
		return parsed
	}
	return 0
}

func formFloat(values map[string][]string, key string) float64 {
	if parsed, err := strconv.ParseFloat(formValue(values, key), 64); err == nil {
		return parsed
	}
	return 0
}
