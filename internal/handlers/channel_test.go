package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/channelmarket/internal/models"
)

type listingForm struct {
	fields  map[string]string
	banners int
	images  int
	mime    string
}

func defaultListingForm() listingForm {
	return listingForm{
		fields: map[string]string{
			"name":          "TechTalks",
			"category":      "technology",
			"subscribers":   "150000",
			"totalViews":    "9500000",
			"videoCount":    "320",
			"monetized":     "true",
			"price":         "2500",
			"userEmail":     "seller@example.com",
			"contactNumber": "+91 98765-43210",
		},
		banners: 1,
		images:  3,
		mime:    "image/png",
	}
}

func (env *testEnv) postListing(t *testing.T, form listingForm, token string) (*http.Response, map[string]any) {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for k, v := range form.fields {
		require.NoError(t, w.WriteField(k, v))
	}

	addFile := func(field, name string) {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="`+field+`"; filename="`+name+`"`)
		h.Set("Content-Type", form.mime)
		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write([]byte("fake image bytes"))
		require.NoError(t, err)
	}

	for i := 0; i < form.banners; i++ {
		addFile("banner", "banner.png")
	}
	for i := 0; i < form.images; i++ {
		addFile("images", "gallery.png")
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(fiber.MethodPost, "/api/channels", &buf)
	req.Header.Set(fiber.HeaderContentType, w.FormDataContentType())
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}

	resp, err := env.app.Test(req, -1)
	require.NoError(t, err)

	payload, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()

	decoded := map[string]any{}
	if len(payload) > 0 {
		require.NoError(t, json.Unmarshal(payload, &decoded), "body: %s", payload)
	}

	return resp, decoded
}

func (env *testEnv) uploadedFiles(t *testing.T) int {
	t.Helper()
	entries, err := os.ReadDir(env.cfg.UploadsDir)
	if os.IsNotExist(err) {
		return 0
	}
	require.NoError(t, err)
	return len(entries)
}

func TestCreateChannel(t *testing.T) {
	env := newTestEnv(t)
	seller, token := env.createUser(t, "Seller", "+919000000010", models.RoleSeller)

	resp, body := env.postListing(t, defaultListingForm(), token)
	requireStatus(t, resp, fiber.StatusCreated, body)

	data := body["data"].(map[string]any)
	assert.True(t, strings.HasPrefix(data["banner_url"].(string), "/uploads/banner-"))
	assert.Len(t, data["image_urls"].([]any), 3)
	assert.Equal(t, "available", data["status"])
	assert.Equal(t, seller.ID.String(), data["seller_id"])
	assert.Equal(t, 4, env.uploadedFiles(t))

	var channel models.Channel
	require.NoError(t, env.db.First(&channel, "name = ?", "TechTalks").Error)
	assert.Equal(t, int64(150000), channel.Subscribers)
	assert.True(t, channel.Monetized)
	assert.Equal(t, "seller@example.com", channel.ContactEmail)
}

func TestCreateChannelRequiresAuth(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.postListing(t, defaultListingForm(), "")
	requireStatus(t, resp, fiber.StatusUnauthorized, body)
	assert.Equal(t, 0, env.uploadedFiles(t))
}

func TestCreateChannelImageCountBounds(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.createUser(t, "Seller", "+919000000011", models.RoleSeller)

	for _, images := range []int{1, 5} {
		form := defaultListingForm()
		form.images = images
		resp, body := env.postListing(t, form, token)
		requireStatus(t, resp, fiber.StatusBadRequest, body)
		assert.Equal(t, 0, env.uploadedFiles(t), "images=%d left files behind", images)
	}

	var count int64
	require.NoError(t, env.db.Model(&models.Channel{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

func TestCreateChannelRejectsBadContactInfo(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.createUser(t, "Seller", "+919000000012", models.RoleSeller)

	form := defaultListingForm()
	form.fields["userEmail"] = "not-an-email"
	resp, body := env.postListing(t, form, token)
	requireStatus(t, resp, fiber.StatusBadRequest, body)

	form = defaultListingForm()
	form.fields["contactNumber"] = "call me maybe"
	resp, body = env.postListing(t, form, token)
	requireStatus(t, resp, fiber.StatusBadRequest, body)

	assert.Equal(t, 0, env.uploadedFiles(t))
}

func TestCreateChannelRejectsBadFileType(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.createUser(t, "Seller", "+919000000013", models.RoleSeller)

	form := defaultListingForm()
	form.mime = "application/pdf"
	resp, body := env.postListing(t, form, token)
	requireStatus(t, resp, fiber.StatusBadRequest, body)
	assert.Equal(t, 0, env.uploadedFiles(t))
}

func TestListChannelsFilters(t *testing.T) {
	env := newTestEnv(t)
	seller, _ := env.createUser(t, "Seller", "+919000000014", models.RoleSeller)

	channels := []models.Channel{
		{Name: "Gaming Hub", Category: "gaming", Price: 1000, Monetized: true, Status: models.ChannelStatusAvailable, SellerID: seller.ID, ImageURLs: []string{"/uploads/a.png", "/uploads/b.png"}},
		{Name: "Cooking", Category: "food", Price: 5000, Monetized: false, Status: models.ChannelStatusAvailable, SellerID: seller.ID, ImageURLs: []string{"/uploads/c.png", "/uploads/d.png"}},
		{Name: "Vlogs", Category: "lifestyle", Price: 300, Monetized: true, Status: models.ChannelStatusSold, SellerID: seller.ID, ImageURLs: []string{"/uploads/e.png", "/uploads/f.png"}},
	}
	for i := range channels {
		require.NoError(t, env.db.Create(&channels[i]).Error)
	}

	resp, body := env.doJSON(t, fiber.MethodGet, "/api/channels?category=gaming", nil, "")
	requireStatus(t, resp, fiber.StatusOK, body)
	assert.Len(t, body["channels"].([]any), 1)

	resp, body = env.doJSON(t, fiber.MethodGet, "/api/channels?min_price=900&max_price=6000", nil, "")
	requireStatus(t, resp, fiber.StatusOK, body)
	assert.Len(t, body["channels"].([]any), 2)

	resp, body = env.doJSON(t, fiber.MethodGet, "/api/channels?status=sold", nil, "")
	requireStatus(t, resp, fiber.StatusOK, body)
	assert.Len(t, body["channels"].([]any), 1)
}

func TestUpdateChannelOwnerOnly(t *testing.T) {
	env := newTestEnv(t)
	owner, ownerToken := env.createUser(t, "Owner", "+919000000015", models.RoleSeller)
	_, otherToken := env.createUser(t, "Other", "+919000000016", models.RoleSeller)

	channel := models.Channel{Name: "Mine", Price: 100, Status: models.ChannelStatusAvailable, SellerID: owner.ID, ImageURLs: []string{"/uploads/a.png", "/uploads/b.png"}}
	require.NoError(t, env.db.Create(&channel).Error)

	resp, body := env.doJSON(t, fiber.MethodPut, "/api/channels/"+channel.ID.String(),
		fiber.Map{"price": 200}, otherToken)
	requireStatus(t, resp, fiber.StatusForbidden, body)

	resp, body = env.doJSON(t, fiber.MethodPut, "/api/channels/"+channel.ID.String(),
		fiber.Map{"price": 200}, ownerToken)
	requireStatus(t, resp, fiber.StatusOK, body)

	var updated models.Channel
	require.NoError(t, env.db.First(&updated, "id = ?", channel.ID).Error)
	assert.Equal(t, float64(200), updated.Price)
}

func TestGetChannelNotFound(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.doJSON(t, fiber.MethodGet, "/api/channels/6f1c9a1e-0000-0000-0000-000000000000", nil, "")
	requireStatus(t, resp, fiber.StatusNotFound, body)
	assert.Equal(t, false, body["success"])
}
