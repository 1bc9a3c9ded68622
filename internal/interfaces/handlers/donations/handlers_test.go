package donations

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"givehub-backend/internal/application/guard"
	"givehub-backend/internal/application/recurrence"
	"givehub-backend/internal/domain"
	"givehub-backend/internal/middleware"
	"givehub-backend/internal/pkg/constants"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var t0 = time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)

type clock struct{ now time.Time }

func (c *clock) Now() time.Time { return c.now }

func setupDonationApp(t *testing.T, sessionUser map[string]interface{}) (*fiber.App, *gorm.DB, *clock) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&domain.User{}, &domain.Organization{}, &domain.Donation{}))
	require.NoError(t, db.Create(&domain.User{ID: 1, Username: "dana", Email: "dana@x.com", PasswordHash: "x", Role: constants.Donor}).Error)
	require.NoError(t, db.Create(&domain.User{ID: 2, Username: "eli", Email: "eli@x.com", PasswordHash: "x", Role: constants.Donor}).Error)
	require.NoError(t, db.Create(&domain.User{ID: 99, Username: "ops", Email: "ops@givehub.org", PasswordHash: "x", Role: constants.Admin}).Error)
	require.NoError(t, db.Create(&domain.User{ID: 98, Username: "former", Email: "former@givehub.org", PasswordHash: "x", Role: constants.Donor}).Error)
	require.NoError(t, db.Create(&domain.Organization{ID: 7, Name: "Acme", Email: "a@x.com", Status: domain.OrganizationApproved}).Error)

	clk := &clock{now: t0}
	svc := &recurrence.Service{DB: db, Now: clk.Now}
	h := &Handlers{Service: svc, Sweeper: &recurrence.Sweeper{Service: svc}, Guard: &guard.Guard{DB: db}, Now: clk.Now}

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user", sessionUser)
		return c.Next()
	})
	g := app.Group("/donations")
	g.Post("/", middleware.AuthorizePermission(constants.Donate), h.Create)
	g.Get("/", middleware.AuthorizePermission(constants.ViewDonations), h.List)
	g.Post("/sweep", middleware.AuthorizePermission(constants.RunRecurrence), h.Sweep)
	g.Get("/:id", middleware.AuthorizePermission(constants.ViewDonations), h.Get)
	g.Post("/:id/advance", middleware.AuthorizePermission(constants.RunRecurrence), h.Advance)
	return app, db, clk
}

func donor(id uint) map[string]interface{} {
	return map[string]interface{}{"id": id, "role": constants.Donor}
}

func admin() map[string]interface{} {
	return map[string]interface{}{"id": uint(99), "role": constants.Admin}
}

// demotedAdmin holds a session issued while user 98 was still an admin.
func demotedAdmin() map[string]interface{} {
	return map[string]interface{}{"id": uint(98), "role": constants.Admin}
}

func send(t *testing.T, app *fiber.App, method, path string, body interface{}) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

type donationBody struct {
	Data struct {
		Donation *domain.Donation `json:"donation"`
	} `json:"data"`
}

func TestCreate_SetsDonorFromSession(t *testing.T) {
	app, _, _ := setupDonationApp(t, donor(1))
	resp := send(t, app, "POST", "/donations/", map[string]interface{}{"organization_id": 7, "amount": 25, "recurrence_interval": "monthly"})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var out donationBody
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.NotNil(t, out.Data.Donation)
	assert.Equal(t, uint(1), out.Data.Donation.DonorID)
	require.NotNil(t, out.Data.Donation.NextRecurrenceDate)
	assert.True(t, out.Data.Donation.NextRecurrenceDate.Equal(t0.Add(30*24*time.Hour)))
}

func TestCreate_Validation(t *testing.T) {
	app, _, _ := setupDonationApp(t, donor(1))
	resp := send(t, app, "POST", "/donations/", map[string]interface{}{"organization_id": 7, "amount": 0})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	resp = send(t, app, "POST", "/donations/", map[string]interface{}{"organization_id": 7, "amount": 5, "recurrence_interval": "weekly"})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	resp = send(t, app, "POST", "/donations/", map[string]interface{}{"organization_id": 404, "amount": 5})
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestGet_OwnerOrAdmin(t *testing.T) {
	app, db, _ := setupDonationApp(t, donor(2))
	require.NoError(t, db.Create(&domain.Donation{ID: 3, Amount: 10, DonorID: 1, OrganizationID: 7, RecurrenceInterval: domain.RecurrenceNone, CreatedAt: t0}).Error)

	resp := send(t, app, "GET", "/donations/3", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	app, db, _ = setupDonationApp(t, admin())
	require.NoError(t, db.Create(&domain.Donation{ID: 3, Amount: 10, DonorID: 1, OrganizationID: 7, RecurrenceInterval: domain.RecurrenceNone, CreatedAt: t0}).Error)
	resp = send(t, app, "GET", "/donations/3", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestList_OnlyOwn(t *testing.T) {
	app, db, _ := setupDonationApp(t, donor(1))
	require.NoError(t, db.Create(&domain.Donation{Amount: 10, DonorID: 1, OrganizationID: 7, RecurrenceInterval: domain.RecurrenceNone, CreatedAt: t0}).Error)
	require.NoError(t, db.Create(&domain.Donation{Amount: 20, DonorID: 2, OrganizationID: 7, RecurrenceInterval: domain.RecurrenceNone, CreatedAt: t0}).Error)

	resp := send(t, app, "GET", "/donations/", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var out struct {
		Data struct {
			Donations []domain.Donation `json:"donations"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.Len(t, out.Data.Donations, 1)
	assert.Equal(t, 10.0, out.Data.Donations[0].Amount)
}

func TestAdvance(t *testing.T) {
	app, db, clk := setupDonationApp(t, admin())
	due := t0.Add(30 * 24 * time.Hour)
	require.NoError(t, db.Create(&domain.Donation{ID: 3, Amount: 10, DonorID: 1, OrganizationID: 7, RecurrenceInterval: domain.RecurrenceMonthly, NextRecurrenceDate: &due, CreatedAt: t0}).Error)

	resp := send(t, app, "POST", "/donations/3/advance", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var out donationBody
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Nil(t, out.Data.Donation)

	clk.now = due
	resp = send(t, app, "POST", "/donations/3/advance", nil)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.NotNil(t, out.Data.Donation)
	assert.NotEqual(t, uint(3), out.Data.Donation.ID)
	assert.True(t, out.Data.Donation.NextRecurrenceDate.Equal(due.Add(30*24*time.Hour)))

	resp = send(t, app, "POST", "/donations/404/advance", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestAdvance_DonorForbidden(t *testing.T) {
	app, _, _ := setupDonationApp(t, donor(1))
	resp := send(t, app, "POST", "/donations/3/advance", nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestSweep(t *testing.T) {
	app, db, clk := setupDonationApp(t, admin())
	due := t0.Add(30 * 24 * time.Hour)
	require.NoError(t, db.Create(&domain.Donation{Amount: 10, DonorID: 1, OrganizationID: 7, RecurrenceInterval: domain.RecurrenceMonthly, NextRecurrenceDate: &due, CreatedAt: t0}).Error)
	require.NoError(t, db.Create(&domain.Donation{Amount: 20, DonorID: 2, OrganizationID: 7, RecurrenceInterval: domain.RecurrenceMonthly, NextRecurrenceDate: &due, CreatedAt: t0}).Error)

	clk.now = due
	resp := send(t, app, "POST", "/donations/sweep", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var out struct {
		Data struct {
			Created int `json:"created"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, 2, out.Data.Created)

	var count int64
	require.NoError(t, db.Model(&domain.Donation{}).Count(&count).Error)
	assert.Equal(t, int64(4), count)
}

func TestAdvanceAndSweep_StaleAdminSessionForbidden(t *testing.T) {
	app, db, clk := setupDonationApp(t, demotedAdmin())
	due := t0.Add(30 * 24 * time.Hour)
	require.NoError(t, db.Create(&domain.Donation{ID: 3, Amount: 10, DonorID: 1, OrganizationID: 7, RecurrenceInterval: domain.RecurrenceMonthly, NextRecurrenceDate: &due, CreatedAt: t0}).Error)
	clk.now = due

	resp := send(t, app, "POST", "/donations/3/advance", nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	resp = send(t, app, "POST", "/donations/sweep", nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	var count int64
	require.NoError(t, db.Model(&domain.Donation{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
