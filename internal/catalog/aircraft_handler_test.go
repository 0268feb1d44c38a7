package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"uretim-backend/internal/auth"
	"uretim-backend/internal/database"
	"uretim-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var testDBCounter int64

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:katalog_test_%d?mode=memory&cache=shared", atomic.AddInt64(&testDBCounter, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))

	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	return db
}

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()

	// Handler'lar global database.DB üzerinden çalışır
	database.DB = newTestDB(t)

	// Mutasyon handler'ları audit için giriş yapmış personel ister
	team := models.Team{Name: "Montaj Takımı", Role: models.TeamRoleAssembly}
	require.NoError(t, database.DB.Create(&team).Error)
	personnel := models.Personnel{
		Name:         "Test Personel",
		Email:        "test@uretim.local",
		PasswordHash: "x",
		TeamID:       team.ID,
	}
	require.NoError(t, database.DB.Create(&personnel).Error)

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals(auth.CtxPersonnelIDKey, personnel.ID)
		c.Locals(auth.CtxTeamIDKey, team.ID)
		c.Locals(auth.CtxTeamRoleKey, team.Role)
		return c.Next()
	})
	app.Post("/aircrafts", CreateAircraftHandler())
	app.Get("/aircrafts", ListAircraftsHandler())
	app.Get("/aircrafts/:id", GetAircraftHandler())
	app.Delete("/aircrafts/:id", DeleteAircraftHandler())
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any) (int, []byte) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, data
}

func TestAircraftSoftDeleteDoesNotLeak(t *testing.T) {
	app := newTestApp(t)

	status, body := doJSON(t, app, "POST", "/aircrafts", fiber.Map{"name": "TB2"})
	require.Equal(t, fiber.StatusCreated, status, string(body))

	var created AircraftResponse
	require.NoError(t, json.Unmarshal(body, &created))

	status, _ = doJSON(t, app, "POST", "/aircrafts", fiber.Map{"name": "AKINCI"})
	require.Equal(t, fiber.StatusCreated, status)

	status, body = doJSON(t, app, "GET", "/aircrafts", nil)
	require.Equal(t, fiber.StatusOK, status)
	var list []AircraftResponse
	require.NoError(t, json.Unmarshal(body, &list))
	assert.Len(t, list, 2)

	// Soft delete sonrası liste ve get kaydı göstermemeli
	status, _ = doJSON(t, app, "DELETE", fmt.Sprintf("/aircrafts/%d", created.ID), nil)
	require.Equal(t, fiber.StatusNoContent, status)

	status, body = doJSON(t, app, "GET", "/aircrafts", nil)
	require.Equal(t, fiber.StatusOK, status)
	list = nil
	require.NoError(t, json.Unmarshal(body, &list))
	require.Len(t, list, 1)
	assert.Equal(t, "AKINCI", list[0].Name)

	status, _ = doJSON(t, app, "GET", fmt.Sprintf("/aircrafts/%d", created.ID), nil)
	assert.Equal(t, fiber.StatusNotFound, status)

	// Kayıt fiziksel olarak silinmez
	var raw models.Aircraft
	require.NoError(t, database.DB.First(&raw, created.ID).Error)
	assert.True(t, raw.IsDeleted)
}

func TestCatalogMutationsWriteAuditLog(t *testing.T) {
	app := newTestApp(t)

	status, body := doJSON(t, app, "POST", "/aircrafts", fiber.Map{"name": "TB2"})
	require.Equal(t, fiber.StatusCreated, status, string(body))

	var created AircraftResponse
	require.NoError(t, json.Unmarshal(body, &created))

	status, _ = doJSON(t, app, "DELETE", fmt.Sprintf("/aircrafts/%d", created.ID), nil)
	require.Equal(t, fiber.StatusNoContent, status)

	var logs []models.AuditLog
	require.NoError(t, database.DB.
		Where("entity_type = ? AND entity_id = ?", "aircraft", created.ID).
		Order("id asc").Find(&logs).Error)
	require.Len(t, logs, 2)
	assert.Equal(t, models.AuditActionCreate, logs[0].Action)
	assert.Equal(t, models.AuditActionDelete, logs[1].Action)
	assert.Equal(t, "Test Personel", logs[0].PersonnelName)
	assert.NotEqual(t, "null", logs[0].AfterData)
	assert.NotEqual(t, "null", logs[1].BeforeData)
}

func TestCreateAircraftRejectsDuplicateName(t *testing.T) {
	app := newTestApp(t)

	status, _ := doJSON(t, app, "POST", "/aircrafts", fiber.Map{"name": "TB2"})
	require.Equal(t, fiber.StatusCreated, status)

	status, _ = doJSON(t, app, "POST", "/aircrafts", fiber.Map{"name": "TB2"})
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, _ = doJSON(t, app, "POST", "/aircrafts", fiber.Map{"name": "   "})
	assert.Equal(t, fiber.StatusBadRequest, status)
}
