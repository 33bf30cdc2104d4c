package staff

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/akshayaportal/services-backend/db"
	"github.com/akshayaportal/services-backend/middleware"
	"github.com/akshayaportal/services-backend/models"
)

// openMockDB swaps the global connection for a sqlmock-backed one so handler
// SQL can be asserted without a live database.
func openMockDB(t *testing.T) sqlmock.Sqlmock {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger:               logger.Default.LogMode(logger.Silent),
		DisableAutomaticPing: true,
	})
	require.NoError(t, err)

	prev := db.DB
	db.DB = gormDB
	t.Cleanup(func() {
		db.DB = prev
		sqlDB.Close()
	})
	return mock
}

// newDetailsApp mounts GetAppointmentDetails behind the real CenterAccess
// guard, with auth locals injected as Protected and StaffContext would set
// them. A nil session means an admin caller.
func newDetailsApp(session *middleware.StaffSession) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		role := models.RoleStaff
		if session == nil {
			role = models.RoleAdmin
		}
		c.Locals("authUser", middleware.AuthUser{UserID: 9, Name: "Asha", Role: role})
		if session != nil {
			c.Locals("staff", session)
		}
		return c.Next()
	})
	app.Get("/staff/appointments/:id", middleware.CenterAccess(), GetAppointmentDetails)
	return app
}

func getJSON(t *testing.T, app *fiber.App, target string) (*http.Response, map[string]interface{}) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, target, nil))
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	body := map[string]interface{}{}
	require.NoError(t, json.Unmarshal(raw, &body))
	return resp, body
}

func TestGetAppointmentDetailsScopedToOwnCenter(t *testing.T) {
	mock := openMockDB(t)
	session := &middleware.StaffSession{StaffID: 4, CenterID: 1, CenterName: "Kochi North"}
	app := newDetailsApp(session)

	// Appointment 7 belongs to another center: the center predicate must be
	// part of the query and the empty result must surface as a plain 404.
	mock.ExpectQuery(`SELECT \* FROM "appointments" WHERE appointments\.id = \$1 AND appointments\.center_id = \$2`).
		WithArgs(7, 1, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	resp, body := getJSON(t, app, "/staff/appointments/7")

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Appointment not found", body["message"])
	assert.Nil(t, body["data"], "no partial record may leak")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetAppointmentDetailsAdminUnscoped(t *testing.T) {
	mock := openMockDB(t)
	mock.MatchExpectationsInOrder(false)
	app := newDetailsApp(nil)

	rows := sqlmock.NewRows([]string{"id", "user_id", "service_id", "center_id", "status", "time_slot"}).
		AddRow(7, 3, 2, 5, "pending", "10:00 AM")
	mock.ExpectQuery(`SELECT \* FROM "appointments" WHERE appointments\.id = \$1 AND "appointments"\."deleted_at" IS NULL`).
		WithArgs(7, 1).
		WillReturnRows(rows)
	mock.ExpectQuery(`SELECT \* FROM "akshaya_centers"`).WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery(`SELECT \* FROM "services"`).WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery(`SELECT \* FROM "users"`).WillReturnRows(sqlmock.NewRows([]string{"id"}))

	resp, body := getJSON(t, app, "/staff/appointments/7")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["success"])
	assert.NoError(t, mock.ExpectationsWereMet())
}
