package consumer

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/akshayaportal/services-backend/db"
	"github.com/akshayaportal/services-backend/utils"
)

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

// newCitizenApp mounts the edit and reschedule handlers with the userID local
// set as Protected would set it.
func newCitizenApp() *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("userID", uint(3))
		return c.Next()
	})
	app.Put("/appointments/:id", UpdateAppointment)
	app.Put("/appointments/:id/reschedule", RescheduleAppointment)
	return app
}

func putJSON(t *testing.T, app *fiber.App, target, payload string) (*http.Response, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPut, target, strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	body := map[string]interface{}{}
	require.NoError(t, json.Unmarshal(raw, &body))
	return resp, body
}

// yesterdayIST is an appointment date whose 9 AM edit cutoff has always
// passed, whatever the wall clock says.
func yesterdayIST() time.Time {
	now := utils.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, -1)
}

// nextOpenDateIST picks the nearest bookable day inside the advance window,
// skipping Sundays and second Saturdays.
func nextOpenDateIST() time.Time {
	now := utils.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	for i := 1; i <= utils.MaxAdvanceBookingDays; i++ {
		candidate := today.AddDate(0, 0, i)
		if _, closed := utils.StandingHolidayReason(candidate); !closed {
			return candidate
		}
	}
	return today.AddDate(0, 0, 1)
}

func storedAppointmentRow(date time.Time) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "user_id", "service_id", "center_id", "appointment_date", "time_slot", "status"}).
		AddRow(7, 3, 2, 5, date, "10:00 AM", "pending")
}

func TestUpdateAppointmentRejectedAfterCutoff(t *testing.T) {
	mock := openMockDB(t)
	app := newCitizenApp()

	mock.ExpectQuery(`SELECT \* FROM "appointments"`).
		WillReturnRows(storedAppointmentRow(yesterdayIST()))

	resp, body := putJSON(t, app, "/appointments/7", `{"notes":"bring originals"}`)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, false, body["success"])
	assert.Contains(t, body["message"], "Use reschedule instead")
	assert.NoError(t, mock.ExpectationsWereMet(), "nothing may be written after the cutoff rejection")
}

func TestRescheduleAcceptedAfterCutoff(t *testing.T) {
	mock := openMockDB(t)
	app := newCitizenApp()

	newDate := nextOpenDateIST()

	mock.ExpectQuery(`SELECT \* FROM "appointments"`).
		WillReturnRows(storedAppointmentRow(yesterdayIST()))
	mock.ExpectQuery(`SELECT \* FROM "holidays"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "appointments"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "appointments" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	resp, body := putJSON(t, app, "/appointments/7/reschedule",
		`{"date":"`+newDate.Format("2006-01-02")+`","timeSlot":"11:30 AM"}`)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Appointment rescheduled successfully", body["message"])
	assert.NoError(t, mock.ExpectationsWereMet())
}
