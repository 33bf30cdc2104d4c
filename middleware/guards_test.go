package middleware

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akshayaportal/services-backend/models"
)

// guardProbe wires a guard behind locals injection and reports whether the
// final handler ran.
type guardProbe struct {
	app        *fiber.App
	handlerRan bool
	centerID   uint
}

func newGuardProbe(user *AuthUser, session *StaffSession, guard fiber.Handler) *guardProbe {
	probe := &guardProbe{app: fiber.New()}
	probe.app.Get("/probe",
		func(c *fiber.Ctx) error {
			if user != nil {
				c.Locals("authUser", *user)
			}
			if session != nil {
				c.Locals("staff", session)
			}
			return c.Next()
		},
		guard,
		func(c *fiber.Ctx) error {
			probe.handlerRan = true
			probe.centerID = FilterCenterID(c)
			return c.JSON(fiber.Map{"success": true})
		})
	return probe
}

func (p *guardProbe) request(t *testing.T) (*http.Response, map[string]interface{}) {
	t.Helper()
	resp, err := p.app.Test(httptest.NewRequest(http.MethodGet, "/probe", nil))
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	body := map[string]interface{}{}
	require.NoError(t, json.Unmarshal(raw, &body))
	return resp, body
}

func adminUser() *AuthUser {
	return &AuthUser{UserID: 1, Name: "Admin", Role: models.RoleAdmin}
}

func staffUser() *AuthUser {
	return &AuthUser{UserID: 2, Name: "Staff", Role: models.RoleStaff}
}

func TestRequirePermissionAdminBypass(t *testing.T) {
	probe := newGuardProbe(adminUser(), nil, RequirePermission(models.PermUpdateStatus))

	resp, _ := probe.request(t)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, probe.handlerRan)
}

func TestRequirePermissionGranted(t *testing.T) {
	session := &StaffSession{
		StaffID:  5,
		CenterID: 3,
		Permissions: models.PermissionList{
			{Action: models.PermUpdateStatus, Granted: true},
		},
	}
	probe := newGuardProbe(staffUser(), session, RequirePermission(models.PermUpdateStatus))

	resp, _ := probe.request(t)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, probe.handlerRan)
}

func TestRequirePermissionDeniedBeforeHandler(t *testing.T) {
	session := &StaffSession{
		StaffID:  5,
		CenterID: 3,
		Permissions: models.PermissionList{
			{Action: models.PermUpdateStatus, Granted: false},
		},
	}
	probe := newGuardProbe(staffUser(), session, RequirePermission(models.PermUpdateStatus))

	resp, body := probe.request(t)

	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.False(t, probe.handlerRan, "handler must not run on denial")
	assert.Equal(t, false, body["success"])
	assert.Contains(t, body["message"], "update_status")
}

func TestRequirePermissionMissingStaffSession(t *testing.T) {
	probe := newGuardProbe(staffUser(), nil, RequirePermission(models.PermUpdateStatus))

	resp, body := probe.request(t)

	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.False(t, probe.handlerRan)
	assert.Contains(t, body["message"], "Staff record not found")
}

func TestRequirePermissionNoAuthUser(t *testing.T) {
	probe := newGuardProbe(nil, nil, RequirePermission(models.PermUpdateStatus))

	resp, _ := probe.request(t)

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.False(t, probe.handlerRan)
}

func TestCenterAccessInjectsFilter(t *testing.T) {
	session := &StaffSession{StaffID: 5, CenterID: 42}
	probe := newGuardProbe(staffUser(), session, CenterAccess())

	resp, _ := probe.request(t)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, probe.handlerRan)
	assert.Equal(t, uint(42), probe.centerID)
}

func TestCenterAccessAdminUnscoped(t *testing.T) {
	probe := newGuardProbe(adminUser(), nil, CenterAccess())

	resp, _ := probe.request(t)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, probe.handlerRan)
	assert.Equal(t, uint(0), probe.centerID, "admins carry no center filter")
}

func TestCenterAccessMissingAssignment(t *testing.T) {
	probe := newGuardProbe(staffUser(), &StaffSession{StaffID: 5}, CenterAccess())

	resp, body := probe.request(t)

	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.False(t, probe.handlerRan)
	assert.Contains(t, body["message"], "Center assignment required")
}

func TestWorkingHoursCheckBlocksOutsideWindow(t *testing.T) {
	session := &StaffSession{StaffID: 5, CenterID: 3, IsCurrentlyWorking: false}
	probe := newGuardProbe(staffUser(), session, WorkingHoursCheck())

	resp, body := probe.request(t)

	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.False(t, probe.handlerRan)
	assert.Equal(t, true, body["workingHours"], "marker for UI branching")
}

func TestWorkingHoursCheckPassesInsideWindow(t *testing.T) {
	session := &StaffSession{StaffID: 5, CenterID: 3, IsCurrentlyWorking: true}
	probe := newGuardProbe(staffUser(), session, WorkingHoursCheck())

	resp, _ := probe.request(t)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, probe.handlerRan)
}

func TestWorkingHoursCheckAdminBypass(t *testing.T) {
	probe := newGuardProbe(adminUser(), nil, WorkingHoursCheck())

	resp, _ := probe.request(t)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, probe.handlerRan)
}

func TestRequireRole(t *testing.T) {
	app := fiber.New()
	ran := false
	app.Get("/probe",
		func(c *fiber.Ctx) error {
			c.Locals("role", c.Get("X-Role"))
			return c.Next()
		},
		RequireRole(models.RoleAdmin),
		func(c *fiber.Ctx) error {
			ran = true
			return c.JSON(fiber.Map{"success": true})
		})

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("X-Role", "staff")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.False(t, ran)

	req = httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("X-Role", "admin")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, ran)
}
