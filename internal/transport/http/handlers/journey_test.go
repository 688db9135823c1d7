package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hrdesk/internal/app/server"
	"hrdesk/internal/domain/attendance"
	"hrdesk/internal/domain/leave"
	"hrdesk/internal/platform/config"
)

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error any             `json:"error"`
}

func testConfig(t *testing.T, dbURL string) config.Config {
	cfg := config.Load()
	cfg.DatabaseURL = dbURL
	cfg.RedisURL = ""
	cfg.JWTSecret = "test-secret"
	cfg.DataEncryptionKey = "0123456789abcdef0123456789abcdef"
	cfg.Environment = "test"
	cfg.SeedAdminEmail = "admin@test.local"
	cfg.SeedAdminPassword = "ChangeMe123!"
	cfg.RunMigrations = true
	cfg.RunSeed = true
	cfg.RateLimitPerMinute = 1000
	cfg.MediaDir = t.TempDir()
	return cfg
}

func TestLeaveFeedbackAndSalaryJourney(t *testing.T) {
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	cfg := testConfig(t, dbURL)
	app, err := server.New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("failed to start app: %v", err)
	}
	defer app.Close()

	ts := httptest.NewServer(app.Router)
	defer ts.Close()
	client := ts.Client()

	adminToken := login(t, client, ts.URL, cfg.SeedAdminEmail, cfg.SeedAdminPassword)
	suffix := fmt.Sprintf("%d", time.Now().UnixNano()%1_000_000)

	division := decodeID(t, send(t, client, http.MethodPost, ts.URL+"/api/v1/divisions", adminToken, map[string]any{
		"name": "Engineering " + suffix,
	}, http.StatusCreated))
	department := decodeID(t, send(t, client, http.MethodPost, ts.URL+"/api/v1/departments", adminToken, map[string]any{
		"name":     "Platform " + suffix,
		"division": division,
	}, http.StatusCreated))

	managerEmail := "lead-" + suffix + "@example.com"
	manager := decodeID(t, send(t, client, http.MethodPost, ts.URL+"/api/v1/managers", adminToken, staffPayload(map[string]any{
		"email":      managerEmail,
		"manager_id": "M" + suffix,
		"division":   division,
		"department": department,
	}), http.StatusCreated))

	employeeEmail := "dev-" + suffix + "@example.com"
	employee := decodeID(t, send(t, client, http.MethodPost, ts.URL+"/api/v1/employees", adminToken, staffPayload(map[string]any{
		"email":       employeeEmail,
		"employee_id": "E" + suffix,
		"team_lead":   manager,
		"division":    division,
		"department":  department,
		"designation": "Engineer",
	}), http.StatusCreated))

	dupe := send(t, client, http.MethodPost, ts.URL+"/api/v1/employees", adminToken, staffPayload(map[string]any{
		"email":       "other-" + suffix + "@example.com",
		"employee_id": "E" + suffix,
		"team_lead":   manager,
	}), http.StatusBadRequest)
	if !strings.Contains(string(mustJSON(t, dupe.Error)), "Employee ID already exists.") {
		t.Fatalf("expected duplicate employee id error, got %+v", dupe.Error)
	}

	employeeToken := login(t, client, ts.URL, employeeEmail, "Employee123!")
	managerToken := login(t, client, ts.URL, managerEmail, "Employee123!")

	start := time.Now().AddDate(0, 0, 7).Format("2006-01-02")
	leaveID := decodeID(t, send(t, client, http.MethodPost, ts.URL+"/api/v1/leave", employeeToken, map[string]any{
		"leave_type": "Full-Day",
		"start_date": start,
		"end_date":   start,
		"message":    "Family event",
	}, http.StatusCreated))

	approved := send(t, client, http.MethodPost, ts.URL+"/api/v1/leave/employee/"+leaveID+"/approve", managerToken, nil, http.StatusOK)
	var report struct {
		Status int `json:"status"`
	}
	if err := json.Unmarshal(approved.Data, &report); err != nil {
		t.Fatalf("decode approved report: %v", err)
	}
	if report.Status != 1 {
		t.Fatalf("expected approved status 1, got %d", report.Status)
	}
	send(t, client, http.MethodPost, ts.URL+"/api/v1/leave/employee/"+leaveID+"/reject", adminToken, nil, http.StatusConflict)

	feedbackID := decodeID(t, send(t, client, http.MethodPost, ts.URL+"/api/v1/feedback", employeeToken, map[string]any{
		"feedback": "More standups please",
	}, http.StatusCreated))
	send(t, client, http.MethodPost, ts.URL+"/api/v1/feedback/employee/"+feedbackID+"/reply", adminToken, map[string]any{
		"reply": "Noted",
	}, http.StatusOK)

	send(t, client, http.MethodPost, ts.URL+"/api/v1/salaries", adminToken, map[string]any{
		"department": department,
		"employee":   employee,
		"base":       50000,
		"ctc":        40000,
	}, http.StatusBadRequest)
	send(t, client, http.MethodPost, ts.URL+"/api/v1/salaries", adminToken, map[string]any{
		"department": department,
		"employee":   employee,
		"base":       50000,
		"ctc":        65000,
	}, http.StatusOK)

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/api/v1/salaries/me/slip", nil)
	req.Header.Set("Authorization", "Bearer "+employeeToken)
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("slip request failed: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK || !bytes.HasPrefix(body, []byte("%PDF")) {
		t.Fatalf("expected pdf slip, got %d", resp.StatusCode)
	}
}

func TestAttendanceJourney(t *testing.T) {
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	cfg := testConfig(t, dbURL)
	cfg.Attendance.EarliestEmployee = "00:00"
	cfg.Attendance.EarliestDefault = "00:00"
	app, err := server.New(context.Background(), cfg)
	require.NoError(t, err)
	defer app.Close()

	ts := httptest.NewServer(app.Router)
	defer ts.Close()
	client := ts.Client()
	ctx := context.Background()

	ist, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)
	nowIST := time.Now().In(ist)
	today := nowIST.Format("2006-01-02")
	yesterday := nowIST.AddDate(0, 0, -1).Format("2006-01-02")

	adminToken := login(t, client, ts.URL, cfg.SeedAdminEmail, cfg.SeedAdminPassword)
	suffix := fmt.Sprintf("%d", time.Now().UnixNano()%1_000_000)

	division := decodeID(t, send(t, client, http.MethodPost, ts.URL+"/api/v1/divisions", adminToken, map[string]any{
		"name": "Operations " + suffix,
	}, http.StatusCreated))
	department := decodeID(t, send(t, client, http.MethodPost, ts.URL+"/api/v1/departments", adminToken, map[string]any{
		"name":     "Support " + suffix,
		"division": division,
	}, http.StatusCreated))
	manager := decodeID(t, send(t, client, http.MethodPost, ts.URL+"/api/v1/managers", adminToken, staffPayload(map[string]any{
		"email":      "ops-lead-" + suffix + "@example.com",
		"manager_id": "OM" + suffix,
		"division":   division,
		"department": department,
	}), http.StatusCreated))

	createEmployee := func(prefix string) string {
		email := prefix + "-" + suffix + "@example.com"
		send(t, client, http.MethodPost, ts.URL+"/api/v1/employees", adminToken, staffPayload(map[string]any{
			"email":       email,
			"employee_id": prefix + suffix,
			"team_lead":   manager,
			"division":    division,
			"department":  department,
		}), http.StatusCreated)
		return email
	}
	workerToken, workerID := loginUser(t, client, ts.URL, createEmployee("W"), "Employee123!")
	leaverToken, leaverID := loginUser(t, client, ts.URL, createEmployee("L"), "Employee123!")

	// First clock-in of the day is accepted and logged in the activity feed.
	clocked := send(t, client, http.MethodPost, ts.URL+"/api/v1/attendance/clock-in", workerToken, map[string]any{
		"notes": "on site",
	}, http.StatusCreated)
	var accepted struct {
		Status  string            `json:"status"`
		Message string            `json:"message"`
		Record  attendance.Record `json:"record"`
	}
	require.NoError(t, json.Unmarshal(clocked.Data, &accepted))
	assert.Equal(t, "success", accepted.Status)
	assert.Equal(t, "Successfully clocked in!", accepted.Message)
	assert.Equal(t, today, accepted.Record.Date)
	require.NotNil(t, accepted.Record.DepartmentID)
	assert.Equal(t, department, *accepted.Record.DepartmentID)

	again := send(t, client, http.MethodPost, ts.URL+"/api/v1/attendance/clock-in", workerToken, nil, http.StatusBadRequest)
	assert.Contains(t, string(mustJSON(t, again.Error)), "already_clocked_in")

	var activities int
	require.NoError(t, app.DB.QueryRow(ctx, `
    SELECT count(*) FROM activity_feed
    WHERE user_id = $1 AND activity_type = 'clock_in' AND related_record_id = $2
  `, workerID, accepted.Record.ID).Scan(&activities))
	assert.Equal(t, 1, activities)

	// A racing insert that slips past the existence check hits the unique
	// constraint and surfaces as the same rejection, without an extra activity row.
	store := attendance.NewStore(app.DB)
	_, err = store.CreateRecord(ctx, attendance.Record{
		UserID:  workerID,
		Date:    today,
		ClockIn: time.Now(),
		Status:  attendance.StatusPresent,
	})
	require.ErrorIs(t, err, attendance.ErrAlreadyClockedIn)
	require.NoError(t, app.DB.QueryRow(ctx, `SELECT count(*) FROM activity_feed WHERE user_id = $1`, workerID).Scan(&activities))
	assert.Equal(t, 1, activities)

	// Approved half-day and full-day leave on the same day: full-day wins.
	applyAndApprove := func(payload map[string]any) {
		id := decodeID(t, send(t, client, http.MethodPost, ts.URL+"/api/v1/leave", leaverToken, payload, http.StatusCreated))
		send(t, client, http.MethodPost, ts.URL+"/api/v1/leave/employee/"+id+"/approve", adminToken, nil, http.StatusOK)
	}
	applyAndApprove(map[string]any{
		"leave_type":    "Half-Day",
		"half_day_type": "Second Half",
		"start_date":    today,
		"end_date":      today,
		"message":       "Appointment",
	})
	applyAndApprove(map[string]any{
		"leave_type": "Full-Day",
		"start_date": today,
		"end_date":   today,
		"message":    "Unwell",
	})
	day, err := time.Parse("2006-01-02", today)
	require.NoError(t, err)
	covering, err := leave.NewStore(app.DB).ApprovedOn(ctx, leave.KindEmployee, leaverID, day)
	require.NoError(t, err)
	require.NotNil(t, covering)
	assert.Equal(t, leave.TypeFullDay, covering.LeaveType)

	blocked := send(t, client, http.MethodPost, ts.URL+"/api/v1/attendance/clock-in", leaverToken, nil, http.StatusBadRequest)
	assert.Contains(t, string(mustJSON(t, blocked.Error)), "Cannot clock in on an approved leave day.")

	// A record left open yesterday is closed at 23:59:59 local time.
	var staleID string
	require.NoError(t, app.DB.QueryRow(ctx, `
    INSERT INTO attendance_records (user_id, date, clock_in, status)
    VALUES ($1, $2::date, now() - interval '1 day', 'present')
    RETURNING id
  `, leaverID, yesterday).Scan(&staleID))

	send(t, client, http.MethodPost, ts.URL+"/api/v1/attendance/auto-clock-out/run", adminToken, nil, http.StatusOK)

	var closedAt time.Time
	var autoClosed bool
	require.NoError(t, app.DB.QueryRow(ctx, `
    SELECT clock_out, auto_closed FROM attendance_records WHERE id = $1
  `, staleID).Scan(&closedAt, &autoClosed))
	assert.True(t, autoClosed)
	assert.Equal(t, yesterday+" 23:59:59", closedAt.In(ist).Format("2006-01-02 15:04:05"))

	var todayOpen *time.Time
	require.NoError(t, app.DB.QueryRow(ctx, `
    SELECT clock_out FROM attendance_records WHERE id = $1
  `, accepted.Record.ID).Scan(&todayOpen))
	assert.Nil(t, todayOpen, "today's open record is left alone")
}

func staffPayload(extra map[string]any) map[string]any {
	payload := map[string]any{
		"gender":                 "F",
		"first_name":             "Test",
		"last_name":              "User",
		"password":               "Employee123!",
		"phone_number":           "9876543210",
		"emergency_name":         "Kin",
		"emergency_relationship": "Sibling",
		"emergency_phone":        "9123456780",
		"date_of_joining":        "2024-01-15",
		"aadhar_card":            "123412341234",
		"pan_card":               "ABCDE1234F",
		"bond_start":             "2024-01-15",
		"bond_end":               "2026-01-15",
	}
	for k, v := range extra {
		payload[k] = v
	}
	return payload
}

func login(t *testing.T, client *http.Client, baseURL, email, password string) string {
	t.Helper()
	token, _ := loginUser(t, client, baseURL, email, password)
	return token
}

func loginUser(t *testing.T, client *http.Client, baseURL, email, password string) (token, userID string) {
	t.Helper()
	env := send(t, client, http.MethodPost, baseURL+"/api/v1/auth/login", "", map[string]any{
		"email":    email,
		"password": password,
	}, http.StatusOK)
	var data struct {
		Token string `json:"token"`
		User  struct {
			ID string `json:"id"`
		} `json:"user"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil || data.Token == "" {
		t.Fatalf("login for %s returned no token: %v", email, err)
	}
	return data.Token, data.User.ID
}

func send(t *testing.T, client *http.Client, method, url, token string, payload any, want int) envelope {
	t.Helper()
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(mustJSON(t, payload))
	}
	req, err := http.NewRequest(method, url, body)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, url, err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != want {
		t.Fatalf("%s %s: expected %d, got %d: %s", method, url, want, resp.StatusCode, raw)
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	return env
}

func decodeID(t *testing.T, env envelope) string {
	t.Helper()
	var data struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil || data.ID == "" {
		t.Fatalf("expected id in response: %s", env.Data)
	}
	return data.ID
}

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	raw, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return raw
}
