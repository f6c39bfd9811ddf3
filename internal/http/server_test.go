package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"biodb-backend-go/internal/config"
	"biodb-backend-go/internal/db"
	"biodb-backend-go/internal/migrations"
	"biodb-backend-go/internal/models"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testAPI struct {
	t      *testing.T
	srv    *httptest.Server
	server *Server
}

func newTestAPI(t *testing.T, mutate func(*config.Config)) *testAPI {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bio.db")
	conn, err := db.Open(db.DriverSQLite, path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	require.NoError(t, migrations.Apply(context.Background(), conn, db.DriverSQLite))

	cfg := config.Config{
		StoragePath:       path,
		DatabaseDriver:    db.DriverSQLite,
		JWTSecret:         "test-secret",
		JWTIssuer:         "biodb-test",
		SessionTTLSeconds: 600,
		PasswordHasher:    config.HasherSHA256,
	}
	if mutate != nil {
		mutate(&cfg)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	server, err := NewServer(conn, cfg, nil, logger)
	require.NoError(t, err)

	srv := httptest.NewServer(server.Router())
	t.Cleanup(srv.Close)
	return &testAPI{t: t, srv: srv, server: server}
}

func (a *testAPI) do(method, path, token string, body interface{}) (int, map[string]interface{}) {
	a.t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequest(method, a.srv.URL+path, reader)
	require.NoError(a.t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := a.srv.Client().Do(req)
	require.NoError(a.t, err)
	defer resp.Body.Close()

	decoded := map[string]interface{}{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(a.t, err)
	if len(raw) > 0 {
		require.NoError(a.t, json.Unmarshal(raw, &decoded), string(raw))
	}
	return resp.StatusCode, decoded
}

func (a *testAPI) register(name, reg, password, role string) int {
	a.t.Helper()
	status, _ := a.do(http.MethodPost, "/api/auth/register", "", RegisterRequest{
		Name: name, RegNumber: reg, Password: password, Role: role,
	})
	return status
}

func (a *testAPI) login(reg, password string) string {
	a.t.Helper()
	status, body := a.do(http.MethodPost, "/api/auth/login", "", LoginRequest{RegNumber: reg, Password: password})
	require.Equal(a.t, http.StatusOK, status, body)
	token, _ := body["accessToken"].(string)
	require.NotEmpty(a.t, token)
	return token
}

func TestRegisterAndLogin(t *testing.T) {
	api := newTestAPI(t, nil)

	require.Equal(t, http.StatusCreated, api.register("Alice", "R001", "pw1", models.RoleResearchPartner))
	token := api.login("R001", "pw1")

	status, body := api.do(http.MethodGet, "/api/me", token, nil)
	require.Equal(t, http.StatusOK, status)
	user := body["user"].(map[string]interface{})
	assert.Equal(t, "Alice", user["name"])
	assert.Equal(t, models.RoleResearchPartner, user["role"])
	assert.Equal(t, true, user["canAddSamples"])
	assert.NotContains(t, user, "passwordHash")
}

func TestRegisterDuplicate(t *testing.T) {
	api := newTestAPI(t, nil)

	require.Equal(t, http.StatusCreated, api.register("Alice", "R001", "pw1", models.RoleResearchPartner))
	status, body := api.do(http.MethodPost, "/api/auth/register", "", RegisterRequest{
		Name: "Bob", RegNumber: "R001", Password: "pw2", Role: models.RoleGeneralUser,
	})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "Registration number already exists. Please use a different one.", body["message"])

	count, err := api.server.Gate.Credentials.(interface {
		CountByRegNumber(context.Context, string) (int, error)
	}).CountByRegNumber(context.Background(), "R001")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestRegisterValidation(t *testing.T) {
	api := newTestAPI(t, nil)

	assert.Equal(t, http.StatusBadRequest, api.register("", "R001", "pw", models.RoleGeneralUser))
	assert.Equal(t, http.StatusBadRequest, api.register("Alice", "R001", "pw", "Admin"))

	resp, err := api.srv.Client().Post(api.srv.URL+"/api/auth/register", "application/json", bytes.NewBufferString("{"))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestLoginWrongPassword(t *testing.T) {
	api := newTestAPI(t, nil)
	require.Equal(t, http.StatusCreated, api.register("Alice", "R001", "pw1", models.RoleGeneralUser))

	status, body := api.do(http.MethodPost, "/api/auth/login", "", LoginRequest{RegNumber: "R001", Password: "nope"})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Invalid credentials. Please try again.", body["message"])

	status, _ = api.do(http.MethodPost, "/api/auth/login", "", LoginRequest{RegNumber: "R404", Password: "pw1"})
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestSamplesRequireAuthentication(t *testing.T) {
	api := newTestAPI(t, nil)

	status, _ := api.do(http.MethodGet, "/api/samples", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = api.do(http.MethodPost, "/api/samples", "", AddSampleRequest{SampleName: "S", Species: "X"})
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = api.do(http.MethodGet, "/api/samples", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestAddSampleAsGeneralUserForbidden(t *testing.T) {
	api := newTestAPI(t, nil)
	require.Equal(t, http.StatusCreated, api.register("Gus", "G001", "pw", models.RoleGeneralUser))
	token := api.login("G001", "pw")

	status, _ := api.do(http.MethodPost, "/api/samples", token, AddSampleRequest{SampleName: "S1", Species: "E. coli"})
	assert.Equal(t, http.StatusForbidden, status)

	status, body := api.do(http.MethodGet, "/api/samples", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 0, body["total"])
	assert.Empty(t, body["items"])
}

func TestAddAndListSamples(t *testing.T) {
	api := newTestAPI(t, nil)
	require.Equal(t, http.StatusCreated, api.register("Alice", "R001", "pw1", models.RoleResearchPartner))
	token := api.login("R001", "pw1")

	status, body := api.do(http.MethodPost, "/api/samples", token, AddSampleRequest{
		SampleName:     "S1",
		Species:        "E. coli",
		CollectionDate: "2024-01-05",
		CollectedBy:    "Alice",
	})
	require.Equal(t, http.StatusCreated, status, body)
	sample := body["sample"].(map[string]interface{})
	assert.Equal(t, "S1", sample["sampleName"])
	assert.Equal(t, "2024-01-05", sample["collectionDate"])
	assert.Nil(t, sample["description"])

	status, _ = api.do(http.MethodPost, "/api/samples", token, AddSampleRequest{SampleName: "S2", Species: "Yeast"})
	require.Equal(t, http.StatusCreated, status)

	status, body = api.do(http.MethodGet, "/api/samples", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 2, body["total"])
	items := body["items"].([]interface{})
	require.Len(t, items, 2)
	assert.Equal(t, "S1", items[0].(map[string]interface{})["sampleName"])
	assert.Equal(t, "S2", items[1].(map[string]interface{})["sampleName"])
}

func TestAddSampleValidation(t *testing.T) {
	api := newTestAPI(t, nil)
	require.Equal(t, http.StatusCreated, api.register("Alice", "R001", "pw1", models.RoleResearchPartner))
	token := api.login("R001", "pw1")

	status, _ := api.do(http.MethodPost, "/api/samples", token, AddSampleRequest{SampleName: "", Species: "E. coli"})
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = api.do(http.MethodPost, "/api/samples", token, AddSampleRequest{SampleName: "S1", Species: "E. coli", CollectionDate: "05/01/2024"})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestLogoutInvalidatesToken(t *testing.T) {
	api := newTestAPI(t, nil)
	require.Equal(t, http.StatusCreated, api.register("Alice", "R001", "pw1", models.RoleResearchPartner))
	token := api.login("R001", "pw1")
	require.Equal(t, 1, api.server.Sessions.Len())

	status, _ := api.do(http.MethodPost, "/api/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 0, api.server.Sessions.Len())

	status, _ = api.do(http.MethodGet, "/api/samples", token, nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = api.do(http.MethodPost, "/api/auth/logout", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestLoginWhileAuthenticatedConflicts(t *testing.T) {
	api := newTestAPI(t, nil)
	require.Equal(t, http.StatusCreated, api.register("Alice", "R001", "pw1", models.RoleResearchPartner))
	token := api.login("R001", "pw1")

	status, _ := api.do(http.MethodPost, "/api/auth/login", token, LoginRequest{RegNumber: "R001", Password: "pw1"})
	assert.Equal(t, http.StatusConflict, status)
}

func TestAccessLogsRecordLogins(t *testing.T) {
	api := newTestAPI(t, nil)
	require.Equal(t, http.StatusCreated, api.register("Alice", "R001", "pw1", models.RoleResearchPartner))

	first := api.login("R001", "pw1")
	status, _ := api.do(http.MethodPost, "/api/auth/logout", first, nil)
	require.Equal(t, http.StatusOK, status)
	second := api.login("R001", "pw1")

	status, body := api.do(http.MethodGet, "/api/me/access-logs", second, nil)
	require.Equal(t, http.StatusOK, status)
	items := body["items"].([]interface{})
	require.Len(t, items, 2)
	for _, item := range items {
		assert.Equal(t, "Login", item.(map[string]interface{})["activity"])
	}
}

func TestAccessLogsWithLogoutAuditing(t *testing.T) {
	api := newTestAPI(t, func(cfg *config.Config) { cfg.AuditLogout = true })
	require.Equal(t, http.StatusCreated, api.register("Alice", "R001", "pw1", models.RoleResearchPartner))

	first := api.login("R001", "pw1")
	status, _ := api.do(http.MethodPost, "/api/auth/logout", first, nil)
	require.Equal(t, http.StatusOK, status)
	second := api.login("R001", "pw1")

	status, body := api.do(http.MethodGet, "/api/me/access-logs", second, nil)
	require.Equal(t, http.StatusOK, status)
	items := body["items"].([]interface{})
	require.Len(t, items, 3)
	var activities []string
	for _, item := range items {
		activities = append(activities, item.(map[string]interface{})["activity"].(string))
	}
	assert.ElementsMatch(t, []string{"Login", "Logout", "Login"}, activities)
}

func TestForgotPasswordNotAvailable(t *testing.T) {
	api := newTestAPI(t, nil)

	status, body := api.do(http.MethodPost, "/api/auth/forgot-password", "", nil)
	assert.Equal(t, http.StatusNotImplemented, status)
	assert.Equal(t, "Feature to reset password coming soon!", body["message"])
}

func TestArgon2idHasherRoundTrip(t *testing.T) {
	api := newTestAPI(t, func(cfg *config.Config) { cfg.PasswordHasher = config.HasherArgon2id })
	require.Equal(t, http.StatusCreated, api.register("Alice", "R001", "pw1", models.RoleResearchPartner))
	api.login("R001", "pw1")

	status, _ := api.do(http.MethodPost, "/api/auth/login", "", LoginRequest{RegNumber: "R001", Password: "bad"})
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestHealth(t *testing.T) {
	api := newTestAPI(t, nil)

	status, body := api.do(http.MethodGet, "/api/health", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["storage"])
}

func TestMetricsEndpoint(t *testing.T) {
	api := newTestAPI(t, nil)
	api.do(http.MethodGet, "/api/health", "", nil)

	resp, err := api.srv.Client().Get(api.srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(raw), "biodb_http_requests_total")
}

func TestSampleSocketStreamsAddedSamples(t *testing.T) {
	api := newTestAPI(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go api.server.Feed.Run(ctx)

	require.Equal(t, http.StatusCreated, api.register("Alice", "R001", "pw1", models.RoleResearchPartner))
	token := api.login("R001", "pw1")

	wsURL := "ws" + strings.TrimPrefix(api.srv.URL, "http") + "/ws/samples"
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.Error(t, err)
	if resp != nil {
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		resp.Body.Close()
	}

	conn, _, err := websocket.DefaultDialer.Dial(wsURL+"?token="+token, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return api.server.Feed.Subscribers() == 1 }, time.Second, 10*time.Millisecond)

	status, _ := api.do(http.MethodPost, "/api/samples", token, AddSampleRequest{SampleName: "S1", Species: "E. coli"})
	require.Equal(t, http.StatusCreated, status)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var event map[string]interface{}
	require.NoError(t, conn.ReadJSON(&event))
	assert.Equal(t, "sample.added", event["type"])
}
