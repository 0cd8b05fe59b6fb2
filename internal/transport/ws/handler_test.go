package ws

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"

	"callpulse/internal/model"
	"callpulse/internal/service"
	"callpulse/pkg/logger"
)

func newWSFixture() (*Hub, *service.AuthService, *httptest.Server) {
	hub := NewHub(logger.NewNop())
	authSvc := service.NewAuthService("admin", "swordfish", "test-secret")
	handler := NewHandler(hub, authSvc, logger.NewNop())

	r := mux.NewRouter()
	r.HandleFunc("/v1/ws/tenants/{tenantId}/alerts", handler.SupervisorWS).Methods("GET")
	server := httptest.NewServer(r)
	return hub, authSvc, server
}

func wsURL(server *httptest.Server, tenantID, token string) string {
	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/v1/ws/tenants/" + tenantID + "/alerts"
	if token != "" {
		url += "?token=" + token
	}
	return url
}

func TestSupervisorWSRejectsMissingToken(t *testing.T) {
	_, _, server := newWSFixture()
	defer server.Close()

	resp, err := http.Get(server.URL + "/v1/ws/tenants/tenant-1/alerts")
	assert.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestSupervisorWSRejectsInvalidToken(t *testing.T) {
	_, _, server := newWSFixture()
	defer server.Close()

	resp, err := http.Get(server.URL + "/v1/ws/tenants/tenant-1/alerts?token=not-a-jwt")
	assert.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestSupervisorWSRejectsForeignTenant(t *testing.T) {
	_, authSvc, server := newWSFixture()
	defer server.Close()

	login, err := authSvc.Login("admin", "swordfish", "tenant-1")
	assert.NoError(t, err)

	resp, err := http.Get(server.URL + "/v1/ws/tenants/tenant-2/alerts?token=" + login.Token)
	assert.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestSupervisorWSDeliversTenantAlerts(t *testing.T) {
	hub, authSvc, server := newWSFixture()
	defer server.Close()

	login, err := authSvc.Login("admin", "swordfish", "tenant-1")
	assert.NoError(t, err)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(server, "tenant-1", login.Token), nil)
	assert.NoError(t, err)
	defer conn.Close()

	waitForSupervisor(t, hub, "tenant-1")

	hub.BroadcastAlert("tenant-1", model.AlertEvent{
		Type:     model.AlertNPSDetractor,
		Severity: model.SeverityHigh,
		TenantID: "tenant-1",
	})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	assert.NoError(t, err)

	var msg Message
	assert.NoError(t, json.Unmarshal(data, &msg))
	assert.Equal(t, MsgAlert, msg.Type)

	var alert model.AlertEvent
	assert.NoError(t, json.Unmarshal(msg.Payload, &alert))
	assert.Equal(t, model.AlertNPSDetractor, alert.Type)
}

func TestSupervisorWSUnscopedTokenAnyTenant(t *testing.T) {
	_, authSvc, server := newWSFixture()
	defer server.Close()

	login, err := authSvc.Login("admin", "swordfish", "")
	assert.NoError(t, err)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(server, "tenant-9", login.Token), nil)
	assert.NoError(t, err)
	conn.Close()
}

// waitForSupervisor blocks until the hub has registered a connection
// for the tenant; registration completes shortly after the upgrade.
func waitForSupervisor(t *testing.T, hub *Hub, tenantID string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		hub.mu.RLock()
		n := len(hub.supervisorConns[tenantID])
		hub.mu.RUnlock()
		if n > 0 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("supervisor connection never registered")
}
