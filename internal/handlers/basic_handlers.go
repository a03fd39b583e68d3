package handlers

import (
	"context"
	"net/http"

	"recovery-backend/internal/config"

	"github.com/gin-gonic/gin"
)

const (
	RootMessage = "Crypto Recovery Backend running"
	ServiceName = "recovery-backend"
)

// Diagnostic states of the document store
const (
	DatabaseNotAvailable     = "Not Available"
	DatabaseConnectedWorking = "Connected & Working"
	DatabaseConnectedError   = "Connected but Error: "

	ConnectionStatusConnected    = "Connected"
	ConnectionStatusNotConnected = "Not Connected"

	SettingSet    = "Set"
	SettingNotSet = "Not Set"
)

// RootHandler GET /
func RootHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": RootMessage})
}

// HealthCheckHandler GET /health - process liveness only
func HealthCheckHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": ServiceName,
	})
}

// PingHandler GET /ping
func PingHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "pong"})
}

// StoreStatus what the diagnostic endpoint needs from the gateway
type StoreStatus interface {
	Available() bool
	BackendName() string
	ListCollectionNames(ctx context.Context) ([]string, error)
}

// DiagnosticResponse body of GET /test
type DiagnosticResponse struct {
	Backend          string   `json:"backend"`
	Database         string   `json:"database"`
	BackendType      string   `json:"backend_type,omitempty"`
	DatabaseURL      string   `json:"database_url"`
	DatabaseName     string   `json:"database_name"`
	ConnectionStatus string   `json:"connection_status"`
	Collections      []string `json:"collections"`
}

// DiagnosticHandler reports backend and document store status
type DiagnosticHandler struct {
	store StoreStatus
	cfg   config.DatabaseConfig
}

// NewDiagnosticHandler creates a new DiagnosticHandler instance
func NewDiagnosticHandler(store StoreStatus, cfg config.DatabaseConfig) *DiagnosticHandler {
	return &DiagnosticHandler{store: store, cfg: cfg}
}

// TestDatabaseHandler GET /test
// Settings are reported as present or absent only; their values are never echoed.
func (h *DiagnosticHandler) TestDatabaseHandler(c *gin.Context) {
	c.JSON(http.StatusOK, h.Diagnose(c.Request.Context()))
}

// Diagnose builds the diagnostic report; listing errors degrade the status, never fail it
func (h *DiagnosticHandler) Diagnose(ctx context.Context) DiagnosticResponse {
	resp := DiagnosticResponse{
		Backend:          "Running",
		Database:         DatabaseNotAvailable,
		DatabaseURL:      presence(h.cfg.URLSet()),
		DatabaseName:     presence(h.cfg.NameSet()),
		ConnectionStatus: ConnectionStatusNotConnected,
		Collections:      []string{},
	}
	if h.store == nil || !h.store.Available() {
		return resp
	}

	resp.BackendType = h.store.BackendName()
	names, err := h.store.ListCollectionNames(ctx)
	if err != nil {
		resp.Database = DatabaseConnectedError + truncate(err.Error(), maxDiagnosticMessageLength)
		return resp
	}

	resp.Database = DatabaseConnectedWorking
	resp.ConnectionStatus = ConnectionStatusConnected
	resp.Collections = names
	return resp
}

func presence(set bool) string {
	if set {
		return SettingSet
	}
	return SettingNotSet
}
