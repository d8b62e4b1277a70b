package handler

import (
	"net/http"
	"os"
	"time"

	"github.com/wheretolive/wheretolive/internal/api/models"
	"github.com/wheretolive/wheretolive/internal/api/response"
	"github.com/wheretolive/wheretolive/internal/directory"
	"github.com/wheretolive/wheretolive/internal/provider/resilience"
)

// OpsHandler handles operational endpoints.
type OpsHandler struct {
	version   string
	buildTime string
	directory *directory.Service
	registry  *resilience.Registry
}

// NewOpsHandler creates a new OpsHandler.
func NewOpsHandler(version, buildTime string, dir *directory.Service, registry *resilience.Registry) *OpsHandler {
	return &OpsHandler{
		version:   version,
		buildTime: buildTime,
		directory: dir,
		registry:  registry,
	}
}

// HealthCheck handles GET /v1/ops/health - liveness check.
func (h *OpsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	health := models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(time.Now()),
		Details: map[string]interface{}{
			"version":   h.version,
			"buildTime": h.buildTime,
		},
	}
	response.JSON(w, r, http.StatusOK, health)
}

// ReadinessCheck handles GET /v1/ops/ready - readiness check. Ready means
// the dataset file is readable and no provider circuit is open.
func (h *OpsHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	status := models.HealthStatusOK

	if _, err := os.Stat(h.directory.DatasetPath()); err != nil {
		status = models.HealthStatusDegraded
	}
	for _, ph := range h.registry.GetAllHealth() {
		if ph.IsUnhealthy() {
			status = models.HealthStatusDegraded
		}
	}

	health := models.Health{
		Status: status,
		Time:   models.Timestamp(time.Now()),
	}

	code := http.StatusOK
	if status != models.HealthStatusOK {
		code = http.StatusServiceUnavailable
	}
	response.JSON(w, r, code, health)
}

// SystemStatus handles GET /v1/ops/status - subsystem and provider status.
func (h *OpsHandler) SystemStatus(w http.ResponseWriter, r *http.Request) {
	now := models.Timestamp(time.Now())

	dataset := models.SubsystemStatus{Name: "dataset", Status: models.HealthStatusOK}
	if _, err := os.Stat(h.directory.DatasetPath()); err != nil {
		dataset.Status = models.HealthStatusFail
		detail := err.Error()
		dataset.Detail = &detail
	}

	providers := make([]models.ProviderStatus, 0, h.registry.ProviderCount())
	overall := dataset.Status
	for _, ph := range h.registry.GetAllHealth() {
		ps := models.ProviderStatus{
			Provider: ph.Name,
			Status:   models.HealthStatusOK,
		}
		switch {
		case ph.IsUnhealthy():
			ps.Status = models.HealthStatusFail
		case ph.IsDegraded():
			ps.Status = models.HealthStatusDegraded
		}
		if ph.LastSuccessAt != nil {
			ts := models.Timestamp(*ph.LastSuccessAt)
			ps.LastSuccessAt = &ts
		}
		if ph.LastFailureAt != nil {
			ts := models.Timestamp(*ph.LastFailureAt)
			ps.LastFailureAt = &ts
		}
		if ph.LastError != "" {
			msg := ph.LastError
			ps.Message = &msg
		}
		if ps.Status == models.HealthStatusFail {
			overall = models.HealthStatusFail
		} else if ps.Status == models.HealthStatusDegraded && overall == models.HealthStatusOK {
			overall = models.HealthStatusDegraded
		}
		providers = append(providers, ps)
	}

	status := models.SystemStatus{
		Status:     overall,
		Time:       now,
		Subsystems: []models.SubsystemStatus{dataset},
		Providers:  providers,
	}
	response.JSON(w, r, http.StatusOK, status)
}
