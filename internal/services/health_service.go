package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"macrodash/pkg/contracts/domain"
)

// ClientCounter reports connected push clients.
type ClientCounter interface {
	ClientCount() int
}

// HealthService provides health check functionality
type HealthService struct {
	version   string
	store     SnapshotStore
	clients   ClientCounter
	startTime time.Time
	logger    *slog.Logger
}

// NewHealthService creates a health service. clients may be nil.
func NewHealthService(version string, store SnapshotStore, clients ClientCounter, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthService{
		version:   version,
		store:     store,
		clients:   clients,
		startTime: time.Now(),
		logger:    logger.With(slog.String("component", "health_service")),
	}
}

// Health reports that the process is up.
func (hs *HealthService) Health(ctx context.Context) domain.HealthResponse {
	return domain.HealthResponse{
		Status:    domain.HealthStatusHealthy,
		Version:   hs.version,
		Timestamp: time.Now(),
		Uptime:    hs.uptime(),
	}
}

// Ready checks the dataset and the push hub. It is unhealthy until the
// first load completes and degraded while the snapshot is empty.
func (hs *HealthService) Ready(ctx context.Context) domain.HealthResponse {
	resp := domain.HealthResponse{
		Status:    domain.HealthStatusHealthy,
		Version:   hs.version,
		Timestamp: time.Now(),
		Uptime:    hs.uptime(),
		Checks:    map[string]domain.HealthCheck{"dataset": hs.checkDataset()},
	}
	if hs.clients != nil {
		resp.Checks["websocket"] = domain.HealthCheck{
			Status:  domain.HealthStatusHealthy,
			Message: fmt.Sprintf("%d clients connected", hs.clients.ClientCount()),
		}
	}

	for _, c := range resp.Checks {
		switch c.Status {
		case domain.HealthStatusUnhealthy:
			resp.Status = domain.HealthStatusUnhealthy
		case domain.HealthStatusDegraded:
			if resp.Status == domain.HealthStatusHealthy {
				resp.Status = domain.HealthStatusDegraded
			}
		}
	}
	if resp.Status != domain.HealthStatusHealthy {
		hs.logger.DebugContext(ctx, "readiness check not healthy", slog.String("status", resp.Status))
	}
	return resp
}

func (hs *HealthService) checkDataset() domain.HealthCheck {
	if !hs.store.Loaded() {
		return domain.HealthCheck{Status: domain.HealthStatusUnhealthy, Message: "dataset not loaded yet"}
	}
	snap := hs.store.Current()
	if snap.IsEmpty() {
		msg := "no data loaded"
		if w := snap.Warnings(); len(w) > 0 {
			msg = w[0]
		}
		return domain.HealthCheck{Status: domain.HealthStatusDegraded, Message: msg}
	}
	return domain.HealthCheck{
		Status: domain.HealthStatusHealthy,
		Message: fmt.Sprintf("%d sheets, %d rows from %s",
			len(snap.Workbook().SheetNames()), snap.Merged().Len(), hs.store.Source()),
	}
}

func (hs *HealthService) uptime() string {
	return time.Since(hs.startTime).Round(time.Second).String()
}
