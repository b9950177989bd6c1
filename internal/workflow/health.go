package workflow

import (
	"context"

	"syphon/internal/stage"
)

// Health collects readiness from every stage that can report it.
func (m *Manager) Health(ctx context.Context) []stage.Health {
	var results []stage.Health
	for _, h := range m.Stages(false) {
		if checker, ok := h.(stage.HealthChecker); ok {
			results = append(results, checker.HealthCheck(ctx))
		}
	}
	return results
}
