// Package summary assembles the terminal HealthSummary aggregate.
package summary

import (
	"fmt"
	"sort"

	"cmhealth/internal/agentstatus"
	"cmhealth/internal/registry"
	"cmhealth/pkg/models"
)

// ContractError reports a pipeline wiring bug: an upstream aggregate is
// missing. It aborts the run; it is never a data problem.
type ContractError struct {
	Stage string
}

func (e *ContractError) Error() string {
	return fmt.Sprintf("summary: missing upstream aggregate: %s", e.Stage)
}

// Build merges the upstream aggregates into one HealthSummary. It is a
// structural merge: no filtering or recomputation happens here, only the
// presentation ordering of the concatenated failure lists is reconciled
// (by collector, then activity type).
func Build(reg *registry.Registry, agents *agentstatus.Result, failures []models.FailureEvent) (*models.HealthSummary, error) {
	if reg == nil {
		return nil, &ContractError{Stage: "node registry"}
	}
	if agents == nil {
		return nil, &ContractError{Stage: "agent status aggregate"}
	}

	inactive := make([]models.AgentRecord, len(agents.InactiveAgents))
	copy(inactive, agents.InactiveAgents)

	merged := make([]models.FailureEvent, len(failures))
	copy(merged, failures)
	sort.Slice(merged, func(i, j int) bool {
		a, b := merged[i], merged[j]
		if ka, kb := models.NormalizeIdentity(a.Collector), models.NormalizeIdentity(b.Collector); ka != kb {
			return ka < kb
		}
		return a.ActivityType < b.ActivityType
	})

	return &models.HealthSummary{
		Agents: models.AgentTotals{
			Total:    agents.Total,
			Active:   agents.Active,
			Inactive: agents.Inactive,
		},
		InactiveAgents: inactive,
		Failures:       merged,
		CollectorCount: len(reg.Collectors()),
		NodeCount:      reg.Len(),
	}, nil
}
