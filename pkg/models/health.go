package models

import (
	"strings"
	"time"
)

// Node is one monitored entity from the central inventory. Identity is the
// normalized unit name; DisplayName preserves the trimmed spelling from the
// source row.
type Node struct {
	Identity    string `json:"identity"`
	DisplayName string `json:"display_name"`
	UnitType    string `json:"unit_type"`
}

// IsCollector reports whether the unit type classifies the node as a
// collector appliance.
func (n Node) IsCollector() bool {
	return strings.Contains(strings.ToLower(n.UnitType), "collector")
}

// AgentRecord is the surviving record for one unique STAP host.
type AgentRecord struct {
	Host     string `json:"host"`
	Status   string `json:"status"`
	Revision string `json:"revision"`
	Active   bool   `json:"active"`
}

// FailureEvent is the most recent failed execution of a monitored process on
// one collector.
type FailureEvent struct {
	Collector    string    `json:"collector"`
	ActivityType string    `json:"activity_type"`
	Status       string    `json:"status"`
	Date         time.Time `json:"date"`
}

// AgentTotals are unique-host counts; Active+Inactive always equals Total.
type AgentTotals struct {
	Total    int `json:"total"`
	Active   int `json:"active"`
	Inactive int `json:"inactive"`
}

// HealthSummary is the terminal aggregate handed to report writers. It is
// fully self-describing and deterministic for a given set of input tables.
type HealthSummary struct {
	Agents         AgentTotals    `json:"agents"`
	InactiveAgents []AgentRecord  `json:"inactive_agents"`
	Failures       []FailureEvent `json:"failures"`
	CollectorCount int            `json:"collector_count"`
	NodeCount      int            `json:"node_count"`
}
