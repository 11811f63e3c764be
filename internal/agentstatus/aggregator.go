// Package agentstatus reduces STAP status exports to one record per unique
// host and classifies each host as active or inactive.
package agentstatus

import (
	"fmt"
	"sort"
	"strings"

	"cmhealth/internal/schema"
	"cmhealth/pkg/models"
)

// Vocabulary holds the status keyword sets. The inactive set is checked
// first so values like "Inactive" never match the "active" keyword.
type Vocabulary struct {
	Active   []string
	Inactive []string
}

type class int

const (
	classActive class = iota
	classInactive
	classUnknown
)

func (v Vocabulary) classify(status string) class {
	s := strings.ToLower(status)
	for _, k := range v.Inactive {
		if strings.Contains(s, strings.ToLower(k)) {
			return classInactive
		}
	}
	for _, k := range v.Active {
		if strings.Contains(s, strings.ToLower(k)) {
			return classActive
		}
	}
	return classUnknown
}

// Result is the agent-status aggregate. Counts are over unique normalized
// hosts, never raw rows, so Active+Inactive always equals Total.
type Result struct {
	Total          int
	Active         int
	Inactive       int
	InactiveAgents []models.AgentRecord
}

// Aggregate consumes one or more validated agent-status tables.
//
// Duplicate hosts (within or across tables) collapse to a single record.
// Tie-break on conflicting status: inactive wins, so an outage reported by
// any row is never masked by a later active row. Among rows of the same
// class, the last seen wins for status and revision metadata. Unrecognized
// status values count as active and are flagged.
func Aggregate(tables []*models.Table, vocab Vocabulary) (*Result, []models.Warning) {
	byHost := make(map[string]models.AgentRecord)
	var warnings []models.Warning

	for _, tbl := range tables {
		for i, row := range tbl.Rows {
			host := row.Get(schema.ColHost)
			status := row.Get(schema.ColStatus)
			key := models.NormalizeIdentity(host)

			if key == "" {
				warnings = append(warnings, models.Warning{
					Kind:    models.WarnParse,
					Source:  tbl.Source,
					Row:     i + 1,
					Message: "blank host, row skipped",
				})
				continue
			}
			if status == "" {
				warnings = append(warnings, models.Warning{
					Kind:    models.WarnParse,
					Source:  tbl.Source,
					Row:     i + 1,
					Message: fmt.Sprintf("host %q has no status, row skipped", host),
				})
				continue
			}

			cls := vocab.classify(status)
			if cls == classUnknown {
				warnings = append(warnings, models.Warning{
					Kind:    models.WarnStatus,
					Source:  tbl.Source,
					Row:     i + 1,
					Message: fmt.Sprintf("host %q has unrecognized status %q, counted active", host, status),
				})
			}

			record := models.AgentRecord{
				Host:     host,
				Status:   status,
				Revision: row.Get(schema.ColRevision),
				Active:   cls != classInactive,
			}

			prev, seen := byHost[key]
			if !seen {
				byHost[key] = record
				continue
			}

			if prev.Status != record.Status || prev.Revision != record.Revision {
				warnings = append(warnings, models.Warning{
					Kind:   models.WarnIntegrity,
					Source: tbl.Source,
					Row:    i + 1,
					Message: fmt.Sprintf("duplicate host %q with conflicting metadata (status %q/%q, revision %q/%q)",
						host, prev.Status, record.Status, prev.Revision, record.Revision),
				})
			}

			// Inactive wins; otherwise the later row replaces the earlier.
			if prev.Active == record.Active || !record.Active {
				byHost[key] = record
			}
		}
	}

	res := &Result{Total: len(byHost)}
	for _, rec := range byHost {
		if rec.Active {
			res.Active++
		} else {
			res.Inactive++
			res.InactiveAgents = append(res.InactiveAgents, rec)
		}
	}
	sort.Slice(res.InactiveAgents, func(i, j int) bool {
		return models.NormalizeIdentity(res.InactiveAgents[i].Host) < models.NormalizeIdentity(res.InactiveAgents[j].Host)
	})
	return res, warnings
}
