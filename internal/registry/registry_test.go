package registry

import (
	"testing"

	"cmhealth/internal/schema"
	"cmhealth/pkg/models"
)

func inventoryTable(source string, rows ...[2]string) *models.Table {
	tbl := &models.Table{
		Source:  source,
		Kind:    models.KindInventory,
		Columns: []string{schema.ColUnitName, schema.ColUnitType},
	}
	for _, r := range rows {
		tbl.Rows = append(tbl.Rows, models.Row{
			schema.ColUnitName: r[0],
			schema.ColUnitType: r[1],
		})
	}
	return tbl
}

func TestBuildOneEntryPerNormalizedIdentity(t *testing.T) {
	tbl := inventoryTable("cm.csv",
		[2]string{"GCOL01", "Collector"},
		[2]string{" gcol01 ", "Collector"},
		[2]string{"gcm01", "Central Manager"},
		[2]string{"gagg01", "Aggregator"},
	)

	reg, warnings := Build([]*models.Table{tbl})
	if reg.Len() != 3 {
		t.Fatalf("expected 3 distinct nodes, got %d", reg.Len())
	}
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
	if got := len(reg.Collectors()); got != 1 {
		t.Fatalf("expected 1 collector, got %d", got)
	}
	if _, ok := reg.Node("Gcol01"); !ok {
		t.Fatalf("lookup should normalize identity")
	}
}

func TestBuildLaterRowWinsOnConflictingType(t *testing.T) {
	tbl := inventoryTable("cm.csv",
		[2]string{"gunit01", "Collector"},
		[2]string{"gunit01", "Central Manager"},
	)

	reg, warnings := Build([]*models.Table{tbl})
	node, ok := reg.Node("gunit01")
	if !ok {
		t.Fatalf("node missing")
	}
	if node.UnitType != "Central Manager" {
		t.Fatalf("later row should win, got %q", node.UnitType)
	}
	if len(warnings) != 1 || warnings[0].Kind != models.WarnIntegrity {
		t.Fatalf("expected one integrity warning, got %v", warnings)
	}
	if len(reg.Collectors()) != 0 {
		t.Fatalf("reclassified node must not remain a collector")
	}
}

func TestBuildSkipsBlankIdentityWithWarning(t *testing.T) {
	tbl := inventoryTable("cm.csv",
		[2]string{"  ", "Collector"},
		[2]string{"gcol01", "Collector"},
	)

	reg, warnings := Build([]*models.Table{tbl})
	if reg.Len() != 1 {
		t.Fatalf("expected 1 node, got %d", reg.Len())
	}
	if len(warnings) != 1 || warnings[0].Kind != models.WarnParse {
		t.Fatalf("expected one parse warning, got %v", warnings)
	}
	if warnings[0].Row != 1 {
		t.Fatalf("warning should carry the row index, got %d", warnings[0].Row)
	}
}

func TestNodesAreOrderedByIdentity(t *testing.T) {
	tbl := inventoryTable("cm.csv",
		[2]string{"zeta", "Collector"},
		[2]string{"alpha", "Collector"},
		[2]string{"mid", "Collector"},
	)

	reg, _ := Build([]*models.Table{tbl})
	nodes := reg.Nodes()
	for i := 1; i < len(nodes); i++ {
		if nodes[i-1].Identity > nodes[i].Identity {
			t.Fatalf("nodes not ordered: %v", nodes)
		}
	}
}
