package store

import (
	"os"
	"path/filepath"
	"testing"
)

const partnerFixture = `# OneWorld Discover catalog
Flight	Departure	Arrival	Airline	Aircraft	Duration
BA102	EGLL	OTHH	British Airways	787-9	390
QF2	EGLL	OTHH	Qantas	A380-800	400
AY12	EFHK	OTHH	Finnair	A350-900
bad line with too few columns
`

func writePartnerFixture(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "partner_routes.tsv")
	if err := os.WriteFile(path, []byte(partnerFixture), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestPartnerCatalogByICAOPair(t *testing.T) {
	c := NewPartnerCatalog(writePartnerFixture(t))

	routes, err := c.ByICAOPair("egll", "othh")
	if err != nil {
		t.Fatalf("ByICAOPair: %v", err)
	}
	if len(routes) != 2 {
		t.Fatalf("got %d routes, want 2", len(routes))
	}
	if routes[0].FlightNumber != "BA102" || routes[1].FlightNumber != "QF2" {
		t.Errorf("routes = %v, want BA102 then QF2", routes)
	}
	if routes[0].Duration != 390*60 {
		t.Errorf("BA102 duration = %d, want %d", routes[0].Duration, 390*60)
	}
}

func TestPartnerCatalogByFlightNumber(t *testing.T) {
	c := NewPartnerCatalog(writePartnerFixture(t))

	r, err := c.ByFlightNumber("ay12")
	if err != nil {
		t.Fatalf("ByFlightNumber: %v", err)
	}
	if r == nil || r.Airline != "Finnair" {
		t.Fatalf("route = %+v, want Finnair AY12", r)
	}
	if r.Duration != 0 {
		t.Errorf("AY12 duration = %d, want 0 without duration column", r.Duration)
	}

	r, err = c.ByFlightNumber("ZZ999")
	if err != nil {
		t.Fatalf("ByFlightNumber: %v", err)
	}
	if r != nil {
		t.Errorf("route = %+v, want nil for unknown number", r)
	}
}

func TestPartnerCatalogMissingFile(t *testing.T) {
	c := NewPartnerCatalog(filepath.Join(t.TempDir(), "nope.tsv"))
	if _, err := c.ByICAOPair("EGLL", "OTHH"); err == nil {
		t.Fatal("expected error for missing file")
	}
}
