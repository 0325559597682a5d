package store

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
)

// PartnerRoute is one "OneWorld Discover" catalog entry, loaded from a
// tab-separated file. Partner routes carry a single flight number.
type PartnerRoute struct {
	FlightNumber string
	Departure    string // ICAO
	Arrival      string // ICAO
	Airline      string
	Aircraft     string
	Duration     int64 // seconds, 0 when the file has no duration column
}

// PartnerCatalog holds the partner routes, loaded once and cached for the
// process lifetime. Only pilots at RankOneWorld or above fly these.
type PartnerCatalog struct {
	path string

	once   sync.Once
	err    error
	byPair map[string][]PartnerRoute
	byFlt  map[string]PartnerRoute
}

// NewPartnerCatalog creates a catalog backed by the given file. The file is
// not read until the first lookup.
func NewPartnerCatalog(path string) *PartnerCatalog {
	return &PartnerCatalog{path: path}
}

func pairKey(dep, arr string) string {
	return strings.ToUpper(strings.TrimSpace(dep)) + ">" + strings.ToUpper(strings.TrimSpace(arr))
}

// load parses the tabular file. Expected columns per line, tab-separated:
// flight number, departure ICAO, arrival ICAO, airline, aircraft and an
// optional duration in minutes. Header and comment lines are skipped.
func (c *PartnerCatalog) load() {
	c.byPair = make(map[string][]PartnerRoute)
	c.byFlt = make(map[string]PartnerRoute)

	f, err := os.Open(c.path)
	if err != nil {
		c.err = fmt.Errorf("open partner routes: %w", err)
		return
	}
	defer func() { _ = f.Close() }()

	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < 5 {
			log.Warning(fmt.Sprintf("partner routes line %d: %d columns, want >= 5", lineNo, len(fields)))
			continue
		}
		flt := strings.ToUpper(strings.TrimSpace(fields[0]))
		if strings.EqualFold(flt, "flight") { // header row
			continue
		}
		r := PartnerRoute{
			FlightNumber: flt,
			Departure:    strings.ToUpper(strings.TrimSpace(fields[1])),
			Arrival:      strings.ToUpper(strings.TrimSpace(fields[2])),
			Airline:      strings.TrimSpace(fields[3]),
			Aircraft:     strings.TrimSpace(fields[4]),
		}
		if len(fields) >= 6 {
			if mins, err := strconv.ParseInt(strings.TrimSpace(fields[5]), 10, 64); err == nil {
				r.Duration = mins * 60
			}
		}
		key := pairKey(r.Departure, r.Arrival)
		c.byPair[key] = append(c.byPair[key], r)
		c.byFlt[r.FlightNumber] = r
	}
	if err := scanner.Err(); err != nil {
		c.err = fmt.Errorf("read partner routes: %w", err)
		return
	}
	log.Info(fmt.Sprintf("loaded %d partner routes from %s", len(c.byFlt), c.path))
}

// ByICAOPair returns the partner routes for a departure/arrival pair.
func (c *PartnerCatalog) ByICAOPair(dep, arr string) ([]PartnerRoute, error) {
	c.once.Do(c.load)
	if c.err != nil {
		return nil, c.err
	}
	return c.byPair[pairKey(dep, arr)], nil
}

// ByFlightNumber returns the partner route flown under flt, or nil.
func (c *PartnerCatalog) ByFlightNumber(flt string) (*PartnerRoute, error) {
	c.once.Do(c.load)
	if c.err != nil {
		return nil, c.err
	}
	r, ok := c.byFlt[strings.ToUpper(strings.TrimSpace(flt))]
	if !ok {
		return nil, nil
	}
	return &r, nil
}
