package simapi

// SessionInfo describes one multiplayer server.
type SessionInfo struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	MaxUsers  int     `json:"maxUsers"`
	UserCount int     `json:"userCount"`
	Type      int     `json:"type"`
	WorldType int     `json:"worldType"`
	MinGrade  float64 `json:"minimumGradeLevel"`
}

// FlightEntry is one in-progress flight on a session.
type FlightEntry struct {
	FlightID      string  `json:"flightId"`
	UserID        string  `json:"userId"`
	AircraftID    string  `json:"aircraftId"`
	LiveryID      string  `json:"liveryId"`
	Username      string  `json:"username"`
	VirtualOrg    string  `json:"virtualOrganization"`
	Callsign      string  `json:"callsign"`
	Latitude      float64 `json:"latitude"`
	Longitude     float64 `json:"longitude"`
	Altitude      float64 `json:"altitude"`
	Speed         float64 `json:"speed"`
	VerticalSpeed float64 `json:"verticalSpeed"`
	Track         float64 `json:"track"`
	LastReport    string  `json:"lastReport"`
}

// RoutePoint is one trailing position report of a flight.
type RoutePoint struct {
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Altitude    float64 `json:"altitude"`
	GroundSpeed float64 `json:"groundSpeed"`
	Track       float64 `json:"track"`
	Date        string  `json:"date"`
}

// FlightPlan is the filed plan for a flight.
type FlightPlan struct {
	FlightPlanID string           `json:"flightPlanId"`
	FlightID     string           `json:"flightId"`
	Waypoints    []string         `json:"waypoints"`
	LastUpdate   string           `json:"lastUpdate"`
	Items        []FlightPlanItem `json:"flightPlanItems"`
}

// FlightPlanItem is one ordered plan entry. Procedures nest their legs
// under Children.
type FlightPlanItem struct {
	Name       string           `json:"name"`
	Type       int              `json:"type"`
	Identifier string           `json:"identifier"`
	Altitude   float64          `json:"altitude"`
	Location   Location         `json:"location"`
	Children   []FlightPlanItem `json:"children"`
}

// Location is a lat/lon pair with optional altitude.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Altitude  float64 `json:"altitude"`
}

// Leaves returns the plan items in flight order with procedures flattened
// to their legs.
func (p *FlightPlan) Leaves() []FlightPlanItem {
	var out []FlightPlanItem
	for _, it := range p.Items {
		if len(it.Children) > 0 {
			out = append(out, it.Children...)
			continue
		}
		out = append(out, it)
	}
	return out
}

// UserStats is the profile record returned by the user stats endpoint.
type UserStats struct {
	UserID            string  `json:"userId"`
	DiscourseUsername string  `json:"discourseUsername"`
	VirtualOrg        string  `json:"virtualOrganization"`
	Grade             int     `json:"grade"`
	TotalXP           float64 `json:"xp"`
	OnlineFlights     int     `json:"onlineFlights"`
	FlightTime        float64 `json:"flightTime"`
	LandingCount      int     `json:"landingCount"`
	Violations        int     `json:"violations"`
	ATCOperations     int     `json:"atcOperations"`
}

// UserFlight is one entry of a user's recent flight history.
type UserFlight struct {
	ID                 string   `json:"id"`
	Created            string   `json:"created"`
	UserID             string   `json:"userId"`
	AircraftID         string   `json:"aircraftId"`
	LiveryID           string   `json:"liveryId"`
	Callsign           string   `json:"callsign"`
	Server             string   `json:"server"`
	DayTime            float64  `json:"dayTime"`
	NightTime          float64  `json:"nightTime"`
	TotalTimeMinutes   float64  `json:"totalTime"`
	LandingCount       int      `json:"landingCount"`
	OriginAirport      string   `json:"originAirport"`
	DestinationAirport string   `json:"destinationAirport"`
	XP                 float64  `json:"xp"`
	Violations         []string `json:"violations"`
}

// AircraftInfo is one entry of the aircraft catalog.
type AircraftInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// LiveryInfo is one livery of an aircraft.
type LiveryInfo struct {
	ID           string `json:"id"`
	AircraftID   string `json:"aircraftID"`
	AircraftName string `json:"aircraftName"`
	LiveryName   string `json:"liveryName"`
}

// UserFlightsPage is the paginated response of the user flights endpoint.
type UserFlightsPage struct {
	PageIndex  int          `json:"pageIndex"`
	TotalPages int          `json:"totalPages"`
	TotalCount int          `json:"totalCount"`
	HasPrev    bool         `json:"hasPreviousPage"`
	HasNext    bool         `json:"hasNextPage"`
	Data       []UserFlight `json:"data"`
}
