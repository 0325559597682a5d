package tracker

import (
	"fmt"

	"qrv_ops/internal/uisink"
)

// icaoCountry maps ICAO airport code prefixes to ISO country codes for the
// route-line flags. Single-letter prefixes cover the US, Canada and
// Australia; everything else keys on the first two letters. Unknown
// prefixes simply render without a flag.
var icaoCountry = map[string]string{
	"K": "US", "C": "CA", "Y": "AU",
	"OT": "QA", "OM": "AE", "OE": "SA", "OB": "BH", "OK": "KW", "OO": "OM",
	"OI": "IR", "OJ": "JO", "OL": "LB", "OR": "IQ", "OP": "PK",
	"EG": "GB", "EI": "IE", "LF": "FR", "ED": "DE", "LE": "ES", "LI": "IT",
	"EH": "NL", "EB": "BE", "LS": "CH", "LO": "AT", "EK": "DK", "EN": "NO",
	"ES": "SE", "EF": "FI", "LP": "PT", "LG": "GR", "LT": "TR", "LL": "IL",
	"LC": "CY", "LM": "MT", "BI": "IS", "EP": "PL", "LK": "CZ", "LH": "HU",
	"LR": "RO", "LB": "BG", "UU": "RU", "UK": "UA",
	"ZB": "CN", "ZS": "CN", "ZG": "CN", "ZP": "CN", "ZU": "CN",
	"RJ": "JP", "RO": "JP", "RK": "KR", "RC": "TW", "RP": "PH",
	"VH": "HK", "VT": "TH", "WS": "SG", "WM": "MY", "WI": "ID", "WA": "ID",
	"VA": "IN", "VI": "IN", "VE": "IN", "VO": "IN", "VG": "BD", "VC": "LK",
	"VN": "NP", "NZ": "NZ", "FA": "ZA", "HE": "EG", "HA": "ET", "HK": "KE",
	"GM": "MA", "DT": "TN", "DA": "DZ", "DN": "NG", "HT": "TZ",
	"SB": "BR", "SA": "AR", "SC": "CL", "SK": "CO", "SP": "PE", "SE": "EC",
	"MM": "MX", "MP": "PA", "TJ": "PR",
}

// flagForICAO returns the flag emoji for an airport's country, or "".
func flagForICAO(icao string) string {
	if len(icao) < 2 {
		return ""
	}
	cc, ok := icaoCountry[icao[:2]]
	if !ok {
		cc, ok = icaoCountry[icao[:1]]
	}
	if !ok || len(cc) != 2 {
		return ""
	}
	// Regional indicator symbols: 'A' maps to U+1F1E6.
	r1 := 0x1F1E6 + rune(cc[0]) - 'A'
	r2 := 0x1F1E6 + rune(cc[1]) - 'A'
	return string([]rune{r1, r2})
}

func routeLine(dep, arr string) string {
	line := dep
	if f := flagForICAO(dep); f != "" {
		line += " " + f
	}
	line += " → " + arr
	if f := flagForICAO(arr); f != "" {
		line += " " + f
	}
	return line
}

// formatDuration renders seconds as "7h00m". Zero means unknown.
func formatDuration(seconds int64) string {
	if seconds <= 0 {
		return "duration unknown"
	}
	return fmt.Sprintf("%dh%02dm", seconds/3600, (seconds%3600)/60)
}

// card renders the live-flight message for a tracked flight.
func (t *Tracker) card(tf *TrackedFlight, progress float64, phase string, final bool) uisink.FlightCard {
	color := uisink.ColorInFlight
	if final {
		color = uisink.ColorLanded
	}
	return uisink.FlightCard{
		ChannelID:    t.channelID,
		Title:        tf.FlightNumber,
		RouteLine:    routeLine(tf.Departure, tf.Arrival),
		AircraftLine: tf.AircraftName,
		StatusLine:   fmt.Sprintf("%s • %.1f%% • %s", tf.Duration, progress*100, phase),
		Note:         tf.Note,
		Footer:       fmt.Sprintf("%s (%s)", tf.SimUsername, tf.Callsign),
		Color:        color,
		Final:        final,
	}
}

// creationPing is the first-post announcement line.
func creationPing(tf *TrackedFlight) string {
	if tf.PilotChatID != "" {
		return fmt.Sprintf("Hey <@%s>, your flight is now being tracked!", tf.PilotChatID)
	}
	return "Tracking new flight: " + tf.Callsign
}
