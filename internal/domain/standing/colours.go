package standing

import "strings"

// colourByTeam is the static fallback used when the roster record carries no
// team colour. Values track the liveries of recent seasons.
var colourByTeam = map[string]string{
	"Red Bull Racing": "#3671C6",
	"Ferrari":         "#E8002D",
	"Mercedes":        "#27F4D2",
	"McLaren":         "#FF8000",
	"Aston Martin":    "#225941",
	"Alpine":          "#0093CC",
	"Williams":        "#64C4FF",
	"RB":              "#6692FF",
	"Kick Sauber":     "#52E252",
	"Haas F1 Team":    "#B6BABD",
	"Haas":            "#B6BABD",
	"Sauber":          "#52E252",
}

// ResolveColour picks a display colour for a driver row. A colour supplied by
// the roster wins, normalized to a leading '#'; otherwise the static table;
// otherwise white.
func ResolveColour(rosterColour, teamName string) string {
	if c := strings.TrimSpace(rosterColour); c != "" {
		return NormalizeHex(c)
	}
	if c, ok := colourByTeam[teamName]; ok {
		return c
	}
	return DefaultColour
}

// NormalizeHex prefixes a bare hex value with '#'. The source omits the
// prefix on team_colour.
func NormalizeHex(v string) string {
	if strings.HasPrefix(v, "#") {
		return v
	}
	return "#" + v
}
