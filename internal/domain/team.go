package domain

import "strings"

// The six teams every user signs up into. The set is closed; sign-up
// rejects anything else.
const (
	TeamNgata      = "ngata"
	TeamRutherford = "rutherford"
	TeamBritten    = "britten"
	TeamBlake      = "blake"
	TeamCooper     = "cooper"
	TeamSheppard   = "sheppard"
)

var teams = []string{
	TeamNgata,
	TeamRutherford,
	TeamBritten,
	TeamBlake,
	TeamCooper,
	TeamSheppard,
}

var teamColours = map[string]string{
	TeamNgata:      "#e63946",
	TeamRutherford: "#f4a261",
	TeamBritten:    "#2a9d8f",
	TeamBlake:      "#457b9d",
	TeamCooper:     "#8e44ad",
	TeamSheppard:   "#f1c40f",
}

// Teams returns the fixed team names in canonical order.
func Teams() []string {
	return append([]string(nil), teams...)
}

// NormalizeTeam lowercases name and reports whether it is one of the
// valid teams. Sign-up stores the lowercased form.
func NormalizeTeam(name string) (string, bool) {
	n := strings.ToLower(name)
	_, ok := teamColours[n]
	return n, ok
}

// TeamColour returns the display colour of a team for leaderboard
// rendering, or an empty string for unknown teams.
func TeamColour(team string) string {
	return teamColours[team]
}
