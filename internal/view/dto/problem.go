package dto

// ProblemSummary is the view model of the live panel on a problem's lobby page.
type ProblemSummary struct {
	ProblemID   string
	Online      int
	Connections int
	Pairings    int
}
