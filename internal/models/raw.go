package models

// RawRow is one unparsed line of a wave extract.
type RawRow struct {
	Date          string
	SurveyID      string
	Province      string
	Sex           string
	Age           string
	Education     string
	HouseholdSize string
	Image         string
	Vote          string
	PriorVote     string
	Line          int
}
