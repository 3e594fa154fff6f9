package models

import "time"

// Exclusion reasons recorded on respondents that do not take part in weighting.
const (
	ExcludeMissingField = "missing_field"
	ExcludeDuplicate    = "duplicate"
	ExcludeAgeRange     = "age_out_of_range"
)

// Respondent represents one surveyed individual at one survey wave.
type Respondent struct {
	Date          time.Time `json:"date"`
	HouseholdSize *int      `json:"householdSize,omitempty"`
	Image         *float64  `json:"image,omitempty"`
	Wave          string    `json:"wave"`
	SurveyID      string    `json:"surveyId"`
	RawProvince   string    `json:"rawProvince"`
	RawSex        string    `json:"rawSex"`
	RawAge        string    `json:"rawAge"`
	Province      string    `json:"province"`
	Sex           string    `json:"sex"`
	AgeGroup      string    `json:"ageGroup"`
	Education     string    `json:"education"`
	Vote          string    `json:"vote"`
	PriorVote     string    `json:"priorVote"`
	ExcludeReason string    `json:"excludeReason,omitempty"`
	Row           int       `json:"row"`
	Age           int       `json:"age"`
	AgeImputed    bool      `json:"ageImputed"`

	ImageNormalized float64 `json:"imageNormalized"`
	Intention       int     `json:"intention"`
	Weight          float64 `json:"weight"`
	Excluded        bool    `json:"excluded"`
}

// Exclude marks the respondent as excluded from weighting and aggregation.
// The first reason wins.
func (r *Respondent) Exclude(reason string) {
	if r.Excluded {
		return
	}

	r.Excluded = true
	r.ExcludeReason = reason
}

// Cell returns the demographic cell of the respondent.
func (r *Respondent) Cell() Cell {
	return Cell{Province: r.Province, Sex: r.Sex, AgeGroup: r.AgeGroup}
}

// Active returns the respondents that survived cleaning.
func Active(records []*Respondent) []*Respondent {
	var active []*Respondent

	for _, r := range records {
		if !r.Excluded {
			active = append(active, r)
		}
	}

	return active
}
