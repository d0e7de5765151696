// Package predict scores bank-marketing client records for term deposit
// subscription likelihood. The Engine is a black box to the rest of the
// system; everything else only depends on its input and output shapes.
package predict

import (
	"fmt"
	"strings"
)

// Engine is the scoring function consumed by the worker. Predict is pure:
// one label ("yes"/"no") and one probability per input record, or a
// computation error.
type Engine interface {
	Predict(records []Record) (labels []string, probabilities []float64, err error)
}

// Record is one client row with the 16 raw input features the scoring
// pipeline expects.
type Record struct {
	Age       int    `json:"age"`
	Job       string `json:"job"`
	Marital   string `json:"marital"`
	Education string `json:"education"`
	Default   string `json:"default"`
	Balance   int    `json:"balance"`
	Housing   string `json:"housing"`
	Loan      string `json:"loan"`
	Contact   string `json:"contact"`
	Day       int    `json:"day"`
	Month     string `json:"month"`
	Duration  int    `json:"duration"`
	Campaign  int    `json:"campaign"`
	Pdays     int    `json:"pdays"`
	Previous  int    `json:"previous"`
	Poutcome  string `json:"poutcome"`
}

// Columns is the expected raw input column order.
var Columns = []string{
	"age", "job", "marital", "education", "default", "balance",
	"housing", "loan", "contact", "day", "month", "duration",
	"campaign", "pdays", "previous", "poutcome",
}

var allowedValues = map[string][]string{
	"job": {
		"admin.", "blue-collar", "entrepreneur", "housemaid", "management",
		"retired", "self-employed", "services", "student", "technician",
		"unemployed", "unknown",
	},
	"marital": {"divorced", "married", "single", "unknown"},
	"education": {
		"basic.4y", "basic.6y", "basic.9y", "high.school",
		"illiterate", "professional.course", "university.degree", "unknown",
	},
	"default":  {"no", "yes", "unknown"},
	"housing":  {"no", "yes", "unknown"},
	"loan":     {"no", "yes", "unknown"},
	"contact":  {"cellular", "telephone"},
	"month":    {"jan", "feb", "mar", "apr", "may", "jun", "jul", "aug", "sep", "oct", "nov", "dec"},
	"poutcome": {"failure", "nonexistent", "other", "success"},
}

// Validate checks a single-prediction request record against the allowed
// categorical values and numeric ranges.
func (r Record) Validate() error {
	categoricals := map[string]string{
		"job":       r.Job,
		"marital":   r.Marital,
		"education": r.Education,
		"default":   r.Default,
		"housing":   r.Housing,
		"loan":      r.Loan,
		"contact":   r.Contact,
		"month":     r.Month,
		"poutcome":  r.Poutcome,
	}
	for field, value := range categoricals {
		if !contains(allowedValues[field], value) {
			return fmt.Errorf("invalid %s: %q (allowed: %s)",
				field, value, strings.Join(allowedValues[field], ", "))
		}
	}
	if r.Day < 1 || r.Day > 31 {
		return fmt.Errorf("invalid day: %d", r.Day)
	}
	if r.Duration < 0 {
		return fmt.Errorf("invalid duration: %d", r.Duration)
	}
	if r.Campaign < 1 {
		return fmt.Errorf("invalid campaign: %d", r.Campaign)
	}
	if r.Previous < 0 {
		return fmt.Errorf("invalid previous: %d", r.Previous)
	}
	return nil
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
