package predict

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
)

// NumericTerm is one standardized numeric feature in the model.
type NumericTerm struct {
	Weight float64 `json:"weight"`
	Mean   float64 `json:"mean"`
	Std    float64 `json:"std"`
}

// Params holds the trained pipeline parameters: a logistic model over
// standardized numeric features and one-hot categorical features.
type Params struct {
	Intercept   float64                       `json:"intercept"`
	Numeric     map[string]NumericTerm        `json:"numeric"`
	Categorical map[string]map[string]float64 `json:"categorical"`
	Threshold   float64                       `json:"threshold"`
}

// Model implements Engine with parameters loaded from a JSON file.
type Model struct {
	params Params
}

// Load reads model parameters from disk. The worker treats a load
// failure as a missing engine and fails jobs with a computation error
// rather than refusing to start.
func Load(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model: %w", err)
	}
	var p Params
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse model: %w", err)
	}
	if p.Threshold == 0 {
		p.Threshold = 0.5
	}
	return &Model{params: p}, nil
}

func (m *Model) Predict(records []Record) ([]string, []float64, error) {
	labels := make([]string, len(records))
	probabilities := make([]float64, len(records))
	for i, rec := range records {
		p := m.score(rec)
		probabilities[i] = p
		if p >= m.params.Threshold {
			labels[i] = "yes"
		} else {
			labels[i] = "no"
		}
	}
	return labels, probabilities, nil
}

func (m *Model) score(rec Record) float64 {
	z := m.params.Intercept
	for name, term := range m.params.Numeric {
		x := numericValue(rec, name)
		if term.Std != 0 {
			x = (x - term.Mean) / term.Std
		}
		z += term.Weight * x
	}
	for name, weights := range m.params.Categorical {
		// Unseen categories contribute nothing.
		z += weights[categoricalValue(rec, name)]
	}
	return 1 / (1 + math.Exp(-z))
}

func numericValue(rec Record, name string) float64 {
	switch name {
	case "age":
		return float64(rec.Age)
	case "balance":
		return float64(rec.Balance)
	case "day":
		return float64(rec.Day)
	case "duration":
		return float64(rec.Duration)
	case "campaign":
		return float64(rec.Campaign)
	case "pdays":
		return float64(rec.Pdays)
	case "previous":
		return float64(rec.Previous)
	}
	return 0
}

func categoricalValue(rec Record, name string) string {
	switch name {
	case "job":
		return rec.Job
	case "marital":
		return rec.Marital
	case "education":
		return rec.Education
	case "default":
		return rec.Default
	case "housing":
		return rec.Housing
	case "loan":
		return rec.Loan
	case "contact":
		return rec.Contact
	case "month":
		return rec.Month
	case "poutcome":
		return rec.Poutcome
	}
	return ""
}
