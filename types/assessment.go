package types

// AssessmentRequest is the payload shape shared by the REST API body
// and worker input files.
type AssessmentRequest struct {
	UserID   string   `json:"userId"`
	AppID    string   `json:"appId"`
	Vitals   Vitals   `json:"vitals"`
	Symptoms Symptoms `json:"symptoms"`
}

type Contribution struct {
	Feature string  `json:"feature"`
	Phi     float64 `json:"phi"`
}

// AssessmentResult is the scored outcome returned to clients. The
// contributions are in schema order and together with BaseValue add up
// to the raw margin behind Probability.
type AssessmentResult struct {
	Probability   float64        `json:"probability"`
	Contributions []Contribution `json:"contributions"`
	BaseValue     float64        `json:"base_value"`
}
