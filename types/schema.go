package types

// Vitals and Symptoms carry the loosely typed assessment input as it
// arrives from clients. Missing entries fall back to schema defaults.
type Vitals map[string]float64
type Symptoms map[string]bool

// FeatureVector is a normalized model input of exactly SchemaLen values
// in schema order.
type FeatureVector []float64

type Feature struct {
	Name    string
	Key     string
	Divisor float64
	Default float64
	Symptom bool
}

const SchemaLen = 10

// Feature indices into a FeatureVector. The order is part of the model
// contract shared by training, inference and attribution.
const (
	FeatureAge = iota
	FeatureHeight
	FeatureWeight
	FeatureHeartRate
	FeatureBloodPressure
	FeatureOxygen
	FeatureTemperature
	FeatureInfectionMarker
	FeaturePainWeight
	FeatureRespWeight
)

// Schema lists the model features in vector order. Divisors scale raw
// clinical measurements into [0, 1]; defaults are on the raw scale.
var Schema = [SchemaLen]Feature{
	{Name: "age", Key: "age", Divisor: 100, Default: 45},
	{Name: "height", Key: "height", Divisor: 250, Default: 170},
	{Name: "weight", Key: "weight", Divisor: 200, Default: 70},
	{Name: "heartRate", Key: "heartRate", Divisor: 200, Default: 80},
	{Name: "bloodPressure", Key: "bloodPressure", Divisor: 220, Default: 120},
	{Name: "oxygen", Key: "oxygen", Divisor: 100, Default: 98},
	{Name: "temperature", Key: "temperature", Divisor: 42, Default: 37},
	{Name: "infectionMarker", Key: "infectionMarker", Divisor: 20, Default: 1},
	{Name: "painWeight", Key: "pain", Divisor: 1, Default: 0, Symptom: true},
	{Name: "respWeight", Key: "breathless", Divisor: 1, Default: 0, Symptom: true},
}

func FeatureNames() []string {
	names := make([]string, SchemaLen)
	for i, feat := range Schema {
		names[i] = feat.Name
	}
	return names
}

// Vectorize normalizes the request input into a FeatureVector. Missing
// fields take schema defaults and are reported in the second return
// value so callers can log them; they never fail the call.
func Vectorize(vitals Vitals, symptoms Symptoms) (FeatureVector, []string) {
	vec := make(FeatureVector, SchemaLen)
	var defaulted []string
	for i, feat := range Schema {
		if feat.Symptom {
			flag, ok := symptoms[feat.Key]
			if !ok {
				defaulted = append(defaulted, feat.Name)
			}
			if flag {
				vec[i] = 1
			}
			continue
		}
		raw, ok := vitals[feat.Key]
		if !ok {
			raw = feat.Default
			defaulted = append(defaulted, feat.Name)
		}
		vec[i] = raw / feat.Divisor
	}
	return vec, defaulted
}
