// Package traindata generates the synthetic clinical dataset the
// service trains on at startup.
package traindata

import (
	"xaisentinel.com/xrs/ml/boost"
	"xaisentinel.com/xrs/types"
	"xaisentinel.com/xrs/utils"
	"fmt"
	"math/rand"
)

// Generate builds n patient rows of uniform values in normalized
// feature space from a seeded PRNG. Labels follow the sepsis
// heuristic: elevated heart rate with low oxygen, or a high infection
// marker.
func Generate(n int, seed int64) ([][]float64, []int) {
	rng := rand.New(rand.NewSource(seed))
	x := make([][]float64, n)
	y := make([]int, n)
	for i := range x {
		row := make([]float64, types.SchemaLen)
		for j := range row {
			row[j] = rng.Float64()
		}
		x[i] = row
		y[i] = Label(row)
	}
	return x, y
}

// Label applies the generating rule to a normalized row.
func Label(row []float64) int {
	highRisk := row[types.FeatureHeartRate] > 0.7 && row[types.FeatureOxygen] < 0.4
	if highRisk || row[types.FeatureInfectionMarker] > 0.8 {
		return 1
	}
	return 0
}

// Split partitions rows into train and holdout sets by hashing each
// row key, so the assignment is stable across runs and processes.
func Split(x [][]float64, y []int, holdout float64) (trainX [][]float64, trainY []int, testX [][]float64, testY []int) {
	for i := range x {
		key := utils.HashString(fmt.Sprintf("sample-%d", i))
		if float64(key%1000)/1000 < holdout {
			testX = append(testX, x[i])
			testY = append(testY, y[i])
		} else {
			trainX = append(trainX, x[i])
			trainY = append(trainY, y[i])
		}
	}
	return
}

// Accuracy scores the ensemble's hard predictions at the 0.5 cut
// against labels.
func Accuracy(ens *boost.Ensemble, x [][]float64, y []int) float64 {
	if len(x) == 0 {
		return 0
	}
	correct := 0
	for i := range x {
		pred := 0
		if ens.Probability(x[i]) >= 0.5 {
			pred = 1
		}
		if pred == y[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(x))
}
