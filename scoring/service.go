// Package scoring turns raw assessment input into an explained risk
// score.
package scoring

import (
	"xaisentinel.com/xrs/logger"
	"xaisentinel.com/xrs/ml/boost"
	"xaisentinel.com/xrs/ml/shap"
	"xaisentinel.com/xrs/types"
	"github.com/rs/zerolog"
)

// Service scores assessments against a trained ensemble and attributes
// every score. It holds no mutable state, so callers may share one
// instance across goroutines.
type Service struct {
	ens       *boost.Ensemble
	explainer *shap.Explainer
	xrsLogger *zerolog.Logger
}

func New(ens *boost.Ensemble) (*Service, error) {
	explainer, err := shap.NewExplainer(ens, types.SchemaLen)
	if err != nil {
		return nil, err
	}
	xrsLogger := logger.NewLogger("Scoring")
	return &Service{
		ens:       ens,
		explainer: explainer,
		xrsLogger: &xrsLogger,
	}, nil
}

// Score normalizes the input, runs inference and attribution on the
// same vector and packages the result. It returns either a complete
// result or an error, never a partial one.
func (svc *Service) Score(vitals types.Vitals, symptoms types.Symptoms) (types.AssessmentResult, error) {
	vec, defaulted := types.Vectorize(vitals, symptoms)
	if len(defaulted) > 0 {
		svc.xrsLogger.Debug().
			Strs("fields", defaulted).
			Msg("Missing input fields replaced with schema defaults")
	}

	phi, err := svc.explainer.Attribute(vec)
	if err != nil {
		return types.AssessmentResult{}, err
	}

	contributions := make([]types.Contribution, types.SchemaLen)
	for i, feat := range types.Schema {
		contributions[i] = types.Contribution{Feature: feat.Name, Phi: phi[i]}
	}
	return types.AssessmentResult{
		Probability:   svc.ens.Probability(vec),
		Contributions: contributions,
		BaseValue:     svc.explainer.BaseValue(),
	}, nil
}
