package adapters

import (
	"context"

	"ria/internal/reputation/models"
	"ria/internal/scoring"
)

type insightGateway interface {
	ReputationInsight(ctx context.Context, profile scoring.ReputationProfile) (string, error)
}

// InsightAdapter feeds participant profiles to the scoring gateway. Only the
// reputation dimensions and the verified credential count cross the boundary.
type InsightAdapter struct {
	gateway insightGateway
}

func NewInsightAdapter(gateway insightGateway) *InsightAdapter {
	return &InsightAdapter{gateway: gateway}
}

func (a *InsightAdapter) ReputationInsight(ctx context.Context, profile *models.Profile) (string, error) {
	verified := 0
	for _, c := range profile.Credentials {
		if c.Status == models.CredentialVerified {
			verified++
		}
	}
	return a.gateway.ReputationInsight(ctx, scoring.ReputationProfile{
		Overall:               profile.Reputation.Overall,
		Tailoring:             profile.Reputation.Tailoring,
		Punctuality:           profile.Reputation.Punctuality,
		FinancialTrust:        profile.Reputation.FinancialTrust,
		CommunityContribution: profile.Reputation.CommunityContribution,
		VerifiedCredentials:   verified,
	})
}
