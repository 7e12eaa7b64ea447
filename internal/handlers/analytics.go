package handlers

import (
	"context"

	"github.com/eventika/venue-api/internal/analytics"
	"github.com/eventika/venue-api/internal/auth"
)

type AnalyticsHandler struct {
	client      *analytics.Client
	authHandler *auth.AuthHandler
}

func NewAnalyticsHandler(client *analytics.Client, authHandler *auth.AuthHandler) *AnalyticsHandler {
	return &AnalyticsHandler{client: client, authHandler: authHandler}
}

type StatsInput struct {
	auth.AuthInput
	StartDate string `query:"startDate" example:"2025-06-01"`
	EndDate   string `query:"endDate" example:"2025-06-30"`
}

type StatsOutput struct {
	Body analytics.Summary
}

func (h *AnalyticsHandler) HandleStats(ctx context.Context, input *StatsInput) (*StatsOutput, error) {
	if _, err := h.authHandler.RequireOwner(ctx, input.AuthInput); err != nil {
		return nil, err
	}
	summary := h.client.Stats(ctx, analytics.Range{StartDate: input.StartDate, EndDate: input.EndDate})
	return &StatsOutput{Body: summary}, nil
}
