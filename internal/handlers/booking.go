package handlers

import (
	"context"
	"errors"

	"github.com/danielgtaylor/huma/v2"
	"github.com/eventika/venue-api/internal/booking"
	"github.com/eventika/venue-api/internal/pricing"
	"github.com/sirupsen/logrus"
)

type BookingHandler struct {
	service *booking.Service
	log     *logrus.Logger
}

func NewBookingHandler(service *booking.Service, log *logrus.Logger) *BookingHandler {
	return &BookingHandler{service: service, log: log}
}

type EstimateInput struct {
	Lang string `query:"lang" enum:"en,sv" default:"en"`
	Body pricing.Selection
}

type EstimateOutput struct {
	Body struct {
		Currency  string                  `json:"currency"`
		Total     int64                   `json:"total"`
		Formatted string                  `json:"formatted" example:"12,800 SEK"`
		Lines     []pricing.DescribedLine `json:"lines"`
	}
}

// HandleEstimate prices a form selection. It never rejects a selection;
// unreadable numbers count as zero.
func (h *BookingHandler) HandleEstimate(ctx context.Context, input *EstimateInput) (*EstimateOutput, error) {
	lang := pricing.ParseLanguage(input.Lang)
	quote := pricing.Estimate(input.Body)

	res := &EstimateOutput{}
	res.Body.Currency = quote.Currency
	res.Body.Total = quote.Total
	res.Body.Formatted = pricing.FormatAmount(quote.Total, lang)
	res.Body.Lines = quote.Describe(lang)
	return res, nil
}

type UnitsInput struct {
	Lang string `query:"lang" enum:"en,sv" default:"en"`
}

type UnitView struct {
	pricing.Unit
	Label string `json:"label" example:"Évika 2 - Cottage (4 pers)"`
}

type UnitsOutput struct {
	Body []UnitView
}

func (h *BookingHandler) HandleUnits(ctx context.Context, input *UnitsInput) (*UnitsOutput, error) {
	lang := pricing.ParseLanguage(input.Lang)
	units := pricing.Units()
	out := make([]UnitView, 0, len(units))
	for _, u := range units {
		out = append(out, UnitView{Unit: u, Label: pricing.UnitLabel(u, lang)})
	}
	return &UnitsOutput{Body: out}, nil
}

type SubmitInput struct {
	IdempotencyKey string `header:"Idempotency-Key" maxLength:"200" doc:"Repeating a key returns the first receipt instead of notifying again"`
	Body           booking.Payload
}

type SubmitOutput struct {
	Body struct {
		Success bool `json:"success"`
		booking.Receipt
	}
}

func (h *BookingHandler) HandleSubmit(ctx context.Context, input *SubmitInput) (*SubmitOutput, error) {
	receipt, err := h.service.Submit(ctx, input.IdempotencyKey, input.Body)
	if err != nil {
		return nil, h.submitError(err)
	}
	res := &SubmitOutput{}
	res.Body.Success = true
	res.Body.Receipt = receipt
	return res, nil
}

func (h *BookingHandler) submitError(err error) error {
	var verr *booking.ValidationError
	switch {
	case errors.As(err, &verr):
		details := make([]error, 0, len(verr.Fields))
		for _, f := range verr.Fields {
			details = append(details, &huma.ErrorDetail{Location: "body." + f.Field, Message: f.Message})
		}
		return huma.Error422UnprocessableEntity("Invalid booking request", details...)
	case errors.Is(err, booking.ErrDateUnavailable), errors.Is(err, booking.ErrInProgress):
		return huma.Error409Conflict(err.Error())
	case errors.Is(err, booking.ErrDeliveryFailed):
		return huma.Error502BadGateway("Your request could not be delivered, please try again or contact us directly")
	}
	h.log.WithError(err).Error("booking submission failed")
	return huma.Error500InternalServerError("Failed to submit booking request")
}
