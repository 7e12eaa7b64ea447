package handlers

import (
	"context"
	"errors"

	"github.com/danielgtaylor/huma/v2"
	"github.com/eventika/venue-api/internal/auth"
	"github.com/eventika/venue-api/internal/ledger"
	"github.com/eventika/venue-api/internal/models"
	"github.com/sirupsen/logrus"
)

type CalendarHandler struct {
	ledger      *ledger.Ledger
	authHandler *auth.AuthHandler
	log         *logrus.Logger
}

func NewCalendarHandler(l *ledger.Ledger, authHandler *auth.AuthHandler, log *logrus.Logger) *CalendarHandler {
	return &CalendarHandler{ledger: l, authHandler: authHandler, log: log}
}

// ledgerError maps ledger sentinels onto HTTP problems.
func (h *CalendarHandler) ledgerError(err error) error {
	switch {
	case errors.Is(err, ledger.ErrUnauthenticated):
		return huma.Error401Unauthorized(err.Error())
	case errors.Is(err, ledger.ErrForbidden):
		return huma.Error403Forbidden(err.Error())
	case errors.Is(err, ledger.ErrNotFound):
		return huma.Error404NotFound(err.Error())
	case errors.Is(err, ledger.ErrInvalidDate):
		return huma.Error422UnprocessableEntity(err.Error(), &huma.ErrorDetail{Location: "date", Message: err.Error()})
	case errors.Is(err, ledger.ErrNoteTooLong):
		return huma.Error422UnprocessableEntity(err.Error(), &huma.ErrorDetail{Location: "body.note", Message: err.Error()})
	}
	h.log.WithError(err).Error("calendar operation failed")
	return huma.Error500InternalServerError("Failed to access booked dates")
}

// identify resolves the caller. Bad credentials are rejected here;
// anonymous callers are left for the ledger to refuse.
func (h *CalendarHandler) identify(ctx context.Context, input auth.AuthInput) (*auth.Identity, error) {
	id, err := h.authHandler.Identify(ctx, input)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		return nil, huma.Error401Unauthorized("Unauthorized: Invalid credentials")
	}
	if err != nil {
		h.log.WithError(err).Error("failed to resolve identity")
		return nil, huma.Error500InternalServerError("Failed to resolve identity")
	}
	return id, nil
}

type BookedDatesOutput struct {
	Body []string
}

func (h *CalendarHandler) HandleList(ctx context.Context, input *struct{}) (*BookedDatesOutput, error) {
	dates, err := h.ledger.PublicDates(ctx)
	if err != nil {
		return nil, h.ledgerError(err)
	}
	return &BookedDatesOutput{Body: dates}, nil
}

type AdminBookedDatesOutput struct {
	Body []models.BookedDate
}

func (h *CalendarHandler) HandleAdminList(ctx context.Context, input *auth.AuthInput) (*AdminBookedDatesOutput, error) {
	id, err := h.identify(ctx, *input)
	if err != nil {
		return nil, err
	}
	rows, err := h.ledger.AdminList(ctx, id)
	if err != nil {
		return nil, h.ledgerError(err)
	}
	return &AdminBookedDatesOutput{Body: rows}, nil
}

type AddBookedDateInput struct {
	auth.AuthInput
	Body struct {
		Date string  `json:"date" doc:"Day to mark as booked" example:"2025-06-15"`
		Note *string `json:"note,omitempty" doc:"Short label shown to the owner only"`
	}
}

type BookedDateOutput struct {
	Status int
	Body   models.BookedDate
}

func (h *CalendarHandler) HandleAdd(ctx context.Context, input *AddBookedDateInput) (*BookedDateOutput, error) {
	id, err := h.identify(ctx, input.AuthInput)
	if err != nil {
		return nil, err
	}
	row, created, err := h.ledger.Add(ctx, id, input.Body.Date, input.Body.Note)
	if err != nil {
		return nil, h.ledgerError(err)
	}
	status := 200
	if created {
		status = 201
	}
	return &BookedDateOutput{Status: status, Body: row}, nil
}

type UpdateBookedDateInput struct {
	auth.AuthInput
	Date string `path:"date" example:"2025-06-15"`
	Body struct {
		Note *string `json:"note,omitempty" doc:"New label, empty clears it"`
	}
}

func (h *CalendarHandler) HandleUpdate(ctx context.Context, input *UpdateBookedDateInput) (*BookedDateOutput, error) {
	id, err := h.identify(ctx, input.AuthInput)
	if err != nil {
		return nil, err
	}
	row, err := h.ledger.Update(ctx, id, input.Date, input.Body.Note)
	if err != nil {
		return nil, h.ledgerError(err)
	}
	return &BookedDateOutput{Status: 200, Body: row}, nil
}

type RemoveBookedDateInput struct {
	auth.AuthInput
	Date string `path:"date" example:"2025-06-15"`
}

type SuccessOutput struct {
	Body struct {
		Success bool `json:"success"`
	}
}

func (h *CalendarHandler) HandleRemove(ctx context.Context, input *RemoveBookedDateInput) (*SuccessOutput, error) {
	id, err := h.identify(ctx, input.AuthInput)
	if err != nil {
		return nil, err
	}
	if err := h.ledger.Remove(ctx, id, input.Date); err != nil {
		return nil, h.ledgerError(err)
	}
	res := &SuccessOutput{}
	res.Body.Success = true
	return res, nil
}

type HistoryInput struct {
	auth.AuthInput
	Limit int `query:"limit" minimum:"1" maximum:"500" default:"100"`
}

type HistoryOutput struct {
	Body []models.BookedDateHistory
}

func (h *CalendarHandler) HandleHistory(ctx context.Context, input *HistoryInput) (*HistoryOutput, error) {
	id, err := h.identify(ctx, input.AuthInput)
	if err != nil {
		return nil, err
	}
	rows, err := h.ledger.History(ctx, id, input.Limit)
	if err != nil {
		return nil, h.ledgerError(err)
	}
	return &HistoryOutput{Body: rows}, nil
}
