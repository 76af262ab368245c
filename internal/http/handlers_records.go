package http

import (
	"errors"
	"net/http"

	"finboard/internal/core"
	applog "finboard/internal/log"
)

const (
	msgDataSaved   = "data saved"
	msgDataUpdated = "data updated"
	msgDataDeleted = "data deleted"

	msgFetchFailed  = "failed to fetch data"
	msgSaveFailed   = "failed to save data"
	msgUpdateFailed = "failed to update data"
	msgDeleteFailed = "failed to delete data"
	msgNotFound     = "data not found"
)

// handleListRecords serves every month. Admin callers get the stored capital;
// anyone else, including callers with a wrong token, gets the public view.
func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var (
		body any
		n    int
		err  error
	)
	if s.guard.IsAdmin(adminToken(r)) {
		var records []core.FinancialRecord
		records, err = s.records.List(ctx)
		if records == nil {
			records = []core.FinancialRecord{}
		}
		body, n = records, len(records)
	} else {
		var records []core.PublicRecord
		records, err = s.records.ListPublic(ctx)
		if records == nil {
			records = []core.PublicRecord{}
		}
		body, n = records, len(records)
	}

	if err != nil {
		s.failRequest(w, r, applog.OpList, err, msgFetchFailed)
		return
	}

	applog.FromContext(ctx).DebugContext(ctx, "Records listed",
		applog.NewFields().WithOperation(applog.OpList).WithCount(n).ToSlice()...)
	NewJSONResponse().Body(body).Write(w)
}

func (s *Server) handleCreateRecord(w http.ResponseWriter, r *http.Request) {
	var in core.RecordInput
	if err := DecodeJSONBody(w, r, &in); err != nil {
		BadRequestError(errInvalidBody.Error()).Write(w)
		return
	}
	in.YearMonth = sanitizeInput(in.YearMonth)

	if _, err := s.records.Create(r.Context(), in); err != nil {
		s.failRequest(w, r, applog.OpCreate, err, msgSaveFailed)
		return
	}
	SuccessResponse(msgDataSaved).Write(w)
}

func (s *Server) handleUpdateRecord(w http.ResponseWriter, r *http.Request) {
	var in core.RecordInput
	if err := DecodeJSONBody(w, r, &in); err != nil {
		BadRequestError(errInvalidBody.Error()).Write(w)
		return
	}
	in.YearMonth = sanitizeInput(in.YearMonth)

	if _, err := s.records.Update(r.Context(), in); err != nil {
		s.failRequest(w, r, applog.OpUpdate, err, msgUpdateFailed)
		return
	}
	SuccessResponse(msgDataUpdated).Write(w)
}

func (s *Server) handleDeleteRecord(w http.ResponseWriter, r *http.Request) {
	var q deleteQuery
	if err := DecodeQuery(r, &q); err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	if err := s.records.Delete(r.Context(), sanitizeInput(q.YearMonth)); err != nil {
		s.failRequest(w, r, applog.OpDelete, err, msgDeleteFailed)
		return
	}
	SuccessResponse(msgDataDeleted).Write(w)
}

// failRequest maps a service error to its response. Unexpected errors are
// logged and answered with the generic message.
func (s *Server) failRequest(w http.ResponseWriter, r *http.Request, op string, err error, generic string) {
	ctx := r.Context()
	logger := applog.FromContext(ctx).WithComponent(applog.ComponentRecords)

	var ve *core.ValidationError
	switch {
	case errors.As(err, &ve):
		logger.InfoContext(ctx, "Request rejected",
			applog.NewFields().WithOperation(op).WithError(err, applog.ErrorTypeValidation).ToSlice()...)
		BadRequestError(ve.Message).Write(w)
	case errors.Is(err, core.ErrNotFound):
		logger.InfoContext(ctx, "Record not found",
			applog.NewFields().WithOperation(op).WithError(err, applog.ErrorTypeNotFound).ToSlice()...)
		NotFoundError(msgNotFound).Write(w)
	default:
		logger.ErrorContext(ctx, "Record operation failed",
			applog.NewFields().WithOperation(op).WithError(err, applog.ErrorTypeDatabase).ToSlice()...)
		InternalServerError(generic).Write(w)
	}
}
