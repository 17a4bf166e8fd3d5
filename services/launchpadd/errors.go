package launchpadd

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	coreerrors "launchpad/core/errors"
)

// errBadRequest marks malformed request bodies and parameters.
var errBadRequest = coreerrors.ErrValidation

type requestError struct {
	msg string
}

func (e *requestError) Error() string { return e.msg }
func (e *requestError) Unwrap() error { return errBadRequest }

func badRequest(msg string) error {
	return &requestError{msg: msg}
}

type errorBody struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

// statusFor maps an error kind to its HTTP status.
func statusFor(err error) int {
	switch coreerrors.KindOf(err) {
	case coreerrors.ErrAuthorization:
		return http.StatusForbidden
	case coreerrors.ErrInvalidIndex:
		return http.StatusNotFound
	case coreerrors.ErrTiming, coreerrors.ErrState:
		return http.StatusConflict
	case coreerrors.ErrValidation:
		return http.StatusBadRequest
	case coreerrors.ErrCapacity:
		return http.StatusUnprocessableEntity
	case coreerrors.ErrInsufficientBalance:
		return http.StatusPaymentRequired
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	body := errorBody{Error: err.Error(), Kind: coreerrors.KindName(err)}
	var reqErr *requestError
	if errors.As(err, &reqErr) {
		body.Kind = "request"
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed",
			slog.String("route", r.URL.Path),
			slog.String("request_id", requestID(r)),
			slog.String("error", err.Error()))
		body.Error = "internal error"
	}
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}
