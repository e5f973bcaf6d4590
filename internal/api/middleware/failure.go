package middleware

import (
	"context"
	stderrors "errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"adminconsole/internal/pkg/errors"
	"adminconsole/internal/pkg/validator"
	"adminconsole/internal/platform/auth"
	"adminconsole/internal/transport"
)

// WriteFailure answers a request that failed with err. Backend errors pass
// through with their own status and body.
func WriteFailure(w http.ResponseWriter, err error) {
	var verrs validator.Errors
	switch {
	case stderrors.As(err, &verrs):
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Validation failed", verrs.Sources())
	case stderrors.Is(err, auth.ErrExpired), stderrors.Is(err, auth.ErrNoSession):
		http.SetCookie(w, ExpiredSessionCookie())
		errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeUnauthorized, "Session expired, sign in again", nil)
	case stderrors.Is(err, context.Canceled):
		// client went away
	default:
		if te, ok := transport.AsError(err); ok {
			if te.Status == 0 {
				errors.WriteError(w, http.StatusBadGateway, errors.ErrCodeBackend, te.Data.Message, nil)
				return
			}
			errors.WriteBody(w, te.Status, te.Data)
			return
		}
		log.Error().Err(err).Msg("request failed")
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Internal error", nil)
	}
}
