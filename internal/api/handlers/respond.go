package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"

	apiContext "adminconsole/internal/api/context"
	"adminconsole/internal/api/middleware"
	"adminconsole/internal/pkg/errors"
	"adminconsole/internal/pkg/validator"
	"adminconsole/internal/platform/models"
)

// writeData answers with the backend's success envelope.
func writeData(w http.ResponseWriter, status int, message string, data any, meta *models.Meta) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(models.Envelope[any]{
		StatusCode: status,
		Success:    true,
		Message:    message,
		Data:       data,
		Meta:       meta,
	})
}

func param(r *http.Request, name string) string {
	ps, _ := r.Context().Value(apiContext.Params).(httprouter.Params)
	return ps.ByName(name)
}

// idParam reads and checks the :id route parameter.
func idParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := param(r, "id")
	if fe := validator.Var("id", id, "required,objectid"); fe != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, fe.Message, validator.Errors{*fe}.Sources())
		return "", false
	}
	return id, true
}

// decodeForm reads a JSON body and validates it. On failure the response
// has been written.
func decodeForm[F any](w http.ResponseWriter, r *http.Request) (F, bool) {
	var form F
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return form, false
	}
	form, verrs := validator.Validate(form)
	if verrs != nil {
		middleware.WriteFailure(w, verrs)
		return form, false
	}
	return form, true
}
