// Package appointment contains the HTTP handlers for the Appointment
// resource.
//
// HANDLER PATTERN: CLOSURE FACTORIES
// ───────────────────────────────────
// A router expects handlers with the signature
//
//	func(http.ResponseWriter, *http.Request)
//
// which has no room for the store. Each factory below accepts the store
// once at startup and returns a handler that closes over it:
//
//	r.Post("/submit-booking", appointment.Book(store))
//
// The form endpoints answer with the fixed plain-text (booking, modify)
// or inline-HTML (cancel) messages the booking page displays as-is.
package appointment

import (
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"io"
	"log/slog"
	"mime"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/aanand-mishra/appointments-api/internal/storage"
	"github.com/aanand-mishra/appointments-api/internal/types"
	"github.com/aanand-mishra/appointments-api/internal/utils/response"
)

const (
	msgBookingRequired = "All fields (name, email, phone, service, time, date) are required."
	msgModifyRequired  = "Phone number and at least one field to update are required."
	msgModifyNotFound  = "Appointment not found."
	msgCancelRequired  = "<h1>Error</h1><p>Phone number is required to cancel an appointment.</p>"
	msgCancelNotFound  = "<h1>Error</h1><p>Appointment not found for the provided phone number.</p>"
	msgInternal        = "Internal server error."

	// maxFormMemory bounds the in-memory part of a multipart body.
	maxFormMemory = 1 << 20
)

// validate is safe for concurrent use and caches struct metadata, so one
// instance serves every request.
var validate = validator.New()

// modifyRequest needs the phone plus at least one field to change:
// Service is required only when Time, Date and Notes are all empty.
type modifyRequest struct {
	Phone   string `validate:"required"`
	Service string `validate:"required_without_all=Time Date Notes"`
	Time    string
	Date    string
	Notes   string
}

type cancelRequest struct {
	Phone string `validate:"required"`
}

// formFields reads the request body as a flat set of named values.
// HTML forms (urlencoded or multipart) and JSON objects are accepted;
// JSON numbers are kept in their textual form so {"phone": 111} and
// phone=111 address the same appointment.
func formFields(r *http.Request) (func(key string) string, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	if mediaType == "application/json" {
		body := map[string]any{}
		dec := json.NewDecoder(r.Body)
		dec.UseNumber()
		if err := dec.Decode(&body); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("decode json body: %w", err)
		}

		return func(key string) string {
			switch v := body[key].(type) {
			case string:
				return v
			case json.Number:
				return v.String()
			default:
				return ""
			}
		}, nil
	}

	// ParseMultipartForm parses urlencoded bodies too, then reports
	// ErrNotMultipart.
	if err := r.ParseMultipartForm(maxFormMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return nil, fmt.Errorf("parse form: %w", err)
	}

	return r.PostForm.Get, nil
}

// validationFailed logs why a submission was rejected.
func validationFailed(endpoint string, err error) {
	var errs validator.ValidationErrors
	if errors.As(err, &errs) {
		slog.Warn("validation failed",
			slog.String("endpoint", endpoint),
			slog.String("error", response.ValidationMessage(errs)))
		return
	}
	slog.Warn("invalid request body",
		slog.String("endpoint", endpoint),
		slog.String("error", err.Error()))
}

// ─────────────────────────────────────────────────────────────────────────────
// Book handles POST /submit-booking
// Creates an appointment, or replaces the existing one for the same phone.
//
// Body: name, email, phone, service, time, date (required), notes (optional)
//
//	201 Created  : "Appointment for {name} booked successfully."
//	200 OK       : "Appointment for {name} updated successfully."
//	400          : a required field is missing
//	500          : the store could not persist the change
//
// ─────────────────────────────────────────────────────────────────────────────
func Book(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		get, err := formFields(r)
		if err != nil {
			validationFailed("submit-booking", err)
			response.WriteText(w, http.StatusBadRequest, msgBookingRequired)
			return
		}

		appointment := types.Appointment{
			Name:    get("name"),
			Email:   get("email"),
			Phone:   get("phone"),
			Service: get("service"),
			Time:    get("time"),
			Date:    get("date"),
			Notes:   get("notes"),
		}

		if err := validate.Struct(appointment); err != nil {
			validationFailed("submit-booking", err)
			response.WriteText(w, http.StatusBadRequest, msgBookingRequired)
			return
		}

		inserted, err := store.Upsert(appointment)
		if err != nil {
			slog.Error("error saving appointment",
				slog.String("phone", appointment.Phone),
				slog.String("error", err.Error()))
			response.WriteText(w, http.StatusInternalServerError, msgInternal)
			return
		}

		if inserted {
			slog.Info("appointment booked", slog.String("phone", appointment.Phone))
			response.WriteText(w, http.StatusCreated,
				fmt.Sprintf("Appointment for %s booked successfully.", appointment.Name))
			return
		}

		slog.Info("appointment replaced", slog.String("phone", appointment.Phone))
		response.WriteText(w, http.StatusOK,
			fmt.Sprintf("Appointment for %s updated successfully.", appointment.Name))
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Modify handles POST /modify-appointment
// Changes only the supplied fields of the appointment for a phone.
//
// Body: phone (required) and at least one of service, time, date, notes
//
//	200 OK  : "Appointment for phone number {phone} updated successfully."
//	400     : phone missing, or nothing to change
//	404     : no appointment for that phone
//
// ─────────────────────────────────────────────────────────────────────────────
func Modify(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		get, err := formFields(r)
		if err != nil {
			validationFailed("modify-appointment", err)
			response.WriteText(w, http.StatusBadRequest, msgModifyRequired)
			return
		}

		req := modifyRequest{
			Phone:   get("phone"),
			Service: get("service"),
			Time:    get("time"),
			Date:    get("date"),
			Notes:   get("notes"),
		}

		if err := validate.Struct(req); err != nil {
			validationFailed("modify-appointment", err)
			response.WriteText(w, http.StatusBadRequest, msgModifyRequired)
			return
		}

		_, err = store.Patch(req.Phone, types.AppointmentPatch{
			Service: req.Service,
			Time:    req.Time,
			Date:    req.Date,
			Notes:   req.Notes,
		})
		if errors.Is(err, storage.ErrNotFound) {
			response.WriteText(w, http.StatusNotFound, msgModifyNotFound)
			return
		}
		if err != nil {
			slog.Error("error modifying appointment",
				slog.String("phone", req.Phone),
				slog.String("error", err.Error()))
			response.WriteText(w, http.StatusInternalServerError, msgInternal)
			return
		}

		slog.Info("appointment modified", slog.String("phone", req.Phone))
		response.WriteText(w, http.StatusOK,
			fmt.Sprintf("Appointment for phone number %s updated successfully.", req.Phone))
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Cancel handles POST /cancel-appointment
// Removes the appointment for a phone. Answers are HTML fragments.
//
//	200 OK  : confirmation naming the cancelled party and phone
//	400     : phone missing
//	404     : no appointment for that phone
//
// ─────────────────────────────────────────────────────────────────────────────
func Cancel(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		get, err := formFields(r)
		if err != nil {
			validationFailed("cancel-appointment", err)
			response.WriteHTML(w, http.StatusBadRequest, msgCancelRequired)
			return
		}

		req := cancelRequest{Phone: get("phone")}
		if err := validate.Struct(req); err != nil {
			validationFailed("cancel-appointment", err)
			response.WriteHTML(w, http.StatusBadRequest, msgCancelRequired)
			return
		}

		cancelled, err := store.Remove(req.Phone)
		if errors.Is(err, storage.ErrNotFound) {
			response.WriteHTML(w, http.StatusNotFound, msgCancelNotFound)
			return
		}
		if err != nil {
			slog.Error("error cancelling appointment",
				slog.String("phone", req.Phone),
				slog.String("error", err.Error()))
			response.WriteHTML(w, http.StatusInternalServerError, "<h1>Error</h1><p>"+msgInternal+"</p>")
			return
		}

		slog.Info("appointment cancelled", slog.String("phone", cancelled.Phone))
		response.WriteHTML(w, http.StatusOK, fmt.Sprintf(
			"<h1>Success</h1><p>Successfully cancelled appointment for %s, Phone: %s.</p>",
			html.EscapeString(cancelled.Name), html.EscapeString(cancelled.Phone)))
	}
}

// GetList handles GET /api/appointments and returns every appointment as
// a JSON array ([] when empty).
func GetList(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		appointments, err := store.List()
		if err != nil {
			slog.Error("error listing appointments", slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(err))
			return
		}

		response.WriteJSON(w, http.StatusOK, appointments)
	}
}

// GetByPhone handles GET /api/appointments/{phone}.
func GetByPhone(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		phone := chi.URLParam(r, "phone")

		appointment, err := store.Get(phone)
		if errors.Is(err, storage.ErrNotFound) {
			response.WriteJSON(w, http.StatusNotFound, response.GeneralError(storage.ErrNotFound))
			return
		}
		if err != nil {
			slog.Error("error getting appointment",
				slog.String("phone", phone),
				slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(err))
			return
		}

		response.WriteJSON(w, http.StatusOK, appointment)
	}
}
