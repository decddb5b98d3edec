// Package response renders the portal's JSON envelope: data on success,
// error on failure, message for plain notices.
package response

import (
	"encoding/json"
	"net/http"

	"portal/shared/constant"
	"portal/shared/failure"
	"portal/shared/logger"
)

type Data[T any] struct {
	Data *T `json:"data,omitempty"`
}

type Error struct {
	Error *string `json:"error,omitempty"`
}

type Message struct {
	Message *string `json:"message,omitempty"`
}

// WithMessage sends a plain text notice.
func WithMessage(writer http.ResponseWriter, code int, message string) {
	respond(writer, code, Message{Message: &message})
}

// WithJSON sends a payload under the data key.
func WithJSON(writer http.ResponseWriter, code int, jsonPayload any) {
	respond(writer, code, Data[any]{Data: &jsonPayload})
}

// WithError maps a failure onto its HTTP status and sends the message.
func WithError(writer http.ResponseWriter, err error) {
	code := failure.GetCode(err)
	errMsg := err.Error()

	respond(writer, code, Error{Error: &errMsg})
}

// WithRequestLimitExceeded is the standard 429 reply.
func WithRequestLimitExceeded(writer http.ResponseWriter) {
	WithMessage(writer, http.StatusTooManyRequests, constant.ResponseErrorRequestLimitExceeded)
}

// WithPreparingShutdown is sent while the server drains connections.
func WithPreparingShutdown(writer http.ResponseWriter) {
	WithMessage(writer, http.StatusServiceUnavailable, constant.ResponseErrorPrepareShutdown)
}

// WithUnhealthy is the failing health-check reply.
func WithUnhealthy(writer http.ResponseWriter) {
	WithMessage(writer, http.StatusServiceUnavailable, constant.ResponseErrorUnhealthy)
}

func respond(writer http.ResponseWriter, code int, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		logger.ErrorWithStack(err)

		return
	}

	writer.Header().Set(constant.RequestHeaderContentType, constant.ContentTypeJSON)
	writer.WriteHeader(code)

	if _, err = writer.Write(body); err != nil {
		logger.ErrorWithStack(err)
	}
}
