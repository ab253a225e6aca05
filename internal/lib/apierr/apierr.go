package apierr

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrStaleResponse    = errors.New("response superseded by a newer request")
	ErrPageOutOfRange   = errors.New("page out of range")
	ErrReactionInFlight = errors.New("reaction toggle already in flight")
	ErrUnknownPlan      = errors.New("unknown plan")
	ErrNotFound         = errors.New("not found")
)

type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindTransport
	KindServer
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindTransport:
		return "transport"
	case KindServer:
		return "server"
	}
	return "unknown"
}

// ValidationError - ошибка на стороне клиента, до сетевого вызова
type ValidationError struct {
	Message string
	Fields  map[string]string
	Err     error
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Message, joinFields(e.Fields))
}

func (e *ValidationError) Unwrap() error { return e.Err }

// TransportError - запрос не получил ответа
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: transport: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ServerError - ответ не 2xx или success=false
type ServerError struct {
	Op      string
	Status  int
	Message string
	Fields  map[string]string
}

func (e *ServerError) Error() string {
	msg := fmt.Sprintf("%s: server returned %d", e.Op, e.Status)
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if len(e.Fields) > 0 {
		msg += " (" + joinFields(e.Fields) + ")"
	}
	return msg
}

func NewValidation(message string, fields map[string]string) *ValidationError {
	return &ValidationError{Message: message, Fields: fields}
}

// Invalid оборачивает sentinel в ValidationError
func Invalid(err error) *ValidationError {
	return &ValidationError{Message: err.Error(), Err: err}
}

// KindOf определяет вид ошибки
func KindOf(err error) Kind {
	var (
		ve *ValidationError
		te *TransportError
		se *ServerError
	)
	switch {
	case err == nil:
		return KindUnknown
	case errors.As(err, &ve):
		return KindValidation
	case errors.As(err, &te):
		return KindTransport
	case errors.As(err, &se):
		return KindServer
	}
	return KindUnknown
}

// Message возвращает текст для показа пользователю рядом с контролом
func Message(err error) string {
	var (
		ve *ValidationError
		se *ServerError
	)
	switch {
	case errors.As(err, &ve):
		return ve.Message
	case errors.As(err, &se):
		if se.Message != "" {
			return se.Message
		}
		return fmt.Sprintf("request failed with status %d", se.Status)
	case KindOf(err) == KindTransport:
		return "network error, please try again"
	case err != nil:
		return err.Error()
	}
	return ""
}

// FieldErrors возвращает карту поле->сообщение, если она есть
func FieldErrors(err error) map[string]string {
	var (
		ve *ValidationError
		se *ServerError
	)
	switch {
	case errors.As(err, &ve):
		return ve.Fields
	case errors.As(err, &se):
		return se.Fields
	}
	return nil
}

func joinFields(fields map[string]string) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+fields[k])
	}
	return strings.Join(parts, "; ")
}
