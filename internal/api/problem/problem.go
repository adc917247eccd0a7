// Package problem writes RFC 7807 application/problem+json responses.
package problem

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/PetMap-Recife/server/internal/domain/places"
	"github.com/rs/zerolog"
)

const contentType = "application/problem+json"

const typeBase = "https://petmap.recife/problems/"

// Problem type URIs.
const (
	TypeInvalidParams   = typeBase + "invalid-params"
	TypeUnknownCategory = typeBase + "unknown-category"
	TypeRateLimited     = typeBase + "rate-limited"
	TypeNotFound        = typeBase + "not-found"
	TypeInternal        = typeBase + "internal"
)

type ProblemDetails struct {
	Type     string            `json:"type"`
	Title    string            `json:"title"`
	Status   int               `json:"status"`
	Detail   string            `json:"detail,omitempty"`
	Instance string            `json:"instance,omitempty"`
	Errors   map[string]string `json:"errors,omitempty"`
}

type Option func(*ProblemDetails)

func WithDetail(detail string) Option {
	return func(p *ProblemDetails) {
		p.Detail = detail
	}
}

func WithInstance(instance string) Option {
	return func(p *ProblemDetails) {
		p.Instance = instance
	}
}

func WithErrors(errs map[string]string) Option {
	return func(p *ProblemDetails) {
		p.Errors = errs
	}
}

// Write logs err (warn for 4xx, error for 5xx) and writes the problem.
// Outside development and test the error text is replaced by the status text
// unless a detail was given explicitly.
func Write(w http.ResponseWriter, r *http.Request, status int, typ, title string, err error, env string, opts ...Option) {
	problem := ProblemDetails{
		Type:   typ,
		Title:  title,
		Status: status,
	}

	for _, opt := range opts {
		opt(&problem)
	}

	if problem.Detail == "" && err != nil {
		if env == "development" || env == "test" {
			problem.Detail = err.Error()
		} else {
			problem.Detail = http.StatusText(status)
		}
	}

	if problem.Instance == "" && r != nil {
		problem.Instance = r.URL.Path
	}

	if err != nil && r != nil {
		logger := zerolog.Ctx(r.Context())
		event := logger.Warn()
		if status >= 500 {
			event = logger.Error()
		}
		event.
			Err(err).
			Int("status", status).
			Str("type", typ).
			Str("path", r.URL.Path).
			Str("method", r.Method).
			Msg(title)
	}

	WriteProblem(w, problem)
}

// InvalidParams writes a 400 for a search parameter error. Field errors are
// public by nature and always included.
func InvalidParams(w http.ResponseWriter, r *http.Request, err error, env string) {
	typ := TypeInvalidParams
	if errors.Is(err, places.ErrUnknownCategory) {
		typ = TypeUnknownCategory
	}

	var filterErr places.FilterError
	if errors.As(err, &filterErr) {
		Write(w, r, http.StatusBadRequest, typ, "Invalid search parameters", err, env,
			WithDetail(filterErr.Error()),
			WithErrors(map[string]string{filterErr.Field: filterErr.Message}),
		)
		return
	}
	Write(w, r, http.StatusBadRequest, typ, "Invalid search parameters", err, env)
}

func WriteProblem(w http.ResponseWriter, problem ProblemDetails) {
	payload, err := json.Marshal(problem)
	if err != nil {
		fallback := fmt.Sprintf("{\"type\":\"about:blank\",\"title\":\"%s\",\"status\":500}", http.StatusText(http.StatusInternalServerError))
		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(fallback))
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(problem.Status)
	_, _ = w.Write(payload)
}
