package httpapi

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"github.com/julienschmidt/httprouter"
)

const maxBodyBytes = 1_048_576

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var (
	errInvalidIDParam   = errors.New("invalid id parameter")
	errTrailingJSONData = errors.New("body must only contain a single JSON value")
)

// envelope is the top-level JSON object of every response, e.g. {"loan": {...}}.
type envelope map[string]any

func readIDParam(params httprouter.Params) (uuid.UUID, error) {
	id, err := uuid.Parse(params.ByName("id"))
	if err != nil {
		return uuid.Nil, errInvalidIDParam
	}

	return id, nil
}

// parseOptionalID parses a UUID from a request body field. An empty value gives uuid.Nil.
func parseOptionalID(value string) (uuid.UUID, error) {
	if value == "" {
		return uuid.Nil, nil
	}

	return uuid.Parse(value)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data envelope) {
	body, err := json.Marshal(data)
	if err != nil {
		s.logger.Error("encoding response failed", "error", err)
		w.WriteHeader(http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(body, '\n'))
}

// readJSON decodes exactly one JSON value of at most maxBodyBytes into dst and rejects unknown fields.
func readJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		return err
	}

	if decoder.More() {
		return errTrailingJSONData
	}

	return nil
}
