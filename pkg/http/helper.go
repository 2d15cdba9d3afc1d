package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"net/url"

	apperrors "deca/pkg/errors"
)

const (
	ContentTypeJSON = "application/json"
	ContentTypeForm = "application/x-www-form-urlencoded"
)

// ReadPayload decodes a request body into a flat key/value object. JSON bodies
// must be a single object; numbers are kept as json.Number. Form bodies keep
// the first value of each key.
func ReadPayload(r *http.Request) (map[string]any, error) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, apperrors.PayloadTooLarge(maxErr.Limit)
		}
		return nil, apperrors.InvalidInput("failed to read request body")
	}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == ContentTypeForm {
		return decodeForm(body)
	}
	return DecodeJSONObject(body)
}

// DecodeJSONObject decodes data as one JSON object.
func DecodeJSONObject(data []byte) (map[string]any, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, apperrors.InvalidInput("request body is empty")
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var payload map[string]any
	if err := dec.Decode(&payload); err != nil {
		return nil, apperrors.InvalidInput("request body must be a JSON object")
	}
	if payload == nil {
		return nil, apperrors.InvalidInput("request body must be a JSON object")
	}
	if dec.More() {
		return nil, apperrors.InvalidInput("request body must contain a single JSON object")
	}
	return payload, nil
}

func decodeForm(body []byte) (map[string]any, error) {
	values, err := url.ParseQuery(string(body))
	if err != nil {
		return nil, apperrors.InvalidInput("malformed form body")
	}

	payload := make(map[string]any, len(values))
	for k, v := range values {
		if len(v) > 0 {
			payload[k] = v[0]
		}
	}
	return payload, nil
}
