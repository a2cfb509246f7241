package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/JonMunkholm/charsetlab/internal/dataset"
)

// errorContentType is used for failures regardless of the requested variant.
const errorContentType = "application/json; charset=UTF-8"

// Response is a fully buffered HTTP response.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// Respond serializes ds and encodes it for v.
func Respond(v Variant, ds dataset.Dataset) (*Response, error) {
	if !v.Valid() {
		return nil, fmt.Errorf("respond: unknown variant %d", int(v))
	}
	p := profiles[v]

	text, err := MarshalDataset(ds)
	if err != nil {
		return nil, fmt.Errorf("respond %s: %w", v, err)
	}

	body, err := p.encode(text)
	if err != nil {
		return nil, fmt.Errorf("respond %s: %w", v, err)
	}

	h := make(http.Header)
	h.Set("Content-Type", p.contentType)
	h.Set("Access-Control-Allow-Origin", "*")

	return &Response{Status: http.StatusOK, Header: h, Body: body}, nil
}

// ErrorResponse converts err into a 500 response with a JSON body
// {"error": "<message>"}.
func ErrorResponse(err error) *Response {
	body, mErr := json.Marshal(struct {
		Error string `json:"error"`
	}{Error: err.Error()})
	if mErr != nil {
		body = []byte(`{"error":"internal error"}`)
	}

	h := make(http.Header)
	h.Set("Content-Type", errorContentType)

	return &Response{Status: http.StatusInternalServerError, Header: h, Body: body}
}

// MarshalDataset encodes ds as a JSON array. Record field order is kept,
// non-ASCII text is written literally and HTML characters are not escaped.
// A nil dataset encodes as [].
func MarshalDataset(ds dataset.Dataset) ([]byte, error) {
	if ds == nil {
		ds = dataset.Dataset{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(ds); err != nil {
		return nil, fmt.Errorf("marshal dataset: %w", err)
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// Write sends the response. Headers already set on w are kept unless the
// response overrides them.
func (r *Response) Write(w http.ResponseWriter) error {
	for k, vs := range r.Header {
		w.Header()[k] = vs
	}
	w.Header().Set("Content-Length", strconv.Itoa(len(r.Body)))
	w.WriteHeader(r.Status)
	_, err := w.Write(r.Body)
	return err
}
