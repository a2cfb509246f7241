package web

import (
	"net/http"

	"github.com/JonMunkholm/charsetlab/internal/api"
	"github.com/JonMunkholm/charsetlab/internal/dataset"
	"github.com/JonMunkholm/charsetlab/internal/logging"
)

// handleAPI serves GET /api?api=<variant>. The dataset is read from disk on
// every request and the response is buffered before anything is written.
func (s *Server) handleAPI(w http.ResponseWriter, r *http.Request) {
	logger := logging.FromContext(r.Context())
	variant := api.ParseVariant(r.URL.Query().Get("api"))

	resp, err := s.buildResponse(variant)
	if err != nil {
		logger.Error("api request failed",
			"variant", variant.String(),
			"data_file", s.cfg.Paths.DataFile,
			"error", err,
		)
		resp = api.ErrorResponse(err)
	} else {
		logger.Debug("api response built",
			"variant", variant.String(),
			"bytes", len(resp.Body),
		)
	}

	if err := resp.Write(w); err != nil {
		logger.Warn("write api response", "error", err)
	}
}

func (s *Server) buildResponse(v api.Variant) (*api.Response, error) {
	ds, err := dataset.Load(s.cfg.Paths.DataFile)
	if err != nil {
		return nil, err
	}
	return api.Respond(v, ds)
}
