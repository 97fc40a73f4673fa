package server

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/matzehuels/matelas/pkg/errors"
	"github.com/matzehuels/matelas/pkg/tufting"
)

// number is a JSON field holding a float. Numeric strings such as "220"
// are accepted as well, since HTML forms submit them that way.
type number struct {
	value float64
	set   bool
}

func (n *number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return stderrors.New("must be a number, got null")
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return stderrors.New("must be a number, got " + strconv.Quote(s))
		}
		n.value, n.set = v, true
		return nil
	}
	v, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return stderrors.New("must be a number, got " + string(data))
	}
	n.value, n.set = v, true
	return nil
}

func (n number) or(def float64) float64 {
	if n.set {
		return n.value
	}
	return def
}

// layoutRequest is the body accepted by every POST route.
type layoutRequest struct {
	X            number `json:"x"`
	Y            number `json:"y"`
	MinDistX     number `json:"min_dist_x"`
	MinDistY     number `json:"min_dist_y"`
	EdgeDistance number `json:"edge_distance"`
}

// params resolves the request against the configured spacing defaults.
func (req layoutRequest) params(def tufting.Spacing) (tufting.Params, error) {
	var missing []string
	if !req.X.set {
		missing = append(missing, "x")
	}
	if !req.Y.set {
		missing = append(missing, "y")
	}
	if len(missing) > 0 {
		return tufting.Params{}, errors.New(errors.ErrCodeMalformedRequest,
			"missing required field(s): %s", strings.Join(missing, ", "))
	}
	return tufting.Params{
		Rectangle: tufting.Rectangle{Width: req.X.value, Height: req.Y.value},
		Spacing: tufting.Spacing{
			MinDistX:     req.MinDistX.or(def.MinDistX),
			MinDistY:     req.MinDistY.or(def.MinDistY),
			EdgeDistance: req.EdgeDistance.or(def.EdgeDistance),
		},
	}, nil
}

// errBodyTooLarge is reported when the body exceeds the configured limit.
var errBodyTooLarge error = errors.New(errors.ErrCodeMalformedRequest, "request body too large")

// decodeParams reads a layoutRequest from r, bounded by limit bytes.
func decodeParams(w http.ResponseWriter, r *http.Request, limit int64, def tufting.Spacing) (tufting.Params, error) {
	body := http.MaxBytesReader(w, r.Body, limit)
	var req layoutRequest
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case stderrors.As(err, &tooLarge):
			return tufting.Params{}, errBodyTooLarge
		case stderrors.Is(err, io.EOF):
			return tufting.Params{}, errors.New(errors.ErrCodeMalformedRequest, "request body is empty")
		default:
			return tufting.Params{}, errors.New(errors.ErrCodeMalformedRequest, "invalid input data: %v", err)
		}
	}
	return req.params(def)
}
