package handler

import (
	"io"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/store-admin/internal/domain/fee"
	"github.com/xenking/store-admin/internal/domain/order"
	"github.com/xenking/store-admin/internal/domain/settings"
)

const maxBodyBytes = 1 << 20

var errBadRequest = errors.New("bad request")

func badRequest(format string, args ...any) error {
	return errors.Wrapf(errBadRequest, format, args...)
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return nil, badRequest("read body: %v", err)
	}
	return body, nil
}

// expectEOF rejects input that continues after the decoded value.
func expectEOF(d *jx.Decoder) error {
	if err := d.Skip(); !errors.Is(err, io.EOF) {
		return badRequest("unexpected data after JSON object")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, encode func(e *jx.Encoder)) {
	e := jx.GetEncoder()
	defer jx.PutEncoder(e)
	encode(e)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(e.Bytes())
}

// writeError writes {"code": status, "message": msg}.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, func(e *jx.Encoder) {
		e.ObjStart()
		e.FieldStart("code")
		e.Int(status)
		e.FieldStart("message")
		e.Str(msg)
		e.ObjEnd()
	})
}

// fail maps domain errors to HTTP responses. Unexpected errors are logged and
// reported as 500 without detail.
func fail(w http.ResponseWriter, r *http.Request, err error) {
	var (
		cfgErr  *settings.ConfigurationError
		persErr *order.PersistenceError
	)
	switch {
	case errors.Is(err, errBadRequest),
		errors.Is(err, order.ErrUnknownStatus),
		errors.Is(err, order.ErrUnknownPaymentStatus),
		errors.Is(err, fee.ErrNegativeSubtotal):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, order.ErrNotFound):
		writeError(w, http.StatusNotFound, "order not found")
	case errors.As(err, &cfgErr):
		writeError(w, http.StatusUnprocessableEntity, cfgErr.Error())
	case errors.As(err, &persErr):
		zctx.From(r.Context()).Error("Order persistence failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "order update was not saved")
	default:
		zctx.From(r.Context()).Error("Request failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
	}
}

func isBadRequest(err error) bool {
	return errors.Is(err, errBadRequest)
}
