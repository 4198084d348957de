package myhttp

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/MarcGrol/coinshop/lib/myerrors"
	"github.com/MarcGrol/coinshop/lib/mylog"
)

type ResponseWriter interface {
	WriteError(c context.Context, w http.ResponseWriter, errorCode int, err error)
	Write(c context.Context, w http.ResponseWriter, httpStatus int, resp interface{})
}

type ErrorResponse struct {
	ErrorCode int                  `json:"errorCode"`
	Error     string               `json:"error"`
	Fields    myerrors.FieldErrors `json:"fields,omitempty"`
}

type SuccessResponse struct {
	Message string `json:"message,omitempty"`
}

func NewWriter(logger mylog.Logger) ResponseWriter {
	return &responseWriter{
		logger: logger,
	}
}

type responseWriter struct {
	logger mylog.Logger
}

func (rw responseWriter) WriteError(c context.Context, w http.ResponseWriter, errorCode int, err error) {
	httpStatus := myerrors.GetHTTPStatus(err)

	resp := ErrorResponse{
		ErrorCode: errorCode,
		Error:     err.Error(),
	}
	if httpStatus >= http.StatusInternalServerError {
		// Details stay in the log
		rw.logger.Log(c, "", mylog.SeverityError, "Error response: http-status:%d, error-code:%d, error-msg:%s", httpStatus, errorCode, err)
		resp.Error = http.StatusText(httpStatus)
	} else {
		rw.logger.Log(c, "", mylog.SeverityWarn, "Error response: http-status:%d, error-code:%d, error-msg:%s", httpStatus, errorCode, err)
	}

	var fieldErrors myerrors.FieldErrors
	if errors.As(err, &fieldErrors) {
		resp.Fields = fieldErrors
	}

	rw.write(w, httpStatus, resp)
}

func (rw responseWriter) Write(c context.Context, w http.ResponseWriter, httpStatus int, resp interface{}) {
	rw.logger.Log(c, "", mylog.SeverityDebug, "Success response: http-status:%d", httpStatus)
	rw.write(w, httpStatus, resp)
}

func (rw responseWriter) write(w http.ResponseWriter, httpStatus int, resp interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus)
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "\t")
	err := encoder.Encode(resp)
	if err != nil {
		log.Printf("Error writing response: %s", err)
		return
	}
}
