package endpoints

import (
	"encoding/json"
	"net/http"
)

// ErrorBody is written for every failed request. Message and Error carry the
// same text.
type ErrorBody struct {
	Message   string `json:"message"`
	Error     string `json:"error"`
	ErrorCode int    `json:"error_code"`
}

type MessageBody struct {
	Message string `json:"message"`
}

type APIResponse struct{}

func (res APIResponse) WriteErrorResponse(w http.ResponseWriter, err error) {
	res.WriteErrorResponseWithStatusCode(w, err, GetStatusCode(err))
}

func (res APIResponse) WriteErrorResponseWithStatusCode(w http.ResponseWriter, err error, StatusCode int) {
	msg := errorMessage(err)
	res.write(w, StatusCode, ErrorBody{
		Message:   msg,
		Error:     msg,
		ErrorCode: GetErrorCode(err),
	})
}

func (res APIResponse) WriteResultResponse(w http.ResponseWriter, result interface{}) {
	res.write(w, http.StatusOK, result)
}

func (res APIResponse) WriteResultResponseWithStatusCode(w http.ResponseWriter, result interface{}, StatusCode int) {
	res.write(w, StatusCode, result)
}

func (res APIResponse) WriteMessageResponse(w http.ResponseWriter, message string) {
	res.write(w, http.StatusOK, MessageBody{Message: message})
}

func (res APIResponse) write(w http.ResponseWriter, status int, payload interface{}) {
	body, err := json.Marshal(payload)
	if err != nil {
		status = http.StatusInternalServerError
		body, _ = json.Marshal(ErrorBody{Message: err.Error(), Error: err.Error(), ErrorCode: API_FAILURE})
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(status)
	w.Write(body)
}
