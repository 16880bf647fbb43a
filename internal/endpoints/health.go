package endpoints

import "net/http"

type HealthResponse struct {
	Message string `json:"message"`
	Region  string `json:"region"`
}

type Health struct {
	Response APIResponse
	region   string
}

func (h *Health) Init(region string) {
	h.region = region
}

func (h *Health) HealthHandler(w http.ResponseWriter, r *http.Request) {
	h.Response.WriteResultResponse(w, HealthResponse{Message: "OK", Region: h.region})
}
