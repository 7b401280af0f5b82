package transport

import "encoding/json"

// Error codes that refine a domain code on the wire.
const (
	CodeTokenExpired = "TOKEN_EXPIRED"
	CodeDegraded     = "DEGRADED"
)

// Envelope is the standard API response wrapper used for both success and error payloads.
type Envelope struct {
	Status string      `json:"status"`
	Code   string      `json:"code,omitempty"`
	Data   interface{} `json:"data,omitempty"`
	Error  interface{} `json:"error,omitempty"`
	Meta   interface{} `json:"meta,omitempty"`
}

// ListMeta describes a page of results.
type ListMeta struct {
	Count  int `json:"count"`
	Limit  int `json:"limit,omitempty"`
	Offset int `json:"offset,omitempty"`
}

// NewSuccess returns a success envelope.
func NewSuccess(data interface{}, meta interface{}) Envelope {
	return Envelope{
		Status: "success",
		Data:   data,
		Meta:   meta,
	}
}

// NewError returns an error envelope with optional metadata.
func NewError(code string, err interface{}, meta interface{}) Envelope {
	return Envelope{
		Status: "error",
		Code:   code,
		Error:  err,
		Meta:   meta,
	}
}

// Marshal renders the envelope, falling back to a bare error envelope.
func (e Envelope) Marshal() []byte {
	out, err := json.Marshal(e)
	if err != nil {
		return []byte(`{"status":"error","code":"INTERNAL"}`)
	}
	return out
}

// String returns the JSON representation (best-effort) for logging purposes.
func (e Envelope) String() string {
	return string(e.Marshal())
}
