package types

// Response is the envelope shared by every JSON response.
type Response struct {
	Success    bool              `json:"success" example:"true"`
	Message    string            `json:"message,omitempty" example:"User created"`
	Data       any               `json:"data,omitempty"`
	Pagination *Pagination       `json:"pagination,omitempty"`
	Errors     map[string]string `json:"errors,omitempty"`
	RequestID  string            `json:"request_id,omitempty"`
}
