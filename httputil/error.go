package httputil

import "fmt"

// PublicError is the error body returned by the device backend on a failed request
type PublicError struct {
	Object    string             `json:"object"`
	Code      int                `json:"code"`
	Type      string             `json:"type"`
	Message   string             `json:"message"`
	Fields    []PublicErrorField `json:"fields,omitempty"`
	RequestID string             `json:"request_id"`
}

type PublicErrorField struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

func (pe *PublicError) Error() string {
	if pe.Type == "" {
		return fmt.Sprintf("%d: %s", pe.Code, pe.Message)
	}

	return fmt.Sprintf("%d %s: %s", pe.Code, pe.Type, pe.Message)
}

// Empty reports whether nothing was decoded into the error body
func (pe *PublicError) Empty() bool {
	return pe.Code == 0 && pe.Type == "" && pe.Message == ""
}
