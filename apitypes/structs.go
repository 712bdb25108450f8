package apitypes

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ApiError represents an RFC 7807 (problem+json) error response.
type ApiError struct {
	// Status is the HTTP status code (e.g., 400, 404, 500)
	Status int `json:"status"`
	// Title is a short, human-readable summary of the problem type
	Title string `json:"title"`
	// Detail is a human-readable explanation specific to this occurrence
	Detail string `json:"detail"`
}

func (e ApiError) Error() string {
	if e.Status == 0 && e.Title == "" {
		return "unknown error"
	}
	if e.Status == 0 {
		return fmt.Sprintf("%s: %s", e.Title, e.Detail)
	}
	return fmt.Sprintf("%d %s: %s", e.Status, e.Title, e.Detail)
}

// --

type PingResponse struct {
	Server  string `json:"server"`
	Version string `json:"version"`
}

// Placeholder is one entry of a blueprint contract.
type Placeholder struct {
	Name      string `json:"name"`
	Kind      string `json:"kind"`
	Required  bool   `json:"required"`
	Separator string `json:"separator"`
	Prefix    string `json:"prefix,omitempty"`
	Sort      bool   `json:"sort,omitempty"`
	Item      string `json:"item,omitempty"`
}

type BlueprintInfo struct {
	ID           string        `json:"id"`
	Path         string        `json:"path,omitempty"`
	Placeholders []Placeholder `json:"placeholders"`
}

type BlueprintListResponse struct {
	Family     string          `json:"family"`
	Blueprints []BlueprintInfo `json:"blueprints"`
}

// RenderRequest renders one blueprint. Context values follow the context file rules:
// scalars, lists of scalars, nested objects and lists of {"blueprint": id, ...} fragments.
type RenderRequest struct {
	Blueprint string         `json:"blueprint"`
	Context   map[string]any `json:"context"`
}

// RenderError is one record of the render error taxonomy.
type RenderError struct {
	Placeholder string `json:"placeholder,omitempty"`
	Blueprint   string `json:"blueprint"`
	Kind        string `json:"kind"`
	Detail      string `json:"detail,omitempty"`
}

func (e RenderError) String() string {
	s := fmt.Sprintf("%s in %q", e.Kind, e.Blueprint)
	if e.Placeholder != "" {
		s += fmt.Sprintf(" at %q", e.Placeholder)
	}
	if e.Detail != "" {
		s += ": " + e.Detail
	}
	return s
}

type RenderResponse struct {
	Text   string        `json:"text"`
	Path   string        `json:"path,omitempty"`
	Errors []RenderError `json:"errors"`
}

type GenerateRequest struct {
	Data GenerateData `json:"data"`
}

// GenerateData carries the OpenAPI document and the scaffold options.
type GenerateData struct {
	// Swagger is the base64 encoded YAML or JSON OpenAPI document.
	Swagger  string   `json:"swagger"`
	Package  string   `json:"package"`
	Proxies  []string `json:"proxies,omitempty"`
	Resource string   `json:"resource,omitempty"`
	// Format is the archive format, zip when empty.
	Format string `json:"format,omitempty"`
}

// UnmarshalJSON accepts proxies either as a list or as one comma separated string
// (e.g., "apim,sp").
func (d *GenerateData) UnmarshalJSON(data []byte) error {
	var raw struct {
		Swagger  string `json:"swagger"`
		Package  string `json:"package"`
		Proxies  any    `json:"proxies,omitempty"`
		Resource string `json:"resource,omitempty"`
		Format   string `json:"format,omitempty"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	d.Swagger, d.Package, d.Resource, d.Format = raw.Swagger, raw.Package, raw.Resource, raw.Format
	d.Proxies = nil

	switch val := raw.Proxies.(type) {
	case nil:
	case string:
		for _, p := range strings.Split(val, ",") {
			if p = strings.TrimSpace(p); p != "" {
				d.Proxies = append(d.Proxies, p)
			}
		}
	case []any:
		for i, p := range val {
			s, ok := p.(string)
			if !ok {
				return fmt.Errorf("proxies[%d]: expected string, got %T", i, p)
			}
			d.Proxies = append(d.Proxies, s)
		}
	default:
		return fmt.Errorf("proxies: expected list or string, got %T", raw.Proxies)
	}
	return nil
}

// JobFailure is one scaffold job that did not produce a file.
type JobFailure struct {
	Job       string        `json:"job"`
	Blueprint string        `json:"blueprint"`
	Detail    string        `json:"detail,omitempty"`
	Errors    []RenderError `json:"errors,omitempty"`
}

// GenerateFailedResponse is the 422 body of a failed generation.
type GenerateFailedResponse struct {
	ApiError
	Failures []JobFailure `json:"failures"`
}
