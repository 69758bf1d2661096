package types

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

type Validater interface {
	Validate() map[string]string
}

func Validate(v Validater) map[string]string {
	return v.Validate()
}

// QueryParams is the body of a retrieval request. DocumentName optionally
// restricts the search to a single document.
type QueryParams struct {
	Prompt       string `json:"prompt" validate:"required"`
	TopK         int    `json:"top_k" validate:"gte=0,lte=100"`
	InitialK     int    `json:"initial_k" validate:"gte=0,lte=1000"`
	DocumentName string `json:"document_name,omitempty"`
	Rerank       *bool  `json:"rerank,omitempty"`
}

func (params *QueryParams) Validate() map[string]string {
	validate := validator.New()
	if err := validate.Struct(params); err != nil {
		errs := err.(validator.ValidationErrors)
		errors := make(map[string]string)
		for _, e := range errs {
			errors[e.Field()] = fmt.Sprintf("failed on '%s' tag", e.Tag())
		}
		return errors
	}
	return nil
}

// SearchResponse is returned by the query endpoint: the generated answer
// plus the ranked passages it was built from.
type SearchResponse struct {
	Answer    string      `json:"answer"`
	Sources   []SearchHit `json:"sources"`
	Timestamp time.Time   `json:"timestamp"`
}
