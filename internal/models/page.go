package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Page is the page-number pagination envelope used by the list endpoints.
type Page[T any] struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// HasNext reports whether the backend advertised another page.
func (p Page[T]) HasNext() bool {
	return p.Next != nil && *p.Next != ""
}

// DecodeList decodes either a page envelope or a bare JSON array into a [Page].
//
// Custom actions such as continue watching answer with a bare array.
func DecodeList[T any](data []byte) (*Page[T], error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return &Page[T]{Results: []T{}}, nil
	}

	if trimmed[0] == '[' {
		var items []T
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, fmt.Errorf("failed to decode list: %w", err)
		}
		return &Page[T]{Count: len(items), Results: items}, nil
	}

	var page Page[T]
	if err := json.Unmarshal(trimmed, &page); err != nil {
		return nil, fmt.Errorf("failed to decode page: %w", err)
	}
	if page.Results == nil {
		page.Results = []T{}
	}
	return &page, nil
}
