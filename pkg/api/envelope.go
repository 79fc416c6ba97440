package api

import (
	"encoding/json"
	"fmt"

	"tableflip.dev/backstage/pkg/entity"
)

type envelope struct {
	Data json.RawMessage `json:"data"`
}

// DecodeList reads `{"data": {"<rowsKey>": [...], "pagination": {...}}}`.
// With an empty rowsKey the first array-valued field of data is used.
func DecodeList(raw []byte, rowsKey string) ([]entity.Entity, entity.Pagination, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, entity.Pagination{}, fmt.Errorf("decoding response: %w", err)
	}
	var block map[string]json.RawMessage
	if err := json.Unmarshal(env.Data, &block); err != nil {
		return nil, entity.Pagination{}, fmt.Errorf("decoding data block: %w", err)
	}

	var p entity.Pagination
	if pr, ok := block["pagination"]; ok {
		if err := json.Unmarshal(pr, &p); err != nil {
			return nil, entity.Pagination{}, fmt.Errorf("decoding pagination: %w", err)
		}
	}

	rowsRaw, ok := block[rowsKey]
	if rowsKey == "" || !ok {
		rowsRaw = firstArray(block)
	}
	rows := []entity.Entity{}
	if len(rowsRaw) > 0 {
		if err := json.Unmarshal(rowsRaw, &rows); err != nil {
			return nil, entity.Pagination{}, fmt.Errorf("decoding rows: %w", err)
		}
	}
	if p.CurrentPage == 0 {
		p.CurrentPage = 1
	}
	return rows, p, nil
}

// DecodeItem reads a single document from `{"data": {...}}`. A doubly nested
// `{"data": {"data": {...}}}` is unwrapped as well.
func DecodeItem(raw []byte) (entity.Entity, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return nil, nil
	}
	var e entity.Entity
	if err := json.Unmarshal(env.Data, &e); err != nil {
		return nil, fmt.Errorf("decoding item: %w", err)
	}
	if inner, ok := e["data"].(map[string]any); ok && len(e) == 1 {
		return entity.Entity(inner), nil
	}
	return e, nil
}

func firstArray(block map[string]json.RawMessage) json.RawMessage {
	// Map order is random; prefer a deterministic pick by key.
	var best string
	for k, v := range block {
		if len(v) > 0 && v[0] == '[' && (best == "" || k < best) {
			best = k
		}
	}
	if best == "" {
		return nil
	}
	return block[best]
}
