package mapping

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/joseph-ayodele/bol-intake/constants"
	"github.com/joseph-ayodele/bol-intake/internal/common"
)

var (
	payloadOnce   sync.Once
	payloadSchema *jsonschema.Schema
	payloadErr    error
)

// PayloadSchema describes an acceptable create payload: required keys present and non-empty,
// all values strings, auto-enter keys absent.
func PayloadSchema() map[string]any {
	props := make(map[string]any, len(RequiredFields)+len(constants.AutoEnterFields))
	for _, f := range RequiredFields {
		props[f] = map[string]any{"type": "string", "minLength": 1}
	}
	for _, f := range constants.AutoEnterFields {
		props[f] = false
	}
	return map[string]any{
		"$schema":              "http://json-schema.org/draft-07/schema#",
		"type":                 "object",
		"required":             RequiredFields,
		"properties":           props,
		"additionalProperties": map[string]any{"type": "string"},
	}
}

func compiledPayloadSchema() (*jsonschema.Schema, error) {
	payloadOnce.Do(func() {
		b, err := json.Marshal(PayloadSchema())
		if err != nil {
			payloadErr = fmt.Errorf("marshal schema: %w", err)
			return
		}
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("payload.json", bytes.NewReader(b)); err != nil {
			payloadErr = fmt.Errorf("add schema: %w", err)
			return
		}
		payloadSchema, payloadErr = compiler.Compile("payload.json")
		if payloadErr != nil {
			payloadErr = fmt.Errorf("compile schema: %w", payloadErr)
		}
	})
	return payloadSchema, payloadErr
}

// CheckPayload validates a fieldData map against PayloadSchema.
func CheckPayload(fields map[string]string) error {
	schema, err := compiledPayloadSchema()
	if err != nil {
		return err
	}
	b, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("%w: payload does not match schema: %v", common.ErrValidation, err)
	}
	return nil
}
