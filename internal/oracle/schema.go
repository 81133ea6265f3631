package oracle

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// BuildInvoiceJSONSchema returns a JSON-Schema (draft 2020-12 subset) as a
// generic map describing the oracle's expected output. The schema is
// structural only: field presence is handled downstream (a description-less
// item is dropped, not the whole document), so nothing is marked required
// beyond the items array itself.
func BuildInvoiceJSONSchema() map[string]any {
	nullable := func(t string) map[string]any {
		return map[string]any{"type": []string{t, "null"}}
	}
	itemProps := map[string]any{
		"item_number":    nullable("number"),
		"description":    nullable("string"),
		"quantity":       nullable("number"),
		"unit_price":     nullable("number"),
		"total":          nullable("number"),
		"unit":           nullable("string"),
		"llm_confidence": map[string]any{"type": []string{"number", "null"}, "minimum": 0.0, "maximum": 10.0},
	}
	props := map[string]any{
		"invoice_number": nullable("string"),
		"invoice_date":   nullable("string"),
		"vendor_name":    nullable("string"),
		"customer_name":  nullable("string"),
		"currency":       nullable("string"),
		"items": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type":       "object",
				"properties": itemProps,
			},
		},
		"subtotal":     nullable("number"),
		"tax":          nullable("number"),
		"total_amount": nullable("number"),
	}
	return map[string]any{
		"type":       "object",
		"properties": props,
		"required":   []string{"items"},
	}
}

// ValidateJSONAgainstSchema validates "data" against "schemaMap".
func ValidateJSONAgainstSchema(schemaMap map[string]any, data []byte) error {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}
