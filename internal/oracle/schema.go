package oracle

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// batchScoreSchema describes the contract for a batch scoring response: a JSON
// array aligned positionally with the batch's job order.
const batchScoreSchema = `{
	"type": "array",
	"items": {
		"type": "object",
		"properties": {
			"matchScore": {
				"type": "number",
				"minimum": 0,
				"maximum": 100
			},
			"matchReason": {
				"type": "string"
			}
		},
		"required": ["matchScore"]
	}
}`

// ValidateBatchScores checks an oracle batch response against the expected
// schema before any score is trusted. A schema mismatch is reported as a
// malformed response, not silently coerced.
func ValidateBatchScores(jsonText string) error {
	schemaLoader := gojsonschema.NewStringLoader(batchScoreSchema)
	docLoader := gojsonschema.NewStringLoader(jsonText)

	result, err := gojsonschema.Validate(schemaLoader, docLoader)
	if err != nil {
		return fmt.Errorf("failed to validate oracle response: %w", err)
	}

	if !result.Valid() {
		first := result.Errors()[0]
		return fmt.Errorf("oracle response schema mismatch: %s: %s", first.Field(), first.Description())
	}

	return nil
}
