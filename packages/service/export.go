package service

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/stepvault/stepvault/packages/store"
)

// ValidateExport checks an export document against a user-supplied JSON
// schema. Returns nil when the document conforms; otherwise one error
// listing every violation.
func ValidateExport(doc *store.Export, schemaJSON []byte) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encoding export document: %w", err)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(schemaJSON),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return fmt.Errorf("running schema validation: %w", err)
	}
	if result.Valid() {
		return nil
	}

	var b strings.Builder
	b.WriteString("export does not match schema:")
	for _, desc := range result.Errors() {
		b.WriteString("\n  - ")
		b.WriteString(desc.String())
	}
	return fmt.Errorf("%s", b.String())
}
