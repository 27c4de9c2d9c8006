package mcpadapter

import (
	"encoding/json"

	"github.com/shirokuma-library/mcp-knowledge-base/internal/itemwire"
)

func marshalResult(v interface{}) (string, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// errorText renders err as the JSON-encoded {code, message, details} shape
// coreerr errors carry on the wire (spec §7), falling back to a plain
// message for anything else.
func errorText(err error) string {
	b, mErr := json.Marshal(itemwire.ErrorBody(err))
	if mErr != nil {
		return err.Error()
	}
	return string(b)
}
