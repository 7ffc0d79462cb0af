package ledger

import (
	"encoding/json"
	"fmt"
)

// Encode prepares a canonical JSON document for the ledger's value
// channel by applying one level of JSON string escaping (without the
// surrounding quotes). The channel consumes exactly one level of
// escaping between write and read, so the escaped form survives transit
// and Decode's single unwrap restores the original text exactly.
func Encode(canonical []byte) (string, error) {
	quoted, err := json.Marshal(string(canonical))
	if err != nil {
		return "", fmt.Errorf("escape ledger value: %w", err)
	}
	// Strip the surrounding quotes; the ledger stores the string body.
	return string(quoted[1 : len(quoted)-1]), nil
}

// Decode reverses Encode: one compensating string unwrap, yielding the
// original canonical JSON document.
func Decode(value string) ([]byte, error) {
	var text string
	if err := json.Unmarshal([]byte(`"`+value+`"`), &text); err != nil {
		return nil, fmt.Errorf("unwrap ledger value: %w", err)
	}
	return []byte(text), nil
}
