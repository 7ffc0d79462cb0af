package state

// ProofValue is the agreement evidence attached to a propagated change.
// The carrying field is shared with other agreement mechanisms, so its
// shape is a sum: either a single proof token, or a list in which a token
// appears somewhere among unrelated values.
//
// Model the two shapes explicitly rather than type-sniffing at the point
// of use: construct with TokenValue or ListValue and extract with
// ExtractToken.
type ProofValue interface {
	proofValue() // sealed
}

// TokenValue is a proof value consisting of a single token.
type TokenValue string

func (TokenValue) proofValue() {}

// ListValue is a proof value consisting of a list of arbitrary values,
// at most one of which is expected to be token-shaped.
type ListValue []Value

func (ListValue) proofValue() {}

// ExtractToken scans a proof value for a token-shaped entry. It returns
// false when no entry matches the token structure, which indicates the
// change was propagated without going through prove (or the field was
// reused for something else entirely).
func ExtractToken(pv ProofValue) (string, bool) {
	switch v := pv.(type) {
	case TokenValue:
		if IsToken(string(v)) {
			return string(v), true
		}
	case ListValue:
		for _, elem := range v {
			s, ok := elem.(String)
			if ok && IsToken(string(s)) {
				return string(s), true
			}
		}
	}
	return "", false
}
