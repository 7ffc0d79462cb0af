package proof

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m-ld/m-ld-iroha/internal/state"
)

func TestCommitment_MarshalCanonical_SingleValueAsScalar(t *testing.T) {
	c := Commitment{
		PrincipalID: "alice",
		FinalState: []state.Subject{{
			ID:         "fred",
			Properties: map[string][]state.Value{"name": {state.String("Fred")}},
		}},
	}
	b, err := c.MarshalCanonical()
	require.NoError(t, err)
	assert.Equal(t, `{"pid":"alice","state":[{"@id":"fred","name":"Fred"}]}`, string(b))
}

func TestCommitment_MarshalCanonical_MultiValueAsArray(t *testing.T) {
	c := Commitment{
		PrincipalID: "alice",
		FinalState: []state.Subject{{
			ID:         "fred",
			Properties: map[string][]state.Value{"tag": {state.String("a"), state.String("b")}},
		}},
	}
	b, err := c.MarshalCanonical()
	require.NoError(t, err)
	assert.Equal(t, `{"pid":"alice","state":[{"@id":"fred","tag":["a","b"]}]}`, string(b))
}

func TestCommitment_MarshalCanonical_DeletedEntity(t *testing.T) {
	c := Commitment{
		PrincipalID: "alice",
		FinalState:  []state.Subject{{ID: "fred", Properties: map[string][]state.Value{}}},
	}
	b, err := c.MarshalCanonical()
	require.NoError(t, err)
	assert.Equal(t, `{"pid":"alice","state":[{"@id":"fred"}]}`, string(b))
}

func TestCommitment_MarshalCanonical_RejectsIdentityMarkerProperty(t *testing.T) {
	c := Commitment{
		PrincipalID: "alice",
		FinalState: []state.Subject{{
			ID:         "fred",
			Properties: map[string][]state.Value{"@id": {state.String("imposter")}},
		}},
	}
	_, err := c.MarshalCanonical()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `subject "fred" has a property named @id`)
}

func TestUnmarshalCommitment_RoundTrip(t *testing.T) {
	original := Commitment{
		PrincipalID: "alice",
		FinalState: []state.Subject{
			{ID: "barney", Properties: map[string][]state.Value{}},
			{ID: "fred", Properties: map[string][]state.Value{
				"name": {state.String("Fred")},
				"tag":  {state.String("a"), state.String("b")},
				"age":  {state.Int(40)},
			}},
		},
	}
	b, err := original.MarshalCanonical()
	require.NoError(t, err)

	decoded, err := UnmarshalCommitment(b)
	require.NoError(t, err)
	assert.Equal(t, original, decoded)
}

func TestUnmarshalCommitment_Malformed(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"not an object", `[1,2]`},
		{"missing pid", `{"state":[]}`},
		{"missing state", `{"pid":"alice"}`},
		{"subject not object", `{"pid":"alice","state":["x"]}`},
		{"subject without id", `{"pid":"alice","state":[{"name":"Fred"}]}`},
		{"not json", `pk_garbage`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := UnmarshalCommitment([]byte(tt.doc))
			assert.Error(t, err)
		})
	}
}
