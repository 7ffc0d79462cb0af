package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"
)

// AssertGolden compares the scenario's decoded ledger commitment against
// testdata/golden/<name>.golden. Regenerate with `go test -update`.
func AssertGolden(t *testing.T, s *Scenario, result *Result) {
	t.Helper()
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, s.Name, result.Commitment)
}
