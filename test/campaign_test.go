package test

import "testing"

func TestCampaignScenarios(t *testing.T) {
	for _, seed := range []int64{1, 7, 1337} {
		harness := NewHarness()
		harness.RunAll(seed)
		for _, r := range harness.Results() {
			if !r.Passed {
				t.Errorf("seed %d: %s: %s", seed, r.ScenarioName, r.Reason)
			}
		}
	}
}
