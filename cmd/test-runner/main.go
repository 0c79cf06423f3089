// Package main runs the campaign scenario suite from the command line.
// It exists so balance changes can be smoke-tested without a frontend.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/LunaTecno/DeddysNightJuego/server/test"
)

func main() {
	seed := flag.Int64("seed", 1, "rng seed for the scripted nights")
	flag.Parse()

	fmt.Println("DEDDY'S NIGHT - CAMPAIGN SCENARIO SUITE")
	fmt.Println("=======================================")

	harness := test.NewHarness()
	harness.RunAll(*seed)

	passed, failed := 0, 0
	for _, r := range harness.Results() {
		status := "PASS"
		if !r.Passed {
			status = "FAIL"
			failed++
		} else {
			passed++
		}
		fmt.Printf("  [%s] %-40s %s\n", status, r.ScenarioName, r.Reason)
	}

	fmt.Println("=======================================")
	fmt.Printf("  passed: %d  failed: %d\n", passed, failed)

	if failed > 0 {
		os.Exit(1)
	}
}
