package main

import (
	"flag"
	"testing"
)

func TestFlagSet_DistinguishesExplicitZeroSeed(t *testing.T) {
	old := flag.CommandLine
	defer func() { flag.CommandLine = old }()

	flag.CommandLine = flag.NewFlagSet("crackgen", flag.ContinueOnError)
	seed := flag.Int64("seed", 0, "")
	if err := flag.CommandLine.Parse([]string{"-seed", "0"}); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !flagSet("seed") || *seed != 0 {
		t.Fatalf("explicit -seed 0 should count as set")
	}

	flag.CommandLine = flag.NewFlagSet("crackgen", flag.ContinueOnError)
	flag.Int64("seed", 0, "")
	if err := flag.CommandLine.Parse(nil); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if flagSet("seed") {
		t.Fatalf("absent -seed should not count as set")
	}
}
