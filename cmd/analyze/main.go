// Command analyze prints quick, human-readable heuristics about the starting
// positions in the project's setups directory. It summarizes piece and king
// counts per side, the opening mobility of each side (steps vs. jumps) and
// any problem that would stop the setup from starting a game.
//
// Usage:
//
//	go run ./cmd/analyze              # every setups/*.json
//	go run ./cmd/analyze a.json b.json
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/samber/lo"

	"github.com/wricardo/checkers-game/game/config"
	"github.com/wricardo/checkers-game/game/engine"
)

// SideReport describes one color in a setup
type SideReport struct {
	Color  engine.Color
	Pieces int
	Kings  int
	Steps  int
	Jumps  int
}

// Report is the analysis of one setup file
type Report struct {
	Name        string
	FirstPlayer engine.Color
	Sides       []SideReport
	Problems    []string
}

func main() {
	paths := os.Args[1:]
	if len(paths) == 0 {
		matches, err := filepath.Glob(filepath.Join("setups", "*.json"))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error listing setups: %v\n", err)
			os.Exit(1)
		}
		paths = matches
	}

	failed := false
	for _, path := range paths {
		fmt.Printf("\n=== Analyzing %s ===\n", filepath.Base(path))
		report, err := analyzeFile(path)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			failed = true
			continue
		}
		printReport(os.Stdout, report)
		if len(report.Problems) > 0 {
			failed = true
		}
	}

	if failed {
		os.Exit(1)
	}
}

func analyzeFile(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}

	var setup config.Setup
	if err := json.Unmarshal(data, &setup); err != nil {
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}
	return analyze(&setup), nil
}

// analyze never fails: layout errors are reported as problems
func analyze(setup *config.Setup) *Report {
	report := &Report{
		Name:        setup.Name,
		FirstPlayer: setup.FirstPlayer,
		Problems:    setup.Validate(),
	}

	b, err := setup.Board()
	if err != nil {
		return report
	}

	for _, c := range []engine.Color{engine.Red, engine.Black} {
		moves := engine.LegalMoves(b, c)
		jumps := lo.CountBy(moves, func(m engine.Move) bool { return m.IsJump() })
		report.Sides = append(report.Sides, SideReport{
			Color:  c,
			Pieces: b.Count(c),
			Kings:  b.Kings(c),
			Steps:  len(moves) - jumps,
			Jumps:  jumps,
		})
	}
	return report
}

func printReport(w io.Writer, r *Report) {
	fmt.Fprintf(w, "Name: %s\n", r.Name)
	fmt.Fprintf(w, "First Player: %s\n", r.FirstPlayer)

	for _, s := range r.Sides {
		fmt.Fprintf(w, "%-5s pieces: %2d (kings: %d)  opening moves: %d steps, %d jumps\n",
			s.Color, s.Pieces, s.Kings, s.Steps, s.Jumps)
	}

	if first, ok := lo.Find(r.Sides, func(s SideReport) bool { return s.Color == r.FirstPlayer }); ok && first.Jumps > 0 {
		fmt.Fprintf(w, "⚡ %s can capture on the first move\n", first.Color)
	}

	if len(r.Problems) > 0 {
		fmt.Fprintf(w, "⚠️  %d problem(s):\n", len(r.Problems))
		for _, p := range r.Problems {
			fmt.Fprintf(w, "   - %s\n", p)
		}
		return
	}
	fmt.Fprintf(w, "✅ Setup can start a game\n")
}
