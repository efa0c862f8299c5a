package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gamefeatures/internal/ingest"
	"gamefeatures/internal/table"

	prettytable "github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

type rowAlignment struct {
	Complete               bool     `json:"complete"`
	MatchedRows            int      `json:"matched_rows"`
	ReferenceRows          int      `json:"reference_rows"`
	CandidateRows          int      `json:"candidate_rows"`
	CoverageReference      float64  `json:"coverage_reference"`
	CoverageCandidate      float64  `json:"coverage_candidate"`
	DuplicateReferenceKeys int      `json:"duplicate_reference_keys,omitempty"`
	UnmatchedCandidateRows int      `json:"unmatched_candidate_rows,omitempty"`
	Pairs                  [][2]int `json:"-"`
}

type columnScore struct {
	Column     string  `json:"column"`
	Similarity float64 `json:"similarity"`
	Mismatches int     `json:"mismatches"`
	InCand     bool    `json:"in_candidate"`
}

type report struct {
	Status             string        `json:"status"`
	Key                string        `json:"key"`
	Reference          string        `json:"reference_csv"`
	Candidate          string        `json:"candidate_csv"`
	RowAlignment       rowAlignment  `json:"row_alignment"`
	DatasetSimilarity  float64       `json:"dataset_similarity"`
	OverallScore       float64       `json:"overall_score_with_coverage"`
	Columns            []columnScore `json:"columns"`
	CandidateUnmatched []string      `json:"candidate_unmatched_columns"`
}

var (
	referencePath string
	candidatePath string
	keyColumn     string
	outputJSON    string
)

var rootCmd = &cobra.Command{
	Use:   "compare-games --reference <csv> --candidate <csv>",
	Short: "Compares two processed games CSVs row by row on their id column.",
	RunE: func(cmd *cobra.Command, args []string) error {
		rep, err := compareGames(referencePath, candidatePath, keyColumn)
		if err != nil {
			return fmt.Errorf("compare: %w", err)
		}
		if outputJSON != "" {
			payload, err := json.MarshalIndent(rep, "", "  ")
			if err != nil {
				return err
			}
			if err := os.MkdirAll(filepath.Dir(outputJSON), 0o755); err != nil {
				return err
			}
			if err := os.WriteFile(outputJSON, append(payload, '\n'), 0o644); err != nil {
				return err
			}
			fmt.Printf("Wrote JSON report: %s\n", outputJSON)
		}
		printReport(rep)
		return nil
	},
}

func init() {
	f := rootCmd.Flags()
	f.StringVar(&referencePath, "reference", "outputs/rawg_games_reference.csv", "Reference CSV (ground truth)")
	f.StringVar(&candidatePath, "candidate", "outputs/rawg_games_cleaned.csv", "Candidate CSV to evaluate")
	f.StringVar(&keyColumn, "key", ingest.IDColumn, "Key column present in both files")
	f.StringVar(&outputJSON, "output-json", "", "Optional path to write JSON report")
}

func compareGames(referenceCSV, candidateCSV, key string) (report, error) {
	ref, _, err := ingest.LoadCSV(referenceCSV, 0)
	if err != nil {
		return report{}, err
	}
	cand, _, err := ingest.LoadCSV(candidateCSV, 0)
	if err != nil {
		return report{}, err
	}
	if !ref.Has(key) || !cand.Has(key) {
		return report{}, fmt.Errorf("key column %q missing from one of the inputs", key)
	}

	alignment := alignRowsByKey(ref, cand, key)
	rep := report{
		Status:       "ok",
		Key:          key,
		Reference:    referenceCSV,
		Candidate:    candidateCSV,
		RowAlignment: alignment,
	}
	if !alignment.Complete {
		rep.Status = "partial_key_match"
	}
	if alignment.MatchedRows == 0 {
		rep.Status = "no_key_match"
	}

	total := 0.0
	for _, col := range ref.Columns {
		s := scoreColumn(ref, cand, alignment.Pairs, col)
		total += s.Similarity
		rep.Columns = append(rep.Columns, s)
	}
	for _, col := range cand.Columns {
		if !ref.Has(col) {
			rep.CandidateUnmatched = append(rep.CandidateUnmatched, col)
		}
	}
	rep.DatasetSimilarity = table.SafeDiv(total, float64(len(ref.Columns)))
	rep.OverallScore = rep.DatasetSimilarity * alignment.CoverageReference
	return rep, nil
}

func alignRowsByKey(ref, cand table.Table, key string) rowAlignment {
	refIndex := make(map[string]int, ref.Len())
	dupRef := 0
	for i, row := range ref.Rows {
		k := table.KeyString(row[key])
		if k == "" {
			continue
		}
		if _, exists := refIndex[k]; exists {
			dupRef++
			continue
		}
		refIndex[k] = i
	}
	pairs := make([][2]int, 0, cand.Len())
	seenRef := make(map[int]struct{}, cand.Len())
	unmatched := 0
	for ci, row := range cand.Rows {
		ri, ok := refIndex[table.KeyString(row[key])]
		if !ok {
			unmatched++
			continue
		}
		if _, exists := seenRef[ri]; exists {
			unmatched++
			continue
		}
		seenRef[ri] = struct{}{}
		pairs = append(pairs, [2]int{ri, ci})
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i][0] < pairs[j][0] })
	matched := len(pairs)
	return rowAlignment{
		Complete:               dupRef == 0 && unmatched == 0 && matched == ref.Len() && matched == cand.Len(),
		MatchedRows:            matched,
		ReferenceRows:          ref.Len(),
		CandidateRows:          cand.Len(),
		CoverageReference:      table.SafeDiv(float64(matched), float64(ref.Len())),
		CoverageCandidate:      table.SafeDiv(float64(matched), float64(cand.Len())),
		DuplicateReferenceKeys: dupRef,
		UnmatchedCandidateRows: unmatched,
		Pairs:                  pairs,
	}
}

// scoreColumn is the share of aligned rows whose canonical values agree.
// A column the candidate lacks scores zero.
func scoreColumn(ref, cand table.Table, pairs [][2]int, col string) columnScore {
	s := columnScore{Column: col, InCand: cand.Has(col)}
	if !s.InCand || len(pairs) == 0 {
		s.Mismatches = len(pairs)
		return s
	}
	same := 0
	for _, p := range pairs {
		if table.KeyString(ref.Rows[p[0]][col]) == table.KeyString(cand.Rows[p[1]][col]) {
			same++
		} else {
			s.Mismatches++
		}
	}
	s.Similarity = table.SafeDiv(float64(same), float64(len(pairs)))
	return s
}

func printReport(rep report) {
	t := prettytable.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(prettytable.Row{"column", "similarity", "mismatches"})
	for _, c := range rep.Columns {
		if c.Similarity == 1 {
			continue
		}
		sim := fmt.Sprintf("%.4f", c.Similarity)
		if !c.InCand {
			sim = "missing"
		}
		t.AppendRow(prettytable.Row{c.Column, sim, c.Mismatches})
	}
	t.Render()
	fmt.Printf("Status: %s\n", rep.Status)
	fmt.Printf("Dataset similarity: %.12f\n", rep.DatasetSimilarity)
	fmt.Printf("Coverage (reference/candidate): %.12f / %.12f\n", rep.RowAlignment.CoverageReference, rep.RowAlignment.CoverageCandidate)
	fmt.Printf("Overall score with coverage: %.12f\n", rep.OverallScore)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
