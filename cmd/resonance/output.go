package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/ewilliams-labs/resonance/internal/core/domain"
)

const (
	formatTable = "table"
	formatJSON  = "json"
	formatYAML  = "yaml"
)

func isOutputFormat(format string) bool {
	switch format {
	case formatTable, formatJSON, formatYAML:
		return true
	}
	return false
}

func renderResults(w io.Writer, format string, results []domain.SeedResult) error {
	if results == nil {
		results = []domain.SeedResult{}
	}
	switch format {
	case formatJSON:
		return writeJSON(w, results)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(results); err != nil {
			return err
		}
		return enc.Close()
	default:
		return renderTable(w, results)
	}
}

func renderTable(w io.Writer, results []domain.SeedResult) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for i, r := range results {
		if i > 0 {
			fmt.Fprintln(tw)
		}
		fmt.Fprintf(tw, "Seed: %s - %s (%s)\n", r.Seed.Name, r.Seed.Artist, r.Seed.ID)
		if len(r.Recommendations) == 0 {
			fmt.Fprintln(tw, "  no recommendations")
			continue
		}
		fmt.Fprintln(tw, "RANK\tID\tNAME\tARTIST\tSIMILARITY")
		for rank, rec := range r.Recommendations {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%.3f\n", rank+1, rec.ID, rec.Name, rec.Artist, rec.Similarity)
		}
	}
	return tw.Flush()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
