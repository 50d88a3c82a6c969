package main

import (
	"fmt"

	json "github.com/goccy/go-json"
	"github.com/urfave/cli/v2"

	"github.com/ZanzyTHEbar/election-affinity/internal/affinity"
	"github.com/ZanzyTHEbar/election-affinity/internal/content"
)

type validationReport struct {
	Source        string                     `json:"source"`
	Counts        content.Counts             `json:"counts"`
	AxisChampions []string                   `json:"axis_champions"`
	Parties       map[string]affinity.Vector `json:"party_vectors"`
}

func validateCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	dataDir := cfg.Content.DataDir
	if c.IsSet("data-dir") {
		dataDir = c.String("data-dir")
	}

	dataset, err := content.NewStore(dataDir).Load()
	if err != nil {
		return fmt.Errorf("content is invalid: %w", err)
	}

	heuristic := affinity.DefaultHeuristic()
	report := validationReport{
		Source:        contentSource(dataDir),
		Counts:        dataset.Counts(),
		AxisChampions: []string{},
		Parties:       make(map[string]affinity.Vector, len(dataset.Parties)),
	}
	for _, q := range affinity.AxisChampions(dataset.Questions) {
		report.AxisChampions = append(report.AxisChampions, q.ID)
	}
	for _, p := range dataset.Parties {
		report.Parties[p.Slug] = heuristic.PartyVector(p)
	}

	out, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(c.App.Writer, string(out))
	return err
}
