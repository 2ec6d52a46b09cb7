// ABOUTME: Pipeline graph generation with GraphViz
// ABOUTME: One node per stage plus a Won sink, with stage to Won conversion edges
package viz

import (
	"bytes"
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/goccy/go-graphviz"
	"github.com/goccy/go-graphviz/cgraph"
	"github.com/harperreed/sfmcp/analytics"
	"github.com/harperreed/sfmcp/models"
)

type PipelineGraph struct {
	DOT   string
	Nodes int
	Edges int
}

func stageLabel(s analytics.StageStats) string {
	deals := "deals"
	if s.Count == 1 {
		deals = "deal"
	}
	return fmt.Sprintf("%s\n%d %s\n$%s", s.Stage, s.Count, deals, humanize.Commaf(s.Value))
}

// GeneratePipelineGraph renders the stage rollup of opps as DOT. Stages are
// laid out left to right in descending value order; an edge to the Won node
// carries the stage's conversion rate and only exists when the stage converted.
func GeneratePipelineGraph(ctx context.Context, opps []models.Opportunity, title string) (*PipelineGraph, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create graphviz instance: %w", err)
	}
	defer func() {
		if err := gv.Close(); err != nil {
			log.Warn("closing graphviz", "err", err)
		}
	}()

	graph, err := gv.Graph()
	if err != nil {
		return nil, fmt.Errorf("failed to create graph: %w", err)
	}
	defer func() {
		if err := graph.Close(); err != nil {
			log.Warn("closing graph", "err", err)
		}
	}()

	graph.SetRankDir(cgraph.LRRank)
	if title != "" {
		graph.SetLabel(title)
	}

	stages := analytics.AnalyzeStages(opps).Stages
	conversions := map[string]analytics.StageConversion{}
	for _, c := range analytics.ComputeConversionRates(opps).StageConversions {
		conversions[c.Stage] = c
	}

	out := &PipelineGraph{}
	var won *cgraph.Node
	for i, s := range stages {
		node, err := graph.CreateNodeByName(fmt.Sprintf("stage_%d", i))
		if err != nil {
			return nil, fmt.Errorf("failed to create stage node: %w", err)
		}
		node.SetLabel(stageLabel(s))
		node.SetShape("box")
		node.SetStyle("filled")
		node.SetFillColor("lightyellow")
		out.Nodes++

		c, ok := conversions[s.Stage]
		if !ok || c.Converted == 0 {
			continue
		}
		if won == nil {
			won, err = graph.CreateNodeByName("won")
			if err != nil {
				return nil, fmt.Errorf("failed to create won node: %w", err)
			}
			won.SetLabel("Won")
			won.SetShape("doublecircle")
			won.SetStyle("filled")
			won.SetFillColor("lightgreen")
			out.Nodes++
		}
		edge, err := graph.CreateEdgeByName(fmt.Sprintf("converts_%d", i), node, won)
		if err != nil {
			return nil, fmt.Errorf("failed to create conversion edge: %w", err)
		}
		edge.SetLabel(fmt.Sprintf("%d%%", c.ConversionRate))
		out.Edges++
	}

	var buf bytes.Buffer
	if err := gv.Render(ctx, graph, graphviz.XDOT, &buf); err != nil {
		return nil, fmt.Errorf("failed to render graph: %w", err)
	}
	out.DOT = buf.String()
	return out, nil
}
