// ABOUTME: Visualization CLI commands
// ABOUTME: Renders the opportunity pipeline as a DOT graph or a terminal dashboard
package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/harperreed/sfmcp/handlers"
	"github.com/harperreed/sfmcp/query"
	"github.com/harperreed/sfmcp/salesforce"
	"github.com/harperreed/sfmcp/viz"
)

// VizPipelineCommand renders the pipeline for a timeframe.
func VizPipelineCommand(ctx context.Context, client *salesforce.Client, args []string, out io.Writer, now time.Time) error {
	fs := flag.NewFlagSet("viz pipeline", flag.ContinueOnError)
	timeframe := fs.String("timeframe", string(query.CurrentQuarter), "current_quarter, last_quarter, current_year, last_year or all_time")
	industry := fs.String("industry", "", "Restrict to one account industry")
	owner := fs.String("owner", "", "Restrict to one owner name")
	format := fs.String("format", "dashboard", "Output format: dashboard or dot")
	output := fs.String("output", "", "Output file (default: stdout)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	filters := query.InsightFilters{
		Timeframe: query.Timeframe(*timeframe),
		Industry:  *industry,
		Owner:     *owner,
	}
	opps, err := handlers.LoadPipeline(ctx, client, filters, now)
	if err != nil {
		return err
	}

	switch *format {
	case "dashboard":
		return writeOutput(out, *output, viz.NewDashboard(opps, now).Render())
	case "dot":
		graph, err := viz.GeneratePipelineGraph(ctx, opps, fmt.Sprintf("Pipeline (%s)", *timeframe))
		if err != nil {
			return fmt.Errorf("failed to generate graph: %w", err)
		}
		return writeOutput(out, *output, graph.DOT)
	}
	return fmt.Errorf("unknown format %q: want dashboard or dot", *format)
}
