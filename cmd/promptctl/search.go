package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/meghashyamc/toolshelf/search"
	"github.com/meghashyamc/toolshelf/services/catalog"
	"github.com/urfave/cli/v2"
)

const dateLayout = "2006-01-02"

func searchCommand(c *cli.Context) error {
	data, err := os.ReadFile(c.String("file"))
	if err != nil {
		return fmt.Errorf("failed to read tools file: %w", err)
	}

	var tools []catalog.Tool
	if err := json.Unmarshal(data, &tools); err != nil {
		return fmt.Errorf("failed to parse tools file: %w", err)
	}

	cond, err := conditionFromFlags(c)
	if err != nil {
		return cli.Exit(err.Error(), 2)
	}

	matches := search.AdvancedSearch(cond, tools)
	for _, tool := range matches {
		fmt.Fprintf(c.App.Writer, "%s\t%s\t%s\t%.1f\n", tool.ID, tool.ToolName, tool.Category, tool.Rating)
	}
	fmt.Fprintf(c.App.Writer, "%d result(s)\n", search.ResultCount(matches))

	return nil
}

func conditionFromFlags(c *cli.Context) (search.Condition, error) {
	cond := search.Condition{
		Keyword:    c.String("keyword"),
		Operator:   search.Operator(strings.ToUpper(c.String("operator"))),
		Categories: c.StringSlice("category"),
	}
	if !cond.Operator.IsValid() {
		return cond, fmt.Errorf("unsupported operator %q", c.String("operator"))
	}

	if c.IsSet("rating-min") || c.IsSet("rating-max") {
		cond.Rating = &search.RatingRange{Min: c.Float64("rating-min"), Max: c.Float64("rating-max")}
	}

	if c.IsSet("from") || c.IsSet("to") {
		dates := &search.DateRange{End: time.Date(9999, time.December, 31, 0, 0, 0, 0, time.UTC)}
		if c.IsSet("from") {
			start, err := time.Parse(dateLayout, c.String("from"))
			if err != nil {
				return cond, fmt.Errorf("invalid --from date: %w", err)
			}
			dates.Start = start
		}
		if c.IsSet("to") {
			end, err := time.Parse(dateLayout, c.String("to"))
			if err != nil {
				return cond, fmt.Errorf("invalid --to date: %w", err)
			}
			// inclusive of the whole day
			dates.End = end.Add(24*time.Hour - time.Nanosecond)
		}
		cond.Dates = dates
	}

	return cond, nil
}
