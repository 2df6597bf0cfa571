package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/bluesky-social/mergetree/internal/mergetree/input"
	"github.com/bluesky-social/mergetree/internal/mergetree/render"
	"github.com/bluesky-social/mergetree/mergesort"

	"github.com/tidwall/pretty"
	"github.com/urfave/cli/v2"
)

func runSort(cctx *cli.Context) error {
	if cctx.Args().Len() > 1 {
		return fmt.Errorf("expected a single comma-separated argument (quote lists containing spaces)")
	}
	numbers, err := sortInput(cctx.Args().First(), cctx.Int("random"), cctx.Int("max-values"))
	if err != nil {
		return err
	}

	tree := mergesort.Visualize(numbers)

	if cctx.Bool("json") {
		b, err := json.Marshal(tree)
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(pretty.Pretty(b))
		return err
	}

	fmt.Print(render.Text(tree))
	fmt.Printf("sorted: %s (%d calls, depth %d)\n", input.Format(tree.Result), mergesort.Count(tree), mergesort.Depth(tree))
	return nil
}

// sortInput parses raw, or generates random values when random is positive. Both paths are bound by maxValues, where zero selects the default limit and a negative value disables it.
func sortInput(raw string, random, maxValues int) ([]float64, error) {
	switch {
	case maxValues == 0:
		maxValues = input.DefaultMaxValues
	case maxValues < 0:
		maxValues = 0
	}

	if random > 0 {
		if maxValues > 0 && random > maxValues {
			return nil, fmt.Errorf("%w: requested %d random values, limit is %d", input.ErrTooManyValues, random, maxValues)
		}
		return input.Random(random), nil
	}
	return input.Parse(raw, maxValues)
}
