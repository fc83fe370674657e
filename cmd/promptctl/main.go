package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

func main() {
	godotenv.Load()

	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "promptctl",
		Usage: "Generate video prompts and filter tool catalogues from the command line",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "env",
				Usage: "Config environment to load (config/config.<env>.yaml)",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "warn",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "generate",
				Usage:  "Generate a prompt for a video generation model",
				Action: generateCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "purpose",
						Usage:    "What the video is for",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "scene",
						Usage:    "Description of the scene",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "style",
						Usage: "Visual style",
					},
					&cli.StringFlag{
						Name:  "duration",
						Usage: "Length of the video",
					},
					&cli.StringFlag{
						Name:  "extra",
						Usage: "Additional requirements",
					},
					&cli.StringFlag{
						Name:  "lang",
						Usage: "Output language (ja, en)",
						Value: "ja",
					},
					&cli.BoolFlag{
						Name:  "dry-run",
						Usage: "Print the system and user prompts without calling the API",
					},
				},
			},
			{
				Name:   "search",
				Usage:  "Filter a JSON file of tools with combinable conditions",
				Action: searchCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "file",
						Aliases:  []string{"f"},
						Usage:    "Path to a JSON array of tools",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "keyword",
						Aliases: []string{"k"},
						Usage:   "Case-insensitive substring of the tool name",
					},
					&cli.StringFlag{
						Name:  "operator",
						Usage: "How to combine conditions (AND, OR)",
						Value: "AND",
					},
					&cli.StringSliceFlag{
						Name:    "category",
						Aliases: []string{"c"},
						Usage:   "Category to include (repeatable)",
					},
					&cli.Float64Flag{
						Name:  "rating-min",
						Usage: "Lowest rating to include",
					},
					&cli.Float64Flag{
						Name:  "rating-max",
						Usage: "Highest rating to include",
						Value: 5,
					},
					&cli.StringFlag{
						Name:  "from",
						Usage: "Earliest creation date to include (YYYY-MM-DD)",
					},
					&cli.StringFlag{
						Name:  "to",
						Usage: "Latest creation date to include (YYYY-MM-DD)",
					},
				},
			},
		},
		// errors are reported by main
		ExitErrHandler: func(*cli.Context, error) {},
	}
}
