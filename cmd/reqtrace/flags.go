package main

import (
	"time"

	"github.com/poiesic/reqtrace/ai"
	"github.com/poiesic/reqtrace/coverage"
	"github.com/poiesic/reqtrace/workbook"
	"github.com/urfave/cli/v2"
)

func inputFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "child",
			Usage:    "Workbook (.xlsx) or CSV file holding the child requirements",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "child-sheet",
			Usage: "Sheet of the child table (default: first sheet)",
		},
		&cli.StringFlag{
			Name:  "parent",
			Usage: "File holding the parent requirements (default: the child file)",
		},
		&cli.StringFlag{
			Name:  "parent-sheet",
			Usage: "Sheet of the parent table (default: first sheet)",
		},
	}
}

func batchFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "child-sheet",
			Usage:    "Sheet of the child table in every workbook",
			Required: true,
		},
		&cli.StringFlag{
			Name:     "parent-sheet",
			Usage:    "Sheet of the parent table in every workbook",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "out-dir",
			Usage: "Directory for trace matrices (default: next to each input)",
		},
		&cli.StringFlag{
			Name:  "suffix",
			Usage: "Appended to the input name to form the output name",
			Value: "_trace",
		},
		&cli.StringFlag{
			Name:  "output-sheet",
			Usage: "Sheet written in each output workbook",
			Value: workbook.DefaultSheetName,
		},
		&cli.IntFlag{
			Name:  "workers",
			Usage: "Number of workbooks processed at once",
			Value: 2,
		},
		&cli.Float64Flag{
			Name:  "threshold",
			Usage: "Minimum best score for a child to count as traced",
			Value: coverage.DefaultThreshold,
		},
	}
}

func mappingFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "child-id", Usage: "Child identifier column", Value: "ID"},
		&cli.StringFlag{Name: "child-text", Usage: "Child requirement text column", Value: "Text"},
		&cli.StringFlag{Name: "parent-id", Usage: "Parent identifier column", Value: "ID"},
		&cli.StringFlag{Name: "parent-text", Usage: "Parent requirement text column", Value: "Text"},
		&cli.StringSliceFlag{Name: "child-extra", Usage: "Child column copied into the output (repeatable)"},
		&cli.StringSliceFlag{Name: "parent-extra", Usage: "Parent column copied into the output (repeatable)"},
	}
}

func matchingFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:  "top-k",
			Usage: "Parents kept per child",
			Value: 3,
		},
		&cli.IntFlag{
			Name:  "ngram-min",
			Usage: "Smallest word n-gram in the TF-IDF space",
			Value: 1,
		},
		&cli.IntFlag{
			Name:  "ngram-max",
			Usage: "Largest word n-gram in the TF-IDF space",
			Value: 3,
		},
		&cli.StringSliceFlag{
			Name:  "stop-phrase",
			Usage: "Phrase removed before scoring (repeatable, replaces the defaults)",
		},
		&cli.BoolFlag{
			Name:  "no-rules",
			Usage: "Disable lexicon rule matching",
		},
		&cli.StringFlag{
			Name:  "lexicon",
			Usage: "JSON lexicon mapping group names to keywords",
			Value: "domain_lexicon.json",
		},
		&cli.IntFlag{
			Name:  "max-features",
			Usage: "Cap the TF-IDF vocabulary (0 = no cap)",
		},
		&cli.BoolFlag{
			Name:  "stem",
			Usage: "Stem words before building TF-IDF n-grams",
		},
	}
}

func backendFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "azure-endpoint",
			Usage:   "Azure OpenAI endpoint",
			EnvVars: []string{"AZURE_OPENAI_ENDPOINT"},
		},
		&cli.StringFlag{
			Name:    "azure-api-key",
			Usage:   "Azure OpenAI API key",
			EnvVars: []string{"AZURE_OPENAI_API_KEY"},
		},
		&cli.StringFlag{
			Name:    "azure-api-version",
			Usage:   "Azure OpenAI API version",
			Value:   ai.DefaultAPIVersion,
			EnvVars: []string{"AZURE_OPENAI_API_VERSION"},
		},
		&cli.StringFlag{
			Name:    "deployment",
			Usage:   "Embedding deployment (Azure) or model name (proxy)",
			Value:   ai.DefaultDeployment,
			EnvVars: []string{"AZURE_OPENAI_EMBEDDING_DEPLOYMENT"},
		},
		&cli.StringFlag{
			Name:    "openai-base-url",
			Usage:   "OpenAI-compatible proxy base URL; takes precedence over Azure",
			EnvVars: []string{"OPENAI_BASE_URL"},
		},
		&cli.StringFlag{
			Name:    "openai-api-key",
			Usage:   "API key for the OpenAI-compatible proxy",
			EnvVars: []string{"OPENAI_API_KEY"},
		},
		&cli.StringFlag{
			Name:    "model-dir",
			Usage:   "Directory of exported local sentence encoders",
			EnvVars: []string{"REQTRACE_MODEL_DIR"},
		},
		&cli.StringFlag{
			Name:    "local-model",
			Usage:   "Local sentence encoder name",
			Value:   ai.DefaultLocalModel,
			EnvVars: []string{"SBERT_MODEL_NAME"},
		},
		&cli.StringFlag{
			Name:    "onnx-library",
			Usage:   "Path to the onnxruntime shared library",
			EnvVars: []string{"ORT_SHARED_LIBRARY"},
		},
	}
}

func outputFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Write the trace matrix to this .xlsx or .csv file",
		},
		&cli.StringFlag{
			Name:  "output-sheet",
			Usage: "Sheet written in the output workbook",
			Value: workbook.DefaultSheetName,
		},
		&cli.Float64Flag{
			Name:  "threshold",
			Usage: "Minimum best score for a child to count as traced",
			Value: coverage.DefaultThreshold,
		},
		&cli.StringSliceFlag{
			Name:  "filter-method",
			Usage: "Only preview rows scored by these methods (Fusion, Embedding, Lexical, NoMatch)",
		},
		&cli.Float64Flag{
			Name:  "min-score",
			Usage: "Only preview rows with at least this fused score",
		},
		&cli.IntFlag{
			Name:  "preview",
			Usage: "Number of rows printed (0 = none, -1 = all)",
			Value: 20,
		},
		&cli.BoolFlag{
			Name:  "fail-on-gaps",
			Usage: "Exit with status 2 when orphan children or childless parents are found",
		},
	}
}

func retryFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:  "max-retries",
			Usage: "Maximum attempts per workbook when the embedding backend fails",
			Value: 3,
		},
		&cli.DurationFlag{
			Name:  "retry-delay",
			Usage: "Base delay for exponential backoff",
			Value: 1 * time.Second,
		},
	}
}

func watchFlags() []cli.Flag {
	return []cli.Flag{
		&cli.DurationFlag{
			Name:  "debounce",
			Usage: "Quiet period after a change before re-running",
			Value: 500 * time.Millisecond,
		},
	}
}
