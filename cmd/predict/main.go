// Command predict labels headlines from the command line or stdin using the
// same artifacts as the service.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"

	"NewsSignal/internal/di"
	"NewsSignal/internal/domain/models"
	"NewsSignal/pkg/config"
)

// analyzer is the part of the pipeline the CLI prints.
type analyzer interface {
	Analyze(headline string) models.Prediction
}

func main() {
	configPath := flag.String("config", "config/config.yaml", "config file path")
	vectorizer := flag.String("vectorizer", "", "override model.vectorizer")
	classifier := flag.String("classifier", "", "override model.classifier")
	flag.Parse()

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}
	if *vectorizer != "" {
		cfg.Model.Vectorizer = *vectorizer
	}
	if *classifier != "" {
		cfg.Model.Classifier = *classifier
	}

	os.Exit(run(cfg, flag.Args(), os.Stdin, os.Stdout, loadPipeline))
}

// loader builds the analyzer and the cleanup releasing its resources.
type loader func(cfg *config.Config) (analyzer, func(), error)

func loadPipeline(cfg *config.Config) (analyzer, func(), error) {
	p, cleanup, err := di.InitializePipeline(cfg)
	if err != nil {
		return nil, nil, err
	}
	return p, cleanup, nil
}

// run returns the process exit code so deferred cleanup always runs first.
func run(cfg *config.Config, args []string, stdin io.Reader, stdout io.Writer, load loader) int {
	pipeline, cleanup, err := load(cfg)
	if err != nil {
		log.Printf("model load failed: %v", err)
		return 1
	}
	defer cleanup()

	headlines := args
	if len(headlines) == 0 {
		headlines = readLines(stdin)
	}
	if render(stdout, pipeline, headlines) == 0 {
		return 1
	}
	return 0
}

func readLines(r io.Reader) []string {
	var out []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		out = append(out, sc.Text())
	}
	return out
}

// render prints one row per non-blank headline and returns the row count.
// Blank headlines get the usual prompt instead of a label.
func render(w io.Writer, a analyzer, headlines []string) int {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Headline", "Stems", "Decision", "Label"})
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)

	rows := 0
	for _, h := range headlines {
		if strings.TrimSpace(h) == "" {
			fmt.Fprintln(w, color.Warn.Render("Please enter a headline"))
			continue
		}
		res := a.Analyze(h)
		table.Append([]string{
			h,
			strings.Join(res.Stems, " "),
			fmt.Sprintf("%.4f", res.Decision),
			labelCell(res.Label),
		})
		rows++
	}
	if rows > 0 {
		table.Render()
	}
	return rows
}

func labelCell(l models.Label) string {
	if l == models.LabelUp {
		return color.Green.Render(l.String())
	}
	return color.Red.Render(l.String())
}
