package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/jonathan/job-tracker/internal/fetch"
	"github.com/jonathan/job-tracker/internal/observability"
	"github.com/jonathan/job-tracker/internal/parsing"
	"github.com/jonathan/job-tracker/internal/schemas"
	"github.com/jonathan/job-tracker/internal/types"
	schemadocs "github.com/jonathan/job-tracker/schemas"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract structured job records from postings",
	Long: `Extract normalizes job postings into job records. Input can be pasted text (--text),
one or more text files (--in, processed concurrently), a posting URL (--url) and/or a
screenshot (--image). Without a model API key the keyword extractor is used.`,
	RunE: runExtract,
}

var (
	extractText        string
	extractInputs      []string
	extractURL         string
	extractImage       string
	extractOutput      string
	extractUseBrowser  bool
	extractConcurrency int
	extractVerbose     bool
)

func init() {
	extractCmd.Flags().StringVarP(&extractText, "text", "t", "", "Posting text")
	extractCmd.Flags().StringSliceVarP(&extractInputs, "in", "i", nil, "Path to a posting text file (repeatable)")
	extractCmd.Flags().StringVar(&extractURL, "url", "", "Posting URL to fetch")
	extractCmd.Flags().StringVar(&extractImage, "image", "", "Path to a posting screenshot")
	extractCmd.Flags().StringVarP(&extractOutput, "out", "o", "", "Write records as JSON to this file instead of printing them")
	extractCmd.Flags().BoolVar(&extractUseBrowser, "use-browser", false, "Render --url with a headless browser (requires Chrome)")
	extractCmd.Flags().IntVar(&extractConcurrency, "concurrency", 4, "Maximum postings extracted at once")
	extractCmd.Flags().BoolVarP(&extractVerbose, "verbose", "v", false, "Print which extraction path produced each record")

	rootCmd.AddCommand(extractCmd)
}

// extractJob is one posting to extract.
type extractJob struct {
	label string
	text  string
	image []byte
	link  string
}

func runExtract(cmd *cobra.Command, _ []string) error {
	if extractConcurrency < 1 {
		return fmt.Errorf("--concurrency must be at least 1")
	}

	ctx := context.Background()
	inputs, err := collectExtractInputs(ctx)
	if err != nil {
		return err
	}
	if len(inputs) == 0 {
		return fmt.Errorf("nothing to extract: provide --text, --in, --url or --image")
	}

	a, err := newApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close()

	results := make([]parsing.Result, len(inputs))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(extractConcurrency)
	for i, in := range inputs {
		g.Go(func() error {
			res := a.extractor.ExtractDetailed(gCtx, in.text, in.image)
			if res.Job.ApplyLink == "" {
				res.Job.ApplyLink = in.link
			}
			if err := validateRecord(res.Job); err != nil {
				return fmt.Errorf("%s: %w", in.label, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if extractOutput != "" {
		return writeRecords(cmd, extractOutput, results)
	}

	printer := observability.NewPrinter(cmd.OutOrStdout())
	for _, res := range results {
		if extractVerbose {
			printer.PrintExtraction(res)
			continue
		}
		printer.PrintJob(res.Job)
	}
	return nil
}

// collectExtractInputs reads every posting named by the flags. A screenshot
// without --text or --url is extracted on its own.
func collectExtractInputs(ctx context.Context) ([]extractJob, error) {
	var image []byte
	if extractImage != "" {
		data, err := os.ReadFile(extractImage)
		if err != nil {
			return nil, fmt.Errorf("failed to read image: %w", err)
		}
		image = data
	}

	var inputs []extractJob
	if strings.TrimSpace(extractText) != "" {
		inputs = append(inputs, extractJob{label: "--text", text: extractText, image: image})
		image = nil
	}
	if extractURL != "" {
		posting, err := fetch.NewFetcher(nil, fetch.WithBrowser).JobPosting(ctx, extractURL, extractUseBrowser)
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, extractJob{label: extractURL, text: posting.Text, image: image, link: extractURL})
		image = nil
	}
	for _, path := range extractInputs {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read input file: %w", err)
		}
		inputs = append(inputs, extractJob{label: path, text: string(data)})
	}
	if image != nil {
		inputs = append(inputs, extractJob{label: extractImage, image: image})
	}
	return inputs, nil
}

func validateRecord(job *types.JobRecord) error {
	doc, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to encode record: %w", err)
	}
	return schemas.ValidateDocument(schemadocs.JobRecord, doc)
}

// writeRecords writes one object for a single result and an array otherwise.
func writeRecords(cmd *cobra.Command, path string, results []parsing.Result) error {
	var payload any
	if len(results) == 1 {
		payload = results[0].Job
	} else {
		jobs := make([]*types.JobRecord, 0, len(results))
		for _, res := range results {
			jobs = append(jobs, res.Job)
		}
		payload = jobs
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Extracted %d record(s)\n", len(results))
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Output: %s\n", path)
	return nil
}
