package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"tuneforge-backend/cmd"
	"tuneforge-backend/internal/document"
	"tuneforge-backend/internal/finetune"
	"tuneforge-backend/internal/pipeline"
	"tuneforge-backend/internal/summarize"

	"github.com/tmc/langchaingo/textsplitter"
)

// Runs the full tuning pipeline against a local PDF, without the HTTP layer.
func run() error {
	var (
		filePath   string
		baseModel  string
		systemRole string
		maxTokens  int
		minTokens  int
		inputLimit int
		workers    int
		maxWait    time.Duration
	)

	flag.StringVar(&filePath, "file", "", "path to the PDF to train on")
	flag.StringVar(&baseModel, "model", "gpt-4o-mini", "base model identifier to fine-tune")
	flag.StringVar(&systemRole, "role", "", "system role label for the training records")
	flag.IntVar(&maxTokens, "max-tokens", summarize.DefaultMaxTokens, "maximum summary length in tokens")
	flag.IntVar(&minTokens, "min-tokens", summarize.DefaultMinTokens, "minimum summary length in tokens")
	flag.IntVar(&inputLimit, "input-limit", 3000, "token limit above which paragraphs are chunked")
	flag.IntVar(&workers, "workers", 1, "concurrent summarization calls")
	flag.DurationVar(&maxWait, "max-wait", 2*time.Hour, "how long to wait for the fine-tuning job")
	cmd.LoadEnvFile()

	if filePath == "" {
		return fmt.Errorf("-file is required")
	}
	if systemRole == "" {
		return fmt.Errorf("-role is required")
	}

	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("opening document: %w", err)
	}
	defer file.Close()

	counter, err := summarize.NewTokenCounter(baseModel)
	if err != nil {
		return fmt.Errorf("loading token encoding: %w", err)
	}
	splitter := textsplitter.NewTokenSplitter(
		textsplitter.WithChunkSize(inputLimit),
		textsplitter.WithChunkOverlap(0),
	)

	summarizer := summarize.New(
		summarize.NewOpenAI(baseModel),
		summarize.WithBounds(summarize.Bounds{MaxTokens: maxTokens, MinTokens: minTokens}),
		summarize.WithInputLimit(inputLimit, counter, splitter),
		summarize.WithWorkers(workers),
	)

	poll := finetune.DefaultPollConfig()
	poll.MaxWait = maxWait
	orchestrator := finetune.NewOrchestrator(finetune.NewOpenAIService(), poll)

	pipe := pipeline.New(document.ExtractTextFile, summarizer, orchestrator)

	// Ctrl-C aborts local polling and cancels the remote job.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	start := time.Now()
	res, err := pipe.Run(ctx, pipeline.Request{
		Document:  file,
		Filename:  filepath.Base(filePath),
		BaseModel: baseModel,
		RoleLabel: systemRole,
	})
	if err != nil {
		return fmt.Errorf("pipeline failed (%s): %w", pipeline.Categorize(err), err)
	}

	fmt.Printf("Fine-tuning finished in %v\n", time.Since(start))
	fmt.Printf("  Records: %d\n", res.Records)
	fmt.Printf("  Job ID:  %s\n", res.JobID)
	fmt.Printf("  Model:   %s\n", res.ModelID)
	return nil
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
