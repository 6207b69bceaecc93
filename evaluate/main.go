package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/DeafMist/fake-news-detector/backend/internal/evaluation"
	"github.com/DeafMist/fake-news-detector/backend/internal/explain"
	"github.com/DeafMist/fake-news-detector/backend/internal/logger"
	"github.com/DeafMist/fake-news-detector/backend/internal/model"
	"github.com/DeafMist/fake-news-detector/backend/internal/verify"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	if err := newRootCommand(os.Stdout).ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCommand(out io.Writer) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("EVALUATE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Score the verification model against labeled texts",
		Long: "Runs every sample through the same pipeline as the API and prints accuracy,\n" +
			"precision, recall and F1 for the Fake class. Without --data the built-in\n" +
			"sanity corpus is used.",
		SilenceUsage: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), v, out)
		},
	}

	flags := cmd.Flags()
	flags.StringP("model", "m", "", "model artifact path (empty uses the embedded model)")
	flags.StringP("data", "d", "", "labeled corpus (.csv with text,label columns or .jsonl)")
	flags.Int("min-length", verify.DefaultMinLength, "minimum trimmed text length; shorter samples are skipped")
	flags.Int("top-k", explain.DefaultTopK, "terms quoted per explanation")
	flags.String("format", "text", "output format: text or json")
	flags.Bool("show-misses", true, "list misclassified samples")
	if err := v.BindPFlags(flags); err != nil {
		panic(err)
	}
	return cmd
}

func run(ctx context.Context, v *viper.Viper, out io.Writer) error {
	log := logger.NewWithWriter("evaluate", os.Stderr)

	format := strings.ToLower(v.GetString("format"))
	if format != "text" && format != "json" {
		return fmt.Errorf("unsupported format %q", format)
	}

	m, err := model.Load(v.GetString("model"))
	if err != nil {
		log.Error("load model", slog.Any("err", err))
		return err
	}
	pipeline, err := verify.NewPipeline(m, explain.Options{TopK: v.GetInt("top-k")})
	if err != nil {
		return err
	}
	svc := verify.NewService(pipeline, nil, log, verify.Options{
		MinLength:    v.GetInt("min-length"),
		ModelID:      m.ID,
		ModelVersion: m.Version,
		Source:       "evaluate",
	})

	samples := evaluation.SanityCorpus()
	if path := v.GetString("data"); path != "" {
		samples, err = evaluation.Load(path)
		if err != nil {
			log.Error("load corpus", slog.String("path", path), slog.Any("err", err))
			return err
		}
	}
	log.Info("evaluating",
		slog.String("model_id", m.ID),
		slog.String("version", m.Version),
		slog.Int("samples", len(samples)),
	)

	rep, err := evaluation.Evaluate(ctx, svc, samples)
	if err != nil {
		log.Error("evaluate", slog.Any("err", err))
		return err
	}

	if format == "json" {
		if !v.GetBool("show-misses") {
			rep.Misses = nil
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			ModelID      string  `json:"model_id"`
			ModelVersion string  `json:"model_version"`
			Accuracy     float64 `json:"accuracy"`
			Precision    float64 `json:"precision"`
			Recall       float64 `json:"recall"`
			F1           float64 `json:"f1"`
			evaluation.Report
		}{m.ID, m.Version, rep.Accuracy(), rep.Precision(), rep.Recall(), rep.F1(), rep})
	}

	fmt.Fprintf(out, "model %s %s\n\n", m.ID, m.Version)
	return evaluation.WriteText(out, rep, v.GetBool("show-misses"))
}
