package main

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/starford/beidekit/internal"
	"github.com/starford/beidekit/internal/beide"
	"github.com/starford/beidekit/internal/models"
	"github.com/starford/beidekit/internal/render"
	"github.com/starford/beidekit/internal/storage"
)

func dumpCommand() *cli.Command {
	return &cli.Command{
		Name:      "dump",
		Usage:     "Parse one project file and print it",
		ArgsUsage: "<file>",
		Action:    dump,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: " + strings.Join(render.Formats, ", "),
				Value:   render.FormatTable,
			},
			&cli.StringFlag{
				Name:  "byte-order",
				Usage: "auto, big or little",
				Value: internal.ByteOrderAuto,
			},
			&cli.StringFlag{
				Name:    "out",
				Aliases: []string{"o"},
				Usage:   "Write the output to a file instead of stdout",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Log skipped records to stderr",
			},
		},
	}
}

func dump(_ context.Context, cmd *cli.Command) error {
	path := cmd.Args().First()
	if path == "" {
		return fmt.Errorf("dump: a project file is required")
	}

	order, err := internal.ParseByteOrder(cmd.String("byte-order"))
	if err != nil {
		return fmt.Errorf("dump: %w", err)
	}

	level := slog.LevelWarn
	if cmd.Bool("verbose") {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	opts := []beide.Option{beide.WithLogger(logger)}
	if order != nil {
		opts = append(opts, beide.WithByteOrder(order))
	}

	p, err := beide.Open(path, opts...)
	if err != nil {
		return fmt.Errorf("dump: %w", err)
	}

	var buf bytes.Buffer
	if err := render.Render(&buf, cmd.String("format"), models.Describe(path, p)); err != nil {
		return fmt.Errorf("dump: %w", err)
	}

	out := cmd.String("out")
	if out == "" {
		_, err := os.Stdout.Write(buf.Bytes())
		return err
	}

	abs, err := filepath.Abs(out)
	if err != nil {
		return fmt.Errorf("dump: %w", err)
	}
	dir := filepath.Dir(abs)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("dump: %w", err)
	}
	fs, err := storage.NewFS(dir, "")
	if err != nil {
		return fmt.Errorf("dump: %w", err)
	}
	if err := fs.Write(filepath.Base(abs), buf.Bytes()); err != nil {
		return fmt.Errorf("dump: %w", err)
	}
	logger.Info("dump written", slog.String("path", abs))
	return nil
}
