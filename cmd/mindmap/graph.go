package main

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"hackverse-mindmap/internal/config"
	"hackverse-mindmap/internal/domain/mindmap"
	"hackverse-mindmap/internal/domain/resource"
	"hackverse-mindmap/internal/layout"
	"hackverse-mindmap/internal/render"
)

func readContent(cmd *cobra.Command, path string) (mindmap.Content, error) {
	in, err := openInput(cmd, path)
	if err != nil {
		return mindmap.Content{}, err
	}
	defer in.Close()
	raw, err := io.ReadAll(in)
	if err != nil {
		return mindmap.Content{}, fmt.Errorf("failed to read mind map: %w", err)
	}
	return resource.DecodeMindmap(raw)
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func layoutContent(cfg *config.Config, dir layout.Direction, content mindmap.Content) (mindmap.Content, error) {
	nodes, err := layout.NewLayered(cfg.Layout.Options).Layout(content.Nodes, content.Edges, dir)
	if err != nil {
		return mindmap.Content{}, err
	}
	return mindmap.Content{Nodes: nodes, Edges: content.Edges}, nil
}

func newLayoutCommand(g *globals) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "layout [file]",
		Short: "Assign layered positions to a mind map",
		Long: `Reads a mind map ({"nodes": [...], "edges": [...]}) from a file or stdin
and writes it back with every node positioned by the layered layout.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.config()
			if err != nil {
				return err
			}
			dir, err := g.layoutDirection(cfg)
			if err != nil {
				return err
			}
			content, err := readContent(cmd, argOr(args, 0, "-"))
			if err != nil {
				return err
			}
			laid, err := layoutContent(cfg, dir, content)
			if err != nil {
				return err
			}
			out, err := openOutput(cmd, output)
			if err != nil {
				return err
			}
			defer out.Close()
			return writeJSON(out, laid)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "-", "Output file")
	return cmd
}

func newRenderCommand(g *globals) *cobra.Command {
	var (
		output     string
		format     string
		keepLayout bool
	)
	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Render a mind map to SVG or PNG",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.config()
			if err != nil {
				return err
			}
			dir, err := g.layoutDirection(cfg)
			if err != nil {
				return err
			}
			content, err := readContent(cmd, argOr(args, 0, "-"))
			if err != nil {
				return err
			}
			if !keepLayout {
				if content, err = layoutContent(cfg, dir, content); err != nil {
					return err
				}
			}
			if format == "" {
				format = strings.TrimPrefix(strings.ToLower(filepath.Ext(output)), ".")
			}
			opts := render.Options{Layout: cfg.Layout.Options, Direction: dir}

			out, err := openOutput(cmd, output)
			if err != nil {
				return err
			}
			defer out.Close()
			switch format {
			case "png":
				return render.PNG(out, content, opts)
			case "svg", "":
				return render.SVG(out, content, opts)
			default:
				return fmt.Errorf("unsupported format %q", format)
			}
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "-", "Output file; the extension selects the format")
	cmd.Flags().StringVarP(&format, "format", "f", "", "svg or png")
	cmd.Flags().BoolVar(&keepLayout, "keep-positions", false, "Render the stored positions instead of laying out")
	return cmd
}

func argOr(args []string, i int, fallback string) string {
	if i < len(args) {
		return args[i]
	}
	return fallback
}
