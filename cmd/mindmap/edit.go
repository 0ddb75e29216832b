package main

import (
	"github.com/spf13/cobra"

	"hackverse-mindmap/internal/canvas"
	"hackverse-mindmap/internal/config"
	"hackverse-mindmap/internal/editor"
	"hackverse-mindmap/internal/layout"
	"hackverse-mindmap/internal/tui"
)

func newEditCommand(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "edit <resource-id>",
		Short: "Open a mind map in the terminal editor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.config()
			if err != nil {
				return err
			}
			dir, err := g.layoutDirection(cfg)
			if err != nil {
				return err
			}
			c, err := g.client(cfg)
			if err != nil {
				return err
			}
			res, err := c.Fetch(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			content, err := res.Mindmap()
			if err != nil {
				return err
			}

			cv := g.editorCanvas(cfg, dir)
			if err := cv.Mount(content); err != nil {
				return err
			}
			session := editor.New(cv, c, res.ID, g.logger())
			return tui.Run(cmd.Context(), session, res.Name)
		},
	}
}

// editorCanvas builds the canvas the terminal editor runs on, reporting
// layouts and cycle warnings through the CLI's logger and collector.
func (g *globals) editorCanvas(cfg *config.Config, dir layout.Direction) *canvas.Canvas {
	return canvas.New(layout.NewLayered(cfg.Layout.Options),
		canvas.WithDirection(dir),
		canvas.WithLogger(g.logger().Named("canvas")),
		canvas.WithMetrics(g.metrics(cfg)),
	)
}
