package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"hackverse-mindmap/internal/client"
	"hackverse-mindmap/internal/domain/mindmap"
)

func newGenerateCommand(g *globals) *cobra.Command {
	var (
		prompt  string
		enhance string
		save    bool
		output  string
	)
	cmd := &cobra.Command{
		Use:   "generate <resource-id>",
		Short: "Generate a mind map from a prompt",
		Long: `Asks the resource service to generate a mind map for the prompt. With
--enhance the given mind map is sent along and the service returns an
extended version of it. The result replaces the input entirely.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.config()
			if err != nil {
				return err
			}
			c, err := g.client(cfg)
			if err != nil {
				return err
			}
			req := client.GenerateRequest{ResourceID: args[0], Prompt: prompt}
			if enhance != "" {
				existing, err := readContent(cmd, enhance)
				if err != nil {
					return err
				}
				req.Existing = &existing
			}
			content, err := c.Generate(cmd.Context(), req)
			if err != nil {
				return err
			}
			if save {
				if _, err := c.Save(cmd.Context(), args[0], content); err != nil {
					return err
				}
				good.Fprintf(cmd.ErrOrStderr(), "Saved %d nodes to %s\n", len(content.Nodes), args[0])
			}
			out, err := openOutput(cmd, output)
			if err != nil {
				return err
			}
			defer out.Close()
			return writeJSON(out, content)
		},
	}
	cmd.Flags().StringVarP(&prompt, "prompt", "p", "", "Topic or prompt")
	cmd.Flags().StringVar(&enhance, "enhance", "", "Mind map file to enhance")
	cmd.Flags().BoolVar(&save, "save", false, "Save the result to the resource")
	cmd.Flags().StringVarP(&output, "output", "o", "-", "Output file")
	return cmd
}

func newFetchCommand(g *globals) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "fetch <resource-id>",
		Short: "Print a stored resource",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.config()
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
			out, err := openOutput(cmd, output)
			if err != nil {
				return err
			}
			defer out.Close()
			return writeJSON(out, res)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "-", "Output file")
	return cmd
}

func newListCommand(g *globals) *cobra.Command {
	var classID string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the user's resources",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := g.config()
			if err != nil {
				return err
			}
			c, err := g.client(cfg)
			if err != nil {
				return err
			}
			list, err := c.List(cmd.Context(), classID)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if len(list) == 0 {
				subtle.Fprintln(w, "No resources")
				return nil
			}
			for _, r := range list {
				fmt.Fprintf(w, "%s  %-8s  %s  %s\n", brand.Sprint(r.ID), r.Type, r.Name,
					subtle.Sprint(r.UpdatedAt.Format("2006-01-02 15:04")))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&classID, "class", "", "Only resources of this class")
	return cmd
}

func newSaveCommand(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "save <resource-id> [file]",
		Short: "Replace a mind map resource's content",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.config()
			if err != nil {
				return err
			}
			content, err := readContent(cmd, argOr(args, 1, "-"))
			if err != nil {
				return err
			}
			c, err := g.client(cfg)
			if err != nil {
				return err
			}
			saved, err := c.Save(cmd.Context(), args[0], content)
			if err != nil {
				return err
			}
			good.Fprintf(cmd.OutOrStdout(), "Saved %s (%s)\n", saved.Name, summary(content))
			return nil
		},
	}
}

func summary(c mindmap.Content) string {
	return fmt.Sprintf("%d nodes, %d edges", len(c.Nodes), len(c.Edges))
}
