package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/net/html"

	"github.com/matzehuels/pangolin/pkg/errors"
	"github.com/matzehuels/pangolin/pkg/icon"
)

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		attrs    []string
		prefix   string
		manifest string
	)

	cmd := &cobra.Command{
		Use:   "render <id>",
		Short: "Print the SVG markup of an icon",
		Example: `  pangolin render user
  pangolin render user --attr width=32 --attr stroke=red`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			reg, err := c.loadRegistry(cmd.Context(), cfg, manifest)
			if err != nil {
				return err
			}
			rec, ok := reg.Get(args[0])
			if !ok {
				return errors.New(errors.ErrCodeIconNotFound, "icon %q not found", args[0])
			}

			markup := icon.RenderToText(rec, icon.ParseOptions(attrs), icon.WithPrefix(prefixOr(prefix, cfg.Prefix)))
			_, err = fmt.Fprintln(cmd.OutOrStdout(), markup)
			return err
		},
		ValidArgsFunction: c.completeIconIDs,
	}

	cmd.Flags().StringArrayVarP(&attrs, "attr", "a", nil, "attribute override key=value (repeatable)")
	cmd.Flags().StringVar(&prefix, "prefix", "", "class prefix (default from config)")
	cmd.Flags().StringVar(&manifest, "manifest", "", "icons.json to read (default: <output>/icons.json)")

	return cmd
}

// replaceCommand creates the replace command.
func (c *CLI) replaceCommand() *cobra.Command {
	var (
		output   string
		prefix   string
		manifest string
	)

	cmd := &cobra.Command{
		Use:   "replace <file.html>",
		Short: "Pre-render icon placeholders in an HTML page",
		Long: `Replace swaps every <i pangolin="id"> placeholder in the page for the
rendered SVG. Other attributes on the placeholder are applied to the icon.
Unknown ids are reported and their placeholders left in place.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			reg, err := c.loadRegistry(cmd.Context(), cfg, manifest)
			if err != nil {
				return err
			}

			f, err := os.Open(args[0])
			if err != nil {
				return errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", args[0])
			}
			defer f.Close()

			var out bytes.Buffer
			n, misses, err := replacePage(f, &out, reg, prefixOr(prefix, cfg.Prefix))
			if err != nil {
				return err
			}

			logger := loggerFromContext(cmd.Context())
			for _, miss := range misses {
				logger.Warn("placeholder not replaced", "err", errors.UserMessage(miss))
			}
			logger.Info("replaced placeholders", "count", n, "missed", len(misses))

			if output == "" {
				_, err = cmd.OutOrStdout().Write(out.Bytes())
				return err
			}
			return os.WriteFile(output, out.Bytes(), 0o644)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVar(&prefix, "prefix", "", "placeholder attribute and class prefix (default from config)")
	cmd.Flags().StringVar(&manifest, "manifest", "", "icons.json to read (default: <output>/icons.json)")

	return cmd
}

// replacePage renders every placeholder in the page read from r and writes
// the document to w. Lookup misses are returned, not treated as failures.
func replacePage(r io.Reader, w io.Writer, reg *icon.Registry, prefix string) (int, []error, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return 0, nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse html")
	}

	n, err := reg.ReplaceAll(doc, icon.WithPrefix(prefix))
	var misses []error
	if err != nil {
		if joined, ok := err.(interface{ Unwrap() []error }); ok {
			misses = joined.Unwrap()
		} else {
			misses = []error{err}
		}
	}

	if err := html.Render(w, doc); err != nil {
		return n, misses, fmt.Errorf("render html: %w", err)
	}
	return n, misses, nil
}

// completeIconIDs completes icon ids from the manifest, if one exists.
func (c *CLI) completeIconIDs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	reg, err := c.loadRegistry(cmd.Context(), cfg, "")
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	var ids []string
	for _, rec := range reg.Search(toComplete, icon.SearchOptions{MatchTitle: true}) {
		ids = append(ids, rec.ID)
	}
	return ids, cobra.ShellCompDirectiveNoFileComp
}

func prefixOr(flag, configured string) string {
	if flag != "" {
		return flag
	}
	if configured != "" {
		return configured
	}
	return icon.DefaultPrefix
}
