package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/madelynarsenault/portfolio/internal/writing"
)

var writingFormat string

var writingCmd = &cobra.Command{
	Use:   "writing",
	Short: "Prints the entries of the writing section",
	Long: `The writing command fetches the configured Medium user's posts and prints
the cards the writing section would render, without building the site.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := newBuilder(appConfig, siteData)
		if err != nil {
			return err
		}
		defer b.Close()

		section, err := b.writingSection(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to load Medium posts: %w", err)
		}
		if section == nil {
			fmt.Fprintln(cmd.OutOrStdout(), "writing section disabled: medium.username is not set")
			return nil
		}
		return printSection(cmd.OutOrStdout(), section, writingFormat)
	},
}

func defaultFormat() string {
	if isatty.IsTerminal(os.Stdout.Fd()) {
		return "table"
	}
	return "json"
}

func printSection(w io.Writer, section *writing.Section, format string) error {
	format = strings.TrimSpace(strings.ToLower(format))
	if format == "" {
		format = defaultFormat()
	}

	switch format {
	case "json":
		b, err := json.MarshalIndent(section, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(b))
		return err
	case "table":
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "KIND\tTITLE\tDATE\tURL")
		for _, e := range section.Entries {
			if e.IsOverflow() {
				fmt.Fprintf(tw, "%s\t%d more posts by %s\t\t%s\n", e.Kind, e.More.RemainingCount, e.More.AuthorName, e.More.ProfileURL())
				continue
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.Kind, e.Post.Title, e.Post.Subtitle(), e.Post.TargetURL)
		}
		return tw.Flush()
	default:
		return fmt.Errorf("invalid --format value %q", format)
	}
}

func init() {
	writingCmd.Flags().StringVarP(&writingFormat, "format", "f", "", "output format: table or json (default depends on terminal)")
	rootCmd.AddCommand(writingCmd)
}
