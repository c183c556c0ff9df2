package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/template"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/olivia646/spotify-concerts/internal/concerts"
	"github.com/olivia646/spotify-concerts/internal/config"
)

// findCmd represents the find command
var findCmd = &cobra.Command{
	Use:   "find",
	Short: "List upcoming concerts by your top artists",
	Long: `Read your top Spotify artists and list their upcoming concerts near a city.

By default results are printed as a table. The output can instead be
formatted per concert with a Go template, set with --format or
output_format in ~/.config/spotify-concerts/config.yaml.
Available fields: .Name, .Venue, .RawDate, .FormattedDate, .URL, .ImageURL,
.Artist.Name, .Artist.ImageURL

Exit codes:
  0 - Search finished (even with no concerts)
  1 - Configuration, Spotify or Ticketmaster error`,
	RunE: runFind,
}

func init() {
	rootCmd.AddCommand(findCmd)

	findCmd.Flags().StringP("city", "c", "", "City to search around (overrides config)")
	findCmd.Flags().IntP("max-artists", "n", 0, "Number of top artists to check (overrides config)")
	findCmd.Flags().StringP("format", "f", "", "Output format template (overrides config)")
	findCmd.Flags().Bool("json", false, "Print the full result as JSON")
	findCmd.Flags().IntP("width", "w", 100, "Table width in columns")
}

func runFind(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	logger := newLogger("warn")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if city, _ := cmd.Flags().GetString("city"); city != "" {
		cfg.City = city
	}
	if n, _ := cmd.Flags().GetInt("max-artists"); n > 0 {
		cfg.MaxArtists = n
	}
	if format, _ := cmd.Flags().GetString("format"); format != "" {
		cfg.OutputFormat = format
	}
	if err := cfg.Validate(config.SectionFind); err != nil {
		return err
	}

	p, err := newPipeline(cfg, nil, logger)
	if err != nil {
		return err
	}

	artists, err := p.topArtists(ctx, cfg, logger)
	if err != nil {
		return err
	}
	if len(artists) == 0 {
		fmt.Fprintln(os.Stderr, "No top artists found on your Spotify account.")
		return nil
	}

	fmt.Fprintf(os.Stderr, "Checking %d artists for concerts near %s...\n", min(len(artists), cfg.MaxArtists), cfg.City)

	result, err := p.resolver.Resolve(ctx, artists, cfg.City)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	asJSON, _ := cmd.Flags().GetBool("json")
	switch {
	case asJSON:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	case cfg.OutputFormat != "":
		for _, c := range result.Concerts {
			line, err := formatConcert(c, cfg.OutputFormat)
			if err != nil {
				return fmt.Errorf("failed to format output: %w", err)
			}
			fmt.Fprintln(out, line)
		}
	default:
		width, _ := cmd.Flags().GetInt("width")
		writeTable(out, result.Concerts, width)
	}

	fmt.Fprintln(os.Stderr, summarize(result))
	return nil
}

// formatConcert applies the template to one concert
func formatConcert(c concerts.Concert, templateStr string) (string, error) {
	tmpl, err := template.New("output").Parse(templateStr)
	if err != nil {
		return "", fmt.Errorf("invalid template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, c); err != nil {
		return "", fmt.Errorf("template execution failed: %w", err)
	}

	return buf.String(), nil
}

// tableColumns splits width between date, artist, venue and event name.
func tableColumns(width int) [4]int {
	const gaps = 3 * 2
	date, artist, venue := 24, 20, 22
	name := width - gaps - date - artist - venue
	if name < 12 {
		name = 12
	}
	return [4]int{date, artist, venue, name}
}

func writeTable(w io.Writer, list []concerts.Concert, width int) {
	if len(list) == 0 {
		fmt.Fprintln(w, "No upcoming concerts found.")
		return
	}

	cols := tableColumns(width)
	row := func(cells ...string) {
		parts := make([]string, len(cells))
		for i, cell := range cells {
			parts[i] = padToWidth(cell, cols[i])
		}
		fmt.Fprintln(w, strings.TrimRight(strings.Join(parts, "  "), " "))
	}

	row("DATE", "ARTIST", "VENUE", "EVENT")
	for _, c := range list {
		date := c.FormattedDate
		if date == "" {
			date = "TBA"
		}
		row(date, c.Artist.Name, c.Venue, c.Name)
	}
}

// summarize reports how the checked artists fared.
func summarize(result *concerts.Result) string {
	var fetched, noMatch, limited int
	for _, o := range result.Outcomes {
		switch o.State {
		case concerts.StateFetched:
			fetched++
		case concerts.StateNoMatch:
			noMatch++
		case concerts.StateRateLimited:
			limited++
		}
	}

	s := fmt.Sprintf("%d concerts from %d artists (%d not in catalog", len(result.Concerts), fetched, noMatch)
	if limited > 0 {
		s += fmt.Sprintf(", %d skipped after rate limiting", limited)
	}
	return s + ")"
}

// padToWidth pads or truncates text to a fixed display width.
// Width is measured in display columns, accounting for Unicode characters.
// If width <= 0, returns text unchanged.
// If text is longer than width, truncates with "..." suffix.
func padToWidth(text string, width int) string {
	if width <= 0 {
		return text
	}

	currentWidth := runewidth.StringWidth(text)

	if currentWidth > width {
		ellipsis := "..."
		ellipsisWidth := runewidth.StringWidth(ellipsis)

		if width <= ellipsisWidth {
			return runewidth.Truncate(ellipsis, width, "")
		}

		truncated := runewidth.Truncate(text, width-ellipsisWidth, "")
		result := truncated + ellipsis

		// Wide runes can leave the cut one column short
		if resultWidth := runewidth.StringWidth(result); resultWidth < width {
			return result + strings.Repeat(" ", width-resultWidth)
		}
		return result
	} else if currentWidth < width {
		return text + strings.Repeat(" ", width-currentWidth)
	}

	return text
}
