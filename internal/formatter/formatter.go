// package formatter renders tracked shows as cards and exports the collection to CSV, Markdown, plain text and JSON
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/tvtrack/internal/models"
	"github.com/desertthunder/tvtrack/internal/services"
	"github.com/desertthunder/tvtrack/internal/shared"
	"github.com/desertthunder/tvtrack/internal/shows"
)

// Format is an export format.
type Format string

const (
	CSV      Format = "csv"
	Markdown Format = "md"
	Text     Format = "txt"
	JSON     Format = "json"
)

// Formats lists every supported [Format].
var Formats = []Format{CSV, Markdown, Text, JSON}

// ParseFormat parses an export format name. "markdown" and "text" are accepted as aliases.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "csv":
		return CSV, nil
	case "md", "markdown":
		return Markdown, nil
	case "txt", "text":
		return Text, nil
	case "json", "":
		return JSON, nil
	default:
		return "", fmt.Errorf("%w: unsupported format %q (want csv, md, txt or json)", shared.ErrInvalidArgument, s)
	}
}

// Genres joins genres for display, "N/A" when there are none.
func Genres(genres []string) string {
	if len(genres) == 0 {
		return models.NotAvailable
	}
	return strings.Join(genres, ", ")
}

// Seasons renders a season count, singular for one.
func Seasons(n int) string {
	if n == 1 {
		return "1 season"
	}
	return fmt.Sprintf("%d seasons", n)
}

// Meta renders the "premiered | N seasons" line of a show card.
func Meta(show models.TrackedShow) string {
	premiered := string(show.Premiered)
	if premiered == "" {
		premiered = models.NotAvailable
	}
	return fmt.Sprintf("%s | %s", premiered, Seasons(show.SeasonCount))
}

// NextEpisode renders the next episode with its airdate and countdown, or "" when there is none.
func NextEpisode(show models.TrackedShow, now time.Time) string {
	ep := show.NextEpisode
	if ep == nil {
		return ""
	}

	switch countdown := shows.Countdown(ep.Airdate, now); countdown {
	case "":
		return fmt.Sprintf("%s (%s)", ep.Name, ep.Airdate)
	case "Today":
		return fmt.Sprintf("%s (%s), today", ep.Name, ep.Airdate)
	default:
		return fmt.Sprintf("%s (%s), in %s", ep.Name, ep.Airdate, countdown)
	}
}

// Card renders a show the way the list screen shows it, one field per line.
func Card(show models.TrackedShow, now time.Time) string {
	var buf strings.Builder

	check := " "
	if show.Watched {
		check = "x"
	}
	fmt.Fprintf(&buf, "[%s] %s (#%d)\n", check, show.Title, show.ID)
	fmt.Fprintf(&buf, "    Rating: %s\n", show.Rating)
	fmt.Fprintf(&buf, "    Genres: %s\n", Genres(show.Genres))
	fmt.Fprintf(&buf, "    %s\n", Meta(show))
	if show.Status != "" {
		fmt.Fprintf(&buf, "    Status: %s\n", show.Status)
	}
	if next := NextEpisode(show, now); next != "" {
		fmt.Fprintf(&buf, "    Next: %s\n", next)
	}
	if show.Site != "" {
		fmt.Fprintf(&buf, "    Site: %s\n", show.Site)
	}
	if show.Notes != "" {
		fmt.Fprintf(&buf, "    Notes: %s\n", show.Notes)
	}
	return buf.String()
}

// ExportToCSV converts the collection to CSV with one row per show.
func ExportToCSV(tracked []models.TrackedShow) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Title", "Rating", "Genres", "Status", "Premiered", "Seasons", "Next Episode", "Next Airdate", "Watched", "Notes", "Site"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, show := range tracked {
		var nextName, nextDate string
		if show.NextEpisode != nil {
			nextName, nextDate = show.NextEpisode.Name, show.NextEpisode.Airdate
		}

		record := []string{
			strconv.Itoa(show.ID),
			show.Title,
			show.Rating.String(),
			strings.Join(show.Genres, "|"),
			show.Status,
			string(show.Premiered),
			strconv.Itoa(show.SeasonCount),
			nextName,
			nextDate,
			strconv.FormatBool(show.Watched),
			show.Notes,
			show.Site,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts the collection to Markdown. posters maps show ids to local poster files.
func ExportToMarkdown(tracked []models.TrackedShow, posters map[int]string, now time.Time) ([]byte, error) {
	var buf bytes.Buffer

	watched := 0
	for _, show := range tracked {
		if show.Watched {
			watched++
		}
	}

	buf.WriteString("# My Shows\n\n")
	buf.WriteString(fmt.Sprintf("**Shows**: %d\n", len(tracked)))
	buf.WriteString(fmt.Sprintf("**Watched**: %d\n\n", watched))

	for _, show := range tracked {
		check := " "
		if show.Watched {
			check = "x"
		}
		buf.WriteString(fmt.Sprintf("## [%s] %s\n\n", check, show.Title))

		if poster, ok := posters[show.ID]; ok {
			buf.WriteString(fmt.Sprintf("![%s](%s)\n\n", show.Title, poster))
		}

		buf.WriteString(fmt.Sprintf("- **Rating**: %s\n", show.Rating))
		buf.WriteString(fmt.Sprintf("- **Genres**: %s\n", Genres(show.Genres)))
		buf.WriteString(fmt.Sprintf("- **Premiered**: %s\n", Meta(show)))
		if show.Status != "" {
			buf.WriteString(fmt.Sprintf("- **Status**: %s\n", show.Status))
		}
		if next := NextEpisode(show, now); next != "" {
			buf.WriteString(fmt.Sprintf("- **Next episode**: %s\n", next))
		}
		if show.Site != "" {
			buf.WriteString(fmt.Sprintf("- **Site**: <%s>\n", show.Site))
		}
		if summary := services.PlainSummary(show.Summary); summary != "" {
			buf.WriteString("\n" + summary + "\n")
		}
		if show.Notes != "" {
			buf.WriteString(fmt.Sprintf("\n> %s\n", strings.ReplaceAll(show.Notes, "\n", "\n> ")))
		}
		buf.WriteString("\n")
	}

	return buf.Bytes(), nil
}

// ExportToText converts the collection to plain text, one card per show.
func ExportToText(tracked []models.TrackedShow, now time.Time) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Shows: %d\n\n", len(tracked)))
	for _, show := range tracked {
		buf.WriteString(Card(show, now))
		buf.WriteString("\n")
	}

	return buf.Bytes(), nil
}

// ExportToJSON converts the collection to the same JSON document the remote store holds.
func ExportToJSON(tracked []models.TrackedShow) ([]byte, error) {
	if tracked == nil {
		tracked = []models.TrackedShow{}
	}
	data, err := json.MarshalIndent(map[string]any{"shows": tracked}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal shows: %w", err)
	}
	return append(data, '\n'), nil
}

// Export renders tracked in format.
func Export(format Format, tracked []models.TrackedShow, now time.Time) ([]byte, error) {
	switch format {
	case CSV:
		return ExportToCSV(tracked)
	case Markdown:
		return ExportToMarkdown(tracked, nil, now)
	case Text:
		return ExportToText(tracked, now)
	case JSON:
		return ExportToJSON(tracked)
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
}

// DownloadImage downloads an image from the given URL and returns the raw bytes
func DownloadImage(url string) ([]byte, error) {
	if url == "" {
		return nil, fmt.Errorf("empty URL provided")
	}

	client := &http.Client{
		Timeout: 30 * time.Second,
	}

	resp, err := client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download image: status %d", resp.StatusCode)
	}

	imageData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}

	return imageData, nil
}

// WriteExport writes tracked in format to path.
func WriteExport(format Format, tracked []models.TrackedShow, path string, now time.Time) error {
	data, err := Export(format, tracked, now)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// MarkdownExportResult contains information about files created by WriteMarkdownExport
type MarkdownExportResult struct {
	Directory string
	Files     []string
	Posters   int
}

// WriteMarkdownExport exports the collection to {dir}/README.md with posters in {dir}/posters.
//
// Poster downloads are best effort; failures are reported on stderr and the card is written without one.
func WriteMarkdownExport(tracked []models.TrackedShow, outputDir string, withPosters bool, now time.Time) (*MarkdownExportResult, error) {
	if outputDir == "" {
		outputDir = fmt.Sprintf("tvtrack_export_%d", now.Unix())
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	result := &MarkdownExportResult{Directory: outputDir, Files: []string{}}
	posters := map[int]string{}

	if withPosters {
		posterDir := filepath.Join(outputDir, "posters")
		if err := os.MkdirAll(posterDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create poster directory: %w", err)
		}

		for _, show := range tracked {
			if show.Image == "" {
				continue
			}
			imageData, err := DownloadImage(show.Image)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to download poster for %s: %v\n", show.Title, err)
				continue
			}

			name := fmt.Sprintf("%d.jpg", show.ID)
			if err := os.WriteFile(filepath.Join(posterDir, name), imageData, 0644); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to save poster for %s: %v\n", show.Title, err)
				continue
			}
			posters[show.ID] = "posters/" + name
			result.Files = append(result.Files, filepath.Join(posterDir, name))
			result.Posters++
		}
	}

	mdData, err := ExportToMarkdown(tracked, posters, now)
	if err != nil {
		return nil, fmt.Errorf("failed to generate Markdown: %w", err)
	}

	mdFile := filepath.Join(outputDir, "README.md")
	if err := os.WriteFile(mdFile, mdData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write Markdown file: %w", err)
	}

	result.Files = append(result.Files, mdFile)
	return result, nil
}
