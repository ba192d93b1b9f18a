package formatter

import (
	"bytes"
	"context"
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

	"github.com/nicolasrp432/PlaywrongIa/internal/models"
	"github.com/nicolasrp432/PlaywrongIa/internal/services"
)

// MovieList is a titled listing of movies such as a genre row or a search result.
type MovieList struct {
	// Slug names the files written for the list, e.g. "trending" or "genre_28".
	Slug   string         `json:"slug"`
	Title  string         `json:"title"`
	Movies []models.Movie `json:"movies"`
}

// ExportToCSV converts a MovieList to CSV with columns: ID, Title, Year, Rating, ReleaseDate, Overview
func ExportToCSV(list *MovieList) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Title", "Year", "Rating", "ReleaseDate", "Overview"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, m := range list.Movies {
		record := []string{
			strconv.Itoa(m.ID),
			m.Title,
			ReleaseYear(m.ReleaseDate),
			FormatRating(m.VoteAverage, 1),
			m.ReleaseDate,
			m.Overview,
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

// ExportToMarkdown converts a MovieList to Markdown with an optional cover image
func ExportToMarkdown(list *MovieList, imageFilename string) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", list.Title)

	if imageFilename != "" {
		fmt.Fprintf(&buf, "![Cover](%s)\n\n", imageFilename)
	}

	fmt.Fprintf(&buf, "**Películas**: %d\n\n", len(list.Movies))

	for i, m := range list.Movies {
		year := ReleaseYear(m.ReleaseDate)
		yearPart := ""
		if year != "" {
			yearPart = fmt.Sprintf(" (%s)", year)
		}
		fmt.Fprintf(&buf, "%d. [%s](%s)%s ★ %s\n", i+1, m.Title, MovieHref(m.ID), yearPart, DisplayRating(m.VoteAverage))
		if m.Overview != "" {
			fmt.Fprintf(&buf, "   %s\n", TruncateText(m.Overview, DefaultTruncate))
		}
	}

	return buf.Bytes(), nil
}

// ExportToText converts a MovieList to plain text
func ExportToText(list *MovieList) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "%s\n", list.Title)
	fmt.Fprintf(&buf, "Películas: %d\n\n", len(list.Movies))

	for i, m := range list.Movies {
		year := ReleaseYear(m.ReleaseDate)
		if year == "" {
			year = "----"
		}
		fmt.Fprintf(&buf, "%2d. [%6d] %s  %s  ★ %s\n", i+1, m.ID, year, m.Title, DisplayRating(m.VoteAverage))
	}

	return buf.Bytes(), nil
}

// ExportToJSON serializes the list
func ExportToJSON(list *MovieList) ([]byte, error) {
	return json.MarshalIndent(list, "", "  ")
}

// Export renders list in the named format: csv, markdown (md), text (txt) or json.
func Export(list *MovieList, format string) ([]byte, error) {
	switch strings.ToLower(format) {
	case "csv":
		return ExportToCSV(list)
	case "markdown", "md":
		return ExportToMarkdown(list, "")
	case "text", "txt", "":
		return ExportToText(list)
	case "json":
		return ExportToJSON(list)
	default:
		return nil, fmt.Errorf("unsupported format %q (csv, markdown, text, json)", format)
	}
}

// DownloadImage downloads an image from the given URL and returns the raw bytes
func DownloadImage(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	if url == "" {
		return nil, fmt.Errorf("empty URL provided")
	}

	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := client.Do(req)
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

type listMetadata struct {
	Slug  string `json:"slug"`
	Title string `json:"title"`
	Count int    `json:"count"`
}

// ToMetadataJSON generates a JSON description of the list without its movies
func ToMetadataJSON(list *MovieList) ([]byte, error) {
	return json.MarshalIndent(listMetadata{Slug: list.Slug, Title: list.Title, Count: len(list.Movies)}, "", "  ")
}

// CSVExportResult contains the paths of files created by WriteCSVExport
type CSVExportResult struct {
	MoviesFile   string
	MetadataFile string
}

// WriteCSVExport exports a list to CSV format with an accompanying metadata JSON file.
//
// Defaults to the list slug as the base filename & creates {base}_movies.csv and {base}_metadata.json
func WriteCSVExport(list *MovieList, baseFilepath string) (*CSVExportResult, error) {
	if baseFilepath == "" {
		baseFilepath = list.Slug
	}

	csvData, err := ExportToCSV(list)
	if err != nil {
		return nil, fmt.Errorf("failed to generate CSV: %w", err)
	}

	moviesFile := baseFilepath + "_movies.csv"
	if err := os.WriteFile(moviesFile, csvData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write CSV file: %w", err)
	}

	metadataJSON, err := ToMetadataJSON(list)
	if err != nil {
		return nil, fmt.Errorf("failed to generate metadata JSON: %w", err)
	}

	metadataFile := baseFilepath + "_metadata.json"
	if err := os.WriteFile(metadataFile, metadataJSON, 0644); err != nil {
		return nil, fmt.Errorf("failed to write metadata file: %w", err)
	}

	return &CSVExportResult{
		MoviesFile:   moviesFile,
		MetadataFile: metadataFile,
	}, nil
}

// MarkdownExportResult contains information about files created by WriteMarkdownExport
type MarkdownExportResult struct {
	Directory  string
	Files      []string
	CoverImage string
	// Warning is set when the cover could not be saved; the export itself still succeeded.
	Warning string
}

// CoverURL returns the backdrop of the first movie that has one, in large size.
func CoverURL(list *MovieList) string {
	for _, m := range list.Movies {
		if m.BackdropPath != "" {
			return services.ImageURL(m.BackdropPath, services.ImageSize(services.Backdrop, "large"))
		}
	}
	return ""
}

// WriteMarkdownExport exports a list to Markdown format in a dedicated directory.
//
// Directory name defaults to the list slug.
// imageURL is optional; when set the cover is downloaded next to README.md.
func WriteMarkdownExport(ctx context.Context, list *MovieList, outputDir, imageURL string) (*MarkdownExportResult, error) {
	if outputDir == "" {
		outputDir = list.Slug
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	result := &MarkdownExportResult{
		Directory: outputDir,
		Files:     []string{},
	}

	var coverImageFilename string
	if imageURL != "" {
		imageData, err := DownloadImage(ctx, nil, imageURL)
		if err != nil {
			result.Warning = fmt.Sprintf("failed to download cover image: %v", err)
		} else {
			coverImageFilename = "cover.jpg"
			coverImagePath := filepath.Join(outputDir, coverImageFilename)
			if err := os.WriteFile(coverImagePath, imageData, 0644); err != nil {
				result.Warning = fmt.Sprintf("failed to save cover image: %v", err)
				coverImageFilename = ""
			} else {
				result.CoverImage = coverImagePath
				result.Files = append(result.Files, coverImagePath)
			}
		}
	}

	mdData, err := ExportToMarkdown(list, coverImageFilename)
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

// WriteTextExport exports a list to plain text format.
//
// Defaults to {slug}_movies.txt as the filename.
func WriteTextExport(list *MovieList, path string) (string, error) {
	if path == "" {
		path = list.Slug + "_movies.txt"
	}

	textData, err := ExportToText(list)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	if err := os.WriteFile(path, textData, 0644); err != nil {
		return "", fmt.Errorf("failed to write text file: %w", err)
	}

	return path, nil
}
