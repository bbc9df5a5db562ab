package main

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"apiscan/internal/storage"
)

// OutputFormat represents the output format type
type OutputFormat string

const (
	FormatJSON  OutputFormat = "json"
	FormatYAML  OutputFormat = "yaml"
	FormatHuman OutputFormat = "human"
)

// FormatResponse formats a response according to the specified format
func FormatResponse(resp interface{}, format OutputFormat) (string, error) {
	switch format {
	case FormatJSON:
		return formatJSON(resp)
	case FormatYAML:
		return formatYAML(resp)
	case FormatHuman:
		return formatHuman(resp)
	default:
		return "", fmt.Errorf("unsupported format: %s", format)
	}
}

// formatJSON formats the response as JSON
func formatJSON(resp interface{}) (string, error) {
	data, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return string(data), nil
}

// formatYAML formats the response as YAML
func formatYAML(resp interface{}) (string, error) {
	data, err := yaml.Marshal(resp)
	if err != nil {
		return "", fmt.Errorf("failed to marshal YAML: %w", err)
	}
	return strings.TrimSuffix(string(data), "\n"), nil
}

// formatHuman formats the response in human-readable format
func formatHuman(resp interface{}) (string, error) {
	switch v := resp.(type) {
	case *GenerateResponseCLI:
		return formatGenerateHuman(v), nil
	case *SourcesResponseCLI:
		return formatSourcesHuman(v), nil
	case *ModulesResponseCLI:
		return formatModulesHuman(v), nil
	case *HistoryResponseCLI:
		return formatHistoryHuman(v), nil
	case *RunResponseCLI:
		return formatRunHuman(v), nil
	default:
		// For unknown types, fall back to JSON
		return formatJSON(resp)
	}
}

func formatGenerateHuman(resp *GenerateResponseCLI) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Wrote %s\n", resp.Target))
	b.WriteString(fmt.Sprintf("  Sources: %d\n", resp.SourceCount))
	b.WriteString(fmt.Sprintf("  Size: %s\n", formatBytes(resp.Bytes)))
	b.WriteString(fmt.Sprintf("  SHA-256: %s\n", resp.Digest))
	b.WriteString(fmt.Sprintf("  Run: %s (%dms)", resp.RunID, resp.DurationMs))

	return b.String()
}

func formatSourcesHuman(resp *SourcesResponseCLI) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Aggregation order for %s\n", resp.Target))
	b.WriteString(strings.Repeat("=", 60) + "\n")
	if len(resp.Sources) == 0 {
		b.WriteString("(no snapshot files; the aggregate will be empty)")
		return b.String()
	}
	for i, s := range resp.Sources {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(fmt.Sprintf("%3d. %s", i+1, s))
	}
	return b.String()
}

func formatModulesHuman(resp *ModulesResponseCLI) string {
	var b strings.Builder

	title := resp.Project
	if resp.Version != "" {
		title += " " + resp.Version
	}
	b.WriteString(title + "\n")
	b.WriteString(strings.Repeat("=", 60) + "\n")
	b.WriteString(fmt.Sprintf("Modules: %d, scan steps: %d (%d enabled)\n\n",
		resp.Stats.Modules, resp.Stats.ScanSteps, resp.Stats.EnabledSteps))

	for i, m := range resp.Modules {
		if i > 0 {
			b.WriteString("\n")
		}
		status := "-"
		if m.Step != "" {
			status = "✗ " + m.Step + " (disabled)"
			if m.Enabled {
				status = "✓ " + m.Step
			}
		}
		b.WriteString(fmt.Sprintf("%s%s [%s] %s", strings.Repeat("  ", m.Depth), m.Name, m.Path, status))
		for _, out := range m.Outputs {
			b.WriteString(fmt.Sprintf("\n%s    %s", strings.Repeat("  ", m.Depth), out))
		}
	}
	return b.String()
}

func formatHistoryHuman(resp *HistoryResponseCLI) string {
	if len(resp.Runs) == 0 {
		return "No runs recorded."
	}

	var b strings.Builder
	for i, r := range resp.Runs {
		if i > 0 {
			b.WriteString("\n")
		}
		icon := "✓"
		if r.Status != storage.StatusSucceeded {
			icon = "✗"
		}
		b.WriteString(fmt.Sprintf("%s %s  %s  %s  %d sources, %s",
			icon,
			shortID(r.ID),
			r.StartedAt.Local().Format(time.DateTime),
			filepath.Base(r.Target),
			r.SourceCount,
			formatBytes(r.Bytes),
		))
	}
	return b.String()
}

func formatRunHuman(resp *RunResponseCLI) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Run %s\n", resp.ID))
	b.WriteString(strings.Repeat("=", 60) + "\n")
	b.WriteString(fmt.Sprintf("Status: %s\n", resp.Status))
	if resp.Error != "" {
		b.WriteString(fmt.Sprintf("Error: %s\n", resp.Error))
	}
	b.WriteString(fmt.Sprintf("Target: %s\n", resp.Target))
	b.WriteString(fmt.Sprintf("Started: %s (%dms)\n", resp.StartedAt.Local().Format(time.DateTime), resp.DurationMs))
	if resp.Digest != "" {
		archived := ""
		if resp.Archived {
			archived = " (archived)"
		}
		b.WriteString(fmt.Sprintf("Size: %s\n", formatBytes(resp.Bytes)))
		b.WriteString(fmt.Sprintf("SHA-256: %s%s\n", resp.Digest, archived))
	}
	b.WriteString(fmt.Sprintf("\nSources (%d):", len(resp.Sources)))
	for i, s := range resp.Sources {
		b.WriteString(fmt.Sprintf("\n%3d. %s", i+1, s))
	}
	return b.String()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// formatBytes formats byte size in human-readable format
func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

// parseFormat validates a --format flag value.
func parseFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(s)); f {
	case FormatJSON, FormatYAML, FormatHuman:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported format: %s (want human, json or yaml)", s)
	}
}
