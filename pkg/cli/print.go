package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/fatih/color"
	"github.com/secmon-lab/tributary/pkg/domain/model"
)

var (
	successColor = color.New(color.FgGreen, color.Bold)
	failureColor = color.New(color.FgRed, color.Bold)
	headerColor  = color.New(color.FgCyan, color.Bold)
	fieldColor   = color.New(color.FgYellow)
)

// printResult renders a sync result for the terminal
func printResult(w io.Writer, name string, result *model.SyncResult) {
	if result.Success {
		successColor.Fprintf(w, "✔ %s synced\n", name)
	} else {
		failureColor.Fprintf(w, "✘ %s failed\n", name)
	}
	fmt.Fprintf(w, "  processed: %d  succeeded: %d  failed: %d\n",
		result.RecordsProcessed, result.RecordsSuccess, result.RecordsFailed)

	for _, id := range result.RecordIDs {
		fmt.Fprintf(w, "  record: %s\n", id)
	}

	if len(result.Changes) > 0 {
		headerColor.Fprintln(w, "Changes")
		for _, change := range result.Changes {
			fieldColor.Fprintf(w, "  %s", change.Field)
			fmt.Fprintf(w, ": %s -> %s\n", formatValue(change.OldValue), formatValue(change.NewValue))
		}
	}

	if len(result.Errors) > 0 {
		headerColor.Fprintln(w, "Errors")
		for _, e := range result.Errors {
			fieldColor.Fprintf(w, "  %s", e.Field)
			fmt.Fprintf(w, ": %s\n", e.Message)
		}
	}
}

// printSchema renders an inferred schema mapping as an aligned table
func printSchema(w io.Writer, mapping *model.SchemaMapping) {
	headerColor.Fprintf(w, "%-32s %-32s %-12s %s\n", "FIELD", "LABEL", "TYPE", "REQUIRED")
	for _, f := range mapping.Fields {
		fmt.Fprintf(w, "%-32s %-32s %-12s %t\n", f.InternalName, f.Name, f.Type, f.Required)
	}

	if len(mapping.Collections) > 0 {
		headerColor.Fprintln(w, "Collections")
		names := make([]string, 0, len(mapping.Collections))
		for name := range mapping.Collections {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(w, "  %s: %d items\n", name, len(mapping.Collections[name]))
		}
	}

	if len(mapping.Relationships) > 0 {
		headerColor.Fprintln(w, "Relationships")
		for _, rel := range mapping.Relationships {
			fmt.Fprintf(w, "  %s -> %s\n", rel.SourceField, rel.TargetEntity)
		}
	}
}

func formatValue(v any) string {
	if v == nil {
		return "(none)"
	}
	if s, ok := v.(string); ok {
		return fmt.Sprintf("%q", s)
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}
