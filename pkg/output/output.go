package output

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/fatih/color"
	jsoniter "github.com/json-iterator/go"

	"github.com/zfogg/pageshare/pkg/config"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// out is where every printer writes. Tests swap it with SetWriter.
var out io.Writer = color.Output

// SetWriter redirects output and returns a func restoring the previous writer.
func SetWriter(w io.Writer) func() {
	prev := out
	out = w
	return func() { out = prev }
}

// OutputFormat represents the output format type
type OutputFormat string

const (
	FormatJSON  OutputFormat = "json"
	FormatTable OutputFormat = "table"
	FormatText  OutputFormat = "text"
)

// GetOutputFormat returns the configured output format
func GetOutputFormat() OutputFormat {
	switch config.GetString("output.format") {
	case "json":
		return FormatJSON
	case "table":
		return FormatTable
	default:
		return FormatText
	}
}

// ValidateOutputFormat checks if format is valid
func ValidateOutputFormat(format string) bool {
	return format == "json" || format == "table" || format == "text"
}

// Print outputs data in the configured format with optional title
func Print(title string, data interface{}) error {
	if GetOutputFormat() == FormatJSON {
		return printJSON(data)
	}
	return printText(title, data)
}

// PrintTable outputs rows as a table in table and text formats, and items as JSON in json format.
func PrintTable(title string, items interface{}, headers []string, rows [][]string) error {
	switch GetOutputFormat() {
	case FormatJSON:
		return printJSON(items)
	case FormatTable:
		printTable(headers, rows)
		return nil
	default:
		if title != "" {
			color.New(color.Bold).Fprintf(out, "%s (%d)\n", title, len(rows))
		}
		if len(rows) == 0 {
			fmt.Fprintln(out, "  (none)")
			return nil
		}
		printTable(headers, rows)
		return nil
	}
}

// PrintRecord outputs ordered key/value pairs in the configured format
func PrintRecord(title string, fields []Field) error {
	switch GetOutputFormat() {
	case FormatJSON:
		record := make(map[string]interface{}, len(fields))
		for _, f := range fields {
			record[f.Key] = f.Value
		}
		return printJSON(record)
	case FormatTable:
		rows := make([][]string, 0, len(fields))
		for _, f := range fields {
			rows = append(rows, []string{f.Key, fmt.Sprintf("%v", f.Value)})
		}
		printTable([]string{"Field", "Value"}, rows)
		return nil
	default:
		if title != "" {
			fmt.Fprintf(out, "%s:\n", title)
		}
		bold := color.New(color.Bold)
		for _, f := range fields {
			bold.Fprint(out, "  "+f.Key+": ")
			fmt.Fprintf(out, "%v\n", f.Value)
		}
		return nil
	}
}

// Field is one line of PrintRecord output.
type Field struct {
	Key   string
	Value interface{}
}

// PrintSuccess prints a success message
func PrintSuccess(msg string, args ...interface{}) {
	if GetOutputFormat() == FormatJSON {
		return
	}
	color.New(color.FgGreen).Fprintf(out, msg+"\n", args...)
}

// PrintInfo prints an info message
func PrintInfo(msg string, args ...interface{}) {
	if GetOutputFormat() == FormatJSON {
		return
	}
	color.New(color.FgCyan).Fprintf(out, msg+"\n", args...)
}

// PrintWarning prints a warning message
func PrintWarning(msg string, args ...interface{}) {
	color.New(color.FgYellow).Fprintf(out, "Warning: "+msg+"\n", args...)
}

func printJSON(data interface{}) error {
	encoded, err := FormatAsPrettyJSON(data)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, encoded)
	return nil
}

func printText(title string, data interface{}) error {
	if title != "" {
		fmt.Fprintf(out, "%s:\n", title)
	}
	encoded, err := FormatAsPrettyJSON(data)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, encoded)
	return nil
}

func printTable(headers []string, rows [][]string) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	bold := color.New(color.Bold)

	for i, h := range headers {
		bold.Fprint(w, h)
		if i < len(headers)-1 {
			fmt.Fprint(w, "\t")
		}
	}
	fmt.Fprintln(w)

	for _, row := range rows {
		for i, cell := range row {
			fmt.Fprint(w, cell)
			if i < len(row)-1 {
				fmt.Fprint(w, "\t")
			}
		}
		fmt.Fprintln(w)
	}

	w.Flush()
}

// FormatAsPrettyJSON converts data to an indented JSON string
func FormatAsPrettyJSON(data interface{}) (string, error) {
	encoded, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", err
	}
	return string(encoded), nil
}
