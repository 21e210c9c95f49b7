package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Output formats
const (
	FormatTable = "table"
	FormatJSON  = "json"
)

// JSON writes data as JSON to stdout
func JSON(data interface{}) error {
	return JSONTo(os.Stdout, data)
}

// JSONTo writes data as indented JSON to the given writer
func JSONTo(w io.Writer, data interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(jsonView(data))
}

// Output writes data in the specified format to stdout
func Output(format string, data interface{}) error {
	return OutputTo(os.Stdout, format, data)
}

// OutputTo writes data in the specified format to the given writer
func OutputTo(w io.Writer, format string, data interface{}) error {
	switch format {
	case FormatJSON:
		return JSONTo(w, data)
	case FormatTable, "":
		return TableTo(w, data)
	default:
		return fmt.Errorf("unknown output format: %s", format)
	}
}

// ValidFormat reports whether format is understood by Output
func ValidFormat(format string) bool {
	switch format {
	case FormatTable, FormatJSON, "":
		return true
	}
	return false
}
