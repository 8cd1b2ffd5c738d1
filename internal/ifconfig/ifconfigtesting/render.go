package ifconfigtesting

import (
	"bytes"
	"fmt"
	"os"
	"text/template"
)

// seq generates a sequence of integers from start to end (inclusive)
func seq(start, end int) []int {
	if start > end {
		return []int{}
	}
	result := make([]int, end-start+1)
	for i := range result {
		result[i] = start + i
	}
	return result
}

var templateFuncs = template.FuncMap{
	"seq": seq,
}

// ExportData parameterizes the generated exports in testdata: Bundles
// port-channels numbered from 1, and Members gigabit interfaces where member
// n is in channel-group n.
type ExportData struct {
	Bundles int
	Members int
}

// RenderExport renders an export template file.
func RenderExport(path string, data ExportData) ([]byte, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read export template: %w", err)
	}

	tmpl, err := template.New(path).Funcs(templateFuncs).Parse(string(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse export template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to render export template: %w", err)
	}
	return buf.Bytes(), nil
}
