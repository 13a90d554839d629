package output

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/D-artisan/dartisan-ai-webscraper/models"
)

// writeText serialises the extracted data as labelled, indented lines under
// the upper-cased document heading.
func writeText(path string, data *models.ExtractedData, prompt, heading string) error {
	var b strings.Builder

	banner := strings.Repeat("=", 50)
	b.WriteString(banner + "\n")
	b.WriteString(strings.ToUpper(heading) + "\n")
	b.WriteString(banner + "\n\n")
	b.WriteString("Generated: " + time.Now().Format("2006-01-02 15:04:05") + "\n")
	b.WriteString("Prompt: " + prompt + "\n\n")
	b.WriteString("EXTRACTED DATA:\n")
	b.WriteString(strings.Repeat("-", 20) + "\n\n")

	writeFieldsText(&b, data.Fields, 0)

	return os.WriteFile(path, []byte(b.String()), 0o644)
}

func writeFieldsText(b *strings.Builder, fields []models.Field, indent int) {
	prefix := strings.Repeat("  ", indent)

	for _, f := range fields {
		switch f.Value.Kind {
		case models.KindMap:
			fmt.Fprintf(b, "%s%s:\n", prefix, strings.ToUpper(f.Key))
			writeFieldsText(b, f.Value.Fields, indent+1)
			b.WriteString("\n")

		case models.KindList:
			fmt.Fprintf(b, "%s%s:\n", prefix, strings.ToUpper(f.Key))
			for i, item := range f.Value.Items {
				if item.Kind == models.KindMap {
					fmt.Fprintf(b, "%s  %d.\n", prefix, i+1)
					writeFieldsText(b, item.Fields, indent+2)
				} else {
					fmt.Fprintf(b, "%s  %d. %s\n", prefix, i+1, item.Text)
				}
			}
			b.WriteString("\n")

		default:
			fmt.Fprintf(b, "%s%s: %s\n", prefix, f.Key, f.Value.Text)
		}
	}
}
