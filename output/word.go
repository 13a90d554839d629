package output

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fumiama/go-docx"

	"github.com/D-artisan/dartisan-ai-webscraper/models"
)

// writeWord builds a .docx document: heading, details section, then one
// block per top-level field with lists as bullet lines and nested mappings
// as indented sub-sections.
func writeWord(path string, data *models.ExtractedData, prompt, heading string) error {
	doc := docx.New().WithDefaultTheme()

	title := doc.AddParagraph().Justification("center")
	title.AddText(heading).Size("36")

	doc.AddParagraph().AddText("Scraping Details").Size("28")
	doc.AddParagraph().AddText("Generated: " + time.Now().Format("2006-01-02 15:04:05"))
	doc.AddParagraph().AddText("Prompt: " + prompt)

	doc.AddParagraph().AddText("Extracted Data").Size("28")
	writeFieldsWord(doc, data.Fields, 0)

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = doc.WriteTo(f)
	return err
}

func writeFieldsWord(doc *docx.Docx, fields []models.Field, level int) {
	indent := strings.Repeat("  ", level)

	for _, f := range fields {
		switch f.Value.Kind {
		case models.KindMap:
			if level == 0 {
				doc.AddParagraph().AddText(titleCase(f.Key)).Size("26")
			} else {
				doc.AddParagraph().AddText(fmt.Sprintf("%s• %s:", indent, f.Key))
			}
			writeFieldsWord(doc, f.Value.Fields, level+1)

		case models.KindList:
			doc.AddParagraph().AddText(fmt.Sprintf("%s• %s:", indent, f.Key))
			for _, item := range f.Value.Items {
				if item.Kind == models.KindMap {
					writeFieldsWord(doc, item.Fields, level+1)
				} else {
					doc.AddParagraph().AddText(fmt.Sprintf("%s  - %s", indent, item.Text))
				}
			}

		default:
			doc.AddParagraph().AddText(fmt.Sprintf("%s• %s: %s", indent, f.Key, f.Value.Text))
		}
	}
}

// titleCase upper-cases the first rune of each space-separated word.
func titleCase(s string) string {
	words := strings.Fields(strings.ReplaceAll(s, "_", " "))
	for i, w := range words {
		r := []rune(w)
		words[i] = strings.ToUpper(string(r[0])) + string(r[1:])
	}
	return strings.Join(words, " ")
}
