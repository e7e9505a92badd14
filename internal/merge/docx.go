package merge

import (
	"fmt"
	"time"

	"github.com/gomutex/godocx"
	"github.com/gomutex/godocx/docx"
)

const (
	docxFont     = "Times New Roman"
	docxFontSize = 13
)

// DOCX renders the transcript as a Word document: a bold title, then
// one paragraph per segment prefixed with its start time. Gaps appear
// as bold markers so missing ranges are visible in the document.
func (t Transcript) DOCX(title, outputPath string) error {
	doc, err := godocx.NewDocument()
	if err != nil {
		return err
	}

	addDocxRun(doc.AddParagraph(""), title, true, 16)
	doc.AddParagraph("")

	t.walk(func(start, end time.Duration, text string) {
		p := doc.AddParagraph("")
		if text == gapCueText {
			marker := fmt.Sprintf("[no transcription for %s - %s]", formatClock(start), formatClock(end))
			addDocxRun(p, marker, true, docxFontSize)
			return
		}
		addDocxRun(p, fmt.Sprintf("[%s] %s", formatClock(start), text), false, docxFontSize)
	})

	return doc.SaveTo(outputPath)
}

func addDocxRun(p *docx.Paragraph, text string, bold bool, size uint64) {
	run := p.AddText(text).Font(docxFont).Size(size).Color("000000")
	if bold {
		run.Bold(true)
	}
}
