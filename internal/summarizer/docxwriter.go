package summarizer

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/gomutex/godocx"
	"github.com/gomutex/godocx/docx"

	"github.com/thivian17/lecturelink/internal/domain"
)

const (
	fontName = "Times New Roman"
	fontSize = 13
)

var (
	reHeading = regexp.MustCompile(`^(#{1,6})\s+(.+)$`)
	reBold    = regexp.MustCompile(`\*\*(.+?)\*\*`)
	reBullet  = regexp.MustCompile(`^[\-\*]\s+(.+)$`)
	reNumberd = regexp.MustCompile(`^\d+\.\s+(.+)$`)
)

// ExportDocx writes the lecture's summary (and transcript, when present)
// to a styled docx file.
func ExportDocx(lecture domain.Lecture, summary domain.SummaryRecord, outputPath string) error {
	title := summary.Title
	if title == "" {
		title = lecture.Title
	}
	if err := markdownToDocx(title, SummaryMarkdown(lecture, summary), outputPath); err != nil {
		return fmt.Errorf("write docx: %w", err)
	}
	return nil
}

// SummaryMarkdown renders a summary record as markdown.
func SummaryMarkdown(lecture domain.Lecture, s domain.SummaryRecord) string {
	var b strings.Builder

	meta := []string{}
	if lecture.DurationSeconds > 0 {
		meta = append(meta, fmt.Sprintf("Duration: %d min", int(lecture.DurationSeconds/60+0.5)))
	}
	if lecture.SlideCount > 0 {
		meta = append(meta, fmt.Sprintf("Slides: %d", lecture.SlideCount))
	}
	if s.Difficulty != "" {
		meta = append(meta, "Difficulty: "+s.Difficulty)
	}
	if s.EstimatedStudyTime != "" {
		meta = append(meta, "Study time: "+s.EstimatedStudyTime)
	}
	if len(meta) > 0 {
		b.WriteString(strings.Join(meta, " | "))
		b.WriteString("\n\n")
	}

	if len(s.KeyConcepts) > 0 {
		b.WriteString("## Key Concepts\n")
		for _, c := range s.KeyConcepts {
			line := "- **" + c.Name + "**"
			if c.Explanation != "" {
				line += ": " + c.Explanation
			}
			if len(c.SlideReferences) > 0 {
				refs := make([]string, len(c.SlideReferences))
				for i, r := range c.SlideReferences {
					refs[i] = fmt.Sprint(r)
				}
				line += " (slides " + strings.Join(refs, ", ") + ")"
			}
			b.WriteString(line + "\n")
			for _, ex := range c.Examples {
				b.WriteString("- Example: " + ex + "\n")
			}
		}
		b.WriteString("\n")
	}

	if len(s.Definitions) > 0 {
		b.WriteString("## Definitions\n")
		for _, d := range s.Definitions {
			b.WriteString("- **" + d.Term + "**: " + d.Definition + "\n")
		}
		b.WriteString("\n")
	}

	writeList(&b, "Important Points", s.ImportantPoints, false)
	writeList(&b, "Action Items", s.ActionItems, true)

	if t := strings.TrimSpace(lecture.Transcript); t != "" {
		b.WriteString("## Transcript\n")
		b.WriteString(t)
		b.WriteString("\n")
	}

	return b.String()
}

func writeList(b *strings.Builder, heading string, items []string, numbered bool) {
	if len(items) == 0 {
		return
	}
	b.WriteString("## " + heading + "\n")
	for i, item := range items {
		if numbered {
			fmt.Fprintf(b, "%d. %s\n", i+1, item)
		} else {
			b.WriteString("- " + item + "\n")
		}
	}
	b.WriteString("\n")
}

// markdownToDocx converts markdown text to a styled docx file.
func markdownToDocx(title, markdown, outputPath string) error {
	doc, err := godocx.NewDocument()
	if err != nil {
		return err
	}

	addStyledRun(doc.AddParagraph(""), title, true, 16)

	for _, line := range strings.Split(markdown, "\n") {
		trimmed := strings.TrimSpace(line)

		if trimmed == "" || trimmed == "---" {
			continue
		}

		if m := reHeading.FindStringSubmatch(trimmed); m != nil {
			addStyledRun(doc.AddParagraph(""), m[2], true, headingSize(len(m[1])))
			continue
		}

		if m := reBullet.FindStringSubmatch(trimmed); m != nil {
			addRichText(doc.AddParagraph(""), "• "+m[1])
			continue
		}

		if reNumberd.MatchString(trimmed) {
			addRichText(doc.AddParagraph(""), trimmed)
			continue
		}

		addRichText(doc.AddParagraph(""), trimmed)
	}

	return doc.SaveTo(outputPath)
}

func headingSize(level int) uint64 {
	switch level {
	case 1:
		return 16
	case 2:
		return 15
	case 3:
		return 14
	default:
		return fontSize
	}
}

func addStyledRun(p *docx.Paragraph, text string, bold bool, size uint64) {
	text = cleanMarkdownInline(text)
	run := p.AddText(text).Font(fontName).Size(size).Color("000000")
	if bold {
		run.Bold(true)
	}
}

func addRichText(p *docx.Paragraph, text string) {
	parts := reBold.Split(text, -1)
	matches := reBold.FindAllStringSubmatch(text, -1)

	for i, part := range parts {
		if part != "" {
			p.AddText(cleanMarkdownInline(part)).Font(fontName).Size(fontSize).Color("000000")
		}
		if i < len(matches) {
			p.AddText(cleanMarkdownInline(matches[i][1])).Font(fontName).Size(fontSize).Color("000000").Bold(true)
		}
	}
}

func cleanMarkdownInline(s string) string {
	s = strings.ReplaceAll(s, "**", "")
	s = strings.ReplaceAll(s, "__", "")
	s = strings.ReplaceAll(s, "`", "")
	return s
}
