// Package document renders collected files into one Markdown document and records
// the byte range of every section it emits.
package document

import (
	"fmt"
	"path/filepath"
	"strings"

	"ctxpack/pkg/collect"
)

// Assemble renders the tree header followed by one fenced section per record, in
// record order. The output carries no timestamps, so an unchanged tree renders
// byte-identically.
func Assemble(root string, records []collect.FileRecord) Document {
	var doc Document
	var b strings.Builder

	emit := func(kind SectionKind, path, text string) {
		start := b.Len()
		b.WriteString(text)
		doc.Sections = append(doc.Sections, Section{Kind: kind, Path: path, Start: start, End: b.Len()})
	}

	emit(SectionTree, "", renderHeader(root, records))
	for _, rec := range records {
		emit(SectionFile, rec.RelPath, renderFile(rec))
	}

	doc.Text = b.String()
	return doc
}

func renderHeader(root string, records []collect.FileRecord) string {
	rootName := filepath.Base(filepath.Clean(root))
	paths := make([]string, 0, len(records))
	for _, rec := range records {
		paths = append(paths, rec.RelPath)
	}

	var b strings.Builder
	b.WriteString("# Project Context Pack\n\n")
	b.WriteString(fmt.Sprintf("- Root: `%s`\n", filepath.ToSlash(root)))
	b.WriteString(fmt.Sprintf("- Files: %d\n\n", len(records)))
	b.WriteString("## Repository Tree (filtered)\n\n")
	b.WriteString("```text\n")
	b.WriteString(RenderTree(rootName, paths))
	b.WriteString("```\n\n")
	b.WriteString("## Note on Exclusions\n\n")
	b.WriteString("This pack was generated with `.gptignore`/defaults to skip large, binary, or secret files.\n\n")
	b.WriteString("## Files\n")
	return b.String()
}

func renderFile(rec collect.FileRecord) string {
	content := rec.Content
	if content != "" && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	fence := fenceFor(content)
	lang := strings.TrimPrefix(filepath.Ext(rec.RelPath), ".")

	return fmt.Sprintf("\n### `%s`\n\n%s%s\n%s%s\n", rec.RelPath, fence, lang, content, fence)
}

// fenceFor returns a backtick fence longer than any backtick run inside content.
func fenceFor(content string) string {
	longest, run := 0, 0
	for i := 0; i < len(content); i++ {
		if content[i] == '`' {
			run++
			if run > longest {
				longest = run
			}
			continue
		}
		run = 0
	}
	n := 3
	if longest >= n {
		n = longest + 1
	}
	return strings.Repeat("`", n)
}
