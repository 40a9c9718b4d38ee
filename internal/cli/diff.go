package cli

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/vigil/internal/presentation/tui"
	"github.com/aretw0/vigil/pkg/detector"
	"github.com/aretw0/vigil/pkg/diff"
	"github.com/aretw0/vigil/pkg/domain"
)

// DiffOptions holds the configuration for the diff command.
type DiffOptions struct {
	OldPath  string
	NewPath  string
	Markdown bool // print raw markdown even on a terminal
	Debug    bool
}

// keyWatch ties a registered watch back to the document key it observes.
type keyWatch struct {
	key  string
	cell *any
}

// RunDiff loads two YAML documents, watches every top-level key of the old
// one, applies the new document as a mutation and reports the resulting
// changes from a single detection pass.
func RunDiff(opts DiffOptions) error {
	logger := createLogger(opts.Debug)

	oldDoc, err := loadDocument(opts.OldPath)
	if err != nil {
		return err
	}
	newDoc, err := loadDocument(opts.NewPath)
	if err != nil {
		return err
	}

	det := detector.New(detector.WithLogger(logger))
	root := det.Root()

	// Top-level key additions and removals come from an entries watch on the
	// document itself; each key additionally gets a watch matching its shape.
	if _, err := root.Watch(oldDoc, domain.Entries(), "$document"); err != nil {
		return fmt.Errorf("watch document: %w", err)
	}

	var watches []*keyWatch
	for _, key := range sortedKeys(oldDoc) {
		value := oldDoc[key]
		kw := &keyWatch{key: key}

		switch value.(type) {
		case []any:
			cell := value
			kw.cell = &cell
			_, err = root.Watch(kw.cell, domain.Items(), kw)
		case map[string]any:
			cell := value
			kw.cell = &cell
			_, err = root.Watch(kw.cell, domain.Entries(), kw)
		default:
			_, err = root.Watch(oldDoc, domain.Field(key), kw)
		}
		if err != nil {
			return fmt.Errorf("watch key %q: %w", key, err)
		}
		watches = append(watches, kw)
	}

	applyDocument(oldDoc, newDoc, watches)

	var skipped []string
	head, err := det.CollectChanges(func(err error, rec *detector.WatchRecord) {
		if kw, ok := rec.Handler().(*keyWatch); ok {
			skipped = append(skipped, kw.key)
			logger.Warn("key changed shape, skipping structural diff", "key", kw.key, "err", err)
		}
	})
	if err != nil {
		return fmt.Errorf("detection pass: %w", err)
	}

	report := renderReport(opts.OldPath, opts.NewPath, head, skipped)
	return printReport(report, opts.Markdown)
}

func loadDocument(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if doc == nil {
		doc = map[string]any{}
	}
	return doc, nil
}

func sortedKeys(doc map[string]any) []string {
	keys := make([]string, 0, len(doc))
	for k := range doc {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// applyDocument mutates oldDoc in place to match newDoc, updating watch
// cells so sequence and map watches observe the reassignment.
func applyDocument(oldDoc, newDoc map[string]any, watches []*keyWatch) {
	for k := range oldDoc {
		if _, ok := newDoc[k]; !ok {
			delete(oldDoc, k)
		}
	}
	for k, v := range newDoc {
		oldDoc[k] = v
	}
	for _, kw := range watches {
		if kw.cell == nil {
			continue
		}
		if v, ok := newDoc[kw.key]; ok {
			*kw.cell = v
		}
	}
}

func renderReport(oldPath, newPath string, head *domain.ChangeRecord, skipped []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Document diff\n\n`%s` compared against `%s`\n\n", oldPath, newPath)

	if head == nil && len(skipped) == 0 {
		b.WriteString("No changes detected.\n")
		return b.String()
	}

	for c := head; c != nil; c = c.Next {
		switch handler := c.Handler.(type) {
		case string: // the document-level entries watch
			writeDocumentSection(&b, c)
		case *keyWatch:
			writeKeySection(&b, handler.key, c)
		}
	}

	for _, key := range skipped {
		fmt.Fprintf(&b, "## %s\n\n- value changed shape; structural diff not available\n\n", key)
	}

	return b.String()
}

func writeDocumentSection(b *strings.Builder, c *domain.ChangeRecord) {
	change, ok := c.CurrentValue.(*diff.MapChange)
	if !ok {
		return
	}
	added := change.Additions()
	removed := change.Removals()
	if len(added) == 0 && len(removed) == 0 {
		return
	}
	b.WriteString("## top-level keys\n\n")
	for _, e := range added {
		fmt.Fprintf(b, "- added `%v`\n", e.Key)
	}
	for _, e := range removed {
		fmt.Fprintf(b, "- removed `%v`\n", e.Key)
	}
	b.WriteString("\n")
}

func writeKeySection(b *strings.Builder, key string, c *domain.ChangeRecord) {
	fmt.Fprintf(b, "## %s\n\n", key)

	switch change := c.CurrentValue.(type) {
	case *diff.CollectionChange:
		for _, it := range change.Additions() {
			fmt.Fprintf(b, "- added `%v` at %d\n", it.Item, it.CurrentIndex)
		}
		for _, it := range change.Moves() {
			fmt.Fprintf(b, "- moved `%v` from %d to %d\n", it.Item, it.PreviousIndex, it.CurrentIndex)
		}
		for _, it := range change.Removals() {
			fmt.Fprintf(b, "- removed `%v` from %d\n", it.Item, it.PreviousIndex)
		}
	case *diff.MapChange:
		for _, e := range change.Additions() {
			fmt.Fprintf(b, "- added `%v`: `%v`\n", e.Key, e.CurrentValue)
		}
		for _, e := range change.Changes() {
			fmt.Fprintf(b, "- changed `%v`: `%v` is now `%v`\n", e.Key, e.PreviousValue, e.CurrentValue)
		}
		for _, e := range change.Removals() {
			fmt.Fprintf(b, "- removed `%v` (was `%v`)\n", e.Key, e.PreviousValue)
		}
	default:
		fmt.Fprintf(b, "- previous: `%v`\n- current: `%v`\n", c.PreviousValue, c.CurrentValue)
	}
	b.WriteString("\n")
}

func printReport(report string, rawMarkdown bool) error {
	if rawMarkdown || !stdoutIsTerminal() {
		fmt.Print(report)
		return nil
	}
	render := tui.NewRenderer()
	out, err := render(report)
	if err != nil {
		fmt.Print(report)
		return nil
	}
	fmt.Print(out)
	return nil
}
