// Package shell builds the document served at the root of the private
// scheme: the shell page with the viewer script injected into its head.
package shell

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
)

// TranslationsPlaceholder is replaced in the viewer script with the
// translations JSON, or null when there are none
const TranslationsPlaceholder = "__TRANSLATIONS_DATA__"

// ScriptName is the source name console messages from the injected script carry
const ScriptName = "userscript:viewer.js"

// Source supplies the raw inputs of the shell document
type Source struct {
	HTML         []byte
	Script       []byte
	Translations []byte
}

// FileSource reads the inputs from disk. An empty translations path means
// no translations.
func FileSource(htmlPath, scriptPath, translationsPath string) (Source, error) {
	var src Source
	var err error

	if src.HTML, err = os.ReadFile(htmlPath); err != nil {
		return Source{}, fmt.Errorf("failed to read shell html: %w", err)
	}
	if scriptPath != "" {
		if src.Script, err = os.ReadFile(scriptPath); err != nil {
			return Source{}, fmt.Errorf("failed to read viewer script: %w", err)
		}
	}
	if translationsPath != "" {
		if src.Translations, err = os.ReadFile(translationsPath); err != nil {
			return Source{}, fmt.Errorf("failed to read translations: %w", err)
		}
	}
	return src, nil
}

// Document is the shell page, built on first use
type Document struct {
	load func() (Source, error)

	once sync.Once
	body []byte
	err  error
}

// NewDocument creates a document from fixed inputs
func NewDocument(src Source) *Document {
	return &Document{load: func() (Source, error) { return src, nil }}
}

// NewLazyDocument defers reading the inputs until the first Bytes call
func NewLazyDocument(load func() (Source, error)) *Document {
	return &Document{load: load}
}

// Bytes returns the built document. Later calls return the same result.
func (d *Document) Bytes() ([]byte, error) {
	d.once.Do(func() {
		src, err := d.load()
		if err != nil {
			d.err = err
			return
		}
		d.body, d.err = Build(src)
	})
	return d.body, d.err
}

// Build injects the viewer script, with translations filled in, at the end
// of the shell's head
func Build(src Source) ([]byte, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(src.HTML))
	if err != nil {
		return nil, fmt.Errorf("failed to parse shell html: %w", err)
	}

	if len(src.Script) > 0 {
		translations := "null"
		if t := strings.TrimSpace(string(src.Translations)); t != "" {
			translations = t
		}
		script := strings.ReplaceAll(string(src.Script), TranslationsPlaceholder, translations)
		script = strings.ReplaceAll(script, "</script", `<\/script`)

		doc.Find("head").First().AppendHtml(`<script type="text/javascript">` + script + `</script>`)
	}

	html, err := doc.Html()
	if err != nil {
		return nil, fmt.Errorf("failed to render shell html: %w", err)
	}
	return []byte(html), nil
}
