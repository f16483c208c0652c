// Package docgen renders Word (.docx) documents from the templates embedded in appfs.
package docgen

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
	"sync"
	"text/template"
	"time"

	"github.com/pkg/errors"

	"github.com/JoanAquinoVasquez/SISCON-sub000/core"
	appfs "github.com/JoanAquinoVasquez/SISCON-sub000/fs"
)

const (
	ContentType  = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	templatesDir = "templates/docx"
)

// static package parts of a single-document .docx
const (
	contentTypesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
<Default Extension="xml" ContentType="application/xml"/>
<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
<Override PartName="/docProps/core.xml" ContentType="application/vnd.openxmlformats-package.core-properties+xml"/>
</Types>`
	relsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
<Relationship Id="rId2" Type="http://schemas.openxmlformats.org/package/2006/relationships/metadata/core-properties" Target="docProps/core.xml"/>
</Relationships>`
	corePropsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<cp:coreProperties xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties" xmlns:dc="http://purl.org/dc/elements/1.1/" xmlns:dcterms="http://purl.org/dc/terms/" xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance">
<dc:title>%s</dc:title>
<dc:creator>%s</dc:creator>
<dcterms:created xsi:type="dcterms:W3CDTF">%s</dcterms:created>
</cp:coreProperties>`
)

var (
	tmplOnce     sync.Once
	tmplCache    map[string]*template.Template
	tmplParseErr error

	meses = [...]string{"enero", "febrero", "marzo", "abril", "mayo", "junio", "julio",
		"agosto", "setiembre", "octubre", "noviembre", "diciembre"}

	funcs = template.FuncMap{
		"x":      xmlEscape,
		"money":  Money,
		"fecha":  FechaLarga,
		"fechas": fechas,
		"pair":   func(k, v string) []string { return []string{k, v} },
	}
)

func parseTemplates() {
	tmplCache = make(map[string]*template.Template)
	entries, err := appfs.FS.ReadDir(templatesDir)
	if err != nil {
		tmplParseErr = errors.Wrap(err, "reading docx templates")
		return
	}
	base := templatesDir + "/_base.xml"
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, "_") || !strings.HasSuffix(name, ".xml") {
			continue
		}
		tmpl, err := template.New(name).Funcs(funcs).Option("missingkey=error").
			ParseFS(appfs.FS, base, templatesDir+"/"+name)
		if err != nil {
			tmplParseErr = errors.Wrapf(err, "parsing %s", name)
			return
		}
		tmplCache[strings.TrimSuffix(name, ".xml")] = tmpl
	}
}

// render writes a .docx to w, using the named body template and data.
func render(w io.Writer, name, title, author string, data interface{}) error {
	tmplOnce.Do(parseTemplates)
	if tmplParseErr != nil {
		return tmplParseErr
	}
	tmpl, ok := tmplCache[name]
	if !ok {
		return errors.Errorf("docx template %q not found", name)
	}

	var doc bytes.Buffer
	if err := tmpl.ExecuteTemplate(&doc, "base", data); err != nil {
		return errors.Wrapf(err, "rendering %s", name)
	}

	zw := zip.NewWriter(w)
	parts := []struct{ name, content string }{
		{"[Content_Types].xml", contentTypesXML},
		{"_rels/.rels", relsXML},
		{"docProps/core.xml", fmt.Sprintf(corePropsXML, xmlEscape(title), xmlEscape(author), time.Now().UTC().Format(time.RFC3339))},
		{"word/document.xml", doc.String()},
	}
	for _, p := range parts {
		f, err := zw.Create(p.name)
		if err != nil {
			return errors.Wrapf(err, "creating %s", p.name)
		}
		if _, err := io.WriteString(f, p.content); err != nil {
			return errors.Wrapf(err, "writing %s", p.name)
		}
	}
	return errors.Wrap(zw.Close(), "closing docx")
}

func xmlEscape(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}

// Money formats an amount in soles, eg. "S/ 2,400.50".
func Money(amount float64) string {
	s := fmt.Sprintf("%.2f", core.RoundMoney(amount))
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	intPart, dec := s[:len(s)-3], s[len(s)-3:]

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if neg {
		return "S/ -" + b.String() + dec
	}
	return "S/ " + b.String() + dec
}

// FechaLarga formats d as "2 de mayo de 2024".
func FechaLarga(d core.Date) string {
	if d.IsZero() {
		return ""
	}
	return fmt.Sprintf("%d de %s de %d", d.Day(), meses[d.Month()-1], d.Year())
}

func fechas(dates []core.Date) string {
	parts := make([]string, 0, len(dates))
	for _, d := range dates {
		parts = append(parts, d.Format("02/01/2006"))
	}
	return strings.Join(parts, ", ")
}
