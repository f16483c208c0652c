package core

import (
	"bytes"
	"encoding/base64"
	htmltmpl "html/template"
	"io"
	"io/ioutil"
	"net/http"
	"net/mail"
	"path"
	"strings"
	"sync"
	texttmpl "text/template"

	"github.com/pkg/errors"

	appfs "github.com/JoanAquinoVasquez/SISCON-sub000/fs"
)

const emailTemplatesDir = "templates/email"

var (
	templates    tmplCache
	tmplInit     sync.Once
	tmplParseErr error
)

type (
	tmplCacheEntry struct {
		text *texttmpl.Template
		html *htmltmpl.Template
	}
	tmplCache map[string]*tmplCacheEntry // {name: entry}

	Attachment struct {
		Content     string // base64 encoded
		ContentType string
		Filename    string
	}

	EmailMessage struct {
		To          []mail.Address
		Cc          []mail.Address
		Bcc         []mail.Address
		Subject     string
		BodyStr     string // simple text/plain, non-templated content
		Attachments []Attachment

		// templated contents
		TemplateName string // without ext
		TemplateData interface{}
		TextContent  string
		HTMLContent  string
	}

	ContextData struct {
		AppName         string
		FrontendBaseURL string
		Data            interface{}
	}

	// EmailService is any service that can send emails
	EmailService interface {
		// SendMessages sends messages concurrently
		SendMessages(messages ...*EmailMessage)
	}
)

// Render fills TextContent and HTMLContent from BodyStr or the message template.
func (m *EmailMessage) Render(conf *Config) error {
	if m.BodyStr != "" {
		m.TextContent = m.BodyStr
	}
	if m.TemplateName == "" {
		return nil
	}

	tmplInit.Do(parseTemplates) // only execute once during first request
	if tmplParseErr != nil {
		return tmplParseErr
	}
	entry, ok := templates[m.TemplateName]
	if !ok {
		return errors.Errorf("email template %q not found", m.TemplateName)
	}

	data := ContextData{
		AppName:         conf.AppName,
		FrontendBaseURL: conf.FrontendBaseURL,
		Data:            m.TemplateData,
	}
	if entry.text != nil && m.TextContent == "" {
		var buf bytes.Buffer
		if err := entry.text.ExecuteTemplate(&buf, "base", data); err != nil {
			return errors.Wrap(err, "rendering text template")
		}
		m.TextContent = buf.String()
	}
	if entry.html != nil {
		var buf bytes.Buffer
		if err := entry.html.ExecuteTemplate(&buf, "base", data); err != nil {
			return errors.Wrap(err, "rendering html template")
		}
		m.HTMLContent = buf.String()
	}
	return nil
}

func (m *EmailMessage) Attach(r io.Reader, filename string, ct ...string) error {
	content, err := ioutil.ReadAll(r)
	if err != nil {
		return errors.Wrap(err, "reading attachment")
	}
	at := Attachment{
		Filename: filename,
		Content:  base64.StdEncoding.EncodeToString(content),
	}
	if len(ct) > 0 {
		at.ContentType = ct[0]
	} else {
		at.ContentType = http.DetectContentType(content)
	}
	m.Attachments = append(m.Attachments, at)
	return nil
}

func (m *EmailMessage) HasRecipients() bool  { return len(m.To) > 0 }
func (m *EmailMessage) HasContent() bool     { return (m.TextContent != "") || (m.HTMLContent != "") }
func (m *EmailMessage) HasAttachments() bool { return len(m.Attachments) > 0 }

func parseTemplates() {
	templates = make(tmplCache)

	entries, err := appfs.FS.ReadDir(emailTemplatesDir)
	if err != nil {
		tmplParseErr = errors.Wrap(err, "reading email templates")
		return
	}
	for _, e := range entries {
		fname := e.Name()
		ext := path.Ext(fname)
		if e.IsDir() || strings.HasPrefix(fname, "_") || !(ext == ".txt" || ext == ".gohtml") {
			continue
		}
		name := strings.TrimSuffix(fname, ext)
		entry, ok := templates[name]
		if !ok {
			entry = new(tmplCacheEntry)
			templates[name] = entry
		}

		base := path.Join(emailTemplatesDir, "_base"+ext)
		fp := path.Join(emailTemplatesDir, fname)
		if ext == ".txt" {
			tmpl, err := texttmpl.ParseFS(appfs.FS, base, fp)
			if err != nil {
				tmplParseErr = errors.Wrapf(err, "parsing %s", fp)
				return
			}
			entry.text = tmpl.Option("missingkey=error")
		} else {
			tmpl, err := htmltmpl.ParseFS(appfs.FS, base, fp)
			if err != nil {
				tmplParseErr = errors.Wrapf(err, "parsing %s", fp)
				return
			}
			entry.html = tmpl.Option("missingkey=error")
		}
	}
}
