package core

import (
	"bytes"
	"embed"
	"io"
	"io/fs"
	"net/http"
	"net/mail"
	"path"
	"strings"
	"sync"
	texttmpl "text/template"

	"github.com/pkg/errors"
)

var (
	//go:embed templates/email templates/email/_base.txt
	templateFS embed.FS

	templates map[string]*texttmpl.Template // {name: template}
	tmplErr   error
	tmplInit  sync.Once
)

type (
	Attachment struct {
		Content     []byte
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

// Render fills TextContent from BodyStr or the named template.
func (m *EmailMessage) Render(conf *Config) error {
	if m.BodyStr != "" {
		m.TextContent = m.BodyStr
		return nil
	} else if m.TemplateName == "" {
		return nil
	}

	tmplInit.Do(parseTemplates) // only parse once during first render
	if tmplErr != nil {
		return errors.Wrap(tmplErr, "parsing email templates")
	}
	tmpl, ok := templates[m.TemplateName]
	if !ok {
		return errors.Errorf("email template %q not found", m.TemplateName)
	}

	var buff bytes.Buffer
	data := ContextData{
		AppName:         conf.AppName,
		FrontendBaseURL: conf.FrontendBaseURL,
		Data:            m.TemplateData,
	}
	if err := tmpl.Execute(&buff, data); err != nil {
		return errors.Wrapf(err, "executing template %q", m.TemplateName)
	}
	m.TextContent = strings.TrimSpace(buff.String())
	return nil
}

func (m *EmailMessage) Attach(r io.Reader, filename string, ct ...string) error {
	content, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	at := Attachment{Filename: filename, Content: content}
	if len(ct) > 0 {
		at.ContentType = ct[0]
	} else {
		at.ContentType = http.DetectContentType(content)
	}
	m.Attachments = append(m.Attachments, at)
	return nil
}

func (m *EmailMessage) HasRecipients() bool  { return len(m.To) > 0 }
func (m *EmailMessage) HasContent() bool     { return m.TextContent != "" }
func (m *EmailMessage) HasAttachments() bool { return len(m.Attachments) > 0 }

func parseTemplates() {
	templates = make(map[string]*texttmpl.Template)

	root := "templates/email"
	entries, err := fs.ReadDir(templateFS, root)
	if err != nil {
		tmplErr = err
		return
	}
	base := path.Join(root, "_base.txt")
	for _, entry := range entries {
		fname := entry.Name()
		if strings.HasPrefix(fname, "_") || path.Ext(fname) != ".txt" {
			continue
		}
		tmpl, err := texttmpl.ParseFS(templateFS, base, path.Join(root, fname))
		if err != nil {
			tmplErr = err
			return
		}
		templates[strings.TrimSuffix(fname, ".txt")] = tmpl.Lookup(fname).Option("missingkey=error")
	}
}
