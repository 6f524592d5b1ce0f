package notify

import (
	"bytes"
	"embed"
	"fmt"
	htmltemplate "html/template"
	"log/slog"
	"net/mail"
	"text/template"
	"time"

	"github.com/google/uuid"

	"github.com/Automattic/vip-new-device-notification/pkg/identity"
	"github.com/Automattic/vip-new-device-notification/pkg/policy"
)

//go:embed templates/*
var templateFiles embed.FS

func loadTemplate(filename string) string {
	content, err := templateFiles.ReadFile(filename)
	if err != nil {
		slog.Error("Error reading template file!", "err", err, "filename", filename)
		return ""
	}
	return string(content)
}

// DefaultSubjectTemplate is the subject line before any policy override.
const DefaultSubjectTemplate = "New device used by {{.LoginName}} on {{.SiteName}}"

// templateFields are the nine substitution fields every body and subject
// template may reference.
type templateFields struct {
	DisplayName string
	SiteName    string
	SiteURL     string
	RemoteAddr  string
	Hostname    string
	Location    string
	UserAgent   string
	LoginName   string
	InstallDate string
}

// Composer builds the subject, body and recipient list for one
// notification. Subject, body template and recipients are independently
// overridable through policy hooks, resolved on every Compose call.
type Composer struct {
	siteName   string
	siteURL    string
	adminEmail string
	hooks      *policy.Hooks
}

// NewComposer creates a composer for one installation.
func NewComposer(siteName, siteURL, adminEmail string, hooks *policy.Hooks) *Composer {
	return &Composer{
		siteName:   siteName,
		siteURL:    siteURL,
		adminEmail: adminEmail,
		hooks:      hooks,
	}
}

// Compose renders the message for one enriched decision context.
func (c *Composer) Compose(dctx policy.DecisionContext) (NotificationData, error) {
	fields := templateFields{
		DisplayName: dctx.Identity.DisplayName,
		SiteName:    c.siteName,
		SiteURL:     c.siteURL,
		RemoteAddr:  dctx.RemoteAddr,
		Hostname:    dctx.Hostname,
		Location:    dctx.Location,
		UserAgent:   dctx.UserAgent,
		LoginName:   dctx.Identity.LoginName,
		InstallDate: dctx.InstalledAt.UTC().Format("January 2, 2006"),
	}

	subject, err := renderText(c.hooks.ResolveSubject(DefaultSubjectTemplate), fields)
	if err != nil {
		return NotificationData{}, fmt.Errorf("failed to render subject: %w", err)
	}

	bodyTmpl := c.hooks.ResolveBodyTemplate(loadTemplate("templates/email/new_device.txt"))
	body, err := renderText(bodyTmpl, fields)
	if err != nil {
		return NotificationData{}, fmt.Errorf("failed to render body: %w", err)
	}

	// The HTML alternative only accompanies the stock body; a policy that
	// replaces the template supplies plain text.
	var htmlBody string
	if c.hooks == nil || c.hooks.BodyTemplate == nil {
		htmlBody, err = renderHTML(loadTemplate("templates/email/new_device.html"), fields)
		if err != nil {
			slog.Error("Failed to render HTML body, sending text only", "err", err)
			htmlBody = ""
		}
	}

	to, cc := c.Recipients(dctx.Identity)

	return NotificationData{
		To:       to,
		Cc:       cc,
		Subject:  subject,
		Body:     body,
		HTMLBody: htmlBody,
		Headers: map[string]string{
			"Auto-Submitted": "auto-generated",
			// Unique per message so mail clients don't collapse
			// successive alerts into one thread.
			"X-Entity-Ref-ID": uuid.New().String(),
		},
	}, nil
}

// Recipients assembles the recipient list: the installation's
// administrative address, any policy additions, and optionally the acting
// identity's own address as a CC when it passes basic syntax validation.
// The combined list is de-duplicated, first occurrence wins.
func (c *Composer) Recipients(id identity.Identity) (to []string, cc []string) {
	resolved := c.hooks.ResolveRecipients([]string{c.adminEmail}, id)

	seen := make(map[string]bool)
	for _, addr := range resolved {
		if addr == "" || seen[addr] {
			continue
		}
		seen[addr] = true
		to = append(to, addr)
	}

	if c.hooks != nil && c.hooks.CCActingIdentity && !seen[id.Email] {
		if _, err := mail.ParseAddress(id.Email); err == nil {
			cc = append(cc, id.Email)
		} else {
			slog.Debug("Skipping CC, identity email failed validation", "email", id.Email)
		}
	}

	return to, cc
}

func renderText(tmplText string, fields templateFields) (string, error) {
	tmpl, err := template.New("text").Parse(tmplText)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, fields); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func renderHTML(tmplText string, fields templateFields) (string, error) {
	tmpl, err := htmltemplate.New("html").Parse(tmplText)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, fields); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// FormatInstallDate is exposed for callers that surface the monitoring
// start date elsewhere (demo endpoints, audit logs).
func FormatInstallDate(installedAt time.Time) string {
	return installedAt.UTC().Format("January 2, 2006")
}
