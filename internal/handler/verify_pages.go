package handler

import (
	"bytes"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/mathbymoves/backend/internal/model"
)

const (
	pageInvalid         = "invalid"
	pageNotFound        = "not_found"
	pageAlreadyVerified = "already_verified"
	pageVerified        = "verified"
	pageError           = "error"
	pageTooMany         = "too_many"
)

const (
	colorOK    = "#28a745"
	colorError = "#cc0000"
)

var verifyPages = template.Must(template.New("pages").Parse(`
{{define "layout"}}<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>{{.Title}}</title></head>
<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 50px auto; padding: 20px;">
<h2 style="color: {{.Color}};">{{.Title}}</h2>
{{template "body" .}}
</body>
</html>{{end}}

{{define "invalid"}}
<p>This verification link is invalid or incomplete.</p>
<p>Please check your email for the correct verification link.</p>
{{end}}

{{define "not_found"}}
<p>This verification link is invalid, expired, or has already been used.</p>
<p>If you need to submit a new message, please visit the contact form again.</p>
{{end}}

{{define "already_verified"}}
<p>Your email address has already been verified and your message has been sent to {{.Owner}}.</p>
<p>Thank you for your interest in chess coaching and AMC 8 preparation!</p>
{{end}}

{{define "verified"}}
<p>Thank you, {{.Msg.FirstName}}! Your email address has been verified.</p>
<p>Your message has been forwarded to {{.Owner}} and will be answered as soon as possible.</p>
<div style="background-color: #f8f9fa; padding: 15px; border-radius: 5px; margin: 20px 0;">
<h4>Your Message:</h4>
<p><strong>Subject:</strong> {{.Subject}}</p>
<p><strong>Message:</strong> {{.Msg.Message}}</p>
</div>
<p>Expect a response within 24-48 hours for chess coaching and AMC 8 preparation inquiries.</p>
{{end}}

{{define "too_many"}}
<p>There have been too many verification attempts from your network.</p>
<p>Please wait a minute and open the link from your email again.</p>
{{end}}

{{define "error"}}
<p>An error occurred while verifying your email. Please try again or contact support.</p>
{{end}}
`))

var pageTitles = map[string]struct{ title, color string }{
	pageInvalid:         {"Invalid Verification Link", colorError},
	pageNotFound:        {"Verification Link Not Found", colorError},
	pageAlreadyVerified: {"Already Verified", colorOK},
	pageVerified:        {"Email Verified Successfully!", colorOK},
	pageError:           {"Verification Error", colorError},
	pageTooMany:         {"Too Many Attempts", colorError},
}

type pageData struct {
	Title   string
	Color   template.CSS
	Owner   string
	Subject string
	Msg     *model.ContactMessage
}

// pages maps each page name to the layout with that page as its body.
var pages = func() map[string]*template.Template {
	out := make(map[string]*template.Template, len(pageTitles))
	for name := range pageTitles {
		t := template.Must(verifyPages.Clone())
		template.Must(t.New("body").Parse(`{{template "` + name + `" .}}`))
		out[name] = t
	}
	return out
}()

// renderPage writes one of the verification pages. msg is only used by the
// success page.
func (h *ContactHandler) renderPage(w http.ResponseWriter, status int, name string, msg *model.ContactMessage) {
	meta := pageTitles[name]
	data := pageData{
		Title: meta.title,
		Color: template.CSS(meta.color),
		Owner: h.ownerName,
		Msg:   msg,
	}
	if msg != nil {
		data.Subject = model.SubjectLabel(msg.Subject)
	}

	var buf bytes.Buffer
	if err := pages[name].ExecuteTemplate(&buf, "layout", data); err != nil {
		slog.Error("render verification page failed", "page", name, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
