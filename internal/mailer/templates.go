package mailer

import (
	"bytes"
	"html/template"
)

var verificationTmpl = template.Must(template.New("verification").Parse(`<h3>Email Verification Required</h3>
<p>Hello {{.FirstName}},</p>
<p>Thank you for your interest in chess coaching and AMC 8 preparation!</p>
<p>To complete your message submission, please verify your email address by clicking the link below:</p>
<p><a href="{{.URL}}" style="background-color: #D4AF37; color: white; padding: 12px 24px; text-decoration: none; border-radius: 4px; display: inline-block;">Verify Email Address</a></p>
<p>Or copy and paste this link into your browser: {{.URL}}</p>
<p>Once verified, your message will be forwarded to {{.OwnerName}}.</p>
<p><strong>Your Message Preview:</strong></p>
<p><em>Subject:</em> {{.SubjectLabel}}</p>
<p><em>Message:</em> {{.Message}}</p>
<hr>
<p><small>{{if .Expiry}}This verification link will expire in {{.Expiry}}. {{end}}If you did not submit this form, you can safely ignore this email.</small></p>
`))

var ownerForwardTmpl = template.Must(template.New("forward").Parse(`<h3>Verified Contact Form Submission</h3>
<p><strong>Name:</strong> {{.FullName}}</p>
<p><strong>Email:</strong> {{.Email}} (VERIFIED)</p>
<p><strong>Subject:</strong> {{.SubjectLabel}}</p>
<p><strong>Message:</strong></p>
<p style="white-space: pre-wrap;">{{.Message}}</p>
<hr>
<p><em>This email was verified by the sender clicking a verification link.</em></p>
<p><small>Submitted: {{.CreatedAt}}</small></p>
`))

var confirmationTmpl = template.Must(template.New("confirmation").Parse(`<h3>Your message has been received</h3>
<p>Hello {{.FirstName}},</p>
<p>Thank you for verifying your email address. Your message has been forwarded to {{.OwnerName}}.</p>
<p><strong>Subject:</strong> {{.SubjectLabel}}</p>
<p><strong>Message:</strong></p>
<p style="white-space: pre-wrap;">{{.Message}}</p>
<hr>
<p>Expect a response within 24-48 hours for chess coaching and AMC 8 preparation inquiries.</p>
`))

func render(t *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
