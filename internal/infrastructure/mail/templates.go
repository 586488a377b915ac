package mail

import (
	"bytes"
	"embed"
	htmltemplate "html/template"
	texttemplate "text/template"
	"time"
)

// VerificationSubject is the subject line of the signup code email.
const VerificationSubject = "رمز التحقق - MechaMind | Verification Code"

//go:embed templates/*
var templateFS embed.FS

var (
	verificationHTML = htmltemplate.Must(htmltemplate.ParseFS(templateFS, "templates/verification.html"))
	verificationText = texttemplate.Must(texttemplate.ParseFS(templateFS, "templates/verification.txt"))
)

type verificationData struct {
	Code    string
	Minutes int
	Year    int
}

// RenderVerificationEmail builds the bilingual code email for one recipient.
func RenderVerificationEmail(to, code string, ttl time.Duration) (Message, error) {
	minutes := int(ttl.Round(time.Minute) / time.Minute)
	if minutes < 1 {
		minutes = 1
	}
	data := verificationData{Code: code, Minutes: minutes, Year: time.Now().Year()}

	var html, text bytes.Buffer
	if err := verificationHTML.Execute(&html, data); err != nil {
		return Message{}, err
	}
	if err := verificationText.Execute(&text, data); err != nil {
		return Message{}, err
	}

	return Message{
		To:      to,
		Subject: VerificationSubject,
		HTML:    html.String(),
		Text:    text.String(),
	}, nil
}
