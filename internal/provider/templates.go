package provider

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
)

var invitationTmpl = template.Must(template.New("invitation").Parse(`<!doctype html>
<html><body style="font-family:sans-serif">
<h2>You're invited to join {{.TenantName}}</h2>
<p>{{.InviterName}} invited you to join <strong>{{.TenantName}}</strong> as {{.Role}}.</p>
{{if .Message}}<blockquote>{{.Message}}</blockquote>{{end}}
<p><a href="{{.AcceptURL}}">Accept invitation</a></p>
<p style="color:#777">This invitation expires on {{.ExpiresOn}}.</p>
</body></html>`))

var orderTmpl = template.Must(template.New("order").Parse(`<!doctype html>
<html><body style="font-family:sans-serif">
<h2>{{.Headline}}</h2>
<p>Hi {{.CustomerName}},</p>
<p>Your order <strong>{{.OrderNumber}}</strong> with {{.TenantName}} is now <strong>{{.Status}}</strong>.</p>
<p>Total: {{.Total}} {{.Currency}}</p>
</body></html>`))

// InvitationEmail feeds the invitation template.
type InvitationEmail struct {
	TenantName  string
	InviterName string
	Role        string
	Message     string
	AcceptURL   string
	ExpiresOn   string
}

// RenderInvitation returns the subject and HTML body of an invitation.
func RenderInvitation(d InvitationEmail) (string, string, error) {
	var buf bytes.Buffer
	if err := invitationTmpl.Execute(&buf, d); err != nil {
		return "", "", err
	}
	return fmt.Sprintf("You're invited to join %s", d.TenantName), buf.String(), nil
}

// OrderEmail feeds the order update template.
type OrderEmail struct {
	CustomerName string
	OrderNumber  string
	TenantName   string
	Status       string
	Total        string
	Currency     string
}

// RenderOrderUpdate returns the subject and HTML body for an order event.
func RenderOrderUpdate(d OrderEmail) (string, string, error) {
	headline := "Order update"
	subject := fmt.Sprintf("Order %s is %s", d.OrderNumber, strings.ReplaceAll(d.Status, "_", " "))
	if d.Status == "pending" {
		headline = "Thanks for your order"
		subject = fmt.Sprintf("Order %s received", d.OrderNumber)
	}
	data := struct {
		OrderEmail
		Headline string
	}{d, headline}
	var buf bytes.Buffer
	if err := orderTmpl.Execute(&buf, data); err != nil {
		return "", "", err
	}
	return subject, buf.String(), nil
}
