package notify

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	"text/template"
)

const tourTextTemplate = `Hi {{.Name}},

Your tour at {{.PropertyName}} is confirmed!

Confirmation number: {{.ConfirmationNumber}}
Unit: {{.UnitID}} ({{.Beds}} bed / {{.Baths}} bath, {{.Sqft}} sqft, ${{.Rent}}/mo)
Tour date: {{.TourDate}} at {{.TourTime}}
Address: {{.PropertyAddress}}
Desired move-in: {{.MoveInDate}}

What to bring:
  - Valid government-issued photo ID
  - Proof of income (recent pay stubs or employment letter)
  - Application fee ($50, if you decide to apply)

If you need to reschedule, call our leasing office at {{.OfficePhone}}.

See you soon!
{{.PropertyName}} Leasing Team
`

const tourHTMLTemplate = `<html><body>
<p>Hi {{.Name}},</p>
<p>Your tour at <strong>{{.PropertyName}}</strong> is confirmed!</p>
<ul>
<li><strong>Confirmation number:</strong> {{.ConfirmationNumber}}</li>
<li><strong>Unit:</strong> {{.UnitID}} ({{.Beds}} bed / {{.Baths}} bath, {{.Sqft}} sqft, ${{.Rent}}/mo)</li>
<li><strong>Tour date:</strong> {{.TourDate}} at {{.TourTime}}</li>
<li><strong>Address:</strong> {{.PropertyAddress}}</li>
<li><strong>Desired move-in:</strong> {{.MoveInDate}}</li>
</ul>
<p><strong>What to bring:</strong></p>
<ul>
<li>Valid government-issued photo ID</li>
<li>Proof of income (recent pay stubs or employment letter)</li>
<li>Application fee ($50, if you decide to apply)</li>
</ul>
<p>If you need to reschedule, call our leasing office at {{.OfficePhone}}.</p>
<p>See you soon!<br>{{.PropertyName}} Leasing Team</p>
</body></html>`

const multiTourTextTemplate = `Hi {{.Name}},

Your group tour at {{.PropertyName}} is confirmed!

Master confirmation number: {{.MasterConfirmation}}
Units on your tour:
{{range .Units}}  - {{.UnitID}} ({{.Beds}} bed / {{.Baths}} bath, ${{.Rent}}/mo), confirmation {{.ConfirmationNumber}}
{{end}}
Tour date: {{.TourDate}} at {{.TourTime}}
Address: {{.PropertyAddress}}

What to bring:
  - Valid government-issued photo ID
  - Proof of income (recent pay stubs or employment letter)
  - Application fee ($50, if you decide to apply)

If you need to reschedule, call our leasing office at {{.OfficePhone}}.

See you soon!
{{.PropertyName}} Leasing Team
`

// renderText compiles a text template with strict missing-key semantics.
func renderText(name, tmpl string, data any) (string, error) {
	t, err := template.New(name).Option("missingkey=error").Parse(tmpl)
	if err != nil {
		return "", fmt.Errorf("notify: parse %s: %w", name, err)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("notify: render %s: %w", name, err)
	}
	return buf.String(), nil
}

// renderHTML compiles an HTML template, escaping interpolated values.
func renderHTML(name, tmpl string, data any) (string, error) {
	t, err := htmltemplate.New(name).Option("missingkey=error").Parse(tmpl)
	if err != nil {
		return "", fmt.Errorf("notify: parse %s: %w", name, err)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("notify: render %s: %w", name, err)
	}
	return buf.String(), nil
}
