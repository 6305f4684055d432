package email

import (
	"bytes"
	"fmt"
	"html/template"
)

const (
	subjectPickupConfirmation   = "Your vehicle is on its way - Order #%d"
	subjectDeliveryConfirmation = "Your vehicle has been delivered - Order #%d"
	subjectSurvey               = "How did we do? Order #%d"
	subjectPreSurvey            = "Your delivery is complete - Order #%d"
)

var pickupConfirmationTmpl = template.Must(template.New("pickup_confirmation").Parse(`
<p>Hi {{.CustomerName}},</p>
<p>Your vehicle ({{.VehicleSummary}}) was picked up{{if .When}} on {{.When}}{{end}}{{if .City}} in {{.City}}{{end}} and is on its way.</p>
<p>We will let you know as soon as it is delivered.</p>
`))

var deliveryConfirmationTmpl = template.Must(template.New("delivery_confirmation").Parse(`
<p>Hi {{.CustomerName}},</p>
<p>Your vehicle ({{.VehicleSummary}}) was delivered{{if .When}} on {{.When}}{{end}}{{if .City}} in {{.City}}{{end}}.</p>
<p>Thank you for shipping with us.</p>
`))

var surveyTmpl = template.Must(template.New("survey").Parse(`
<p>Hi {{.CustomerName}},</p>
<p>Your transport for order #{{.OrderRef}} is complete. We would love to hear how it went.</p>
{{if .SurveyURL}}<p><a href="{{.SurveyURL}}">Take the two-minute survey</a></p>{{end}}
`))

var preSurveyTmpl = template.Must(template.New("pre_survey").Parse(`
<p>Hi {{.CustomerName}},</p>
<p>Your vehicle for order #{{.OrderRef}} has been delivered. A short survey will follow in the next few days.</p>
{{if .SurveyURL}}<p>If you have a moment now: <a href="{{.SurveyURL}}">share your feedback</a>.</p>{{end}}
`))

func renderPickupConfirmation(data ConfirmationData) (string, string, error) {
	return render(pickupConfirmationTmpl, fmt.Sprintf(subjectPickupConfirmation, data.OrderRef), data)
}

func renderDeliveryConfirmation(data ConfirmationData) (string, string, error) {
	return render(deliveryConfirmationTmpl, fmt.Sprintf(subjectDeliveryConfirmation, data.OrderRef), data)
}

func renderSurvey(data SurveyData) (string, string, error) {
	return render(surveyTmpl, fmt.Sprintf(subjectSurvey, data.OrderRef), data)
}

func renderPreSurvey(data SurveyData) (string, string, error) {
	return render(preSurveyTmpl, fmt.Sprintf(subjectPreSurvey, data.OrderRef), data)
}

func render(tmpl *template.Template, subject string, data any) (string, string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", "", fmt.Errorf("render %s template: %w", tmpl.Name(), err)
	}
	return subject, buf.String(), nil
}
