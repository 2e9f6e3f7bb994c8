package signing

import (
	"bytes"
	"html/template"
)

const (
	glyphPass = "✅"
	glyphFail = "❌"
)

var reportTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"glyph": glyph,
}).Parse(`<!doctype html><meta charset="utf-8"><title>APK Signature Report</title>` +
	`<h2>APK Signature Verification</h2>` +
	`<p>V1: {{glyph .APK.V1}} | V2: {{glyph .APK.V2}} | V3: {{glyph .APK.V3}}</p>` +
	`<h3>Signers</h3>` +
	`<ul>{{range .Signers}}<li><pre>{{.}}</pre></li>{{end}}</ul>` +
	`<h2>AAB JAR Signing</h2>` +
	`<pre>{{.AAB}}</pre>`))

type reportView struct {
	APK     APKInfo
	Signers []string
	AAB     string
}

func glyph(ok bool) string {
	if ok {
		return glyphPass
	}
	return glyphFail
}

// RenderHTML renders the report page. Signer and AAB blocks show their
// indented JSON, escaped by the template.
func RenderHTML(report *Report) ([]byte, error) {
	view := reportView{APK: report.APK, Signers: make([]string, 0, len(report.APK.Signers))}
	for _, signer := range report.APK.Signers {
		data, err := marshalIndented(signer)
		if err != nil {
			return nil, err
		}
		view.Signers = append(view.Signers, string(data))
	}
	aab, err := marshalIndented(report.AAB)
	if err != nil {
		return nil, err
	}
	view.AAB = string(aab)

	var buf bytes.Buffer
	if err := reportTemplate.Execute(&buf, view); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
