package signing

import "regexp"

// AABInfo is the signer identity jarsigner reports for an app bundle.
type AABInfo struct {
	Signer    string `json:"signer"`
	Algorithm string `json:"algorithm"`
}

var (
	x509Pattern      = regexp.MustCompile(`X\.509,\s*(.+)`)
	algorithmPattern = regexp.MustCompile(`Signature algorithm:\s*([^\n]+)`)
)

// ParseJarsigner scrapes `jarsigner -verify -verbose -certs` output.
func ParseJarsigner(text string) AABInfo {
	return AABInfo{
		Signer:    submatch(x509Pattern, text),
		Algorithm: submatch(algorithmPattern, text),
	}
}
