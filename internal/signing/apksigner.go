package signing

import (
	"regexp"
	"strings"
)

// APKInfo is what apksigner reports about an APK.
type APKInfo struct {
	V1      bool         `json:"v1"`
	V2      bool         `json:"v2"`
	V3      bool         `json:"v3"`
	Signers []SignerInfo `json:"signers"`
}

// SignerInfo describes one signing certificate. Fields the output did not
// mention are empty.
type SignerInfo struct {
	SHA256    string `json:"sha256"`
	Subject   string `json:"subject"`
	Issuer    string `json:"issuer"`
	ValidFrom string `json:"valid_from"`
	ValidTo   string `json:"valid_to"`
}

var (
	// Newer build-tools print "scheme (APK Signature Scheme v2): true".
	schemeV1 = schemePattern("v1")
	schemeV2 = schemePattern("v2")
	schemeV3 = schemePattern("v3")

	signerMarker    = regexp.MustCompile(`Signer #\d+ certificate:`)
	sha256Pattern   = regexp.MustCompile(`SHA-256 digest:\s*([A-Fa-f0-9:]+)`)
	subjectPattern  = regexp.MustCompile(`Subject:\s*(.+)`)
	issuerPattern   = regexp.MustCompile(`Issuer:\s*(.+)`)
	validityPattern = regexp.MustCompile(`Validity:\s*From\s*(.+?)\s*To\s*(.+)`)
)

func schemePattern(version string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)Verified using ` + version + ` scheme(?:\s*\([^)\n]*\))?\s*:\s*(true|false)`)
}

// ParseAPKSigner scrapes `apksigner verify --verbose --print-certs` output.
// Every field is matched independently; a miss leaves it false or empty.
func ParseAPKSigner(text string) APKInfo {
	info := APKInfo{
		V1:      schemeFlag(schemeV1, text),
		V2:      schemeFlag(schemeV2, text),
		V3:      schemeFlag(schemeV3, text),
		Signers: []SignerInfo{},
	}

	blocks := signerMarker.Split(text, -1)
	for _, block := range blocks[1:] {
		from, to := submatch2(validityPattern, block)
		info.Signers = append(info.Signers, SignerInfo{
			SHA256:    submatch(sha256Pattern, block),
			Subject:   submatch(subjectPattern, block),
			Issuer:    submatch(issuerPattern, block),
			ValidFrom: from,
			ValidTo:   to,
		})
	}
	return info
}

func schemeFlag(re *regexp.Regexp, text string) bool {
	m := re.FindStringSubmatch(text)
	return m != nil && strings.EqualFold(m[1], "true")
}

func submatch(re *regexp.Regexp, text string) string {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

func submatch2(re *regexp.Regexp, text string) (string, string) {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return "", ""
	}
	return strings.TrimSpace(m[1]), strings.TrimSpace(m[2])
}
