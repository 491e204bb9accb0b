package review

import "regexp"

// secretPattern pairs a credential shape with its redaction text.
// Replacement templates may reference capture groups to keep the
// surrounding Apex readable for the model.
type secretPattern struct {
	kind    string
	re      *regexp.Regexp
	replace string
}

// Shapes worth catching in Apex source headed for an external
// provider: sfdx auth URLs, key material, and the classic hardcoded
// credential assignments that Named Credentials should replace.
var secretPatterns = []secretPattern{
	{
		kind:    "sfdx_auth_url",
		re:      regexp.MustCompile(`\bforce://[^\s'"]+`),
		replace: "[SFDX_AUTH_URL_REDACTED]",
	},
	{
		kind:    "private_key",
		re:      regexp.MustCompile(`-----BEGIN\s+(?:RSA\s+|EC\s+|OPENSSH\s+)?PRIVATE\s+KEY-----[^-]*-----END\s+(?:RSA\s+|EC\s+|OPENSSH\s+)?PRIVATE\s+KEY-----`),
		replace: "[PRIVATE_KEY_REDACTED]",
	},
	{
		kind:    "jwt",
		re:      regexp.MustCompile(`\beyJ[A-Za-z0-9_\-]+\.eyJ[A-Za-z0-9_\-]+\.[A-Za-z0-9_\-]+`),
		replace: "[JWT_REDACTED]",
	},
	{
		kind:    "aws_key",
		re:      regexp.MustCompile(`\bAKIA[0-9A-Z]{16}\b`),
		replace: "[AWS_KEY_REDACTED]",
	},
	{
		kind:    "bearer_token",
		re:      regexp.MustCompile(`(?i)\bBearer\s+[A-Za-z0-9_\-.]{20,}`),
		replace: "Bearer [TOKEN_REDACTED]",
	},
	{
		kind:    "password_literal",
		re:      regexp.MustCompile(`(?i)(password|passwd|pwd)(\s*=\s*)'[^']{6,}'`),
		replace: "${1}${2}'[PASSWORD_REDACTED]'",
	},
	{
		kind:    "secret_literal",
		re:      regexp.MustCompile(`(?i)(api[_]?key|client[_]?secret|consumer[_]?secret|access[_]?token|session[_]?id)(\s*=\s*)'[^']{12,}'`),
		replace: "${1}${2}'[SECRET_REDACTED]'",
	},
}

// redactSecrets strips credential-looking strings from file content
// before it leaves the machine. Returns the cleaned text and the
// number of redactions per kind; a nil map means the text is clean.
func redactSecrets(text string) (string, map[string]int) {
	var counts map[string]int

	for _, p := range secretPatterns {
		n := len(p.re.FindAllStringIndex(text, -1))
		if n == 0 {
			continue
		}
		if counts == nil {
			counts = make(map[string]int)
		}
		counts[p.kind] += n
		text = p.re.ReplaceAllString(text, p.replace)
	}

	return text, counts
}
