package mask

import "regexp"

// Format is a value shape that is always a credential, whatever rule
// would otherwise accept it.
type Format struct {
	Name  string
	Regex *regexp.Regexp
}

// Formats match the whole value, except private-key which matches a PEM
// header anywhere in a multi-line value.
var Formats = []Format{
	{"aws-access-key-id", regexp.MustCompile(`^AKIA[0-9A-Z]{16}$`)},
	{"github-token", regexp.MustCompile(`^(ghp|gho|ghu|ghs)_[0-9a-zA-Z]{36}$`)},
	{"github-fine-grained-pat", regexp.MustCompile(`^github_pat_[0-9a-zA-Z_]{22,}$`)},
	{"gitlab-token", regexp.MustCompile(`^gl(pat|dt|ft)-[0-9a-zA-Z\-]{20}$`)},
	{"slack-token", regexp.MustCompile(`^xox[baprs]-[0-9]{10,13}-[0-9]{10,13}(-[0-9a-zA-Z]{24})?$`)},
	{"slack-webhook", regexp.MustCompile(`^https://hooks\.slack\.com/services/T[0-9A-Z]{8,12}/B[0-9A-Z]{8,12}/[0-9a-zA-Z]{24}$`)},
	{"private-key", regexp.MustCompile(`-----BEGIN (RSA |EC |DSA |OPENSSH )?PRIVATE KEY-----`)},
	{"google-api-key", regexp.MustCompile(`^AIza[0-9A-Za-z_-]{35}$`)},
	{"stripe-key", regexp.MustCompile(`^(sk|rk)_(live|test)_[0-9a-zA-Z]{24,}$`)},
	{"anthropic-api-key", regexp.MustCompile(`^sk-ant-[a-zA-Z0-9\-_]{80,}$`)},
	{"openai-api-key", regexp.MustCompile(`^sk-[a-zA-Z0-9_-]{20,}$`)},
	{"sendgrid-api-key", regexp.MustCompile(`^SG\.[a-zA-Z0-9=_\-\.]{66}$`)},
	{"docker-hub-pat", regexp.MustCompile(`^dckr_pat_[0-9a-zA-Z_-]{27}$`)},
	{"pypi-token", regexp.MustCompile(`^pypi-AgEIcHlwaS5vcmc[\w-]{50,}$`)},
	{"shopify-token", regexp.MustCompile(`^shp(at|ca)_[a-fA-F0-9]{32}$`)},
	{"age-identity", regexp.MustCompile(`^AGE-SECRET-KEY-1[0-9A-Z]{58}$`)},
	{"jwt", regexp.MustCompile(`^eyJ[a-zA-Z0-9_-]*\.eyJ[a-zA-Z0-9_-]*\.[a-zA-Z0-9_-]*$`)},
}

// Kind names the credential format value matches, or "" for none.
func Kind(value string) string {
	for _, f := range Formats {
		if f.Regex.MatchString(value) {
			return f.Name
		}
	}
	return ""
}
