package valueobject

import "regexp"

// rule pairs a compiled pattern with the name reported in Format errors.
type rule struct {
	name string
	re   *regexp.Regexp
}

func (r rule) match(s string) bool { return r.re.MatchString(s) }

var (
	emailRule = rule{
		name: "email",
		re: regexp.MustCompile(`^[a-z0-9](?:[a-z0-9._-]{0,62}[a-z0-9])?@` +
			`[a-z0-9](?:[a-z0-9-]{0,61}[a-z0-9])?(?:\.[a-z0-9](?:[a-z0-9-]{0,61}[a-z0-9])?)*` +
			`\.[a-z]{2,24}$`),
	}
	usernameRule = rule{name: "username", re: regexp.MustCompile(`^[a-z][a-z0-9](?:[._-]?[a-z0-9])*$`)}
	roleNameRule = rule{name: "role_name", re: regexp.MustCompile(`^[a-z][a-z0-9_-]*$`)}
	localeRule   = rule{name: "bcp47", re: regexp.MustCompile(`^[a-z]{2}(?:-[A-Z]{2})?$`)}
	phoneRule    = rule{name: "e164", re: regexp.MustCompile(`^\+[0-9]{7,20}$`)}
	digitsRule   = rule{name: "digits", re: regexp.MustCompile(`^[0-9]+$`)}
)
