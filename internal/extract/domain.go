// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import "strings"

// InstitutionDomain derives a canonical organization domain from an email
// address: the second-level and top-level labels joined by a dot
// ("a@mail.ucsd.edu" and "a@ucsd.edu" both yield "ucsd.edu"). A domain
// with two or fewer labels is returned unchanged. Empty input, input
// without "@", or an empty domain part all yield "": absence, not an
// error; malformed addresses degrade to absence.
func InstitutionDomain(email string) string {
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return ""
	}
	domain := email[at+1:]
	if domain == "" {
		return ""
	}
	labels := strings.Split(domain, ".")
	if len(labels) > 2 {
		return strings.Join(labels[len(labels)-2:], ".")
	}
	return domain
}
