package domain

import "regexp"

// MyshopifySuffix is the only host suffix accepted for shop domains.
const MyshopifySuffix = ".myshopify.com"

var shopPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9-]*` + regexp.QuoteMeta(MyshopifySuffix) + `/?$`)

// IsValidShop reports whether shop is a bare myshopify subdomain, optionally
// followed by a single slash. The check is purely syntactic.
func IsValidShop(shop string) bool {
	return shopPattern.MatchString(shop)
}
