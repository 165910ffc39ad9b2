package registry

import (
	"strings"
	"unicode"

	"github.com/siherrmann/uidn/model"
)

// NormalizePhone strips all non-digit characters and keeps the last 11
// digits, so numbers with country prefixes collapse onto their local form.
func NormalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}

	digits := b.String()
	if len(digits) > 11 {
		digits = digits[len(digits)-11:]
	}
	return digits
}

// NormalizeName trims and lowercases a name
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// NormalizeHandle trims and lowercases a messaging handle
func NormalizeHandle(handle string) string {
	return strings.ToLower(strings.TrimSpace(handle))
}

// NormalizeIDCard removes all whitespace and uppercases the check digit
func NormalizeIDCard(idcard string) string {
	return strings.ToUpper(stripWhitespace(idcard))
}

// NormalizeAccount removes all whitespace
func NormalizeAccount(account string) string {
	return stripWhitespace(account)
}

func stripWhitespace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

// Identifier alias sets as produced by the different extraction workers and
// external providers. The first non-empty alias wins.
var (
	phoneAliases   = []string{"phone", "phone_number"}
	wechatAliases  = []string{"wechat", "wechat_id", "handle"}
	idcardAliases  = []string{"idcard", "id_card", "id_card_number"}
	accountAliases = []string{"account", "bank_account", "payment_account"}
)

func firstAttr(attrs model.Metadata, aliases []string) string {
	for _, key := range aliases {
		if v := attrs.GetString(key); v != "" {
			return v
		}
	}
	return ""
}

func phoneAttr(attrs model.Metadata) string   { return firstAttr(attrs, phoneAliases) }
func wechatAttr(attrs model.Metadata) string  { return firstAttr(attrs, wechatAliases) }
func idcardAttr(attrs model.Metadata) string  { return firstAttr(attrs, idcardAliases) }
func accountAttr(attrs model.Metadata) string { return firstAttr(attrs, accountAliases) }
