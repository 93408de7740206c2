package identity

import "sort"

// nicknameTable maps common English nicknames to the full given name.
// Both directions are used when expanding variants.
var nicknameTable = map[string]string{
	"bob":     "robert",
	"bobby":   "robert",
	"rob":     "robert",
	"bill":    "william",
	"billy":   "william",
	"will":    "william",
	"dick":    "richard",
	"rick":    "richard",
	"rich":    "richard",
	"jim":     "james",
	"jimmy":   "james",
	"jamie":   "james",
	"mike":    "michael",
	"mickey":  "michael",
	"mick":    "michael",
	"dave":    "david",
	"davey":   "david",
	"steve":   "steven",
	"stevie":  "steven",
	"chris":   "christopher",
	"dan":     "daniel",
	"danny":   "daniel",
	"matt":    "matthew",
	"matty":   "matthew",
	"joe":     "joseph",
	"joey":    "joseph",
	"tom":     "thomas",
	"tommy":   "thomas",
	"pat":     "patrick",
	"patty":   "patrick",
	"tim":     "timothy",
	"timmy":   "timothy",
	"al":      "albert",
	"alex":    "alexander",
	"andy":    "andrew",
	"ben":     "benjamin",
	"brad":    "bradley",
	"charlie": "charles",
	"ed":      "edward",
	"eddie":   "edward",
	"fred":    "frederick",
	"greg":    "gregory",
	"harry":   "henry",
	"jeff":    "jeffrey",
	"ken":     "kenneth",
	"kenny":   "kenneth",
	"larry":   "lawrence",
	"leo":     "leonard",
	"pete":    "peter",
	"phil":    "philip",
	"ray":     "raymond",
	"sam":     "samuel",
	"shawn":   "sean",
	"ted":     "theodore",
	"tony":    "anthony",
	"vic":     "victor",
}

// fullNameTable is the reverse of nicknameTable: full name to its nicknames.
var fullNameTable = buildFullNameTable()

func buildFullNameTable() map[string][]string {
	reversed := make(map[string][]string, len(nicknameTable))

	for nick, full := range nicknameTable {
		reversed[full] = append(reversed[full], nick)
	}

	for _, nicks := range reversed {
		sort.Strings(nicks)
	}

	return reversed
}

// canonicalGivenName resolves a nickname to its full given name, or returns
// the token unchanged when it is not a known nickname.
func canonicalGivenName(token string) string {
	if full, ok := nicknameTable[token]; ok {
		return full
	}

	return token
}

// VariantMatch reports whether two distinct name tokens are nickname
// variants of the same given name ("bob" and "robert", "bobby" and "rob").
func VariantMatch(a, b string) bool {
	if a == "" || b == "" || a == b {
		return false
	}

	return canonicalGivenName(a) == canonicalGivenName(b)
}

// nicknameVariants returns the deduplicated set of name tokens plus their
// nickname expansions in both directions, sorted for determinism.
func nicknameVariants(tokens []string) []string {
	set := make(map[string]struct{}, len(tokens))

	for _, tok := range tokens {
		set[tok] = struct{}{}

		if full, ok := nicknameTable[tok]; ok {
			set[full] = struct{}{}
		}

		for _, nick := range fullNameTable[tok] {
			set[nick] = struct{}{}
		}
	}

	variants := make([]string, 0, len(set))
	for v := range set {
		variants = append(variants, v)
	}

	sort.Strings(variants)

	return variants
}
