package identity

import (
	"sort"
	"strings"
	"unicode"
)

// Normalize canonicalizes a raw identity. It is total: empty or malformed
// names and emails degrade to empty token sets instead of failing, which
// downstream scorers treat as "no evidence" rather than an error.
func Normalize(raw Raw) Normalized {
	fields := nameFields(raw.Name)
	tokens := dropInitialTokens(fields)
	local, domain := normalizeEmail(raw.Email)

	n := Normalized{
		NameTokens:  tokens,
		EmailLocal:  local,
		EmailDomain: domain,
	}

	if len(fields) > 0 {
		// Initials come from the pre-drop fields so that the "J" in
		// "J. Doe" survives even though the token itself is discarded.
		n.Initials = tokenInitials(fields)
	}

	if len(tokens) > 0 {
		sorted := make([]string, len(tokens))
		copy(sorted, tokens)
		sort.Strings(sorted)

		n.JoinedName = strings.Join(sorted, " ")
		n.FirstName = tokens[0]
		n.LastName = tokens[len(tokens)-1]
		n.Variants = nicknameVariants(tokens)
	}

	return n
}

// nameFields lowercases the name, replaces punctuation with spaces (hyphens
// split double-barrelled names into separate tokens), and splits on
// whitespace.
func nameFields(name string) []string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			return unicode.ToLower(r)
		default:
			return ' '
		}
	}, name)

	return strings.Fields(cleaned)
}

// dropInitialTokens removes single-rune tokens such as abbreviated middle
// names, unless the name consists of nothing else; a name like "J R" keeps
// its initials as the only signal.
func dropInitialTokens(fields []string) []string {
	if len(fields) == 0 {
		return nil
	}

	tokens := make([]string, 0, len(fields))

	for _, f := range fields {
		if len([]rune(f)) > 1 {
			tokens = append(tokens, f)
		}
	}

	if len(tokens) == 0 {
		return fields
	}

	return tokens
}

// normalizeEmail splits the address at the first '@' and canonicalizes both
// halves. The local part drops the separator characters '.', '_', '-' and
// '+' (and anything after '+', which mail providers treat as a tag), plus a
// trailing run of digits commonly appended by hosting platforms as a user id.
func normalizeEmail(email string) (local, domain string) {
	addr := lowerTrim(email)
	if addr == "" {
		return "", ""
	}

	at := strings.IndexByte(addr, '@')
	if at <= 0 {
		return "", ""
	}

	local = stripLocalPart(addr[:at])
	domain = addr[at+1:]

	return local, domain
}

func stripLocalPart(local string) string {
	if tag := strings.IndexByte(local, '+'); tag >= 0 {
		local = local[:tag]
	}

	local = strings.Map(func(r rune) rune {
		if r == '.' || r == '_' || r == '-' {
			return -1
		}

		return r
	}, local)

	return stripDigitSuffix(local)
}

// stripDigitSuffix removes a trailing digits-only run ("jdoe12345" becomes
// "jdoe") unless the local part is all digits, which is kept as-is.
func stripDigitSuffix(local string) string {
	end := len(local)
	for end > 0 && local[end-1] >= '0' && local[end-1] <= '9' {
		end--
	}

	if end == 0 {
		return local
	}

	return local[:end]
}

func tokenInitials(tokens []string) []string {
	initials := make([]string, 0, len(tokens))

	for _, tok := range tokens {
		runes := []rune(tok)
		if len(runes) > 0 {
			initials = append(initials, string(runes[0]))
		}
	}

	return initials
}
