package order

import "strings"

const bengaliZero = '০'

// NormalizePhone reduces a phone number to the key used for customer matching:
// digits only, Bengali digits mapped to ASCII, and an 880 country prefix on a
// full-length number replaced by the local leading zero.
func NormalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r >= bengaliZero && r <= bengaliZero+9:
			b.WriteRune('0' + (r - bengaliZero))
		}
	}

	key := b.String()
	if len(key) == 13 && strings.HasPrefix(key, "880") {
		key = key[2:]
	}

	return key
}
