package valueobject

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/nyaruka/phonenumbers"
)

const (
	countryCodeMaxLen = 3
	phoneNumberMinLen = 6
	phoneNumberMaxLen = 14
	phoneFullMinLen   = 7
	phoneFullMaxLen   = 20

	unknownRegion = "ZZ"
)

// Phone is an international number kept as country calling code + national number.
type Phone struct {
	countryCode string
	number      string
}

// NewPhone builds a phone from its two parts. The country code may carry a leading +.
func NewPhone(countryCode, number string) (Phone, error) {
	cc := strings.TrimPrefix(stripSpaces(countryCode), "+")
	n := stripSpaces(number)
	if cc == "" || n == "" {
		return Phone{}, newError(CategoryPhone, KindEmpty)
	}
	if !digitsRule.match(cc) || !digitsRule.match(n) {
		return Phone{}, errFormat(CategoryPhone, digitsRule.name)
	}
	if len(cc) > countryCodeMaxLen {
		return Phone{}, errTooLong(CategoryPhone, countryCodeMaxLen)
	}
	if len(n) < phoneNumberMinLen {
		return Phone{}, errTooShort(CategoryPhone, phoneNumberMinLen)
	}
	if len(n) > phoneNumberMaxLen {
		return Phone{}, errTooLong(CategoryPhone, phoneNumberMaxLen)
	}
	return Phone{countryCode: cc, number: n}, nil
}

// ParsePhone accepts a single E.164 string such as "+57 320 123 4567". Only the
// total digit count is bounded; the country code is the assigned calling code
// libphonenumber finds at the start, or the first three digits when none is.
func ParsePhone(raw string) (Phone, error) {
	v := stripSpaces(raw)
	if v == "" {
		return Phone{}, newError(CategoryPhone, KindEmpty)
	}
	digits := strings.TrimPrefix(v, "+")
	if len(digits) < phoneFullMinLen {
		return Phone{}, errTooShort(CategoryPhone, phoneFullMinLen)
	}
	if len(digits) > phoneFullMaxLen {
		return Phone{}, errTooLong(CategoryPhone, phoneFullMaxLen)
	}
	if !phoneRule.match(v) {
		return Phone{}, errFormat(CategoryPhone, phoneRule.name)
	}
	cc := splitCountryCode(digits)
	return Phone{countryCode: cc, number: digits[len(cc):]}, nil
}

// RestorePhone rebuilds stored parts produced by either NewPhone or ParsePhone.
func RestorePhone(countryCode, number string) (Phone, error) {
	p, err := NewPhone(countryCode, number)
	if err == nil {
		return p, nil
	}
	cc := strings.TrimPrefix(stripSpaces(countryCode), "+")
	full, perr := ParsePhone("+" + cc + stripSpaces(number))
	if perr != nil || full.countryCode != cc {
		return Phone{}, err
	}
	return full, nil
}

// splitCountryCode relies on calling codes being prefix-free. None starts with 0.
func splitCountryCode(digits string) string {
	if digits[0] != '0' {
		for n := 1; n <= countryCodeMaxLen; n++ {
			cc, _ := strconv.Atoi(digits[:n])
			if phonenumbers.GetRegionCodeForCountryCode(cc) != unknownRegion {
				return digits[:n]
			}
		}
	}
	return digits[:countryCodeMaxLen]
}

func (p Phone) CountryCode() string { return "+" + p.countryCode }
func (p Phone) Number() string      { return p.number }

// String renders the E.164 form.
func (p Phone) String() string      { return "+" + p.countryCode + p.number }
func (p Phone) Equals(o Phone) bool { return p.countryCode == o.countryCode && p.number == o.number }

// Region returns the ISO region owning the country code ("CO" for +57), or "ZZ".
func (p Phone) Region() string {
	cc, err := strconv.Atoi(p.countryCode)
	if err != nil {
		return unknownRegion
	}
	return phonenumbers.GetRegionCodeForCountryCode(cc)
}

func stripSpaces(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

func (p Phone) MarshalText() ([]byte, error) { return []byte(p.String()), nil }
