package utils

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodeFormats(t *testing.T) {
	cases := []struct {
		name    string
		gen     func() string
		pattern string
	}{
		{"estate code", NewEstateCode, `^[A-Z0-9]{6}$`},
		{"gate pass", NewGatePassCode, `^GP-[A-Z0-9]{6}$`},
		{"visitor code", NewVisitorCode, `^VIS-[A-Z0-9]{4}$`},
		{"official code", NewOfficialCode, `^OFF-[A-Z0-9]{4}$`},
		{"request code", NewRequestCode, `^REQ-[A-Z0-9]{5}$`},
		{"resident token", NewResidentTokenCode, `^RES-[A-Z0-9]{6}$`},
		{"resident user id", NewResidentUserID, `^USR-[A-Z0-9]{5}$`},
		{"payment ref", NewPaymentRef, `^PAY-[A-Z0-9]{7}$`},
		{"access pin", NewAccessPin, `^[0-9]{6}$`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			re := regexp.MustCompile(tc.pattern)
			for i := 0; i < 50; i++ {
				code := tc.gen()
				assert.Regexp(t, re, code)
			}
		})
	}
}

func TestCodesAreUppercase(t *testing.T) {
	for i := 0; i < 100; i++ {
		code := NewGatePassCode()
		assert.Equal(t, strings.ToUpper(code), code)
	}
}

func TestSerialsDistinctWithinBatch(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 500; i++ {
		s := NewPinSerial(i)
		assert.False(t, seen[s], "duplicate pin serial %s", s)
		seen[s] = true
	}
	seen = map[string]bool{}
	for i := 0; i < 500; i++ {
		s := NewTokenSerial(i)
		assert.False(t, seen[s], "duplicate token serial %s", s)
		seen[s] = true
	}
}
