package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// randomCode returns n characters drawn uniformly from A-Z0-9.
func randomCode(n int) string {
	buf := make([]byte, n)
	max := big.NewInt(int64(len(codeAlphabet)))
	for i := range buf {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand only fails when the OS entropy source is broken
			panic(fmt.Sprintf("random code generation failed: %v", err))
		}
		buf[i] = codeAlphabet[idx.Int64()]
	}
	return string(buf)
}

// NewEstateCode returns a 6-character public estate code.
func NewEstateCode() string {
	return randomCode(6)
}

// NewGatePassCode returns a resident gate pass code, e.g. GP-7K2M9X.
func NewGatePassCode() string {
	return "GP-" + randomCode(6)
}

// NewVisitorCode returns a one-off visitor access code, e.g. VIS-8Q3Z.
func NewVisitorCode() string {
	return "VIS-" + randomCode(4)
}

// NewOfficialCode returns an official/staff access code, e.g. OFF-2B7N.
func NewOfficialCode() string {
	return "OFF-" + randomCode(4)
}

// NewRequestCode returns a visit request tracking code, e.g. REQ-4H8PW.
func NewRequestCode() string {
	return "REQ-" + randomCode(5)
}

// NewResidentTokenCode returns an annual resident token code, e.g. RES-9X2K7M.
func NewResidentTokenCode() string {
	return "RES-" + randomCode(6)
}

// NewResidentUserID returns a resident login ID, e.g. USR-3F8K2.
func NewResidentUserID() string {
	return "USR-" + randomCode(5)
}

// NewPaymentRef returns a payment reference, e.g. PAY-6N2Q8XH.
func NewPaymentRef() string {
	return "PAY-" + randomCode(7)
}

// NewAccessPin returns a 6-digit numeric gate pin.
func NewAccessPin() string {
	max := big.NewInt(1000000)
	v, err := rand.Int(rand.Reader, max)
	if err != nil {
		panic(fmt.Sprintf("random pin generation failed: %v", err))
	}
	return fmt.Sprintf("%06d", v.Int64())
}

// NewPinSerial returns a unique serial for a batch-issued pin.
// The index keeps serials distinct within a single batch.
func NewPinSerial(i int) string {
	return fmt.Sprintf("PIN-%d-%d", time.Now().UnixMilli(), i)
}

// NewTokenSerial returns a unique serial for a batch-issued resident token.
func NewTokenSerial(i int) string {
	return fmt.Sprintf("RT-%d-%d", time.Now().UnixMilli(), i)
}
