package service

import (
	"crypto/rand"
	"math/big"
)

// TicketPrefix starts every ticket id; 27 is the Kumbh year.
const TicketPrefix = "KM-27-"

const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

var alphabetSize = big.NewInt(int64(len(codeAlphabet)))

// randomCode returns n characters drawn independently and uniformly from
// [A-Z0-9].
func randomCode(n int) (string, error) {
	b := make([]byte, n)
	for i := range b {
		k, err := rand.Int(rand.Reader, alphabetSize)
		if err != nil {
			return "", err
		}
		b[i] = codeAlphabet[k.Int64()]
	}
	return string(b), nil
}

// NewTicketID builds KM-27-<SHORTCODE>-<4 random chars>.  Ids are not
// checked against existing registrations.
func NewTicketID(shortCode string) (string, error) {
	suffix, err := randomCode(4)
	if err != nil {
		return "", err
	}
	return TicketPrefix + shortCode + "-" + suffix, nil
}

// NewCaseID builds MP-<6 random chars> for missing person reports.
func NewCaseID() (string, error) {
	suffix, err := randomCode(6)
	if err != nil {
		return "", err
	}
	return "MP-" + suffix, nil
}
