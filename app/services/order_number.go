package services

import (
	nanoid "github.com/jaevor/go-nanoid"
)

// Order numbers avoid 0/O and 1/I so they can be read over the phone.
const orderNumberAlphabet = "23456789ABCDEFGHJKLMNPQRSTUVWXYZ"

// NewOrderNumberGenerator returns a generator of "VS-XXXXXXXXXX" numbers.
func NewOrderNumberGenerator() func() string {
	gen, err := nanoid.CustomASCII(orderNumberAlphabet, 10)
	if err != nil {
		panic(err) // constant alphabet and length
	}
	return func() string { return "VS-" + gen() }
}
