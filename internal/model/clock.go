package model

import "time"

// Clock abstracts time for components that make expiry decisions, so
// tests can advance it without sleeping.
type Clock interface {
	Now() time.Time
}

// RealClock is the production Clock.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }
