// Package timeutil renders note timestamps relative to now.
package timeutil

import (
	"fmt"
	"time"
)

type unit struct {
	label string
	value time.Duration
}

var units = []unit{
	{"w", 7 * 24 * time.Hour},
	{"d", 24 * time.Hour},
	{"h", time.Hour},
	{"m", time.Minute},
}

// Age renders d in its largest whole unit, for example "3d" or "5m".
// Durations under a minute render as "0m".
func Age(d time.Duration) string {
	for _, u := range units {
		if d >= u.value {
			return fmt.Sprintf("%d%s", d/u.value, u.label)
		}
	}
	return "0m"
}

// Ago describes how long before now t was. Zero times render as "" and
// anything under a minute, or in the future, as "just now".
func Ago(t, now time.Time) string {
	if t.IsZero() {
		return ""
	}
	d := now.Sub(t)
	if d < time.Minute {
		return "just now"
	}
	return Age(d) + " ago"
}
