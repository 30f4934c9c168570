// Package platform answers the one question the client adapter asks of its
// host: is this a browser or a native mobile runtime.
package platform

import (
	"os"
	"runtime"
	"strings"
)

// Kind is the host platform.
type Kind string

const (
	Browser Kind = "web"
	Native  Kind = "native"
)

// EnvOverride forces the probe result during development.
const EnvOverride = "SOUNDGATE_PLATFORM"

// Probe reports the host platform.
type Probe func() Kind

// Detect is the default probe. Go compiled for js/wasm only runs inside a
// browser host; every other target is treated as native.
func Detect() Kind {
	if k, ok := Parse(os.Getenv(EnvOverride)); ok {
		return k
	}
	if runtime.GOOS == "js" {
		return Browser
	}
	return Native
}

// Parse maps a platform name to a Kind.
func Parse(s string) (Kind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "web", "browser":
		return Browser, true
	case "native", "ios", "android":
		return Native, true
	}
	return "", false
}

// Fixed returns a probe that always answers k.
func Fixed(k Kind) Probe {
	return func() Kind { return k }
}

func (k Kind) String() string { return string(k) }
