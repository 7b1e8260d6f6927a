package kdf

import (
	"fmt"
	"strings"
)

// Profile selects scrypt cost parameters. It is always passed explicitly by the
// caller; there is no default and no build-tag switch.
type Profile int

const (
	ProfileProduction Profile = iota + 1
	ProfileFastTest
)

type params struct {
	LogN   uint8
	R      int
	P      int
	KeyLen int
}

func (p Profile) params() (params, error) {
	switch p {
	case ProfileProduction:
		return params{LogN: 17, R: 8, P: 1, KeyLen: 32}, nil
	case ProfileFastTest:
		return params{LogN: 4, R: 8, P: 1, KeyLen: 32}, nil
	default:
		return params{}, fmt.Errorf("unknown kdf profile %d", int(p))
	}
}

func (p Profile) String() string {
	switch p {
	case ProfileProduction:
		return "production"
	case ProfileFastTest:
		return "fast-test"
	default:
		return "unknown"
	}
}

// ParseProfile maps the configuration value to a Profile.
func ParseProfile(s string) (Profile, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "production", "prod":
		return ProfileProduction, nil
	case "fast-test", "fasttest", "test":
		return ProfileFastTest, nil
	default:
		return 0, fmt.Errorf("unknown kdf profile %q", s)
	}
}
