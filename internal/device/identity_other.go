//go:build !linux

package device

import (
	"errors"
	"runtime"
)

func hardwareIdentity(string) (string, string, error) {
	return "", "", errors.New("dmi not available on " + runtime.GOOS)
}
