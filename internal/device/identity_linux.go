//go:build linux

package device

import (
	"fmt"

	"github.com/prometheus/procfs/sysfs"
)

// hardwareIdentity reads the DMI vendor and product name.
func hardwareIdentity(sysPath string) (vendor, product string, err error) {
	if sysPath == "" {
		sysPath = "/sys"
	}
	fs, err := sysfs.NewFS(sysPath)
	if err != nil {
		return "", "", fmt.Errorf("open sysfs: %w", err)
	}
	dmi, err := fs.DMIClass()
	if err != nil {
		return "", "", fmt.Errorf("read dmi: %w", err)
	}
	if dmi.SystemVendor != nil {
		vendor = *dmi.SystemVendor
	}
	if dmi.ProductName != nil {
		product = *dmi.ProductName
	}
	return vendor, product, nil
}
