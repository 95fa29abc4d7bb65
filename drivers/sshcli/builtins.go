package sshcli

import (
	"github.com/lammesen/netrust/model"
	"github.com/lammesen/netrust/security"
)

// NewGeneric returns the generic-ssh driver.
func NewGeneric(resolver security.Resolver) *Driver {
	return New(model.DeviceGenericSSH, "generic-ssh", resolver)
}

// NewCiscoIOS returns the cisco-ios-like driver.
func NewCiscoIOS(resolver security.Resolver) *Driver {
	return New(model.DeviceCiscoIOSLike, "cisco-ios-like", resolver)
}

// NewAristaEOS returns the arista-eos CLI-mode driver.
func NewAristaEOS(resolver security.Resolver) *Driver {
	return New(model.DeviceAristaEOS, "arista-eos", resolver)
}
