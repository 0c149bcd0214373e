package config

import (
	"errors"
	"fmt"
	"os"
	"os/user"
	"strings"

	"github.com/mitchellh/go-homedir"

	"github.com/conn-castle/webui-installer/internal/messages"
)

var (
	lookupUser = user.Lookup
	geteuid    = os.Geteuid
	getenv     = os.Getenv
	homeDir    = homedir.Dir
)

// ResolveHome returns the home directory of the user the install is for.
// Under sudo that is the invoking user, not root.
func ResolveHome() (string, error) {
	if geteuid() == 0 {
		if name := strings.TrimSpace(getenv("SUDO_USER")); name != "" && name != "root" {
			u, err := lookupUser(name)
			if err != nil {
				return "", fmt.Errorf(messages.TargetHomeResolveFmt, err)
			}
			if strings.TrimSpace(u.HomeDir) != "" {
				return u.HomeDir, nil
			}
		}
	}
	home, err := homeDir()
	if err != nil {
		return "", fmt.Errorf(messages.TargetHomeResolveFmt, err)
	}
	if strings.TrimSpace(home) == "" {
		return "", errors.New(messages.TargetHomeRequired)
	}
	return home, nil
}
