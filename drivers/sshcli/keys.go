package sshcli

import (
	"fmt"
	"os"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"
)

func loadSigner(keyPath, passphrase string) (ssh.Signer, error) {
	raw, err := os.ReadFile(keyPath)
	if err != nil {
		return nil, fmt.Errorf("sshcli: reading key %s: %w", keyPath, err)
	}
	if passphrase != "" {
		signer, err := ssh.ParsePrivateKeyWithPassphrase(raw, []byte(passphrase))
		if err != nil {
			return nil, fmt.Errorf("sshcli: parsing key %s: %w", keyPath, err)
		}
		return signer, nil
	}
	signer, err := ssh.ParsePrivateKey(raw)
	if err != nil {
		return nil, fmt.Errorf("sshcli: parsing key %s: %w", keyPath, err)
	}
	return signer, nil
}

// knownHostsCallback wires NAUTO_SSH_KNOWN_HOSTS into a real host-key
// verification policy, per the open question resolved in DESIGN.md.
func knownHostsCallback(path string) (ssh.HostKeyCallback, error) {
	return knownhosts.New(path)
}
