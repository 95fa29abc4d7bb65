// Package security implements the Credential Resolver: OS-keychain primary
// storage with an optional encrypted-file fallback, grounded on
// original_source/crates/nauto_security (keychain only there) plus the
// fallback-file behavior SPEC_FULL.md §4.C adds.
package security

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hashicorp/go-hclog"
	"github.com/zalando/go-keyring"

	"github.com/lammesen/netrust/internal/nconf"
	"github.com/lammesen/netrust/model"
)

// KeyringService is the OS-keychain service name under which every
// credential is stored, regardless of device.
const KeyringService = "netrust"

// ErrNotFound is returned when neither the keychain nor the fallback file
// (if configured) has a credential for the given reference.
var ErrNotFound = errors.New("credential not found")

// Resolver maps a credential reference to a concrete secret.
type Resolver interface {
	Store(ctx context.Context, ref model.CredentialRef, cred model.Credential) error
	Resolve(ctx context.Context, ref model.CredentialRef) (model.Credential, error)
}

// blockingPool runs synchronous keychain calls on a fixed set of worker
// goroutines instead of the calling goroutine, so at most that many
// keychain calls are in flight at once; further callers wait for a free
// worker or for their context to end. This stands in for the source's
// tokio::task::spawn_blocking.
type blockingPool struct {
	work chan func()
}

func newBlockingPool(workers int) *blockingPool {
	if workers < 1 {
		workers = 1
	}
	p := &blockingPool{work: make(chan func())}
	for i := 0; i < workers; i++ {
		go func() {
			for fn := range p.work {
				fn()
			}
		}()
	}
	return p
}

func (p *blockingPool) run(ctx context.Context, fn func() error) error {
	done := make(chan error, 1)
	select {
	case p.work <- func() { done <- fn() }:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// KeyringResolver is the default Resolver: OS keychain primary, optional
// encrypted-file fallback gated by NAUTO_KEYRING_FILE / NAUTO_ENCRYPTION_KEY.
type KeyringResolver struct {
	log      hclog.Logger
	pool     *blockingPool
	fallback *fileStore
}

// NewResolver builds a KeyringResolver. An empty fallbackPath disables the
// fallback file; NewResolverFromEnv fills fallbackPath/passphrase from
// nconf.EnvKeyringFile / nconf.EnvEncryptionKey.
func NewResolver(log hclog.Logger, fallbackPath, passphrase string) *KeyringResolver {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	var fb *fileStore
	if fallbackPath != "" {
		fb = newFileStore(fallbackPath, passphrase)
	}
	return &KeyringResolver{
		log:      log.Named("security"),
		pool:     newBlockingPool(4),
		fallback: fb,
	}
}

// NewResolverFromEnv wires NAUTO_KEYRING_FILE / NAUTO_ENCRYPTION_KEY.
func NewResolverFromEnv(log hclog.Logger) *KeyringResolver {
	return NewResolver(log, nconf.Str(nconf.EnvKeyringFile, ""), nconf.Str(nconf.EnvEncryptionKey, ""))
}

func marshalCredential(c model.Credential) (string, error) {
	b, err := json.Marshal(c)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func unmarshalCredential(s string) (model.Credential, error) {
	var c model.Credential
	err := json.Unmarshal([]byte(s), &c)
	return c, err
}

// Store writes to the OS keychain first; on keychain failure it writes to
// the fallback file if one is configured, else it propagates the error.
func (r *KeyringResolver) Store(ctx context.Context, ref model.CredentialRef, cred model.Credential) error {
	payload, err := marshalCredential(cred)
	if err != nil {
		return fmt.Errorf("security: marshal credential %s: %w", ref, err)
	}

	kerr := r.pool.run(ctx, func() error {
		return keyring.Set(KeyringService, ref.Name, payload)
	})
	if kerr == nil {
		return nil
	}
	r.log.Warn("keychain store failed", "ref", ref.Name, "error", kerr)

	if r.fallback == nil {
		return fmt.Errorf("security: keychain store failed for %s and no fallback configured: %w", ref, kerr)
	}
	if err := r.fallback.put(ref.Name, payload); err != nil {
		return fmt.Errorf("security: fallback store failed for %s: %w", ref, err)
	}
	return nil
}

// Resolve reads the OS keychain first; on a miss it falls back to the
// encrypted file if configured, else returns the keychain error.
func (r *KeyringResolver) Resolve(ctx context.Context, ref model.CredentialRef) (model.Credential, error) {
	var payload string
	kerr := r.pool.run(ctx, func() error {
		v, err := keyring.Get(KeyringService, ref.Name)
		if err != nil {
			return err
		}
		payload = v
		return nil
	})
	if kerr == nil {
		return unmarshalCredential(payload)
	}

	if r.fallback != nil {
		if v, ferr := r.fallback.get(ref.Name); ferr == nil {
			return unmarshalCredential(v)
		}
	}
	return model.Credential{}, fmt.Errorf("%w: %s: %w", ErrNotFound, ref.Name, kerr)
}
