package security

import (
	"bufio"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/nacl/secretbox"
)

// fileStore is the encrypted-file fallback for credential storage: a
// line-oriented "name\tpayload" file, each payload base64-encoded and,
// when a passphrase is configured, secretbox-encrypted at rest. Writing
// plaintext when no passphrase is configured is a hard error (spec §4.C).
type fileStore struct {
	mu         sync.Mutex
	path       string
	passphrase string
}

func newFileStore(path, passphrase string) *fileStore {
	return &fileStore{path: path, passphrase: passphrase}
}

func deriveKey(passphrase string) [32]byte {
	return blake2b.Sum256([]byte(passphrase))
}

func (f *fileStore) encrypt(plaintext string) (string, error) {
	if f.passphrase == "" {
		return "", errors.New("security: refusing to write plaintext credential to fallback file without NAUTO_ENCRYPTION_KEY")
	}
	key := deriveKey(f.passphrase)
	var nonce [24]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return "", fmt.Errorf("security: generating nonce: %w", err)
	}
	sealed := secretbox.Seal(nonce[:], []byte(plaintext), &nonce, &key)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

func (f *fileStore) decrypt(encoded string) (string, error) {
	sealed, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("security: decoding fallback payload: %w", err)
	}
	if len(sealed) < 24 {
		return "", errors.New("security: fallback payload too short")
	}
	var nonce [24]byte
	copy(nonce[:], sealed[:24])
	key := deriveKey(f.passphrase)
	plain, ok := secretbox.Open(nil, sealed[24:], &nonce, &key)
	if !ok {
		return "", errors.New("security: fallback payload decryption failed")
	}
	return string(plain), nil
}

// put upserts a record by name, rewriting the file in place.
func (f *fileStore) put(name, payload string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	records, err := f.readAll()
	if err != nil {
		return err
	}

	enc, err := f.encrypt(payload)
	if err != nil {
		return err
	}
	records[name] = enc

	return f.writeAll(records)
}

// get looks up a record by name.
func (f *fileStore) get(name string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	records, err := f.readAll()
	if err != nil {
		return "", err
	}
	enc, ok := records[name]
	if !ok {
		return "", ErrNotFound
	}
	return f.decrypt(enc)
}

func (f *fileStore) readAll() (map[string]string, error) {
	records := map[string]string{}
	file, err := os.Open(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return records, nil
	}
	if err != nil {
		return nil, fmt.Errorf("security: opening fallback file: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, "\t", 2)
		if len(parts) != 2 {
			continue
		}
		records[parts[0]] = parts[1]
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("security: reading fallback file: %w", err)
	}
	return records, nil
}

func (f *fileStore) writeAll(records map[string]string) error {
	tmp := f.path + ".tmp"
	file, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("security: creating fallback file: %w", err)
	}
	w := bufio.NewWriter(file)
	for name, payload := range records {
		if _, err := fmt.Fprintf(w, "%s\t%s\n", name, payload); err != nil {
			file.Close()
			return fmt.Errorf("security: writing fallback file: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		file.Close()
		return fmt.Errorf("security: flushing fallback file: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("security: closing fallback file: %w", err)
	}
	return os.Rename(tmp, f.path)
}
