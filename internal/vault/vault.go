// Package vault writes and reads age-encrypted backups of env files.
package vault

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"filippo.io/age"
	"filippo.io/age/armor"

	"github.com/xmazu/envedit/internal/envfile"
	"github.com/xmazu/envedit/internal/storage"
)

// IdentityEnv holds an AGE-SECRET-KEY-1... identity used when no identity
// file is given.
const IdentityEnv = "ENVEDIT_AGE_IDENTITY"

const backupPerm os.FileMode = 0600

var (
	ErrNoRecipient = errors.New("no age recipient given")
	ErrNoIdentity  = errors.New("no age identity available")
)

func GenerateIdentity() (*age.X25519Identity, error) {
	identity, err := age.GenerateX25519Identity()
	if err != nil {
		return nil, fmt.Errorf("failed to generate age identity: %w", err)
	}
	return identity, nil
}

// ParseRecipients parses a comma or space separated list of age1...
// public keys.
func ParseRecipients(s string) ([]age.Recipient, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\n' || r == '\t'
	})
	if len(fields) == 0 {
		return nil, ErrNoRecipient
	}

	recipients := make([]age.Recipient, 0, len(fields))
	for _, f := range fields {
		r, err := age.ParseX25519Recipient(f)
		if err != nil {
			return nil, fmt.Errorf("failed to parse age recipient %q: %w", f, err)
		}
		recipients = append(recipients, r)
	}
	return recipients, nil
}

// LoadIdentities reads identities from an age identity file, or from
// $ENVEDIT_AGE_IDENTITY when path is empty.
func LoadIdentities(path string) ([]age.Identity, error) {
	if path == "" {
		s := os.Getenv(IdentityEnv)
		if s == "" {
			return nil, ErrNoIdentity
		}
		return parseIdentities(strings.NewReader(s))
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open identity file: %w", err)
	}
	defer f.Close()
	return parseIdentities(f)
}

func parseIdentities(r io.Reader) ([]age.Identity, error) {
	ids, err := age.ParseIdentities(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse age identity: %w", err)
	}
	return ids, nil
}

// Encrypt encrypts data to recipients. With armored set the output is
// PEM-style text.
func Encrypt(data []byte, armored bool, recipients ...age.Recipient) ([]byte, error) {
	if len(recipients) == 0 {
		return nil, ErrNoRecipient
	}

	var buf bytes.Buffer
	var dst io.Writer = &buf
	var aw io.WriteCloser
	if armored {
		aw = armor.NewWriter(&buf)
		dst = aw
	}

	w, err := age.Encrypt(dst, recipients...)
	if err != nil {
		return nil, fmt.Errorf("encrypt: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("encrypt: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("encrypt: %w", err)
	}
	if aw != nil {
		if err := aw.Close(); err != nil {
			return nil, fmt.Errorf("armor: %w", err)
		}
	}
	return buf.Bytes(), nil
}

// Decrypt accepts both binary and armored input.
func Decrypt(data []byte, identities ...age.Identity) ([]byte, error) {
	if len(identities) == 0 {
		return nil, ErrNoIdentity
	}

	var src io.Reader = bytes.NewReader(data)
	if IsArmored(data) {
		src = armor.NewReader(src)
	}

	r, err := age.Decrypt(src, identities...)
	if err != nil {
		return nil, fmt.Errorf("decrypt: %w", err)
	}
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("decrypt: %w", err)
	}
	return out, nil
}

func IsArmored(data []byte) bool {
	return bytes.HasPrefix(bytes.TrimLeft(data, " \t\r\n"), []byte(armor.Header))
}

// IsEncrypted reports whether the file at path starts with an age header,
// binary or armored.
func IsEncrypted(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	line, _ := bufio.NewReader(f).ReadString('\n')
	line = strings.TrimSpace(line)
	return line == "age-encryption.org/v1" || line == armor.Header
}

// Backup writes an encrypted copy of the document's file to dst.
func Backup(f *envfile.File, dst string, armored bool, recipients ...age.Recipient) error {
	if f.Path() == "" {
		return envfile.ErrNoTarget
	}
	data, err := os.ReadFile(f.Path())
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", envfile.ErrNotFound, f.Path())
		}
		return fmt.Errorf("read %s: %w", f.Path(), err)
	}

	enc, err := Encrypt(data, armored, recipients...)
	if err != nil {
		return err
	}
	if err := storage.WriteFileAtomic(dst, enc, backupPerm); err != nil {
		return fmt.Errorf("write backup %s: %w", dst, err)
	}
	return nil
}

// Restore decrypts src, checks that it parses, writes it over the
// document's file and reloads the document. Nothing is written when
// decryption or parsing fails.
func Restore(f *envfile.File, src string, identities ...age.Identity) error {
	if f.Path() == "" {
		return envfile.ErrNoTarget
	}
	data, err := os.ReadFile(src)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", envfile.ErrNotFound, src)
		}
		return fmt.Errorf("read backup %s: %w", src, err)
	}

	plain, err := Decrypt(data, identities...)
	if err != nil {
		return err
	}
	if _, err := envfile.Parse(string(plain)); err != nil {
		return fmt.Errorf("backup %s: %w", src, err)
	}

	perm := storage.FileMode(f.Path(), 0644)
	if err := storage.WriteFileAtomic(f.Path(), plain, perm); err != nil {
		return fmt.Errorf("restore %s: %w", f.Path(), err)
	}
	return f.Load(f.Path())
}
