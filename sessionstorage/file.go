package sessionstorage

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/json"
	"io"
	"io/fs"
	"os"
	"sync"

	"github.com/go-playground/errors/v5"
	"github.com/rxstock/session/sessiontypes"
)

// File stores the session record AES-256-GCM encrypted in a single file,
// written atomically through a temp file and rename. It suits desktop and
// CLI hosts that must survive process restarts without a server-side store.
type File struct {
	path string
	gcm  cipher.AEAD
	mu   sync.Mutex
}

// filePayload is the encrypted file's plaintext layout. The record and the
// pending redirect path share the file so Clear drops both in one remove.
type filePayload struct {
	Record      *Record `json:"record,omitempty"`
	PendingPath string  `json:"pendingPath,omitempty"`
}

// NewFile creates a file-backed session store at path. The encryption key
// is derived from secret with SHA-256.
func NewFile(path, secret string) (*File, error) {
	if secret == "" {
		return nil, errors.New("session file secret must not be empty")
	}

	key := sha256.Sum256([]byte(secret))
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, errors.Wrap(err, "aes.NewCipher()")
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, errors.Wrap(err, "cipher.NewGCM()")
	}

	return &File{path: path, gcm: gcm}, nil
}

// Load returns the persisted record, or nil when no file exists. A file
// that cannot be decrypted or decoded returns sessiontypes.ErrMalformedState.
func (f *File) Load(_ context.Context) (*Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	payload, err := f.read()
	if err != nil {
		return nil, err
	}

	return payload.Record, nil
}

// Save persists the record, keeping any pending redirect path already in
// the file. An unreadable existing file is overwritten.
func (f *File) Save(_ context.Context, record *Record) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	payload, err := f.read()
	if err != nil {
		payload = filePayload{}
	}
	payload.Record = record.clone()

	return f.write(payload)
}

// Clear removes the state file, dropping the record and the pending path
// together.
func (f *File) Clear(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.Remove(f.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return errors.Wrap(err, "os.Remove()")
	}

	return nil
}

// SetPendingPath stores the destination to return to after sign-in.
func (f *File) SetPendingPath(_ context.Context, path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	payload, err := f.read()
	if err != nil {
		payload = filePayload{}
	}
	payload.PendingPath = path

	return f.write(payload)
}

// ConsumePendingPath returns the stored destination and deletes it.
func (f *File) ConsumePendingPath(_ context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	payload, err := f.read()
	if err != nil {
		return "", err
	}
	if payload.PendingPath == "" {
		return "", nil
	}

	path := payload.PendingPath
	payload.PendingPath = ""
	if err := f.write(payload); err != nil {
		return "", err
	}

	return path, nil
}

func (f *File) read() (filePayload, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return filePayload{}, nil
	}
	if err != nil {
		return filePayload{}, errors.Wrap(err, "os.ReadFile()")
	}
	if len(data) < f.gcm.NonceSize() {
		return filePayload{}, errors.Wrap(sessiontypes.ErrMalformedState, "state file too short")
	}

	nonce, sealed := data[:f.gcm.NonceSize()], data[f.gcm.NonceSize():]
	plain, err := f.gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return filePayload{}, errors.Wrap(sessiontypes.ErrMalformedState, "state file failed decryption")
	}

	var payload filePayload
	if err := json.Unmarshal(plain, &payload); err != nil {
		return filePayload{}, errors.Wrap(sessiontypes.ErrMalformedState, "state file failed decoding")
	}

	return payload, nil
}

func (f *File) write(payload filePayload) error {
	plain, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrap(err, "json.Marshal()")
	}

	nonce := make([]byte, f.gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return errors.Wrap(err, "io.ReadFull()")
	}
	sealed := f.gcm.Seal(nonce, nonce, plain, nil)

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, sealed, 0o600); err != nil {
		return errors.Wrap(err, "os.WriteFile()")
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return errors.Wrap(err, "os.Rename()")
	}

	return nil
}
