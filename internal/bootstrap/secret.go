package bootstrap

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
)

const secretFileMode fs.FileMode = 0o600

// LoadOrCreateSecret returns the application's session signing secret,
// reading it from path or creating the file with a fresh random secret on
// first run. Losing the file invalidates every outstanding session, so when
// the file cannot be written the returned secret is ephemeral and a warning
// is logged instead of failing startup.
func LoadOrCreateSecret(path string, logger *slog.Logger) []byte {
	if logger == nil {
		logger = slog.Default()
	}

	if data, err := os.ReadFile(path); err == nil {
		checkSecretPerms(path, logger)
		secret := bytes.TrimSpace(data)
		if len(secret) > 0 {
			return secret
		}
		logger.Warn("secret file is empty, regenerating", "path", path)
	} else if !os.IsNotExist(err) {
		logger.Warn("could not read secret file, sessions will not survive restarts",
			"path", path, "error", err)
		return randomSecret()
	}

	secret := randomSecret()
	if err := os.WriteFile(path, secret, secretFileMode); err != nil {
		logger.Warn("could not write secret file, sessions will not survive restarts",
			"path", path, "error", err)
	}
	return secret
}

// checkSecretPerms warns when the secret file is readable by group or other.
func checkSecretPerms(path string, logger *slog.Logger) {
	info, err := os.Stat(path)
	if err != nil {
		return
	}
	if perm := info.Mode().Perm(); perm&0o077 != 0 {
		logger.Warn("secret file is readable by other users",
			"path", path, "mode", fmt.Sprintf("%04o", perm))
	}
}

func randomSecret() []byte {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	out := make([]byte, hex.EncodedLen(len(buf)))
	hex.Encode(out, buf)
	return out
}
