package object

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"path"
	"strings"

	"github.com/google/uuid"
)

// SanitizeFileName removes path separators and rejects traversal patterns.
func SanitizeFileName(name string) (string, error) {
	if strings.Contains(name, "..") {
		return "", errors.New("invalid file name")
	}
	s := strings.TrimSpace(name)
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	if s == "" {
		return "", errors.New("invalid file name")
	}
	return s, nil
}

// UserPrefix returns a storage-safe namespace for a user ID.
func UserPrefix(userID string) string {
	sum := sha256.Sum256([]byte(userID))
	return hex.EncodeToString(sum[:])
}

// NewKey builds a unique key "<user hash>/<uuid>_<file name>" for an upload.
func NewKey(userID, fileName string) (string, error) {
	clean, err := SanitizeFileName(fileName)
	if err != nil {
		return "", err
	}
	return path.Join(UserPrefix(userID), uuid.NewString()+"_"+clean), nil
}
