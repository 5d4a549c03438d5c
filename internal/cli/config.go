package cli

import (
	"os"
	"path/filepath"
	"strings"
)

// Config holds CLI configuration
type Config struct {
	ServerURL string
	UID       string
	UIDFile   string
	Output    string
	Verbose   bool
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	return &Config{
		ServerURL: getEnvOrDefault("BINGO_SERVER", "http://localhost:8080"),
		UID:       os.Getenv("BINGO_UID"),
		UIDFile:   getEnvOrDefault("BINGO_UID_FILE", defaultUIDFile()),
		Output:    "text",
		Verbose:   false,
	}
}

// LoadUID loads the user ID from file if not already set
func (c *Config) LoadUID() error {
	if c.UID != "" {
		return nil
	}

	data, err := os.ReadFile(c.UIDFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // No identity yet is fine
		}
		return err
	}

	c.UID = strings.TrimSpace(string(data))
	return nil
}

// SaveUID saves the user ID to the identity file
func (c *Config) SaveUID(uid string) error {
	c.UID = uid

	dir := filepath.Dir(c.UIDFile)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	return os.WriteFile(c.UIDFile, []byte(uid), 0600)
}

// WebSocketURL converts the server URL to a ws:// or wss:// URL for path
func (c *Config) WebSocketURL(path string) string {
	base := strings.TrimSuffix(c.ServerURL, "/")
	switch {
	case strings.HasPrefix(base, "https://"):
		base = "wss://" + strings.TrimPrefix(base, "https://")
	case strings.HasPrefix(base, "http://"):
		base = "ws://" + strings.TrimPrefix(base, "http://")
	}
	return base + path
}

func defaultUIDFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".bingo/uid"
	}
	return filepath.Join(home, ".bingo", "uid")
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
