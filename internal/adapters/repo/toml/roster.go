package toml

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"

	"github.com/kvasern/roost/internal/domain"
	"github.com/kvasern/roost/internal/ports"
)

const (
	configName         = "config"
	configType         = "toml"
	accountsPathKey    = "accounts.path"
	accountsConfigDir  = ".roost"
	accountsConfigFile = "accounts.toml"
)

// Roster reads the operator-maintained account credential file. The file is
// edited by hand, so the roster never writes it back.
type Roster struct {
	accountsPath string
	mu           *sync.RWMutex
}

var (
	lockRegistryMu sync.Mutex
	pathLockMap    = map[string]*sync.RWMutex{}
)

var _ ports.IdentitySource = (*Roster)(nil)

func NewRoster(cfg *viper.Viper) (*Roster, error) {
	if cfg == nil {
		cfg = viper.New()
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve home directory: %w", err)
	}

	defaultPath := filepath.Join(homeDir, accountsConfigDir, accountsConfigFile)

	cfg.SetConfigName(configName)
	cfg.SetConfigType(configType)
	cfg.AddConfigPath(filepath.Join(homeDir, accountsConfigDir))
	cfg.SetDefault(accountsPathKey, defaultPath)

	err = cfg.ReadInConfig()
	if err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	accountsPath := cfg.GetString(accountsPathKey)
	if accountsPath == "" {
		return nil, errors.New("accounts path is empty")
	}
	accountsPath, err = normalizeAccountsPath(accountsPath)
	if err != nil {
		return nil, err
	}

	return &Roster{accountsPath: accountsPath, mu: lockForPath(accountsPath)}, nil
}

// NewRosterAt builds a roster for an explicit file path, bypassing config
// resolution.
func NewRosterAt(path string) (*Roster, error) {
	normalized, err := normalizeAccountsPath(path)
	if err != nil {
		return nil, err
	}

	return &Roster{accountsPath: normalized, mu: lockForPath(normalized)}, nil
}

func (r *Roster) List(ctx context.Context) ([]domain.Identity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	file, err := r.readSchema()
	if err != nil {
		return nil, err
	}

	identities := make([]domain.Identity, 0, len(file.Accounts))
	for _, entry := range file.Accounts {
		identity := fromSchema(entry)
		if err := identity.Validate(); err != nil {
			return nil, fmt.Errorf("accounts file entry %q: %w", entry.Name, err)
		}
		identities = append(identities, identity)
	}

	return identities, nil
}

func (r *Roster) readSchema() (fileSchema, error) {
	data, err := os.ReadFile(r.accountsPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fileSchema{}, nil
		}
		return fileSchema{}, fmt.Errorf("read accounts file: %w", err)
	}

	var file fileSchema
	if err := toml.Unmarshal(data, &file); err != nil {
		return fileSchema{}, fmt.Errorf("decode accounts file: %w", err)
	}
	if err := file.validateVersion(); err != nil {
		return fileSchema{}, err
	}
	file.applyDefaults()

	return file, nil
}

func normalizeAccountsPath(path string) (string, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve accounts path: %w", err)
	}

	return filepath.Clean(absPath), nil
}

func lockForPath(path string) *sync.RWMutex {
	lockRegistryMu.Lock()
	defer lockRegistryMu.Unlock()

	if mu, ok := pathLockMap[path]; ok {
		return mu
	}

	mu := &sync.RWMutex{}
	pathLockMap[path] = mu
	return mu
}

func fromSchema(entry accountSchema) domain.Identity {
	return domain.Identity{
		Name:      domain.IdentityName(entry.Name),
		Password:  entry.Password,
		Email:     entry.Email,
		TwoFactor: entry.TwoFactor,
	}
}
