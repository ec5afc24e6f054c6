package factory

import (
	"fmt"

	"github.com/mikey/mailsweep/internal/adapters/imapstore"
	"github.com/mikey/mailsweep/internal/adapters/memory"
	"github.com/mikey/mailsweep/internal/config"
	"github.com/mikey/mailsweep/internal/core"
	"github.com/mikey/mailsweep/internal/credential"
	"go.uber.org/zap"
)

// keyringPasswordKey is the keyring entry consulted when the config
// file carries no store password.
const keyringPasswordKey = "imap_password"

// StoreFactory creates mail stores based on configuration
type StoreFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewStoreFactory creates a new store factory
func NewStoreFactory(cfg *config.Config, logger *zap.Logger) *StoreFactory {
	return &StoreFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateMailStore creates a mail store based on the configuration
func (f *StoreFactory) CreateMailStore() (core.MailStore, error) {
	storeConfig := f.cfg.GetStore()
	imapConfig := f.cfg.GetIMAP()

	switch storeConfig.Type {
	case "imap":
		password, err := credential.ResolveStorePassword(imapConfig.Password, keyringPasswordKey)
		if err != nil {
			return nil, err
		}
		imapConfig.Password = password
		return imapstore.NewStore(imapConfig, f.logger)
	case "memory":
		return memory.NewStore(imapConfig.RootFolder, imapConfig.HoldingFolder, f.logger), nil
	default:
		return nil, fmt.Errorf("unsupported store type: %s", storeConfig.Type)
	}
}
