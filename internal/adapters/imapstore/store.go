package imapstore

import (
	"context"
	"fmt"
	"sort"
	"strings"

	retry "github.com/StirlingMarketingGroup/go-retry"
	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"
	"github.com/mikey/mailsweep/internal/config"
	"github.com/mikey/mailsweep/internal/core"
	"go.uber.org/zap"
)

// Store is an IMAP implementation of the MailStore interface. It holds
// a single authenticated connection; every operation selects the
// mailbox it needs before issuing its command.
type Store struct {
	client        *imapclient.Client
	logger        *zap.Logger
	rootFolder    string
	holdingFolder string

	// selected tracks the currently selected mailbox so consecutive
	// operations on the same folder skip the redundant SELECT.
	selected string
}

// NewStore dials the IMAP server, authenticates, and returns a
// connected store. Dialing is retried; a rejected login is returned as
// a core.AuthError and never retried.
func NewStore(cfg config.IMAPConfig, logger *zap.Logger) (*Store, error) {
	addr := cfg.Host + ":" + cfg.Port

	var client *imapclient.Client
	dialErr := retry.Retry(func() error {
		var err error
		if cfg.TLS {
			client, err = imapclient.DialTLS(addr, nil)
		} else {
			client, err = imapclient.DialStartTLS(addr, nil)
		}
		return err
	}, cfg.DialRetries, func(err error) error {
		logger.Warn("IMAP dial failed, retrying",
			zap.String("addr", addr),
			zap.Error(err))
		return nil
	}, func() error {
		return nil
	})
	if dialErr != nil {
		return nil, fmt.Errorf("connecting to IMAP %s: %w", addr, dialErr)
	}

	if err := client.Login(cfg.Username, cfg.Password).Wait(); err != nil {
		_ = client.Logout().Wait()
		return nil, &core.AuthError{
			Message: fmt.Sprintf("authentication failed for %s: %v", cfg.Username, err),
		}
	}

	logger.Info("Connected to IMAP server",
		zap.String("addr", addr),
		zap.String("username", cfg.Username))

	return &Store{
		client:        client,
		logger:        logger,
		rootFolder:    cfg.RootFolder,
		holdingFolder: cfg.HoldingFolder,
	}, nil
}

// Stop logs out and closes the connection.
func (s *Store) Stop() {
	if err := s.client.Logout().Wait(); err != nil {
		s.logger.Debug("IMAP logout failed", zap.Error(err))
	}
}

// ListFolders returns every selectable folder except the holding
// folder. The root folder is included only when includeRoot is set.
func (s *Store) ListFolders(_ context.Context, includeRoot bool) ([]core.Folder, error) {
	listCmd := s.client.List("", "*", nil)
	mailboxes, err := listCmd.Collect()
	if err != nil {
		return nil, fmt.Errorf("listing mailboxes: %w", err)
	}

	var folders []core.Folder
	for _, mbox := range mailboxes {
		if hasAttr(mbox.Attrs, imap.MailboxAttrNoSelect) {
			continue
		}
		if mbox.Mailbox == s.holdingFolder {
			continue
		}
		if mbox.Mailbox == s.rootFolder && !includeRoot {
			continue
		}
		folders = append(folders, core.Folder{
			ID:   mbox.Mailbox,
			Name: displayName(mbox.Mailbox, mbox.Delim),
		})
	}

	sort.Slice(folders, func(i, j int) bool { return folders[i].ID < folders[j].ID })
	return folders, nil
}

// CountItems returns the message count of a folder via SELECT.
func (s *Store) CountItems(_ context.Context, folder core.Folder) (int, error) {
	data, err := s.client.Select(folder.ID, nil).Wait()
	if err != nil {
		return 0, fmt.Errorf("selecting %q: %w", folder.ID, err)
	}
	s.selected = folder.ID
	return int(data.NumMessages), nil
}

// EnumerateItems returns the encoded id of every message in a folder.
func (s *Store) EnumerateItems(_ context.Context, folder core.Folder) ([]string, error) {
	uids, err := s.searchAll(folder.ID)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(uids))
	for _, uid := range uids {
		ids = append(ids, encodeID(folder.ID, uid))
	}
	return ids, nil
}

// EnumerateProjection returns the (id, internal date) projection for
// every message in a folder in a single bulk fetch.
func (s *Store) EnumerateProjection(_ context.Context, folder core.Folder) ([]core.ItemProjection, error) {
	uids, err := s.searchAll(folder.ID)
	if err != nil {
		return nil, err
	}
	if len(uids) == 0 {
		return nil, nil
	}

	fetchCmd := s.client.Fetch(imap.UIDSetNum(uids...), &imap.FetchOptions{
		UID:          true,
		InternalDate: true,
	})
	defer fetchCmd.Close()

	var items []core.ItemProjection
	for {
		msg := fetchCmd.Next()
		if msg == nil {
			break
		}
		buf, err := msg.Collect()
		if err != nil {
			s.logger.Debug("Collecting projection failed, skipping message",
				zap.String("folder", folder.ID),
				zap.Error(err))
			continue
		}
		items = append(items, core.ItemProjection{
			ID:           encodeID(folder.ID, buf.UID),
			CreationTime: buf.InternalDate,
		})
	}
	if err := fetchCmd.Close(); err != nil {
		return items, fmt.Errorf("fetching projection for %q: %w", folder.ID, err)
	}
	return items, nil
}

// FetchByID retrieves the live metadata for a single message. Returns
// core.ErrNotFound when the UID no longer exists in its folder.
func (s *Store) FetchByID(_ context.Context, id string) (*core.MessageRecord, error) {
	mailbox, uid, err := decodeID(id)
	if err != nil {
		return nil, err
	}
	if err := s.selectMailbox(mailbox); err != nil {
		return nil, err
	}

	fetchCmd := s.client.Fetch(imap.UIDSetNum(uid), &imap.FetchOptions{
		UID:          true,
		Envelope:     true,
		Flags:        true,
		InternalDate: true,
	})
	defer fetchCmd.Close()

	msg := fetchCmd.Next()
	if msg == nil {
		return nil, core.ErrNotFound
	}
	buf, err := msg.Collect()
	if err != nil {
		return nil, fmt.Errorf("collecting message %s: %w", id, err)
	}
	if err := fetchCmd.Close(); err != nil {
		return nil, fmt.Errorf("fetching message %s: %w", id, err)
	}

	return recordFromBuffer(id, mailbox, buf), nil
}

// MoveToHolding moves a message to the holding folder. The holding
// folder is never a permanent erase; the server keeps the message
// recoverable there.
func (s *Store) MoveToHolding(_ context.Context, id string) error {
	mailbox, uid, err := decodeID(id)
	if err != nil {
		return err
	}
	if err := s.selectMailbox(mailbox); err != nil {
		return err
	}

	if _, err := s.client.Move(imap.UIDSetNum(uid), s.holdingFolder).Wait(); err != nil {
		return fmt.Errorf("moving %s to %q: %w", id, s.holdingFolder, err)
	}
	return nil
}

// SetReadState adds or removes the \Seen flag on a message.
func (s *Store) SetReadState(_ context.Context, id string, read bool) error {
	mailbox, uid, err := decodeID(id)
	if err != nil {
		return err
	}
	if err := s.selectMailbox(mailbox); err != nil {
		return err
	}

	op := imap.StoreFlagsAdd
	if !read {
		op = imap.StoreFlagsDel
	}

	storeCmd := s.client.Store(imap.UIDSetNum(uid), &imap.StoreFlags{
		Op:     op,
		Silent: true,
		Flags:  []imap.Flag{imap.FlagSeen},
	}, nil)

	if err := storeCmd.Close(); err != nil {
		return fmt.Errorf("setting read state on %s: %w", id, err)
	}
	return nil
}

// searchAll selects a mailbox and returns every UID in it.
func (s *Store) searchAll(mailbox string) ([]imap.UID, error) {
	if err := s.selectMailbox(mailbox); err != nil {
		return nil, err
	}
	searchData, err := s.client.UIDSearch(&imap.SearchCriteria{}, nil).Wait()
	if err != nil {
		return nil, fmt.Errorf("searching %q: %w", mailbox, err)
	}
	return searchData.AllUIDs(), nil
}

func (s *Store) selectMailbox(mailbox string) error {
	if s.selected == mailbox {
		return nil
	}
	if _, err := s.client.Select(mailbox, nil).Wait(); err != nil {
		return fmt.Errorf("selecting %q: %w", mailbox, err)
	}
	s.selected = mailbox
	return nil
}

func hasAttr(attrs []imap.MailboxAttr, want imap.MailboxAttr) bool {
	for _, attr := range attrs {
		if attr == want {
			return true
		}
	}
	return false
}

// displayName returns the last hierarchy segment of a mailbox path.
func displayName(mailbox string, delim rune) string {
	if delim == 0 {
		return mailbox
	}
	if i := strings.LastIndex(mailbox, string(delim)); i >= 0 {
		return mailbox[i+1:]
	}
	return mailbox
}

var _ core.MailStore = (*Store)(nil)
