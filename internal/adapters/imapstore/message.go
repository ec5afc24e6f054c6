package imapstore

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"

	"github.com/mikey/mailsweep/internal/core"
)

// idSeparator joins the mailbox path and the UID inside an encoded
// message id. NUL cannot appear in a mailbox name, so the split back is
// unambiguous.
const idSeparator = "\x00"

// replyPrefixRE matches one or more stacked reply/forward subject
// prefixes, including the German (AW) and Scandinavian (SV) variants.
var replyPrefixRE = regexp.MustCompile(`(?i)^\s*((re|fwd?|aw|sv)\s*:\s*)+`)

func encodeID(mailbox string, uid imap.UID) string {
	return mailbox + idSeparator + strconv.FormatUint(uint64(uid), 10)
}

func decodeID(id string) (mailbox string, uid imap.UID, err error) {
	i := strings.LastIndex(id, idSeparator)
	if i < 0 {
		return "", 0, fmt.Errorf("malformed message id %q", id)
	}
	n, err := strconv.ParseUint(id[i+1:], 10, 32)
	if err != nil {
		return "", 0, fmt.Errorf("malformed message id %q: %w", id, err)
	}
	return id[:i], imap.UID(n), nil
}

// recordFromBuffer normalizes a fetched message into a MessageRecord.
// CreationTime is always the server's INTERNALDATE, never the envelope
// date: the projection pass filters on INTERNALDATE, so the full record
// must carry the same timestamp or the two retrieval strategies would
// disagree about which messages fall before a start date.
func recordFromBuffer(id, mailbox string, buf *imapclient.FetchMessageBuffer) *core.MessageRecord {
	rec := &core.MessageRecord{
		ID:           id,
		Folder:       mailbox,
		CreationTime: buf.InternalDate,
		Categories:   categories(buf.Flags),
	}

	var messageID string
	if buf.Envelope != nil {
		rec.Subject = buf.Envelope.Subject
		messageID = buf.Envelope.MessageID
	}
	rec.ConversationID = conversationKey(rec.Subject, messageID, id)
	return rec
}

// conversationKey derives a stable conversation identifier. Messages
// that share a subject modulo reply/forward prefixes belong to the same
// conversation; a message with no usable subject falls back to its
// Message-ID so it forms a singleton group, never a catch-all bucket.
func conversationKey(subject, messageID, id string) string {
	normalized := strings.ToLower(strings.TrimSpace(replyPrefixRE.ReplaceAllString(subject, "")))
	if normalized != "" {
		return "subj:" + normalized
	}
	if messageID != "" {
		return "mid:" + messageID
	}
	return "id:" + id
}

// categories renders a message's user-defined keywords as a single
// comma-joined label string. System flags (those starting with a
// backslash) are not categories.
func categories(flags []imap.Flag) string {
	var keywords []string
	for _, flag := range flags {
		if strings.HasPrefix(string(flag), `\`) {
			continue
		}
		keywords = append(keywords, string(flag))
	}
	return strings.Join(keywords, ",")
}
