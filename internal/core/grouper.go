package core

// GroupByConversation partitions a record set by conversation id. Pure
// function: no filtering, no side effects. Within each group the
// records keep the order they were retrieved in (the store's native
// ordering), which the decision step uses to break timestamp ties.
func GroupByConversation(records []MessageRecord) map[string][]MessageRecord {
	groups := make(map[string][]MessageRecord)
	for _, rec := range records {
		groups[rec.ConversationID] = append(groups[rec.ConversationID], rec)
	}
	return groups
}
