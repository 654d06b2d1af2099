package model

// Pure, copy-on-write transforms over a chat collection. Both functions
// return the input slice unchanged (same reference) when the mutation target
// is missing, so callers can detect no-ops cheaply and must not assume a new
// slice is always produced. Untouched chats and messages keep their identity,
// which keeps change detection cheap for subscribers.

// AppendMessage appends msg to the chat with the given id and returns a new
// collection. The target chat keeps its position; only its message slice is
// re-allocated. An empty or unknown chatID is a no-op.
func AppendMessage(chats []Chat, chatID string, msg Message) []Chat {
	if chatID == "" {
		return chats
	}
	idx := -1
	for i := range chats {
		if chats[i].ID == chatID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return chats
	}
	next := make([]Chat, len(chats))
	copy(next, chats)
	target := next[idx]
	messages := make([]Message, len(target.Messages), len(target.Messages)+1)
	copy(messages, target.Messages)
	target.Messages = append(messages, msg)
	next[idx] = target
	return next
}

// UpdateMessage replaces the message identified by chatID/messageID with the
// result of fn(old). Missing chat or message is a no-op. Only the targeted
// message is replaced; its siblings keep their identity.
func UpdateMessage(chats []Chat, chatID, messageID string, fn func(Message) Message) []Chat {
	if chatID == "" || messageID == "" {
		return chats
	}
	chatIdx := -1
	msgIdx := -1
	for i := range chats {
		if chats[i].ID != chatID {
			continue
		}
		chatIdx = i
		for j := range chats[i].Messages {
			if chats[i].Messages[j].ID == messageID {
				msgIdx = j
				break
			}
		}
		break
	}
	if chatIdx < 0 || msgIdx < 0 {
		return chats
	}
	next := make([]Chat, len(chats))
	copy(next, chats)
	target := next[chatIdx]
	messages := make([]Message, len(target.Messages))
	copy(messages, target.Messages)
	messages[msgIdx] = fn(messages[msgIdx])
	target.Messages = messages
	next[chatIdx] = target
	return next
}
