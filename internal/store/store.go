package store

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"aix-chat/backend/internal/model"
	"aix-chat/backend/internal/repository"
)

// Store owns the authoritative conversation collection, the current-selection
// pointer, and the streaming flag. All mutations go through its action API and
// are serialized by a mutex, so observers see either the pre- or post-mutation
// snapshot, never a torn intermediate state. There is no package-level
// singleton; construct one per session and pass it by reference.
//
// Exactly one assistant stream is active at a time. A second StartAssistant
// while one is in flight is rejected (returns nil) rather than silently
// superseding the previous cursor.
type Store struct {
	mu sync.Mutex

	chats         []model.Chat
	currentChatID string

	streaming    bool
	cursorID     string
	cursorChatID string

	gateway repository.Gateway
	key     string
	clock   model.Clock

	subs      map[int]func(Snapshot)
	nextSubID int
}

// Snapshot is the consistent view handed to subscribers after each mutation.
type Snapshot struct {
	Chats         []model.Chat
	CurrentChatID string
	IsStreaming   bool
}

// Option customizes a Store.
type Option func(*Store)

// WithClock overrides the timestamp source used for new entities.
func WithClock(c model.Clock) Option {
	return func(s *Store) { s.clock = c }
}

// WithStorageKey overrides the key the collection is persisted under.
func WithStorageKey(key string) Option {
	return func(s *Store) { s.key = key }
}

// New constructs an empty store backed by the given persistence gateway.
func New(gw repository.Gateway, opts ...Option) *Store {
	s := &Store{
		chats:   []model.Chat{},
		gateway: gw,
		key:     repository.DefaultKey,
		subs:    map[int]func(Snapshot){},
	}
	for _, fn := range opts {
		fn(s)
	}
	return s
}

// Subscribe registers a callback invoked with a consistent snapshot after
// every mutation. The returned function unsubscribes.
func (s *Store) Subscribe(fn func(Snapshot)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSubID
	s.nextSubID++
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

// Load replaces the collection with the persisted one and selects the first
// chat, or clears the selection when nothing was stored. Corrupt or missing
// data degrades to an empty collection inside the gateway.
func (s *Store) Load(ctx context.Context) {
	loaded := s.gateway.Load(ctx, s.key)

	s.mu.Lock()
	s.chats = loaded
	if len(loaded) > 0 {
		s.currentChatID = loaded[0].ID
	} else {
		s.currentChatID = ""
	}
	s.mu.Unlock()

	s.notify()
}

// NewChat creates an empty chat, prepends it to the collection and selects it.
// Allowed while streaming; the active stream keeps writing to its own chat.
func (s *Store) NewChat(title string) model.Chat {
	chat := model.NewChat(title, s.entityOpts()...)

	s.mu.Lock()
	s.chats = append([]model.Chat{chat}, s.chats...)
	s.currentChatID = chat.ID
	s.mu.Unlock()

	s.persist()
	s.notify()
	return chat
}

// SelectChat sets the current selection unconditionally. A stale id leaves
// the derived current chat undefined; CurrentChat then returns nil and the UI
// treats that as "no chat selected".
func (s *Store) SelectChat(chatID string) {
	s.mu.Lock()
	s.currentChatID = chatID
	s.mu.Unlock()

	s.notify()
}

// ImportChat normalizes a chat-shaped value from the import boundary and
// prepends it as the new current chat. Missing id/title/createdAt/messages are
// generated or defaulted; an id colliding with an existing chat is regenerated
// so the unique-id invariant holds.
func (s *Store) ImportChat(chat model.Chat) model.Chat {
	if strings.TrimSpace(chat.Title) == "" {
		chat.Title = "Imported Chat"
	} else {
		chat.Title = strings.TrimSpace(chat.Title)
	}
	if chat.CreatedAt.IsZero() {
		chat.CreatedAt = s.now()
	}
	if chat.Messages == nil {
		chat.Messages = []model.Message{}
	}

	s.mu.Lock()
	if chat.ID == "" || s.hasChatLocked(chat.ID) {
		chat.ID = model.NewID(model.ChatIDPrefix)
	}
	s.chats = append([]model.Chat{chat}, s.chats...)
	s.currentChatID = chat.ID
	s.mu.Unlock()

	s.persist()
	s.notify()
	return chat
}

// RenameChat replaces the title in place when the trimmed title is non-empty;
// otherwise the prior title is retained.
func (s *Store) RenameChat(chatID, title string) {
	trimmed := strings.TrimSpace(title)

	s.mu.Lock()
	changed := false
	for i := range s.chats {
		if s.chats[i].ID == chatID {
			if trimmed != "" && s.chats[i].Title != trimmed {
				next := make([]model.Chat, len(s.chats))
				copy(next, s.chats)
				next[i].Title = trimmed
				s.chats = next
				changed = true
			}
			break
		}
	}
	s.mu.Unlock()

	if changed {
		s.persist()
		s.notify()
	}
}

// DeleteChat removes the chat. When it was the current selection, selection
// falls back to the new first chat, or to none if the collection is empty.
func (s *Store) DeleteChat(chatID string) {
	s.mu.Lock()
	next := make([]model.Chat, 0, len(s.chats))
	removed := false
	for _, c := range s.chats {
		if c.ID == chatID {
			removed = true
			continue
		}
		next = append(next, c)
	}
	if !removed {
		s.mu.Unlock()
		return
	}
	s.chats = next
	if s.currentChatID == chatID {
		if len(next) > 0 {
			s.currentChatID = next[0].ID
		} else {
			s.currentChatID = ""
		}
	}
	s.mu.Unlock()

	s.persist()
	s.notify()
}

// SendUserMessage appends a user message to the target chat (override or the
// current selection). Returns nil when the trimmed text is empty or no target
// id resolves. It only mutates the collection; contacting the remote endpoint
// is the caller's job.
func (s *Store) SendUserMessage(text, chatIDOverride string) *model.Message {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}

	s.mu.Lock()
	targetID := chatIDOverride
	if targetID == "" {
		targetID = s.currentChatID
	}
	if targetID == "" {
		s.mu.Unlock()
		return nil
	}
	msg, err := model.NewMessage(model.RoleUser, trimmed, s.entityOpts()...)
	if err != nil {
		// Unreachable: role and content are validated above.
		s.mu.Unlock()
		return nil
	}
	s.chats = model.AppendMessage(s.chats, targetID, msg)
	s.mu.Unlock()

	s.persist()
	s.notify()
	return &msg
}

// StartAssistant appends an empty assistant placeholder to the current chat,
// records it as the active streaming cursor, and transitions to Streaming.
// Returns nil when no chat is selected or a stream is already active.
func (s *Store) StartAssistant() *model.Message {
	s.mu.Lock()
	if s.currentChatID == "" || s.streaming {
		s.mu.Unlock()
		return nil
	}
	if !s.hasChatLocked(s.currentChatID) {
		s.mu.Unlock()
		return nil
	}
	placeholder := model.NewPlaceholderMessage(s.entityOpts()...)
	s.chats = model.AppendMessage(s.chats, s.currentChatID, placeholder)
	s.streaming = true
	s.cursorID = placeholder.ID
	s.cursorChatID = s.currentChatID
	s.mu.Unlock()

	s.persist()
	s.notify()
	return &placeholder
}

// UpdateAssistant replaces the content of the message identified by messageID,
// or of the active cursor when messageID is empty. Each call carries the full
// accumulated text, not a delta. No-op outside Streaming or when no target id
// resolves. The update addresses the stream's own chat by id, so selecting or
// creating another chat mid-stream cannot misdirect it.
func (s *Store) UpdateAssistant(content, messageID string) {
	s.mu.Lock()
	if !s.streaming {
		s.mu.Unlock()
		return
	}
	targetID := messageID
	if targetID == "" {
		targetID = s.cursorID
	}
	if targetID == "" || s.cursorChatID == "" {
		s.mu.Unlock()
		return
	}
	s.chats = model.UpdateMessage(s.chats, s.cursorChatID, targetID, func(m model.Message) model.Message {
		m.Content = content
		return m
	})
	s.mu.Unlock()

	s.persist()
	s.notify()
}

// FinalizeAssistant clears the active cursor and returns to Idle
// unconditionally. It is the only way out of Streaming and must be called
// exactly once per StartAssistant, on success, cancellation, or error alike.
// Calling it while Idle is a harmless no-op.
func (s *Store) FinalizeAssistant() {
	s.mu.Lock()
	wasStreaming := s.streaming
	s.streaming = false
	s.cursorID = ""
	s.cursorChatID = ""
	s.mu.Unlock()

	if wasStreaming {
		s.notify()
	}
}

// Chats returns a copy of the collection. Message slices are shared but never
// mutated in place, so the copy is safe to hand out.
func (s *Store) Chats() []model.Chat {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Chat, len(s.chats))
	copy(out, s.chats)
	return out
}

// CurrentChatID returns the selection pointer, which may be stale.
func (s *Store) CurrentChatID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentChatID
}

// CurrentChat derives the selected chat, or nil when the selection is empty
// or stale.
func (s *Store) CurrentChat() *model.Chat {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.chats {
		if s.chats[i].ID == s.currentChatID {
			c := s.chats[i]
			return &c
		}
	}
	return nil
}

// Chat returns the chat with the given id, or nil.
func (s *Store) Chat(chatID string) *model.Chat {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.chats {
		if s.chats[i].ID == chatID {
			c := s.chats[i]
			return &c
		}
	}
	return nil
}

// IsStreaming reports whether an assistant reply is currently in flight.
func (s *Store) IsStreaming() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.streaming
}

// ApproxTokens returns a rough token estimate for the current chat
// (ceil of characters / 4). Advisory display only, never enforced.
func (s *Store) ApproxTokens() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.chats {
		if s.chats[i].ID != s.currentChatID {
			continue
		}
		chars := 0
		for _, m := range s.chats[i].Messages {
			chars += len(m.Content)
		}
		return (chars + 3) / 4
	}
	return 0
}

func (s *Store) hasChatLocked(chatID string) bool {
	for i := range s.chats {
		if s.chats[i].ID == chatID {
			return true
		}
	}
	return false
}

func (s *Store) entityOpts() []model.Option {
	if s.clock == nil {
		return nil
	}
	return []model.Option{model.WithClock(s.clock)}
}

func (s *Store) now() time.Time {
	if s.clock != nil {
		return s.clock()
	}
	return time.Now()
}

// persist saves a snapshot through the gateway, fire-and-forget. A failed
// save degrades to "changes are not durable" and never blocks or fails the
// user-facing action that triggered it.
func (s *Store) persist() {
	s.mu.Lock()
	snapshot := make([]model.Chat, len(s.chats))
	copy(snapshot, s.chats)
	s.mu.Unlock()

	go func() {
		if err := s.gateway.Save(context.Background(), s.key, snapshot); err != nil {
			slog.Warn("Conversation save failed, changes are not durable", "key", s.key, "error", err)
		}
	}()
}

// notify calls subscribers outside the lock with a consistent snapshot.
func (s *Store) notify() {
	s.mu.Lock()
	snap := Snapshot{
		Chats:         make([]model.Chat, len(s.chats)),
		CurrentChatID: s.currentChatID,
		IsStreaming:   s.streaming,
	}
	copy(snap.Chats, s.chats)
	fns := make([]func(Snapshot), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}
