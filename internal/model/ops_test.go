package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aix-chat/backend/internal/model"
)

func mustMessage(t *testing.T, role model.Role, content string) model.Message {
	t.Helper()
	msg, err := model.NewMessage(role, content)
	require.NoError(t, err)
	return msg
}

func twoChats(t *testing.T) []model.Chat {
	t.Helper()
	a := model.NewChat("A")
	a.Messages = []model.Message{mustMessage(t, model.RoleUser, "first")}
	b := model.NewChat("B")
	return []model.Chat{a, b}
}

func TestAppendMessage(t *testing.T) {
	t.Run("No-op on missing chat id", func(t *testing.T) {
		chats := twoChats(t)
		msg := mustMessage(t, model.RoleUser, "hi")

		got := model.AppendMessage(chats, "nope", msg)
		assert.Same(t, &chats[0], &got[0], "missing id must return the same slice")
	})

	t.Run("No-op on empty chat id", func(t *testing.T) {
		chats := twoChats(t)
		got := model.AppendMessage(chats, "", mustMessage(t, model.RoleUser, "hi"))
		assert.Same(t, &chats[0], &got[0])
	})

	t.Run("Appends to the target chat only", func(t *testing.T) {
		chats := twoChats(t)
		msg := mustMessage(t, model.RoleAssistant, "reply")

		got := model.AppendMessage(chats, chats[0].ID, msg)

		require.Len(t, got, 2)
		require.Len(t, got[0].Messages, 2)
		assert.Equal(t, msg, got[0].Messages[1])
		assert.Equal(t, chats[0].ID, got[0].ID, "target chat keeps its position")
		assert.Empty(t, got[1].Messages)

		// Input untouched.
		assert.Len(t, chats[0].Messages, 1)
	})
}

func TestUpdateMessage(t *testing.T) {
	t.Run("No-op on missing chat", func(t *testing.T) {
		chats := twoChats(t)
		got := model.UpdateMessage(chats, "nope", chats[0].Messages[0].ID, func(m model.Message) model.Message {
			m.Content = "changed"
			return m
		})
		assert.Same(t, &chats[0], &got[0])
	})

	t.Run("No-op on missing message", func(t *testing.T) {
		chats := twoChats(t)
		got := model.UpdateMessage(chats, chats[0].ID, "nope", func(m model.Message) model.Message {
			m.Content = "changed"
			return m
		})
		assert.Same(t, &chats[0], &got[0])
	})

	t.Run("Replaces only the targeted message, identity preserved", func(t *testing.T) {
		chats := twoChats(t)
		extra := mustMessage(t, model.RoleAssistant, "keep me")
		chats = model.AppendMessage(chats, chats[0].ID, extra)
		targetID := chats[0].Messages[0].ID

		got := model.UpdateMessage(chats, chats[0].ID, targetID, func(m model.Message) model.Message {
			m.Content = "rewritten"
			return m
		})

		require.Len(t, got[0].Messages, 2)
		assert.Equal(t, targetID, got[0].Messages[0].ID)
		assert.Equal(t, "rewritten", got[0].Messages[0].Content)
		assert.Equal(t, extra, got[0].Messages[1], "sibling message untouched")
		assert.Equal(t, "first", chats[0].Messages[0].Content, "input untouched")
	})
}
