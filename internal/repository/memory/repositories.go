package memory

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"time"

	"ai-medical-chat-be/internal/constant"
	"ai-medical-chat-be/internal/entity"
	"ai-medical-chat-be/internal/repository/contract"

	"github.com/google/uuid"
)

type userRepository struct {
	access
}

func (r *userRepository) Create(ctx context.Context, user *entity.User) error {
	var err error
	r.do(func(undo func(func())) {
		s := r.store
		if _, taken := s.usersByEmail[user.Email]; taken {
			err = contract.ErrDuplicateEmail
			return
		}
		stored := *user
		s.users[user.Id] = &stored
		s.usersByEmail[user.Email] = user.Id
		undo(func() {
			delete(s.users, user.Id)
			delete(s.usersByEmail, user.Email)
		})
	})
	return err
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	var found *entity.User
	r.do(func(func(func())) {
		if id, ok := r.store.usersByEmail[email]; ok {
			u := *r.store.users[id]
			found = &u
		}
	})
	return found, nil
}

func (r *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	var found *entity.User
	r.do(func(func(func())) {
		if u, ok := r.store.users[id]; ok {
			c := *u
			found = &c
		}
	})
	return found, nil
}

func (r *userRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	r.do(func(func(func())) {
		n = int64(len(r.store.users))
	})
	return n, nil
}

type chatSessionRepository struct {
	access
}

func (r *chatSessionRepository) Create(ctx context.Context, session *entity.ChatSession) error {
	r.do(func(undo func(func())) {
		s := r.store
		stored := *session
		s.sessions[session.Id] = &stored
		undo(func() {
			delete(s.sessions, session.Id)
			delete(s.messages, session.Id)
		})
	})
	return nil
}

func (r *chatSessionRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.ChatSession, error) {
	var found *entity.ChatSession
	r.do(func(func(func())) {
		if cs, ok := r.store.sessions[id]; ok {
			c := *cs
			found = &c
		}
	})
	return found, nil
}

func (r *chatSessionRepository) FindAllByUser(ctx context.Context, userId uuid.UUID) ([]*entity.ChatSession, error) {
	result := []*entity.ChatSession{}
	r.do(func(func(func())) {
		for _, cs := range r.store.sessions {
			if cs.UserId == userId {
				c := *cs
				result = append(result, &c)
			}
		}
	})
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return bytes.Compare(result[i].Id[:], result[j].Id[:]) > 0
	})
	return result, nil
}

func (r *chatSessionRepository) AdvanceSequence(ctx context.Context, id uuid.UUID, at time.Time) (*entity.MessageSlot, error) {
	var slot *entity.MessageSlot
	r.do(func(undo func(func())) {
		cs, ok := r.store.sessions[id]
		if !ok {
			return
		}
		prevCount, prevLast, prevUpdated := cs.MessageCount, cs.LastMessageAt, cs.UpdatedAt

		cs.MessageCount++
		if at.After(cs.LastMessageAt) {
			cs.LastMessageAt = at
		}
		updated := at
		cs.UpdatedAt = &updated

		undo(func() {
			cs.MessageCount, cs.LastMessageAt, cs.UpdatedAt = prevCount, prevLast, prevUpdated
		})
		slot = &entity.MessageSlot{Seq: cs.MessageCount, CreatedAt: cs.LastMessageAt, Title: cs.Title}
	})
	if slot == nil {
		return nil, contract.ErrSessionMissing
	}
	return slot, nil
}

func (r *chatSessionRepository) SetTitleIfDefault(ctx context.Context, id uuid.UUID, title string) (bool, error) {
	applied := false
	r.do(func(undo func(func())) {
		cs, ok := r.store.sessions[id]
		if !ok || cs.Title != constant.DefaultChatSessionTitle {
			return
		}
		prev := cs.Title
		cs.Title = title
		applied = true
		undo(func() { cs.Title = prev })
	})
	return applied, nil
}

type chatMessageRepository struct {
	access
}

func (r *chatMessageRepository) Create(ctx context.Context, message *entity.ChatMessage) error {
	var err error
	r.do(func(undo func(func())) {
		s := r.store
		if _, ok := s.sessions[message.ChatSessionId]; !ok {
			err = contract.ErrSessionMissing
			return
		}
		for _, m := range s.messages[message.ChatSessionId] {
			if m.Seq == message.Seq {
				err = fmt.Errorf("duplicate message seq %d for session %s", message.Seq, message.ChatSessionId)
				return
			}
		}
		stored := *message
		prev := s.messages[message.ChatSessionId]
		s.messages[message.ChatSessionId] = append(prev[:len(prev):len(prev)], &stored)
		undo(func() { s.messages[message.ChatSessionId] = prev })
	})
	return err
}

func (r *chatMessageRepository) FindAllBySession(ctx context.Context, sessionId uuid.UUID) ([]*entity.ChatMessage, error) {
	msgs := r.snapshot(sessionId)
	sortChronological(msgs)
	return msgs, nil
}

func (r *chatMessageRepository) FindLatestBySession(ctx context.Context, sessionId uuid.UUID, limit int) ([]*entity.ChatMessage, error) {
	if limit <= 0 {
		return []*entity.ChatMessage{}, nil
	}
	msgs := r.snapshot(sessionId)
	sortChronological(msgs)
	if len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}

func (r *chatMessageRepository) CountBySession(ctx context.Context, sessionId uuid.UUID) (int64, error) {
	var n int64
	r.do(func(func(func())) {
		n = int64(len(r.store.messages[sessionId]))
	})
	return n, nil
}

func (r *chatMessageRepository) snapshot(sessionId uuid.UUID) []*entity.ChatMessage {
	result := []*entity.ChatMessage{}
	r.do(func(func(func())) {
		for _, m := range r.store.messages[sessionId] {
			c := *m
			result = append(result, &c)
		}
	})
	return result
}

func sortChronological(msgs []*entity.ChatMessage) {
	sort.SliceStable(msgs, func(i, j int) bool {
		if !msgs[i].CreatedAt.Equal(msgs[j].CreatedAt) {
			return msgs[i].CreatedAt.Before(msgs[j].CreatedAt)
		}
		return msgs[i].Seq < msgs[j].Seq
	})
}
