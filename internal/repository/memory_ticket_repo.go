package repository

import (
	"context"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/hitoshi/supportdesk/internal/model"
)

// MemoryTicketRepo はプロセス内メモリにチケットを保持するモックリポジトリ。
// プロセス終了で追加分は失われる。
type MemoryTicketRepo struct {
	mu      sync.RWMutex
	tickets map[string]*model.Ticket
	nextID  int
}

// NewMemoryTicketRepo は指定チケットを初期データとして保持するMemoryTicketRepoを生成する。
func NewMemoryTicketRepo(seed []model.Ticket) *MemoryTicketRepo {
	r := &MemoryTicketRepo{
		tickets: make(map[string]*model.Ticket, len(seed)),
		nextID:  1,
	}
	for _, t := range seed {
		t := cloneTicket(t)
		r.tickets[t.ID] = &t
		if n, err := strconv.Atoi(t.ID); err == nil && n >= r.nextID {
			r.nextID = n + 1
		}
	}
	return r
}

// List は閲覧者、件名の部分一致（大文字小文字を区別しない）とステータスで絞り込む。
func (r *MemoryTicketRepo) List(ctx context.Context, filter model.TicketFilter) ([]model.Ticket, error) {
	search := strings.ToLower(filter.Search)

	r.mu.RLock()
	out := make([]model.Ticket, 0, len(r.tickets))
	for _, t := range r.tickets {
		if !t.VisibleTo(filter.ViewerID) {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(t.Subject), search) {
			continue
		}
		if filter.Status != "" && t.Status != filter.Status {
			continue
		}
		out = append(out, cloneTicket(*t))
	}
	r.mu.RUnlock()

	slices.SortFunc(out, func(a, b model.Ticket) int {
		if c := b.LastUpdate.Compare(a.LastUpdate); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return out, nil
}

// FindByID はチケットのコピーを返す。
func (r *MemoryTicketRepo) FindByID(ctx context.Context, id string) (*model.Ticket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tickets[id]
	if !ok {
		return nil, nil
	}
	out := cloneTicket(*t)
	return &out, nil
}

// Create はチケットを採番して保存する。
func (r *MemoryTicketRepo) Create(ctx context.Context, ticket *model.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if ticket.ID == "" {
		ticket.ID = strconv.Itoa(r.nextID)
		r.nextID++
	}
	stored := cloneTicket(*ticket)
	r.tickets[stored.ID] = &stored
	return nil
}

// AppendMessage はメッセージを追加して更新後のチケットを返す。
func (r *MemoryTicketRepo) AppendMessage(ctx context.Context, ticketID string, msg model.TicketMessage) (*model.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tickets[ticketID]
	if !ok {
		return nil, nil
	}

	msg.ID = len(t.Messages) + 1
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}
	t.Messages = append(t.Messages, msg)
	t.LastUpdate = msg.Timestamp

	out := cloneTicket(*t)
	return &out, nil
}

func cloneTicket(t model.Ticket) model.Ticket {
	t.Messages = slices.Clone(t.Messages)
	return t
}

// compile-time interface check
var _ TicketRepository = (*MemoryTicketRepo)(nil)
