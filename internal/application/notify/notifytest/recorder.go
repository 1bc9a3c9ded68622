// Package notifytest provides a Notifier that records messages instead of sending them.
package notifytest

import (
	"context"
	"strings"
	"sync"

	"givehub-backend/internal/application/notify"
)

type Recorder struct {
	mu       sync.Mutex
	messages []notify.Message
}

func (r *Recorder) Notify(_ context.Context, msg notify.Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, msg)
}

// Messages returns a copy of everything recorded so far.
func (r *Recorder) Messages() []notify.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]notify.Message(nil), r.messages...)
}

// To returns the messages addressed to addr.
func (r *Recorder) To(addr string) []notify.Message {
	var out []notify.Message
	for _, m := range r.Messages() {
		if strings.EqualFold(m.To, addr) {
			out = append(out, m)
		}
	}
	return out
}
