package notifyinfra_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Abraxas-365/workforce/pkg/notify"
	"github.com/Abraxas-365/workforce/pkg/notify/notifyinfra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// TEST SETUP
// =============================================================================

// sliceQueue serves queued notifications and then keeps returning empty polls
type sliceQueue struct {
	items []notify.Notification
	done  chan struct{}
}

func newSliceQueue(items ...notify.Notification) *sliceQueue {
	return &sliceQueue{items: items, done: make(chan struct{})}
}

func (q *sliceQueue) Pop(_ context.Context, _ time.Duration) (*notify.Notification, error) {
	if len(q.items) == 0 {
		select {
		case <-q.done:
		default:
			close(q.done)
		}
		return nil, nil
	}
	n := q.items[0]
	q.items = q.items[1:]
	return &n, nil
}

type captureSender struct {
	delivered []notify.Notification
	fail      bool
}

func (s *captureSender) Notify(_ context.Context, n notify.Notification) error {
	if s.fail {
		return errors.New("sender down")
	}
	s.delivered = append(s.delivered, n)
	return nil
}

type captureMailer struct {
	to       []string
	subjects []string
	bodies   []string
}

func (m *captureMailer) Send(_ context.Context, to, subject, body string) error {
	m.to = append(m.to, to)
	m.subjects = append(m.subjects, subject)
	m.bodies = append(m.bodies, body)
	return nil
}

func runUntilDrained(t *testing.T, d *notifyinfra.Dispatcher, q *sliceQueue) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-q.done
		cancel()
	}()

	finished := make(chan struct{})
	go func() {
		d.Start(ctx)
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(5 * time.Second):
		t.Fatal("dispatcher did not stop after the queue drained")
	}
}

// =============================================================================
// DISPATCHER TESTS
// =============================================================================

func TestDispatcher_DeliversNotificationAndEmail(t *testing.T) {
	n := notify.New("owner-1", "owner@north.test", "More candidates needed", "Send more candidates.", notify.PriorityHigh, "https://agency.test/requirements/req-1")
	queue := newSliceQueue(n)
	sender := &captureSender{}
	mailer := &captureMailer{}

	d := notifyinfra.NewDispatcher(queue, sender, mailer, time.Millisecond)
	runUntilDrained(t, d, queue)

	require.Len(t, sender.delivered, 1)
	assert.Equal(t, n.ID, sender.delivered[0].ID)

	require.Len(t, mailer.to, 1)
	assert.Equal(t, "owner@north.test", mailer.to[0])
	assert.Equal(t, "More candidates needed", mailer.subjects[0])
	assert.Contains(t, mailer.bodies[0], "https://agency.test/requirements/req-1")
}

func TestDispatcher_SkipsEmailWithoutAddress(t *testing.T) {
	n := notify.New("owner-1", "", "Heads up", "No email on file.", notify.PriorityNormal, "")
	queue := newSliceQueue(n)
	sender := &captureSender{}
	mailer := &captureMailer{}

	d := notifyinfra.NewDispatcher(queue, sender, mailer, time.Millisecond)
	runUntilDrained(t, d, queue)

	assert.Len(t, sender.delivered, 1)
	assert.Empty(t, mailer.to)
}

func TestDispatcher_SenderFailureStillSendsEmail(t *testing.T) {
	// A failed in-platform delivery is logged, not fatal, and does not block
	// the email leg.

	n := notify.New("owner-1", "owner@north.test", "Heads up", "Body.", notify.PriorityNormal, "")
	queue := newSliceQueue(n)
	sender := &captureSender{fail: true}
	mailer := &captureMailer{}

	d := notifyinfra.NewDispatcher(queue, sender, mailer, time.Millisecond)
	runUntilDrained(t, d, queue)

	assert.Empty(t, sender.delivered)
	require.Len(t, mailer.to, 1)
}
