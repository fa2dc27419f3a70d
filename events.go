package anchor

import (
	"bytes"
	"context"
	"encoding/base64"
	"log"
	"strings"
	"sync"

	"github.com/cryptopapi997/anchor/rpc"
)

// EventContext carries the provenance of a delivered event.
type EventContext struct {
	// Signature of the transaction the event was emitted in.
	Signature string
	// Slot the transaction was observed in.
	Slot uint64
}

// EventUnsubscriber stops one event subscription. Unsubscribe joins the
// background task before returning, so no callback runs afterwards.
type EventUnsubscriber struct {
	stop chan struct{}
	done chan struct{}
	sub  *rpc.LogSubscription
	once sync.Once

	mu  sync.Mutex
	err error
}

// Unsubscribe signals the background task to stop, waits for it to exit,
// then releases the server-side subscription. Idempotent; after the first
// call returns, the caller observes no further callback invocations.
func (u *EventUnsubscriber) Unsubscribe(ctx context.Context) error {
	var err error
	u.once.Do(func() {
		close(u.stop)
		<-u.done
		err = u.sub.Unsubscribe(ctx)
	})
	return err
}

// Done is closed when the background task has exited, whether by
// Unsubscribe or because the notification stream died.
func (u *EventUnsubscriber) Done() <-chan struct{} {
	return u.done
}

// Err reports why delivery stopped: ErrSubscriptionClosed after stream
// death, nil otherwise. Meaningful once Done is closed.
func (u *EventUnsubscriber) Err() error {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.err
}

func (u *EventUnsubscriber) setErr(err error) {
	u.mu.Lock()
	u.err = err
	u.mu.Unlock()
}

// OnEvent subscribes to events of type T emitted by the program. The
// shared subscription client is dialed on first use; each call opens an
// independent log stream and background task. The handler runs
// synchronously on the subscription task and must not block indefinitely.
func OnEvent[T any, PT EventPtr[T]](ctx context.Context, p *Program, handler func(EventContext, *T)) (*EventUnsubscriber, error) {
	streamer, err := p.subStreamer(ctx)
	if err != nil {
		return nil, err
	}

	sub, err := streamer.SubscribeLogs(ctx, rpc.LogsFilter{
		Mentions:   []string{p.programID.String()},
		Commitment: p.cfg.Commitment,
	})
	if err != nil {
		return nil, transportErr("subscribe logs", err)
	}

	u := &EventUnsubscriber{
		stop: make(chan struct{}),
		done: make(chan struct{}),
		sub:  sub,
	}

	go deliverEvents[T, PT](p.programID.String(), sub, u, handler)

	return u, nil
}

// deliverEvents is the subscription task: it pulls notifications, decodes
// events belonging to the program, and invokes the handler until stopped
// or the stream closes.
func deliverEvents[T any, PT EventPtr[T]](programID string, sub *rpc.LogSubscription, u *EventUnsubscriber, handler func(EventContext, *T)) {
	defer close(u.done)

	for {
		// The stop signal wins over a ready notification.
		select {
		case <-u.stop:
			return
		default:
		}

		select {
		case <-u.stop:
			return
		case notif, ok := <-sub.C():
			if !ok {
				u.setErr(ErrSubscriptionClosed)
				log.Printf("[events] stream closed for program %s", programID)
				return
			}
			emitEvents[T, PT](programID, notif, handler)
		}
	}
}

// emitEvents scans one notification's log lines and delivers every event
// whose discriminator matches T. Payloads with a different discriminator
// or that fail to decode are skipped: the stream is shared across event
// types.
func emitEvents[T any, PT EventPtr[T]](programID string, notif rpc.LogNotification, handler func(EventContext, *T)) {
	ectx := EventContext{Signature: notif.Signature, Slot: notif.Slot}
	scanner := newLogScanner(programID)

	for _, line := range notif.Logs {
		payload, ok := scanner.scan(line)
		if !ok {
			continue
		}

		raw, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			continue
		}
		event := new(T)
		disc := PT(event).EventDiscriminator()
		if len(raw) < len(disc) || !bytes.Equal(raw[:len(disc)], disc[:]) {
			continue
		}
		if err := PT(event).UnmarshalEvent(raw[len(disc):]); err != nil {
			continue
		}

		handler(ectx, event)
	}
}

// Log line markers produced by the runtime and by programs.
const (
	logDataPrefix   = "Program data: "
	logLogPrefix    = "Program log: "
	logInvokePrefix = "Program "
)

// logScanner attributes log lines to the program currently executing. The
// runtime interleaves lines of every program touched by a transaction;
// invoke/success/failed lines reconstruct the execution stack so only
// payloads emitted by our program are surfaced.
type logScanner struct {
	programID string
	stack     []string
}

func newLogScanner(programID string) *logScanner {
	return &logScanner{programID: programID}
}

// scan consumes one log line. It returns a base64 payload and true when
// the line is an event payload emitted by the scanner's program.
func (s *logScanner) scan(line string) (string, bool) {
	if payload, ok := strings.CutPrefix(line, logDataPrefix); ok {
		return payload, s.executing()
	}
	if _, ok := strings.CutPrefix(line, logLogPrefix); ok {
		// Plain log lines never carry events.
		return "", false
	}

	if rest, ok := strings.CutPrefix(line, logInvokePrefix); ok {
		fields := strings.Fields(rest)
		if len(fields) >= 2 {
			// Failure lines read "Program <id> failed: <err>".
			switch strings.TrimSuffix(fields[1], ":") {
			case "invoke":
				s.stack = append(s.stack, fields[0])
			case "success", "failed":
				if n := len(s.stack); n > 0 && s.stack[n-1] == fields[0] {
					s.stack = s.stack[:n-1]
				}
			}
		}
	}
	return "", false
}

// executing reports whether the scanner's program is at the top of the
// execution stack.
func (s *logScanner) executing() bool {
	n := len(s.stack)
	return n > 0 && s.stack[n-1] == s.programID
}
