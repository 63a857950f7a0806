package services

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ChangeSignal tells subscribers the ledger snapshot changed. Signals carry
// no diff, consumers re-query whatever they display.
type ChangeSignal struct {
	Sequence  uint64    `json:"sequence"`
	EmittedAt time.Time `json:"emitted_at"`
}

// ChangeNotifier broadcasts snapshot-changed signals after committed
// mutations. Rapid consecutive writes coalesce into one signal per debounce
// window so subscribers never refresh more often than the window allows.
type ChangeNotifier struct {
	mu          sync.Mutex
	subscribers map[uuid.UUID]chan ChangeSignal
	trigger     chan struct{}
	done        chan struct{}
	stopped     sync.Once
	debounce    time.Duration
	sequence    uint64
	logger      *slog.Logger
}

// NewChangeNotifier creates a notifier with the given coalescing window
func NewChangeNotifier(debounce time.Duration, logger *slog.Logger) *ChangeNotifier {
	if debounce <= 0 {
		debounce = 250 * time.Millisecond
	}
	return &ChangeNotifier{
		subscribers: make(map[uuid.UUID]chan ChangeSignal),
		trigger:     make(chan struct{}, 1),
		done:        make(chan struct{}),
		debounce:    debounce,
		logger:      logger,
	}
}

// Start launches the broadcast goroutine
func (n *ChangeNotifier) Start() {
	go n.run()
}

// Stop shuts down the broadcast goroutine and closes subscriber channels
func (n *ChangeNotifier) Stop() {
	n.stopped.Do(func() {
		close(n.done)
	})
}

// Notify signals that a mutation committed. Never blocks the write path,
// a signal already queued for the current window absorbs this one.
func (n *ChangeNotifier) Notify() {
	select {
	case n.trigger <- struct{}{}:
	default:
	}
}

// Subscribe registers a new subscriber and returns its id and signal channel
func (n *ChangeNotifier) Subscribe() (uuid.UUID, <-chan ChangeSignal) {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := uuid.New()
	ch := make(chan ChangeSignal, 8)
	n.subscribers[id] = ch
	return id, ch
}

// Unsubscribe removes a subscriber and closes its channel
func (n *ChangeNotifier) Unsubscribe(id uuid.UUID) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if ch, ok := n.subscribers[id]; ok {
		delete(n.subscribers, id)
		close(ch)
	}
}

func (n *ChangeNotifier) run() {
	for {
		select {
		case <-n.done:
			n.closeAll()
			return
		case <-n.trigger:
			// Hold the signal open for one debounce window, any writes
			// landing inside it ride along on the same broadcast
			timer := time.NewTimer(n.debounce)
			select {
			case <-n.done:
				timer.Stop()
				n.closeAll()
				return
			case <-timer.C:
			}
			// Absorb anything queued during the window before broadcasting
			select {
			case <-n.trigger:
			default:
			}
			n.broadcast()
		}
	}
}

func (n *ChangeNotifier) broadcast() {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.sequence++
	signal := ChangeSignal{
		Sequence:  n.sequence,
		EmittedAt: time.Now().UTC(),
	}

	for id, ch := range n.subscribers {
		select {
		case ch <- signal:
		default:
			// Slow subscribers are skipped, they catch up on the next signal
			if n.logger != nil {
				n.logger.Debug("dropping change signal for slow subscriber",
					"subscriber_id", id,
					"sequence", signal.Sequence)
			}
		}
	}
}

func (n *ChangeNotifier) closeAll() {
	n.mu.Lock()
	defer n.mu.Unlock()

	for id, ch := range n.subscribers {
		delete(n.subscribers, id)
		close(ch)
	}
}
