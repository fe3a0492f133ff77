package audit

import (
	"context"
	"sync"
	"sync/atomic"
)

// Options controls how a [Dispatcher] queues events.
type Options struct {
	Buffer int
	// DropIfFull discards events when the queue is full instead of blocking
	// the request that produced them.
	DropIfFull bool
	// OnDrop runs on the publishing goroutine for every discarded event.
	OnDrop func(Event)
}

// Dispatcher relays events to a [Sink] from a single background goroutine,
// so a slow sink never runs on the request path.
type Dispatcher struct {
	sink  Sink
	opts  Options
	queue chan Event
	stop  chan struct{}
	done  chan struct{}

	closing  atomic.Bool
	stopOnce sync.Once
	drops    [len(kinds) + 1]atomic.Uint64
}

// Start launches a dispatcher. A nil sink discards events.
func Start(sink Sink, opts Options) *Dispatcher {
	if sink == nil {
		sink = NoOpSink{}
	}
	if opts.Buffer <= 0 {
		opts.Buffer = 1
	}
	d := &Dispatcher{
		sink:  sink,
		opts:  opts,
		queue: make(chan Event, opts.Buffer),
		stop:  make(chan struct{}),
		done:  make(chan struct{}),
	}
	go d.loop()
	return d
}

func (d *Dispatcher) loop() {
	defer close(d.done)
	for {
		select {
		case ev := <-d.queue:
			d.sink.Emit(context.Background(), ev)
		case <-d.stop:
			for {
				select {
				case ev := <-d.queue:
					d.sink.Emit(context.Background(), ev)
				default:
					return
				}
			}
		}
	}
}

// Publish queues ev and reports whether it was accepted. Events published
// after Drain starts are ignored and not counted as drops.
func (d *Dispatcher) Publish(ctx context.Context, ev Event) bool {
	if d == nil || d.closing.Load() {
		return false
	}
	if ctx == nil {
		ctx = context.Background()
	}

	if d.opts.DropIfFull {
		select {
		case d.queue <- ev:
			return true
		default:
			d.drop(ev)
			return false
		}
	}

	select {
	case d.queue <- ev:
		return true
	case <-ctx.Done():
		d.drop(ev)
		return false
	case <-d.stop:
		return false
	}
}

func (d *Dispatcher) drop(ev Event) {
	d.drops[ev.Kind.slot()].Add(1)
	if d.opts.OnDrop != nil {
		d.opts.OnDrop(ev)
	}
}

// Drain stops accepting events and waits until queued events reach the sink
// or ctx ends. It is safe to call more than once.
func (d *Dispatcher) Drain(ctx context.Context) error {
	if d == nil {
		return nil
	}
	d.stopOnce.Do(func() {
		d.closing.Store(true)
		close(d.stop)
	})
	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close drains without a deadline.
func (d *Dispatcher) Close() {
	_ = d.Drain(context.Background())
}

// Dropped returns the total number of discarded events.
func (d *Dispatcher) Dropped() uint64 {
	if d == nil {
		return 0
	}
	var total uint64
	for i := range d.drops {
		total += d.drops[i].Load()
	}
	return total
}

// DroppedOf returns the number of discarded events of kind k.
func (d *Dispatcher) DroppedOf(k Kind) uint64 {
	if d == nil {
		return 0
	}
	return d.drops[k.slot()].Load()
}
