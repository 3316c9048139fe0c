package emit

import "context"

// MultiEmitter fans an event out to every backing Emitter, e.g. a
// LogEmitter for text output plus an OTelEmitter for tracing.
type MultiEmitter struct {
	emitters []Emitter
}

// NewMultiEmitter returns an Emitter that forwards to every one of
// emitters, in order.
func NewMultiEmitter(emitters ...Emitter) *MultiEmitter {
	return &MultiEmitter{emitters: emitters}
}

func (m *MultiEmitter) Emit(event Event) {
	for _, e := range m.emitters {
		e.Emit(event)
	}
}

func (m *MultiEmitter) EmitBatch(ctx context.Context, events []Event) error {
	for _, e := range m.emitters {
		if err := e.EmitBatch(ctx, events); err != nil {
			return err
		}
	}
	return nil
}

func (m *MultiEmitter) Flush(ctx context.Context) error {
	for _, e := range m.emitters {
		if err := e.Flush(ctx); err != nil {
			return err
		}
	}
	return nil
}
