package resonance

// Close marks the engine as closed. Subsequent searches and snapshot
// operations return ErrClosed.
//
// The snapshot store is owned by the caller and is not closed here.
// Close is idempotent and safe to call on a nil engine.
func (e *Engine) Close() error {
	if e == nil {
		return nil
	}
	e.closed.Store(true)
	return nil
}
