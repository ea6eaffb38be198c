// Package event hydrates gateway events and delivers them to listeners.
//
// A Dispatcher owns a listener Registry and a cache Finder. Listeners are
// registered per event kind with On:
//
//	d := event.NewDispatcher(cache, event.DispatcherConfig{Logger: logger})
//	event.On(d, event.KindTypingStart, func(ctx context.Context, e *event.TypingStart) error {
//		if ch, ok := e.Channel.Get(); ok {
//			fmt.Println(e.UserID, "is typing in", ch.Name)
//		}
//		return nil
//	})
//
// Dispatch skips hydration entirely when nobody listens for an event type.
// Otherwise it reads the event data, resolves identifiers against the
// cache (uncached entities stay absent), and calls every listener in
// registration order on the caller's goroutine. A listener that returns an
// error or panics is logged and counted, and delivery continues with the
// next listener.
//
// Malformed event data drops the event: no listener is called and
// Dispatch returns a *HydrationError.
package event
