package cli

import (
	"context"
	"fmt"
	"time"
)

// watchDuration bounds one watch command; the subscription itself would
// otherwise hold the REPL forever.
const watchDuration = 30 * time.Second

// Watch subscribes to store change notifications and prints them as they
// arrive. Changes made by other sessions become visible here as soon as
// they are published, without any fixed polling interval.
func (a *App) Watch(ctx context.Context) error {
	events, cancel := a.broker.Subscribe()
	defer cancel()

	fmt.Fprintf(a.out, "Watching for changes for %s...\n", watchDuration)

	timer := time.NewTimer(watchDuration)
	defer timer.Stop()

	for {
		select {
		case e, ok := <-events:
			if !ok {
				return nil
			}
			fmt.Fprintf(a.out, "%s: %s for patient %s\n", e.Kind, e.Op, e.PatientHH)
		case <-timer.C:
			fmt.Fprintln(a.out, "Watch finished")
			return nil
		case <-ctx.Done():
			return nil
		}
	}
}
